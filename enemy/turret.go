package enemy

import (
	"fmt"
	"math"
	"sort"

	"github.com/d5/tengo/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ai"
	"github.com/milk9111/sentry/common"
	"github.com/milk9111/sentry/ecs"
)

const (
	StateIdle   ai.StateID = "idle"
	StateAttack ai.StateID = "attack"
)

// TurretConfig extends Config with the turret's tower and behavior setup.
type TurretConfig struct {
	Config

	// BulletSpawn is the muzzle offset in the tower's local frame, where +Y
	// points along the barrel.
	BulletSpawn cp.Vector
	// InitialTower is the starting tower rotation in degrees.
	InitialTower float64
	InitialState ai.StateID
	// Scripts replace or add states with tengo behaviors keyed by state id.
	Scripts map[ai.StateID][]byte
}

func DefaultTurretConfig() TurretConfig {
	return TurretConfig{
		Config:       DefaultConfig(),
		BulletSpawn:  cp.Vector{X: 0, Y: 18},
		InitialState: StateIdle,
	}
}

// Turret is a stationary enemy with a rotating tower.
type Turret struct {
	*Enemy

	// Tower is the tower rotation in degrees.
	Tower       float64
	BulletSpawn cp.Vector

	rotating bool
}

// NewTurret builds a turret with its idle and attack states registered and
// the initial state entered.
func NewTurret(id ecs.Entity, pos cp.Vector, cfg TurretConfig, deps Deps) (*Turret, error) {
	t := &Turret{
		Enemy:       newEnemy(id, pos, cfg.Config, deps),
		Tower:       common.NormalizeAngle(cfg.InitialTower),
		BulletSpawn: cfg.BulletSpawn,
	}
	t.muzzle = func() (cp.Vector, float64) {
		return t.Muzzle(), t.Heading()
	}

	states := map[ai.StateID]ai.State{
		StateIdle:   NewTurretIdleState(t),
		StateAttack: NewTurretAttackState(t),
	}
	ids := make([]ai.StateID, 0, len(cfg.Scripts))
	for id := range cfg.Scripts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, sid := range ids {
		scripted, err := ai.NewScriptedState(sid, t.Machine, cfg.Scripts[sid], t)
		if err != nil {
			return nil, fmt.Errorf("enemy: turret %s: %w", id, err)
		}
		states[sid] = scripted
	}
	for sid, s := range states {
		if err := t.Machine.Register(sid, s); err != nil {
			return nil, fmt.Errorf("enemy: turret %s: %w", id, err)
		}
	}

	initial := cfg.InitialState
	if initial == "" {
		initial = StateIdle
	}
	if err := t.Machine.Initialize(initial); err != nil {
		return nil, fmt.Errorf("enemy: turret %s: %w", id, err)
	}
	return t, nil
}

// RotateTowerTowardsPlayer slews the tower toward the target along the
// shortest arc and updates IsRotatingTower.
func (t *Turret) RotateTowerTowardsPlayer(dt float64) {
	if t.target == nil {
		return
	}
	goal := t.goalAngle()
	step := t.Config.RotationInterpolationFactor * t.Config.TowerRotationSpeed * dt
	t.Tower = common.LerpAngle(t.Tower, goal, step)
	t.rotating = math.Abs(common.DeltaAngle(t.Tower, goal)) > t.Config.RotationThreshold
}

func (t *Turret) goalAngle() float64 {
	d := t.target.Position().Sub(t.Position)
	return common.NormalizeAngle(math.Atan2(d.Y, d.X)*common.Rad2Deg + t.Config.ForwardOffset)
}

// IsRotatingTower reports whether the last rotation left the tower more than
// RotationThreshold degrees off target.
func (t *Turret) IsRotatingTower() bool {
	return t.rotating
}

// Heading is the barrel direction in degrees, counter-clockwise from +X.
func (t *Turret) Heading() float64 {
	return common.NormalizeAngle(t.Tower - t.Config.ForwardOffset)
}

// Muzzle is the world position of the bullet spawn point.
func (t *Turret) Muzzle() cp.Vector {
	return t.Position.Add(t.BulletSpawn.Rotate(cp.ForAngle(t.Tower * common.Deg2Rad)))
}

// ScriptFuncs exposes the turret's sensors and actuators to scripted states.
func (t *Turret) ScriptFuncs() map[string]tengo.CallableFunc {
	return map[string]tengo.CallableFunc{
		"player_detected": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Bool(t.PlayerDetected()), nil
		},
		"obstacle_between": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Bool(t.ObstacleBetween()), nil
		},
		"rotate_tower": func(args ...tengo.Object) (tengo.Object, error) {
			t.RotateTowerTowardsPlayer(ai.ArgFloat(args, 0))
			return tengo.UndefinedValue, nil
		},
		"is_rotating": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Bool(t.IsRotatingTower()), nil
		},
		"can_shoot": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Bool(t.CanShoot()), nil
		},
		"shoot": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Bool(t.Shoot()), nil
		},
		"tower_angle": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Float(t.Tower), nil
		},
		"set_tower_angle": func(args ...tengo.Object) (tengo.Object, error) {
			t.Tower = common.NormalizeAngle(ai.ArgFloat(args, 0))
			return tengo.UndefinedValue, nil
		},
		"distance_to_player": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Float(t.DistanceToTarget()), nil
		},
		"health": func(args ...tengo.Object) (tengo.Object, error) {
			return ai.Float(float64(t.CurrentHP())), nil
		},
	}
}
