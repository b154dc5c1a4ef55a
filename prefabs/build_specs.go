package prefabs

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ai"
	"github.com/milk9111/sentry/enemy"
	"github.com/milk9111/sentry/pool"
	"github.com/milk9111/sentry/projectile"
	"gopkg.in/yaml.v3"
)

// DecodeProps converts loosely typed level props into T through a YAML round
// trip so props share the prefab field names.
func DecodeProps[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// TurretConfig builds the runtime turret configuration. Zero fields keep the
// defaults; scripts are loaded from the scripts directory.
func (s *TurretSpec) TurretConfig() (enemy.TurretConfig, error) {
	cfg := enemy.DefaultTurretConfig()
	if s == nil {
		return cfg, nil
	}

	if s.Health > 0 {
		cfg.MaxHealth = s.Health
	}
	if s.DetectionDistance > 0 {
		cfg.DetectionDistance = s.DetectionDistance
	}
	if s.ReloadTime > 0 {
		cfg.ReloadTime = s.ReloadTime
	}
	if s.ExplosionTime > 0 {
		cfg.ExplosionTime = s.ExplosionTime
	}
	if s.Radius > 0 {
		cfg.Radius = s.Radius
	}
	if s.PlayerLayer != 0 {
		cfg.PlayerLayer = s.PlayerLayer
	}
	if s.ObstacleLayer != 0 {
		cfg.ObstacleLayer = s.ObstacleLayer
	}

	tower := s.Tower
	if tower.RotationSpeed > 0 {
		cfg.TowerRotationSpeed = tower.RotationSpeed
	}
	if tower.InterpolationFactor > 0 {
		cfg.RotationInterpolationFactor = tower.InterpolationFactor
	}
	if tower.RotationThreshold > 0 {
		cfg.RotationThreshold = tower.RotationThreshold
	}
	if tower.ForwardOffset != nil {
		cfg.ForwardOffset = *tower.ForwardOffset
	}
	if tower.BulletSpawn != nil {
		cfg.BulletSpawn = cp.Vector{X: tower.BulletSpawn.X, Y: tower.BulletSpawn.Y}
	}
	cfg.InitialTower = tower.Initial

	if s.AI.Initial != "" {
		cfg.InitialState = ai.StateID(s.AI.Initial)
	}
	if len(s.AI.Scripts) > 0 {
		cfg.Scripts = make(map[ai.StateID][]byte, len(s.AI.Scripts))
		for state, file := range s.AI.Scripts {
			src, err := LoadScript(file)
			if err != nil {
				return cfg, fmt.Errorf("prefabs: turret %s: script for %s: %w", s.Name, state, err)
			}
			cfg.Scripts[ai.StateID(state)] = src
		}
	}
	return cfg, nil
}

// Stats returns the per-round tuning values.
func (s *ProjectileSpec) Stats() projectile.Stats {
	if s == nil {
		return projectile.Stats{}
	}
	return projectile.Stats{
		Damage:   s.Damage,
		Speed:    s.Speed,
		Lifetime: s.Lifetime,
		Radius:   s.Radius,
		Mask:     s.HitMask,
		Pierce:   s.Pierce,
	}
}

// PoolConfig returns the pool sizing, defaulting to pool.DefaultConfig.
func (s *ProjectileSpec) PoolConfig() pool.Config {
	if s == nil || s.Pool == nil {
		return pool.DefaultConfig()
	}
	return *s.Pool
}
