package enemy

import "github.com/milk9111/sentry/ai"

// TurretIdleState waits until the target is visible.
type TurretIdleState struct {
	ai.BaseState
	turret *Turret

	playerDetected bool
	obstacle       bool
}

func NewTurretIdleState(t *Turret) *TurretIdleState {
	return &TurretIdleState{turret: t}
}

func (s *TurretIdleState) DoChecks() {
	s.playerDetected = s.turret.PlayerDetected()
	s.obstacle = s.turret.ObstacleBetween()
}

func (s *TurretIdleState) LogicUpdate(dt float64) {
	s.Tick(dt)
	s.DoChecks()
	if s.playerDetected && !s.obstacle {
		s.turret.Machine.ChangeState(StateAttack)
	}
}

// TurretAttackState tracks and fires at the target while it stays visible.
type TurretAttackState struct {
	ai.BaseState
	turret *Turret

	playerDetected bool
	obstacle       bool
}

func NewTurretAttackState(t *Turret) *TurretAttackState {
	return &TurretAttackState{turret: t}
}

func (s *TurretAttackState) DoChecks() {
	s.playerDetected = s.turret.PlayerDetected()
	s.obstacle = s.turret.ObstacleBetween()
}

// LogicUpdate rotates and fires before deciding whether to leave, so a shot
// can go out on the tick the target is lost.
func (s *TurretAttackState) LogicUpdate(dt float64) {
	s.Tick(dt)
	s.DoChecks()

	s.turret.RotateTowerTowardsPlayer(dt)
	if !s.turret.IsRotatingTower() && s.turret.CanShoot() {
		s.turret.Shoot()
	}

	if !s.playerDetected || s.obstacle {
		s.turret.Machine.ChangeState(StateIdle)
	}
}
