package component

// Damageable is anything a projectile can hurt.
type Damageable interface {
	TakeDamage(amount float32)
	IsAlive() bool
}

// HealthComponent exposes read access to health for HUDs and status dumps.
type HealthComponent interface {
	IsAlive() bool
	CurrentHP() float32
	MaxHP() float32
}
