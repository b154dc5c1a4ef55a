package component

// Health is a reusable health component for any entity that can take damage.
// Current is not clamped at zero: overkill damage keeps counting down, and
// Dead latches the first time Current reaches zero.
type Health struct {
	Max     float32
	Current float32
	Dead    bool

	OnDamage func(h *Health, amount float32)
	OnDeath  func(h *Health)
}

// NewHealth creates a Health component with max/current initialized.
func NewHealth(max float32) *Health {
	if max <= 0 {
		max = 1
	}
	return &Health{Max: max, Current: max}
}

// IsAlive reports whether the entity is alive.
func (h *Health) IsAlive() bool {
	return h != nil && !h.Dead && h.Current > 0
}

// ApplyDamage subtracts amount and reports whether anything was applied.
// OnDeath fires only on the call that first takes Current to zero or below.
func (h *Health) ApplyDamage(amount float32) bool {
	if h == nil || amount <= 0 {
		return false
	}
	h.Current -= amount
	if h.OnDamage != nil {
		h.OnDamage(h, amount)
	}
	if h.Current <= 0 && !h.Dead {
		h.Dead = true
		if h.OnDeath != nil {
			h.OnDeath(h)
		}
	}
	return true
}

// CurrentHP returns the current health value.
func (h *Health) CurrentHP() float32 {
	if h == nil {
		return 0
	}
	return h.Current
}

// MaxHP returns the maximum health value.
func (h *Health) MaxHP() float32 {
	if h == nil {
		return 0
	}
	return h.Max
}

// Fraction returns Current/Max clamped to [0, 1] for health bars.
func (h *Health) Fraction() float32 {
	if h == nil || h.Max <= 0 {
		return 0
	}
	f := h.Current / h.Max
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
