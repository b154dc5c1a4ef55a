package enemy

// Cooldown is a reload timer advanced by tick deltas and polled by states.
type Cooldown struct {
	Duration  float64
	Remaining float64
}

func (c *Cooldown) Start() {
	c.Remaining = c.Duration
}

func (c *Cooldown) Tick(dt float64) {
	if c.Remaining <= 0 || dt <= 0 {
		return
	}
	c.Remaining -= dt
	if c.Remaining < 0 {
		c.Remaining = 0
	}
}

func (c *Cooldown) Ready() bool {
	return c.Remaining <= 0
}

// Progress returns how far the reload has come, from 0 to 1.
func (c *Cooldown) Progress() float64 {
	if c.Duration <= 0 || c.Remaining <= 0 {
		return 1
	}
	return 1 - c.Remaining/c.Duration
}
