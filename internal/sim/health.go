package sim

import "emberwatch/server/internal/behavior"

// HealthPool tracks one actor's vitals and fires a single death notification
// when health reaches zero.
type HealthPool struct {
	max     float64
	current float64
	onDeath func()
}

func NewHealthPool(max float64, onDeath func()) *HealthPool {
	if max <= 0 {
		max = 1
	}
	return &HealthPool{max: max, current: max, onDeath: onDeath}
}

func (h *HealthPool) HealthFraction() float64 {
	if h == nil || h.max <= 0 {
		return 0
	}
	return h.current / h.max
}

func (h *HealthPool) Alive() bool {
	return h != nil && h.current > 0
}

func (h *HealthPool) Current() float64 {
	if h == nil {
		return 0
	}
	return h.current
}

func (h *HealthPool) Max() float64 {
	if h == nil {
		return 0
	}
	return h.max
}

// Damage reduces health and reports whether this hit was lethal.
func (h *HealthPool) Damage(amount float64) bool {
	if h == nil || amount <= 0 || h.current <= 0 {
		return false
	}
	h.current -= amount
	if h.current > 0 {
		return false
	}
	h.current = 0
	if h.onDeath != nil {
		h.onDeath()
	}
	return true
}

// Deplete empties the pool without firing the death notification. Used when
// an actor leaves the world rather than dying in it.
func (h *HealthPool) Deplete() {
	if h != nil {
		h.current = 0
	}
}

var _ behavior.Stats = (*HealthPool)(nil)
