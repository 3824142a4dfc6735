package sim

import (
	"emberwatch/server/internal/behavior"
)

// Player is a hostile actor steered from outside the simulation, normally by
// a websocket client. It satisfies behavior.Target so agents can perceive and
// strike it.
type Player struct {
	id     string
	pos    behavior.Vec2
	health *HealthPool
	speed  float64

	// intent is the normalized movement direction applied each tick. Zero
	// means hold position.
	intent behavior.Vec2
}

func (p *Player) ID() string { return p.id }

func (p *Player) Position() behavior.Vec2 { return p.pos }

func (p *Player) Alive() bool { return p.health.Alive() }

func (p *Player) ApplyDamage(amount float64) {
	p.health.Damage(amount)
}

var _ behavior.Target = (*Player)(nil)

// Agent bundles one sentry's collaborators around its behavior controller.
type Agent struct {
	id        string
	archetype string
	mover     *Mover
	health    *HealthPool
	ctrl      *behavior.Controller
}

func (a *Agent) ID() string { return a.id }

func (a *Agent) Controller() *behavior.Controller { return a.ctrl }

func (a *Agent) Position() behavior.Vec2 { return a.mover.Position() }
