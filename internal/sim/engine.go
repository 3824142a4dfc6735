// Package sim hosts the authoritative tick engine: actor registries, the
// kinematic movers backing each agent, and the per-tick decision pass that
// drives every behavior controller.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"emberwatch/server/internal/behavior"
	"emberwatch/server/internal/telemetry"
	"emberwatch/server/internal/world"
	"emberwatch/server/logging"
	"emberwatch/server/logging/behaviorlog"
)

const (
	defaultPlayerSpeed  = 4.0
	defaultPlayerHealth = 100.0
	defaultStrikeDamage = 15.0
	defaultStrikeRange  = 2.0
)

type Config struct {
	Map       *world.Map
	Seed      int64
	Library   *behavior.Library
	Publisher logging.Publisher
	Counters  *telemetry.Counters

	PlayerSpeed  float64
	PlayerHealth float64
	StrikeDamage float64
	StrikeRange  float64
}

// Engine owns all simulation state. Every mutation and query goes through the
// tick lock, which also guarantees the single-threaded ownership each
// behavior controller requires.
type Engine struct {
	mu sync.Mutex

	worldMap  *world.Map
	rng       *rand.Rand
	library   *behavior.Library
	publisher logging.Publisher
	counters  *telemetry.Counters

	players     map[string]*Player
	playerOrder []string
	agents      map[string]*Agent
	agentOrder  []string

	tick uint64

	playerSpeed  float64
	playerHealth float64
	strikeDamage float64
	strikeRange  float64
}

func NewEngine(cfg Config) *Engine {
	if cfg.Map == nil {
		cfg.Map = world.NewMap(world.DefaultWidth, world.DefaultHeight, nil)
	}
	if cfg.Library == nil {
		cfg.Library = behavior.GlobalLibrary
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Counters == nil {
		cfg.Counters = telemetry.NewCounters()
	}
	if cfg.PlayerSpeed <= 0 {
		cfg.PlayerSpeed = defaultPlayerSpeed
	}
	if cfg.PlayerHealth <= 0 {
		cfg.PlayerHealth = defaultPlayerHealth
	}
	if cfg.StrikeDamage <= 0 {
		cfg.StrikeDamage = defaultStrikeDamage
	}
	if cfg.StrikeRange <= 0 {
		cfg.StrikeRange = defaultStrikeRange
	}
	return &Engine{
		worldMap:     cfg.Map,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		library:      cfg.Library,
		publisher:    cfg.Publisher,
		counters:     cfg.Counters,
		players:      make(map[string]*Player),
		agents:       make(map[string]*Agent),
		playerSpeed:  cfg.PlayerSpeed,
		playerHealth: cfg.PlayerHealth,
		strikeDamage: cfg.StrikeDamage,
		strikeRange:  cfg.StrikeRange,
	}
}

// SpawnPlayer adds a hostile actor at the given position and returns its ID.
func (e *Engine) SpawnPlayer(pos behavior.Vec2) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos = e.worldMap.ClampToBounds(pos)
	if !e.worldMap.Reachable(pos) {
		return "", fmt.Errorf("spawn player: position %.1f,%.1f is blocked", pos.X, pos.Y)
	}
	id := uuid.NewString()
	player := &Player{
		id:    id,
		pos:   pos,
		speed: e.playerSpeed,
	}
	player.health = NewHealthPool(e.playerHealth, func() {
		e.counters.RecordDeath()
		behaviorlog.Death(context.Background(), e.publisher, e.tick,
			logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer})
	})
	e.players[id] = player
	e.playerOrder = append(e.playerOrder, id)
	behaviorlog.Spawn(context.Background(), e.publisher, e.tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}, "", pos.X, pos.Y)
	return id, nil
}

// RemovePlayer drops a player from the world, e.g. when its client leaves.
func (e *Engine) RemovePlayer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	player, ok := e.players[id]
	if !ok {
		return
	}
	delete(e.players, id)
	for i, pid := range e.playerOrder {
		if pid == id {
			e.playerOrder = append(e.playerOrder[:i], e.playerOrder[i+1:]...)
			break
		}
	}
	// Agents may still hold the reference as their target. Depleting the
	// pool makes it read as dead so they disengage normally, without a
	// death notification for an actor that merely left.
	player.health.Deplete()
}

// SpawnAgent creates a sentry of the named archetype at home. When patrol
// points are given the agent walks them in order; otherwise it wanders near
// home per its archetype.
func (e *Engine) SpawnAgent(archetypeName string, home behavior.Vec2, patrol []behavior.Vec2) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	arch, ok := e.library.ArchetypeByName(archetypeName)
	if !ok {
		return "", fmt.Errorf("spawn agent: unknown archetype %q", archetypeName)
	}
	home = e.worldMap.ClampToBounds(home)
	if !e.worldMap.Reachable(home) {
		return "", fmt.Errorf("spawn agent: home %.1f,%.1f is blocked", home.X, home.Y)
	}

	id := uuid.NewString()
	agent := &Agent{id: id, archetype: arch.Name}
	agent.mover = NewMover(e.worldMap, home, arch.MoveSpeed, arch.FastMultiplier)
	agent.health = NewHealthPool(arch.MaxHealth, func() {
		e.counters.RecordDeath()
		behaviorlog.Death(context.Background(), e.publisher, e.tick,
			logging.EntityRef{ID: id, Kind: logging.EntityKindAgent})
	})
	agent.ctrl = behavior.NewController(arch.Config, behavior.Collaborators{
		Locomotion: agent.mover,
		Stats:      agent.health,
		Animation:  &animBridge{engine: e, agent: agent},
		Audio:      &audioBridge{engine: e, agent: agent},
		World:      &worldAdapter{engine: e, self: agent},
		Events:     &eventsBridge{engine: e, agent: agent},
	}, rand.New(rand.NewSource(e.rng.Int63())))
	agent.mover.onArrive = agent.ctrl.OnReachedDestination
	if len(patrol) > 0 {
		agent.ctrl.SetPatrolPoints(patrol)
	}

	e.agents[id] = agent
	e.agentOrder = append(e.agentOrder, id)
	behaviorlog.Spawn(context.Background(), e.publisher, e.tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindAgent}, arch.Name, home.X, home.Y)
	return id, nil
}

// ApplyMoveIntent sets a player's movement direction. The zero vector stops
// the player.
func (e *Engine) ApplyMoveIntent(playerID string, dir behavior.Vec2) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	player, ok := e.players[playerID]
	if !ok {
		return fmt.Errorf("move intent: unknown player %q", playerID)
	}
	if dir.Length() > 0 {
		dir = dir.Normalized()
	}
	player.intent = dir
	return nil
}

// Strike performs a melee swing for the player against the closest agent in
// range. The agent's controller is notified so it can retaliate.
func (e *Engine) Strike(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	player, ok := e.players[playerID]
	if !ok {
		return fmt.Errorf("strike: unknown player %q", playerID)
	}
	if !player.Alive() {
		return fmt.Errorf("strike: player %q is dead", playerID)
	}

	var closest *Agent
	closestDist := e.strikeRange
	for _, id := range e.agentOrder {
		agent := e.agents[id]
		if !agent.health.Alive() {
			continue
		}
		d := behavior.Dist(player.pos, agent.Position())
		if d <= closestDist {
			closest = agent
			closestDist = d
		}
	}
	if closest == nil {
		return nil
	}
	closest.health.Damage(e.strikeDamage)
	closest.ctrl.OnTakeDamage(e.strikeDamage, player.pos)
	return nil
}

// Step advances the world by dt seconds: player movement, mover integration,
// then one decision pass per agent.
func (e *Engine) Step(dt float64) {
	start := time.Now()
	e.mu.Lock()
	e.tick++

	for _, id := range e.playerOrder {
		e.stepPlayer(e.players[id], dt)
	}
	for _, id := range e.agentOrder {
		e.agents[id].mover.Update(dt)
	}
	for _, id := range e.agentOrder {
		e.agents[id].ctrl.Advance(dt)
	}

	e.mu.Unlock()
	e.counters.RecordTick(time.Since(start))
}

func (e *Engine) stepPlayer(p *Player, dt float64) {
	if !p.Alive() || p.intent.Length() == 0 {
		return
	}
	next := p.pos.Add(p.intent.Scale(p.speed * dt))
	next = e.worldMap.ClampToBounds(next)
	if !e.worldMap.Reachable(next) {
		return
	}
	p.pos = next
}

// Run drives Step at the given tick rate until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, tickRate int) error {
	if tickRate <= 0 {
		tickRate = 15
	}
	interval := time.Second / time.Duration(tickRate)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Step(dt)
		}
	}
}

func (e *Engine) nearestPlayer(at behavior.Vec2, radius float64) behavior.Target {
	var closest *Player
	closestDist := radius
	for _, id := range e.playerOrder {
		player := e.players[id]
		if !player.Alive() {
			continue
		}
		d := behavior.Dist(at, player.pos)
		if closest == nil && radius < 0 {
			closest = player
			closestDist = d
			continue
		}
		if d <= closestDist {
			closest = player
			closestDist = d
		}
	}
	if closest == nil {
		return nil
	}
	return closest
}

// Tick returns the current tick number.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// AgentController exposes an agent's controller for direct inspection. It is
// only safe to use while the engine is not stepping.
func (e *Engine) AgentController(id string) *behavior.Controller {
	e.mu.Lock()
	defer e.mu.Unlock()
	agent, ok := e.agents[id]
	if !ok {
		return nil
	}
	return agent.ctrl
}
