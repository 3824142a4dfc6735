package behavior

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed archetypes/*.json
var embeddedArchetypes embed.FS

// GlobalLibrary provides the default archetypes bundled with the server.
var GlobalLibrary = MustLoadLibrary()

// Archetype is one named agent parameter set: the behavior Config plus the
// locomotion and vitals numbers the host needs to build the collaborators.
type Archetype struct {
	Name           string
	Config         Config
	MoveSpeed      float64
	FastMultiplier float64
	MaxHealth      float64
}

// Library stores archetypes indexed by lowercase name.
type Library struct {
	byName map[string]Archetype
}

// authoringArchetype mirrors the JSON authoring format.
type authoringArchetype struct {
	Name           string  `json:"name"`
	DetectionRange float64 `json:"detectionRange"`
	FieldOfView    float64 `json:"fieldOfView"`
	AttackRange    float64 `json:"attackRange"`
	AttackCooldown float64 `json:"attackCooldown"`
	CombatTimeout  float64 `json:"combatTimeout"`
	ReturnDistance float64 `json:"returnDistance"`
	Flee           struct {
		Enabled         bool    `json:"enabled"`
		HealthThreshold float64 `json:"healthThreshold"`
	} `json:"flee"`
	Help struct {
		Enabled bool    `json:"enabled"`
		Range   float64 `json:"range"`
	} `json:"help"`
	Patrol struct {
		Enabled         bool    `json:"enabled"`
		WaitTime        float64 `json:"waitTime"`
		Range           float64 `json:"range"`
		IdleAfterReturn bool    `json:"idleAfterReturn"`
	} `json:"patrol"`
	Combat struct {
		BaseDamage     float64 `json:"baseDamage"`
		CriticalChance float64 `json:"criticalChance"`
		CriticalDamage float64 `json:"criticalDamage"`
	} `json:"combat"`
	MoveSpeed      float64 `json:"moveSpeed"`
	FastMultiplier float64 `json:"fastMultiplier"`
	MaxHealth      float64 `json:"maxHealth"`
}

// MustLoadLibrary loads the embedded archetypes or panics on failure.
func MustLoadLibrary() *Library {
	lib, err := LoadLibrary()
	if err != nil {
		panic(fmt.Errorf("behavior: load library: %w", err))
	}
	return lib
}

// LoadLibrary loads and validates the embedded archetype files.
func LoadLibrary() (*Library, error) {
	lib := &Library{byName: make(map[string]Archetype)}

	entries, err := fs.ReadDir(embeddedArchetypes, "archetypes")
	if err != nil {
		return nil, fmt.Errorf("behavior: read archetypes: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(embeddedArchetypes, "archetypes/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("behavior: read %q: %w", entry.Name(), err)
		}
		var authoring authoringArchetype
		if err := json.Unmarshal(data, &authoring); err != nil {
			return nil, fmt.Errorf("behavior: decode %q: %w", entry.Name(), err)
		}
		archetype, err := compileArchetype(authoring)
		if err != nil {
			return nil, fmt.Errorf("behavior: compile %q: %w", entry.Name(), err)
		}
		lib.byName[archetype.Name] = archetype
	}

	if len(lib.byName) == 0 {
		return nil, fmt.Errorf("behavior: no archetypes embedded")
	}
	return lib, nil
}

func compileArchetype(authoring authoringArchetype) (Archetype, error) {
	name := strings.TrimSpace(strings.ToLower(authoring.Name))
	if name == "" {
		return Archetype{}, fmt.Errorf("missing name")
	}
	if authoring.DetectionRange <= 0 {
		return Archetype{}, fmt.Errorf("detectionRange must be positive")
	}
	if authoring.FieldOfView <= 0 || authoring.FieldOfView > 360 {
		return Archetype{}, fmt.Errorf("fieldOfView must be in (0,360]")
	}
	if authoring.AttackRange <= 0 {
		return Archetype{}, fmt.Errorf("attackRange must be positive")
	}
	if authoring.Flee.HealthThreshold < 0 || authoring.Flee.HealthThreshold > 1 {
		return Archetype{}, fmt.Errorf("flee.healthThreshold must be in [0,1]")
	}
	if authoring.Combat.CriticalChance < 0 || authoring.Combat.CriticalChance >= 100 {
		return Archetype{}, fmt.Errorf("combat.criticalChance must be in [0,100)")
	}
	if authoring.MaxHealth <= 0 {
		return Archetype{}, fmt.Errorf("maxHealth must be positive")
	}
	if authoring.MoveSpeed <= 0 {
		return Archetype{}, fmt.Errorf("moveSpeed must be positive")
	}

	fastMultiplier := authoring.FastMultiplier
	if fastMultiplier < 1 {
		fastMultiplier = 1
	}

	return Archetype{
		Name: name,
		Config: Config{
			DetectionRange:      authoring.DetectionRange,
			FieldOfView:         authoring.FieldOfView,
			AttackRange:         authoring.AttackRange,
			AttackCooldown:      authoring.AttackCooldown,
			CombatTimeout:       authoring.CombatTimeout,
			ReturnDistance:      authoring.ReturnDistance,
			FleeEnabled:         authoring.Flee.Enabled,
			FleeHealthThreshold: authoring.Flee.HealthThreshold,
			HelpEnabled:         authoring.Help.Enabled,
			HelpCallRange:       authoring.Help.Range,
			PatrolEnabled:       authoring.Patrol.Enabled,
			PatrolWaitTime:      authoring.Patrol.WaitTime,
			PatrolRange:         authoring.Patrol.Range,
			IdleAfterReturn:     authoring.Patrol.IdleAfterReturn,
			BaseDamage:          authoring.Combat.BaseDamage,
			CriticalChance:      authoring.Combat.CriticalChance,
			CriticalDamage:      authoring.Combat.CriticalDamage,
		},
		MoveSpeed:      authoring.MoveSpeed,
		FastMultiplier: fastMultiplier,
		MaxHealth:      authoring.MaxHealth,
	}, nil
}

// ArchetypeByName resolves a named archetype; ok is false for unknown names.
func (l *Library) ArchetypeByName(name string) (Archetype, bool) {
	if l == nil {
		return Archetype{}, false
	}
	archetype, ok := l.byName[strings.TrimSpace(strings.ToLower(name))]
	return archetype, ok
}

// Names lists the available archetype names in sorted order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.byName))
	for name := range l.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
