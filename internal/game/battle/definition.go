package battle

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/book"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// yamlBattleFile is the top-level YAML structure of a battle file.
type yamlBattleFile struct {
	Battle yamlBattle `yaml:"battle"`
}

type yamlBattle struct {
	ID               string          `yaml:"id"`
	Location         book.Location   `yaml:"location"`
	View             yamlView        `yaml:"view"`
	ObstacleLifetime int             `yaml:"obstacle_lifetime"`
	Layout           []string        `yaml:"layout"`
	Conditions       []string        `yaml:"conditions"`
	Loot             []string        `yaml:"loot"`
	InCombatTarget   string          `yaml:"in_combat_target"`
	Survivors        yamlSurvivors   `yaml:"survivors"`
	ExcludedClasses  []string        `yaml:"excluded_classes"`
	Opponents        []yamlCombatant `yaml:"opponents"`
}

type yamlView struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type yamlSurvivors struct {
	Source      book.Location `yaml:"source"`
	Destination book.Location `yaml:"destination"`
	Limit       int           `yaml:"limit"`
	Delay       int           `yaml:"delay"`
}

// yamlCombatant is the YAML form shared by opponents and party members.
type yamlCombatant struct {
	Class       string         `yaml:"class"`
	Name        string         `yaml:"name"`
	Health      int            `yaml:"health"`
	MaxHealth   int            `yaml:"max_health"`
	Skills      []string       `yaml:"skills"`
	Weapons     []string       `yaml:"weapons"`
	Ranged      bool           `yaml:"ranged"`
	Spellcaster bool           `yaml:"spellcaster"`
	Items       []string       `yaml:"items"`
	Target      string         `yaml:"target"`
	Status      map[string]int `yaml:"status"`
}

// Definition is a validated battle template. Each NewSession call builds a
// fresh map and opponent roster from it.
type Definition struct {
	ID               string
	Location         book.Location
	ViewWidth        int
	ViewHeight       int
	ObstacleLifetime int
	Layout           []string
	Conditions       Conditions
	Loot             []string
	InCombatTarget   string
	SurvivorSource   book.Location
	Destination      book.Location
	SurvivorLimit    int
	SurvivorDelay    int
	ExcludedClasses  []string
	Opponents        combat.Roster
}

// Load reads and validates a battle definition file.
//
// Precondition: path must name a readable YAML battle file.
// Postcondition: Returns a validated Definition or a non-nil error.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading battle file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a battle definition from YAML bytes.
// Unknown fields are rejected.
func LoadBytes(data []byte) (*Definition, error) {
	var file yamlBattleFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, fmt.Errorf("parsing battle YAML: %w", err)
	}
	def, err := convertYAMLBattle(file.Battle)
	if err != nil {
		return nil, fmt.Errorf("validating battle %q: %w", file.Battle.ID, err)
	}
	return def, nil
}

// LoadDir loads every *.yaml battle file in dir keyed by battle id.
//
// Postcondition: Returns an error on the first invalid file or duplicate id.
func LoadDir(dir string) (map[string]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading battle directory %s: %w", dir, err)
	}
	defs := make(map[string]*Definition)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		def, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading battle from %s: %w", name, err)
		}
		if _, dup := defs[def.ID]; dup {
			return nil, fmt.Errorf("duplicate battle id %q in %s", def.ID, name)
		}
		defs[def.ID] = def
	}
	return defs, nil
}

func decodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func convertYAMLBattle(yb yamlBattle) (*Definition, error) {
	var errs []error
	if yb.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	// Parse once to validate the layout.
	if _, err := grid.ParseLayout(yb.Layout, yb.ObstacleLifetime); err != nil {
		errs = append(errs, err)
	}
	if yb.View.Width < 0 || yb.View.Height < 0 {
		errs = append(errs, errors.New("view size must be non-negative"))
	}
	if yb.Survivors.Delay < 0 {
		errs = append(errs, errors.New("survivors.delay must be non-negative"))
	}
	conds, err := ParseConditions(yb.Conditions)
	if err != nil {
		errs = append(errs, err)
	}
	opponents := make(combat.Roster, 0, len(yb.Opponents))
	for i, yc := range yb.Opponents {
		c, err := convertYAMLCombatant(yc, combat.SideOpponent)
		if err != nil {
			errs = append(errs, fmt.Errorf("opponent %d: %w", i, err))
			continue
		}
		opponents = append(opponents, c)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Definition{
		ID:               yb.ID,
		Location:         yb.Location,
		ViewWidth:        yb.View.Width,
		ViewHeight:       yb.View.Height,
		ObstacleLifetime: yb.ObstacleLifetime,
		Layout:           append([]string(nil), yb.Layout...),
		Conditions:       conds,
		Loot:             append([]string(nil), yb.Loot...),
		InCombatTarget:   yb.InCombatTarget,
		SurvivorSource:   yb.Survivors.Source,
		Destination:      yb.Survivors.Destination,
		SurvivorLimit:    yb.Survivors.Limit,
		SurvivorDelay:    yb.Survivors.Delay,
		ExcludedClasses:  append([]string(nil), yb.ExcludedClasses...),
		Opponents:        opponents,
	}, nil
}

func convertYAMLCombatant(yc yamlCombatant, side combat.Side) (combat.Combatant, error) {
	if yc.Class == "" {
		return combat.Combatant{}, errors.New("class must not be empty")
	}
	if yc.Health < 0 || yc.MaxHealth < 0 {
		return combat.Combatant{}, errors.New("health must be non-negative")
	}
	target, ok := combat.ParseTargetClass(yc.Target)
	if !ok {
		return combat.Combatant{}, fmt.Errorf("unknown target class %q", yc.Target)
	}
	c := combat.Combatant{
		Class:       yc.Class,
		Name:        yc.Name,
		Side:        side,
		Health:      yc.Health,
		MaxHealth:   yc.MaxHealth,
		Ranged:      yc.Ranged,
		Spellcaster: yc.Spellcaster,
		Items:       append([]string(nil), yc.Items...),
		Target:      target,
	}
	if c.Name == "" {
		c.Name = c.Class
	}
	if c.MaxHealth == 0 {
		c.MaxHealth = c.Health
	}
	for _, s := range yc.Skills {
		c.Skills = append(c.Skills, combat.Skill(s))
	}
	for _, w := range yc.Weapons {
		c.Weapons = append(c.Weapons, combat.Weapon(w))
	}
	for name, rounds := range yc.Status {
		f := status.Flag(name)
		if !f.IsKnown() {
			return combat.Combatant{}, fmt.Errorf("unknown status %q", name)
		}
		if rounds < 0 {
			return combat.Combatant{}, fmt.Errorf("status %q: rounds must be non-negative", name)
		}
		c.Status.Apply(f, rounds)
	}
	return c, nil
}

// NewSession builds a fresh battle session for party from d.
//
// Precondition: party must not be nil.
// Postcondition: the session owns a new map and opponent roster; party is
// shared, not copied.
func (d *Definition) NewSession(party *Party, tracer *Tracer) (*Session, error) {
	m, err := grid.ParseLayout(d.Layout, d.ObstacleLifetime)
	if err != nil {
		return nil, fmt.Errorf("building map for battle %q: %w", d.ID, err)
	}
	if d.ViewWidth > 0 && d.ViewHeight > 0 {
		m.SetView(d.ViewWidth, d.ViewHeight)
	}
	if tracer == nil {
		tracer = NopTracer()
	}
	return &Session{
		ID:              uuid.New(),
		Name:            d.ID,
		Map:             m,
		Party:           party,
		Opponents:       &Opponents{Members: d.Opponents.Clone(), Location: d.Location},
		Conditions:      cloneConditions(d.Conditions),
		Loot:            append([]string(nil), d.Loot...),
		InCombatTarget:  d.InCombatTarget,
		SurvivorLimit:   d.SurvivorLimit,
		SurvivorDelay:   d.SurvivorDelay,
		SurvivorSource:  d.SurvivorSource,
		Destination:     d.Destination,
		ExcludedClasses: append([]string(nil), d.ExcludedClasses...),
		Tracer:          tracer,
	}, nil
}

func cloneConditions(cs Conditions) Conditions {
	out := make(Conditions, len(cs))
	for c, on := range cs {
		out[c] = on
	}
	return out
}

type yamlPartyFile struct {
	Party yamlParty `yaml:"party"`
}

type yamlParty struct {
	Location   book.Location   `yaml:"location"`
	LastBattle book.Location   `yaml:"last_battle"`
	Members    []yamlCombatant `yaml:"members"`
	Survivors  []yamlSurvivor  `yaml:"survivors"`
}

type yamlSurvivor struct {
	Location  book.Location `yaml:"location"`
	Combatant yamlCombatant `yaml:"combatant"`
}

// LoadParty reads a party fixture file.
func LoadParty(path string) (*Party, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading party file %s: %w", path, err)
	}
	return LoadPartyBytes(data)
}

// LoadPartyBytes parses a party fixture from YAML bytes. Party member classes
// must be unique.
func LoadPartyBytes(data []byte) (*Party, error) {
	var file yamlPartyFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, fmt.Errorf("parsing party YAML: %w", err)
	}
	yp := file.Party
	p := &Party{Location: yp.Location, LastBattle: yp.LastBattle}
	seen := make(map[string]bool, len(yp.Members))
	for i, ym := range yp.Members {
		c, err := convertYAMLCombatant(ym, combat.SidePlayer)
		if err != nil {
			return nil, fmt.Errorf("party member %d: %w", i, err)
		}
		if seen[c.Class] {
			return nil, fmt.Errorf("party member %d: duplicate class %q", i, c.Class)
		}
		seen[c.Class] = true
		p.Members = append(p.Members, c)
	}
	for i, ys := range yp.Survivors {
		c, err := convertYAMLCombatant(ys.Combatant, combat.SideOpponent)
		if err != nil {
			return nil, fmt.Errorf("survivor %d: %w", i, err)
		}
		p.Survivors = append(p.Survivors, combat.Survivor{Combatant: c, Location: ys.Location})
	}
	return p, nil
}
