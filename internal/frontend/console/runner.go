package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dungeon"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/placement"
	"github.com/cory-johannsen/skirmish/internal/game/tactics"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// ErrUnknownBattle is returned when the configured battle id has no definition.
var ErrUnknownBattle = errors.New("unknown battle")

// SurvivorStore persists a party's survivor list between battles.
type SurvivorStore interface {
	Load(ctx context.Context, partyID string) ([]combat.Survivor, error)
	Save(ctx context.Context, partyID string, survivors []combat.Survivor) error
}

// Result summarizes a finished battle.
type Result struct {
	SessionID string
	Rounds    int
	Victory   bool
	Withdrawn bool
	Survivors int
}

// Runner plays configured battles through a Terminal. One Runner serves any
// number of concurrent sessions.
type Runner struct {
	cfg      config.BattleConfig
	content  *Content
	store    SurvivorStore
	sessions *battle.Manager
	logger   *zap.Logger
}

// NewRunner creates a Runner. store may be nil to keep survivors in the
// party fixture only.
//
// Precondition: content, sessions and logger must be non-nil.
func NewRunner(cfg config.BattleConfig, content *Content, store SurvivorStore, sessions *battle.Manager, logger *zap.Logger) *Runner {
	return &Runner{cfg: cfg, content: content, store: store, sessions: sessions, logger: logger}
}

// play is the per-session state of one battle.
type play struct {
	*Runner
	s      *battle.Session
	term   *Terminal
	fe     tactics.Frontend
	level  *dungeon.Level
	minds  *ai.Registry
	log    *zap.Logger
	result Result
}

// Play runs the configured battle to completion.
//
// Postcondition: on a nil error the party's survivor list was saved; a
// placement failure is returned as a placement.SetupError.
func (r *Runner) Play(ctx context.Context, term *Terminal) (Result, error) {
	start := time.Now()
	def, ok := r.content.Battles[r.cfg.Battle]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownBattle, r.cfg.Battle)
	}

	party := r.content.Party.Clone()
	if r.store != nil {
		survivors, err := r.store.Load(ctx, r.cfg.PartyID)
		if err != nil {
			return Result{}, fmt.Errorf("loading survivors: %w", err)
		}
		party.Survivors = survivors
	}

	tracer := battle.NopTracer()
	if r.cfg.Trace {
		tracer = battle.NewTracer(r.logger)
	}
	s, err := def.NewSession(party, tracer)
	if err != nil {
		return Result{}, fmt.Errorf("creating session: %w", err)
	}
	s.Map.SetView(min(s.Map.View.Width, r.cfg.ViewWidth), min(s.Map.View.Height, r.cfg.ViewHeight))
	if err := r.sessions.Start(s); err != nil {
		return Result{}, err
	}
	defer func() { _ = r.sessions.End(s.ID) }()

	p := &play{
		Runner: r,
		s:      s,
		term:   term,
		fe:     term.Frontend(),
		log:    observability.ForSession(r.logger, s.ID, s.Name),
		result: Result{SessionID: s.ID.String()},
	}
	p.log.Info("battle started", zap.Int("active_sessions", r.sessions.Count()))

	scripts, err := p.loadScripts(ctx)
	if err != nil {
		return Result{}, err
	}
	defer scripts.Close()
	if p.minds, err = p.loadMinds(scripts); err != nil {
		return Result{}, err
	}
	if p.level, err = r.content.Level(s.Name); err != nil {
		return Result{}, fmt.Errorf("building level: %w", err)
	}
	if p.level != nil {
		p.level.SetHook(scripts.TriggerHook(s.Name))
	}

	if err := term.Message(ctx, "Battle at "+r.content.Title(s.Location())); err != nil {
		return Result{}, err
	}
	if s.Conditions.Has(battle.Tactics) {
		if err := tactics.RunPlacement(ctx, s, p.fe, r.cfg.ScrollStep); err != nil {
			return Result{}, err
		}
	}
	if err := placement.Setup(s); err != nil {
		p.log.Error("battle setup failed", zap.Error(err))
		_ = term.Message(ctx, "This battle cannot be fought: "+err.Error())
		return Result{}, err
	}

	if err := p.fight(ctx); err != nil {
		return p.result, err
	}

	p.result.Rounds = s.Round
	p.result.Survivors = s.RecordSurvivors()
	if r.store != nil {
		if err := r.store.Save(ctx, r.cfg.PartyID, s.Party.Survivors); err != nil {
			return p.result, fmt.Errorf("saving survivors: %w", err)
		}
	}
	p.report(ctx)
	p.log.Info("battle finished",
		zap.Bool("victory", p.result.Victory),
		zap.Int("rounds", p.result.Rounds),
		zap.Int("survivors", p.result.Survivors),
		zap.Duration("elapsed", time.Since(start)),
	)
	return p.result, nil
}

// loadScripts builds the session's Lua VMs from the global and per-battle
// script directories that exist.
func (p *play) loadScripts(ctx context.Context) (*scripting.Manager, error) {
	m := scripting.NewManager(p.log)
	m.Message = func(_, text string) { _ = p.term.Message(ctx, text) }
	dirs := []struct{ scope, dir string }{
		{scripting.GlobalScope, filepath.Join(p.content.ScriptDir, GlobalScriptsDir)},
		{p.s.Name, filepath.Join(p.content.ScriptDir, p.s.Name)},
	}
	for _, d := range dirs {
		if _, err := os.Stat(d.dir); err != nil {
			continue
		}
		if err := m.Load(d.scope, d.dir, p.cfg.ScriptLimit); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// loadMinds registers every ai domain with preconditions evaluated in the
// battle's script scope.
func (p *play) loadMinds(scripts *scripting.Manager) (*ai.Registry, error) {
	reg := ai.NewRegistry()
	for _, d := range p.content.Domains {
		if err := reg.Register(d, scripts, p.s.Name); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// fight alternates player and opponent turns until one side leaves the
// field, the in-combat target is lost, a victory trigger fires or the
// player withdraws.
func (p *play) fight(ctx context.Context) error {
	s := p.s
	for {
		queue := combat.NewTurnQueue(s.Party.Members, s.Opponents.Members)
		for _, turn := range queue.Turns() {
			if !p.present(turn) {
				continue
			}
			var done bool
			var err error
			if turn.Side == combat.SidePlayer {
				done, err = p.playerTurn(ctx, turn.ID)
			} else {
				err = p.opponentTurn(ctx, queue, turn)
			}
			if err != nil {
				return err
			}
			if done || p.over(ctx) {
				return nil
			}
		}
		if err := p.upkeep(ctx); err != nil {
			return err
		}
	}
}

// present reports whether the combatant of turn is alive, not away and on the map.
func (p *play) present(turn combat.Turn) bool {
	c, ok := p.s.Roster(turn.Side).Get(turn.ID)
	if !ok || !c.IsAlive() || c.IsAway() {
		return false
	}
	return !p.s.Map.Find(turn.Side.Kind(), turn.ID).IsNone()
}

func (p *play) over(ctx context.Context) bool {
	s := p.s
	switch {
	case p.result.Victory:
		return true
	case s.Map.Count(grid.Enemy) == 0:
		p.result.Victory = true
		_ = p.term.Message(ctx, "No opponents remain on the field.")
		return true
	case s.Map.Count(grid.Player) == 0:
		_ = p.term.Message(ctx, "Your party has left the field.")
		return true
	case s.InCombatTarget != "":
		if _, ok := s.Target(); !ok {
			_ = p.term.Message(ctx, "The one this battle was fought for is gone.")
			return true
		}
	}
	return false
}

// playerTurn asks for an action until one is carried out. It returns true
// when the player withdraws from the battle.
func (p *play) playerTurn(ctx context.Context, id int) (bool, error) {
	s := p.s
	c := &s.Party.Members[id]
	for {
		action, err := tactics.ChooseAction(ctx, s, combat.SidePlayer, id, false, p.fe)
		if err != nil {
			return false, err
		}
		var acted bool
		switch action {
		case combat.ActionBack:
			yes, err := p.term.Confirm(ctx, "Withdraw from the battle?")
			if err != nil || yes {
				p.result.Withdrawn = yes
				return yes, err
			}
		case combat.ActionDefend:
			acted, err = true, p.term.Message(ctx, c.Name+" takes a defensive stance.")
		case combat.ActionMove:
			acted, err = p.move(ctx, id)
		case combat.ActionFight, combat.ActionSignature:
			acted, err = p.attack(ctx, id, action, false)
		case combat.ActionShoot, combat.ActionSpells:
			acted, err = p.attack(ctx, id, action, true)
		case combat.ActionFlee:
			s.Map.Remove(grid.Player, id)
			acted, err = true, p.term.Message(ctx, c.Name+" flees the battle.")
		case combat.ActionItems:
			acted, err = true, p.term.Message(ctx, c.Name+" carries: "+strings.Join(c.Items, ", "))
		}
		if err != nil {
			return false, err
		}
		if acted {
			return false, nil
		}
	}
}

func (p *play) move(ctx context.Context, id int) (bool, error) {
	s := p.s
	from := s.Map.Find(grid.Player, id)
	to, err := tactics.RunTarget(ctx, s, tactics.ModeCell, p.fe, p.cfg.ScrollStep)
	if err != nil || to.IsNone() {
		return false, err
	}
	if from.Distance(to) != 1 {
		return false, p.term.Message(ctx, "You can only step onto a free neighbouring square.")
	}
	s.Map.Put(to, grid.Player, id)
	return true, p.visit(ctx, to)
}

// visit collects loot at the cell a party member just entered and fires the
// level triggers there.
func (p *play) visit(ctx context.Context, at grid.Point) error {
	if p.level == nil {
		return nil
	}
	id := p.s.Map.At(at).ID
	c := &p.s.Party.Members[id]
	for _, item := range p.level.Collect(at) {
		c.Items = append(c.Items, item.Name)
		if err := p.term.Message(ctx, fmt.Sprintf("%s picks up %s.", c.Name, item.Name)); err != nil {
			return err
		}
	}
	for _, f := range p.level.Evaluate(at, p.s.Party.Members) {
		if f.Trigger.Message != "" {
			if err := p.term.Message(ctx, f.Trigger.Message); err != nil {
				return err
			}
		}
		if f.Trigger.Kind == dungeon.TriggerVictory {
			p.result.Victory = true
		}
	}
	return nil
}

func (p *play) attack(ctx context.Context, id int, action combat.ActionType, ranged bool) (bool, error) {
	s := p.s
	at, err := tactics.RunTarget(ctx, s, tactics.ModeCombatant(combat.SideOpponent, ranged), p.fe, p.cfg.ScrollStep)
	if err != nil || at.IsNone() {
		return false, err
	}
	if !ranged && !s.Map.AdjacentTo(at, grid.Player, id) {
		return false, p.term.Message(ctx, "That target is out of reach.")
	}
	target, _ := s.Opponents.Members.Get(s.Map.At(at).ID)
	attacker := s.Party.Members[id]
	s.Tracer.Note("attack declared",
		zap.String("attacker", attacker.Name),
		zap.String("target", target.Name),
		zap.Stringer("action", action),
	)
	return true, p.term.Message(ctx, fmt.Sprintf("%s uses %s against %s.", attacker.Name, action, target.Name))
}

// opponentTurn announces what an opponent intends to do. Resolving the
// action belongs to the combat rules, not this runner. Opponents without a
// planner just show their options and whom they face next.
func (p *play) opponentTurn(ctx context.Context, queue *combat.TurnQueue, turn combat.Turn) error {
	s := p.s
	c := s.Opponents.Members[turn.ID]
	if planner, ok := p.minds.ForClass(c.Class); ok {
		in, ok := planner.Decide(ai.BuildWorldState(s, combat.SideOpponent, turn.ID))
		if ok {
			return p.announce(ctx, c.Name, planner.Domain().ID, in)
		}
	}
	actions := s.Actions(combat.SideOpponent, turn.ID, false)
	foe, ok := queue.NextTarget(turn, combat.SidePlayer, p.present)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("%s (%s) eyes %s.", c.Name, strings.Join(combat.ActionNames(actions), ", "), s.Party.Members[foe.ID].Name)
	return p.term.Message(ctx, msg)
}

func (p *play) announce(ctx context.Context, name, domain string, in ai.Intent) error {
	fields := []zap.Field{zap.String("opponent", name), zap.String("domain", domain), zap.Stringer("action", in.Action)}
	msg := fmt.Sprintf("%s prepares to %s.", name, in.Action)
	switch {
	case in.Target != nil && in.Action == combat.ActionMove:
		fields = append(fields, zap.String("target", in.Target.Name))
		msg = fmt.Sprintf("%s advances on %s.", name, in.Target.Name)
	case in.Target != nil:
		fields = append(fields, zap.String("target", in.Target.Name))
		msg = fmt.Sprintf("%s prepares to %s %s.", name, in.Action, in.Target.Name)
	}
	p.s.Tracer.Note("opponent intent", fields...)
	return p.term.Message(ctx, msg)
}

// upkeep ends the round and lets the player position returning members.
func (p *play) upkeep(ctx context.Context) error {
	s := p.s
	for _, a := range s.AdvanceRound() {
		c, _ := s.Roster(a.Side).Get(a.ID)
		if a.Side == combat.SideOpponent {
			if err := p.term.Message(ctx, c.Name+" joins the opposing side."); err != nil {
				return err
			}
			continue
		}
		yes, err := p.term.Confirm(ctx, c.Name+" has arrived. Choose where they stand?")
		if err != nil {
			return err
		}
		if !yes {
			continue
		}
		if _, err := tactics.RunReinforcement(ctx, s, c.Class, p.fe, p.cfg.ScrollStep); err != nil {
			return err
		}
	}
	return nil
}

func (p *play) report(ctx context.Context) {
	s := p.s
	if p.result.Victory && len(s.Loot) > 0 {
		_ = p.term.Message(ctx, "Spoils: "+strings.Join(s.Loot, ", "))
	}
	if p.result.Survivors > 0 {
		_ = p.term.Message(ctx, fmt.Sprintf("%d opponents survive and may return at %s.",
			p.result.Survivors, p.content.Title(s.ResolvedDestination())))
	}
}
