package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Tracer emits debug-level combat trace entries. It only observes: nothing in
// the battle flow reads back from it. A nil *Tracer is valid and silent.
type Tracer struct {
	log *zap.Logger
}

// NewTracer wraps logger, naming it "combat".
//
// Precondition: logger must not be nil.
func NewTracer(logger *zap.Logger) *Tracer {
	return &Tracer{log: logger.Named("combat")}
}

// NopTracer returns a tracer that discards everything.
func NopTracer() *Tracer {
	return &Tracer{log: zap.NewNop()}
}

func (t *Tracer) logger() *zap.Logger {
	if t == nil || t.log == nil {
		return zap.NewNop()
	}
	return t.log
}

// Placed records a setup placement decision.
func (t *Tracer) Placed(side combat.Side, id int, class, pool string, at grid.Point) {
	t.logger().Debug("placed",
		zap.Stringer("side", side),
		zap.Int("id", id),
		zap.String("class", class),
		zap.String("pool", pool),
		zap.Stringer("at", at),
	)
}

// Skipped records a combatant left out of placement.
func (t *Tracer) Skipped(side combat.Side, id int, class, reason string) {
	t.logger().Debug("skipped",
		zap.Stringer("side", side),
		zap.Int("id", id),
		zap.String("class", class),
		zap.String("reason", reason),
	)
}

// Eligible records the action list computed for a combatant.
func (t *Tracer) Eligible(side combat.Side, id int, actions []combat.ActionType) {
	t.logger().Debug("eligible",
		zap.Stringer("side", side),
		zap.Int("id", id),
		zap.Strings("actions", combat.ActionNames(actions)),
	)
}

// Transition records a state machine step.
func (t *Tracer) Transition(machine, from, to, event string) {
	t.logger().Debug("transition",
		zap.String("machine", machine),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("event", event),
	)
}

// Arrived records an away combatant joining the map.
func (t *Tracer) Arrived(side combat.Side, id int, at grid.Point) {
	t.logger().Debug("arrived",
		zap.Stringer("side", side),
		zap.Int("id", id),
		zap.Stringer("at", at),
	)
}

// Note records a free-form trace entry.
func (t *Tracer) Note(msg string, fields ...zap.Field) {
	t.logger().Debug(msg, fields...)
}
