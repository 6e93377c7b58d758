package combat

// Turn identifies one roster entry in the turn order.
type Turn struct {
	Side Side
	ID   int
}

// TurnQueue is the cyclic turn order of a battle: all players in roster
// order, then all opponents in roster order.
type TurnQueue struct {
	turns []Turn
	index int
}

// NewTurnQueue builds the turn order from the two rosters.
//
// Postcondition: Len() == len(players) + len(opponents); Current() is the first entry.
func NewTurnQueue(players, opponents Roster) *TurnQueue {
	q := &TurnQueue{turns: make([]Turn, 0, len(players)+len(opponents))}
	for i := range players {
		q.turns = append(q.turns, Turn{Side: SidePlayer, ID: i})
	}
	for i := range opponents {
		q.turns = append(q.turns, Turn{Side: SideOpponent, ID: i})
	}
	return q
}

// Len returns the number of entries.
func (q *TurnQueue) Len() int { return len(q.turns) }

// Turns returns a copy of the turn order.
func (q *TurnQueue) Turns() []Turn { return append([]Turn(nil), q.turns...) }

// Current returns the active entry.
//
// Postcondition: Returns (Turn{}, false) when the queue is empty.
func (q *TurnQueue) Current() (Turn, bool) {
	if len(q.turns) == 0 {
		return Turn{}, false
	}
	return q.turns[q.index], true
}

// Advance moves to the next entry, wrapping at the end, and returns it.
func (q *TurnQueue) Advance() (Turn, bool) {
	if len(q.turns) == 0 {
		return Turn{}, false
	}
	q.index = (q.index + 1) % len(q.turns)
	return q.turns[q.index], true
}

// NextTarget scans cyclically from the entry after from for the first entry of
// side accepted by valid. from itself is considered last. An unknown from
// starts the scan at the head of the queue.
//
// Precondition: valid must not be nil.
// Postcondition: Returns (Turn{}, false) when no entry qualifies.
func (q *TurnQueue) NextTarget(from Turn, side Side, valid func(Turn) bool) (Turn, bool) {
	n := len(q.turns)
	start := 0
	for i, t := range q.turns {
		if t == from {
			start = i + 1
			break
		}
	}
	for k := 0; k < n; k++ {
		t := q.turns[(start+k)%n]
		if t.Side == side && valid(t) {
			return t, true
		}
	}
	return Turn{}, false
}
