package machine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTable is returned when a state table fails validation at
// construction time. The cycle never starts on a bad table.
var ErrInvalidTable = errors.New("machine: invalid state table")

// Table is a validated, immutable state table: one Row per state,
// forming a single cycle over all declared states.
type Table struct {
	initial State
	rows    map[State]Row
	wait    State // the WaitForTrigger state, or "" if none
}

// NewTable validates the declared rows and returns a Table.
//
// Validation rules:
//   - initial must be declared
//   - every Next must be declared
//   - each row is either Timed with a positive duration or
//     WaitForTrigger, never both and never neither
//   - at most one state may be WaitForTrigger
//   - following Next from initial must visit every declared state
//     exactly once and return to initial (a single closed cycle)
func NewTable(initial State, rows map[State]Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no states declared", ErrInvalidTable)
	}
	if _, ok := rows[initial]; !ok {
		return nil, fmt.Errorf("%w: initial state %s not declared", ErrInvalidTable, initial)
	}

	var wait State
	for s, row := range rows {
		if _, ok := rows[row.Next]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s: successor not declared", ErrInvalidTable, s, row.Next)
		}
		if row.Dwell.WaitForTrigger {
			if row.Dwell.Duration != 0 {
				return nil, fmt.Errorf("%w: %s: both timed and wait-for-trigger", ErrInvalidTable, s)
			}
			if wait != "" {
				return nil, fmt.Errorf("%w: more than one wait-for-trigger state (%s, %s)", ErrInvalidTable, wait, s)
			}
			wait = s
		} else if row.Dwell.Duration <= 0 {
			return nil, fmt.Errorf("%w: %s: dwell duration must be positive", ErrInvalidTable, s)
		}
	}

	// Walk the cycle. After len(rows) steps we must be back at initial
	// having visited every state exactly once.
	visited := make(map[State]bool, len(rows))
	cur := initial
	for i := 0; i < len(rows); i++ {
		if visited[cur] {
			return nil, fmt.Errorf("%w: cycle revisits %s before covering all states", ErrInvalidTable, cur)
		}
		visited[cur] = true
		cur = rows[cur].Next
	}
	if cur != initial {
		return nil, fmt.Errorf("%w: cycle does not return to %s", ErrInvalidTable, initial)
	}

	// Copy so the caller cannot mutate the table afterwards.
	copied := make(map[State]Row, len(rows))
	for s, row := range rows {
		copied[s] = row
	}

	return &Table{initial: initial, rows: copied, wait: wait}, nil
}

// Initial returns the variant's starting state.
func (t *Table) Initial() State { return t.initial }

// Len returns the number of declared states.
func (t *Table) Len() int { return len(t.rows) }

// Outputs returns the lamp pattern for a state.
func (t *Table) Outputs(s State) Pattern { return t.rows[s].Outputs }

// Next returns the single successor of a state.
func (t *Table) Next(s State) State { return t.rows[s].Next }

// Dwell returns the dwell policy for a state.
func (t *Table) Dwell(s State) Dwell { return t.rows[s].Dwell }

// NeedsTrigger reports whether any state waits for a trigger edge.
func (t *Table) NeedsTrigger() bool { return t.wait != "" }

// Automatic builds the fully timed variant:
//
//	Red --(red)--> Green --(green)--> Yellow --(yellow)--> Red
func Automatic(red, green, yellow time.Duration) (*Table, error) {
	return NewTable(StateRed, map[State]Row{
		StateRed:    {Outputs: Pattern{Red: true}, Dwell: Timed(red), Next: StateGreen},
		StateGreen:  {Outputs: Pattern{Green: true}, Dwell: Timed(green), Next: StateYellow},
		StateYellow: {Outputs: Pattern{Yellow: true}, Dwell: Timed(yellow), Next: StateRed},
	})
}

// Triggered builds the button-started variant. Idle holds all lamps on
// and waits for a trigger edge; the rest of the cycle is timed:
//
//	Idle --(edge)--> Red --> RedYellow --> Green --> Yellow --> Idle
func Triggered(red, redYellow, green, yellow time.Duration) (*Table, error) {
	return NewTable(StateIdle, map[State]Row{
		StateIdle:      {Outputs: Pattern{Red: true, Yellow: true, Green: true}, Dwell: WaitForTrigger, Next: StateRed},
		StateRed:       {Outputs: Pattern{Red: true}, Dwell: Timed(red), Next: StateRedYellow},
		StateRedYellow: {Outputs: Pattern{Red: true, Yellow: true}, Dwell: Timed(redYellow), Next: StateGreen},
		StateGreen:     {Outputs: Pattern{Green: true}, Dwell: Timed(green), Next: StateYellow},
		StateYellow:    {Outputs: Pattern{Yellow: true}, Dwell: Timed(yellow), Next: StateIdle},
	})
}
