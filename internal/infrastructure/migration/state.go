package migration

import "fmt"

// State is the progress of one migration attempt
type State string

const (
	StatePending       State = "pending"
	StateSchemaWritten State = "schema_written"
	StateToolsInvoked  State = "tools_invoked"
	StateCommitted     State = "committed"
	StateRolledBack    State = "rolled_back"
)

var transitions = map[State][]State{
	StatePending:       {StateSchemaWritten, StateRolledBack},
	StateSchemaWritten: {StateToolsInvoked, StateRolledBack},
	StateToolsInvoked:  {StateCommitted},
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack
}

func (s State) canMoveTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type attempt struct {
	name  string
	state State
	trace []State
	// backedUp is set once the schema file snapshot exists; existed records
	// whether there was a live file to snapshot
	backedUp bool
	existed  bool
}

func newAttempt(name string) *attempt {
	return &attempt{name: name, state: StatePending, trace: []State{StatePending}}
}

func (a *attempt) moveTo(next State) error {
	if !a.state.canMoveTo(next) {
		return fmt.Errorf("migration %s: illegal transition %s -> %s", a.name, a.state, next)
	}
	a.state = next
	a.trace = append(a.trace, next)
	return nil
}
