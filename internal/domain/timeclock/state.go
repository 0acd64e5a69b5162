package timeclock

// State is the position of an employee-day in the punch sequence.
type State int

const (
	StateNoPunchYet State = iota
	StateLastWasEntry
	StateLastWasBreak
	StateLastWasExit
)

func (s State) String() string {
	switch s {
	case StateNoPunchYet:
		return "no punch yet"
	case StateLastWasEntry:
		return "entry"
	case StateLastWasBreak:
		return "break"
	case StateLastWasExit:
		return "exit"
	}
	return "unknown"
}

var transitions = map[State][]Kind{
	StateNoPunchYet:   {KindEntry},
	StateLastWasEntry: {KindBreak, KindExit},
	StateLastWasBreak: {KindEntry, KindExit},
	StateLastWasExit:  nil,
}

// StateAfter maps the kind of the latest punch to a state.
func StateAfter(last Kind) State {
	switch last {
	case KindEntry:
		return StateLastWasEntry
	case KindBreak:
		return StateLastWasBreak
	case KindExit:
		return StateLastWasExit
	}
	return StateNoPunchYet
}

// StateOf derives the state from one employee-day of punches, given oldest or
// newest first (see Chronological for equal instants).
func StateOf(punches []Punch) State {
	ordered := Chronological(punches)
	if len(ordered) == 0 {
		return StateNoPunchYet
	}
	return StateAfter(ordered[len(ordered)-1].Kind)
}

func CanRecord(state State, requested Kind) bool {
	for _, kind := range transitions[state] {
		if kind == requested {
			return true
		}
	}
	return false
}

// LegalNextKinds returns a fresh slice; LastWasExit is terminal and yields none.
func LegalNextKinds(state State) []Kind {
	allowed := transitions[state]
	out := make([]Kind, len(allowed))
	copy(out, allowed)
	return out
}

// Check reports a rejected request as a *TransitionError.
func Check(state State, requested Kind) error {
	if CanRecord(state, requested) {
		return nil
	}
	return &TransitionError{State: state, Requested: requested, Allowed: LegalNextKinds(state)}
}
