package timeclock

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIllegalTransition      = errors.New("illegal punch transition")
	ErrUnparseableTimestamp   = errors.New("unparseable punch timestamp")
	ErrUnknownKind            = errors.New("unknown punch kind")
	ErrMissingEmployeeContext = errors.New("report requires an employee and a complete date range")
)

// TransitionError is returned when a requested punch is not legal in the
// current state. Allowed lists the kinds that would have been accepted.
type TransitionError struct {
	State     State
	Requested Kind
	Allowed   []Kind
}

func (e *TransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot record %s: the day is already closed", e.Requested)
	}
	names := make([]string, 0, len(e.Allowed))
	for _, kind := range e.Allowed {
		names = append(names, kind.String())
	}
	return fmt.Sprintf("cannot record %s after %s; allowed: %s", e.Requested, e.State, strings.Join(names, ", "))
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

type UnknownKindError struct {
	Value string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown punch kind %q", e.Value)
}

func (e *UnknownKindError) Unwrap() error {
	return ErrUnknownKind
}
