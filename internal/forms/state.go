package forms

import (
	"errors"
	"fmt"
)

// FormState is the lifecycle position of one staff form instance.
type FormState int

const (
	StateInitializing FormState = iota
	StateReady
	StateSubmitting
	StateSucceeded
	StateFailed
	StateClosed
)

var (
	ErrIllegalTransition = errors.New("illegal form state transition")
	ErrSubmitInFlight    = errors.New("submission already in progress")
)

func (s FormState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var transitions = map[FormState][]FormState{
	StateInitializing: {StateReady},
	StateReady:        {StateSubmitting, StateClosed},
	StateSubmitting:   {StateSucceeded, StateFailed},
	StateSucceeded:    {StateClosed},
	StateFailed:       {StateReady},
}

func canTransition(from, to FormState) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
