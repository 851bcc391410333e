package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// State is the per-user dialogue mode. It decides whether free text is an answer.
type State string

const (
	StateIdle           State = "idle"
	StateAwaitingAnswer State = "awaiting_answer"
	// StateCancelled is never stored: it is reset to idle in the same step.
	StateCancelled State = "cancelled"
)

const (
	eventAsk    = "ask"
	eventAnswer = "answer"
	eventCancel = "cancel"
	eventReset  = "reset"
)

func newDialogue(from State) *fsm.FSM {
	return fsm.NewFSM(
		string(from),
		fsm.Events{
			{Name: eventAsk, Src: []string{string(StateIdle), string(StateAwaitingAnswer)}, Dst: string(StateAwaitingAnswer)},
			{Name: eventAnswer, Src: []string{string(StateAwaitingAnswer)}, Dst: string(StateIdle)},
			{Name: eventCancel, Src: []string{string(StateAwaitingAnswer)}, Dst: string(StateCancelled)},
			{Name: eventReset, Src: []string{string(StateIdle), string(StateAwaitingAnswer), string(StateCancelled)}, Dst: string(StateIdle)},
		},
		fsm.Callbacks{},
	)
}

// transition fires event from the given state and returns the resulting state.
// A cancelled dialogue is reset to idle before returning.
// Firing an event that keeps the state (e.g. ask while awaiting) is not an error.
func transition(ctx context.Context, from State, event string) (State, error) {
	d := newDialogue(from)
	if err := fire(ctx, d, event); err != nil {
		return from, err
	}
	if State(d.Current()) == StateCancelled {
		if err := fire(ctx, d, eventReset); err != nil {
			return from, err
		}
	}
	return State(d.Current()), nil
}

func fire(ctx context.Context, d *fsm.FSM, event string) error {
	err := d.Event(ctx, event)
	var same fsm.NoTransitionError
	if err != nil && !errors.As(err, &same) {
		return fmt.Errorf("%s from %s: %w", event, d.Current(), err)
	}
	return nil
}

// can reports whether event is allowed from the given state.
func can(from State, event string) bool {
	return newDialogue(from).Can(event)
}
