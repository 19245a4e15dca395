package fsm

import (
	"context"
	"errors"
	"fmt"
	"slices"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/randomnum/internal/domain"
)

var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks generation lifecycle moves against domain.Transitions.
type Validator struct {
	events loopfsm.Events
}

// New returns a Validator for the generation lifecycle.
func New() *Validator {
	return &Validator{events: lifecycleEvents(domain.Transitions)}
}

// lifecycleEvents folds transitions that share an event and destination into
// a single EventDesc listing every source.
func lifecycleEvents(transitions []domain.Transition) loopfsm.Events {
	var events loopfsm.Events
	for _, tr := range transitions {
		i := slices.IndexFunc(events, func(e loopfsm.EventDesc) bool {
			return e.Name == string(tr.Event) && e.Dst == string(tr.Dst)
		})
		if i < 0 {
			events = append(events, loopfsm.EventDesc{Name: string(tr.Event), Dst: string(tr.Dst)})
			i = len(events) - 1
		}
		events[i].Src = append(events[i].Src, string(tr.Src))
	}
	return events
}

// Apply fires event on a machine positioned at current. A move the lifecycle
// does not allow, such as a second draw for a key already drawing or stored,
// yields *domain.TransitionError.
func (v *Validator) Apply(ctx context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	err := machine.Event(ctx, string(event))
	switch {
	case err == nil:
		return domain.Status(machine.Current()), nil
	case rejected(err):
		return "", &domain.TransitionError{Event: event, Current: current}
	default:
		return "", fmt.Errorf("firing %s from %s: %w", event, current, err)
	}
}

func rejected(err error) bool {
	var invalid loopfsm.InvalidEventError
	var unknown loopfsm.UnknownEventError
	return errors.As(err, &invalid) || errors.As(err, &unknown)
}
