package domain_test

import (
	"testing"

	"github.com/neomorfeo/randomnum/internal/domain"
)

func TestTransitions_AllEventsHaveEntries(t *testing.T) {
	events := []domain.Event{
		domain.EventDraw,
		domain.EventStore,
		domain.EventFail,
	}

	for _, event := range events {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == event {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("event %q has no transition defined", event)
		}
	}
}

func TestTransitions_StoredIsTerminal(t *testing.T) {
	for _, tr := range domain.Transitions {
		if tr.Src == domain.StatusStored {
			t.Errorf("unexpected transition: %q from %q", tr.Event, tr.Src)
		}
	}
}

func TestTransitions_InvalidPaths(t *testing.T) {
	invalid := []struct {
		event domain.Event
		src   domain.Status
	}{
		{domain.EventStore, domain.StatusMissing},
		{domain.EventFail, domain.StatusMissing},
		{domain.EventDraw, domain.StatusDrawing},
		{domain.EventDraw, domain.StatusStored},
	}

	for _, tc := range invalid {
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}
