package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name    string
		action  EntryAction
		status  EntryStatus
		allowed bool
	}{
		{"call waiting entry", ActionCallNext, EntryStatusWaiting, true},
		{"call called entry", ActionCallNext, EntryStatusCalled, false},
		{"call in-service entry", ActionCallNext, EntryStatusInService, false},

		{"start called entry", ActionStart, EntryStatusCalled, true},
		{"start waiting entry", ActionStart, EntryStatusWaiting, false},
		{"start in-service entry", ActionStart, EntryStatusInService, false},

		{"complete in-service entry", ActionComplete, EntryStatusInService, true},
		{"complete called entry", ActionComplete, EntryStatusCalled, true},
		{"complete waiting entry", ActionComplete, EntryStatusWaiting, false},
		{"complete completed entry", ActionComplete, EntryStatusCompleted, false},

		{"skip waiting entry", ActionSkip, EntryStatusWaiting, true},
		{"skip called entry", ActionSkip, EntryStatusCalled, false},

		{"cancel waiting entry", ActionCancel, EntryStatusWaiting, true},
		{"cancel called entry", ActionCancel, EntryStatusCalled, true},
		{"cancel in-service entry", ActionCancel, EntryStatusInService, true},
		{"cancel completed entry", ActionCancel, EntryStatusCompleted, false},
		{"cancel cancelled entry", ActionCancel, EntryStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, ValidTransition(tt.action, tt.status))
		})
	}
}

func TestValidTransition_UnknownAction(t *testing.T) {
	// Audit-only actions carry no transition rule.
	assert.False(t, ValidTransition(ActionJoin, EntryStatusWaiting))
	assert.False(t, ValidTransition(ActionAdjust, EntryStatusWaiting))
	assert.False(t, ValidTransition(EntryAction("teleport"), EntryStatusWaiting))
}
