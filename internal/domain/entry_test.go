package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEntry_IsActive(t *testing.T) {
	tests := []struct {
		status EntryStatus
		active bool
	}{
		{EntryStatusWaiting, true},
		{EntryStatusCalled, true},
		{EntryStatusInService, true},
		{EntryStatusCompleted, false},
		{EntryStatusCancelled, false},
		{EntryStatusSkipped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := &QueueEntry{Status: tt.status}
			assert.Equal(t, tt.active, e.IsActive())
		})
	}
}

func TestQueueEntry_IsTerminal(t *testing.T) {
	tests := []struct {
		status   EntryStatus
		terminal bool
	}{
		{EntryStatusWaiting, false},
		{EntryStatusCalled, false},
		{EntryStatusInService, false},
		{EntryStatusCompleted, true},
		{EntryStatusCancelled, true},
		{EntryStatusSkipped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := &QueueEntry{Status: tt.status}
			assert.Equal(t, tt.terminal, e.IsTerminal())
		})
	}
}

func TestQueueEntry_Clone_DeepCopies(t *testing.T) {
	called := time.Now()
	orig := &QueueEntry{
		ID:          "e1",
		UserID:      "u1",
		ServiceID:   "haircut",
		Position:    2,
		Status:      EntryStatusCalled,
		Priority:    PriorityHigh,
		Preferences: &Preferences{GroupSize: 2, SpecialRequests: "window seat"},
		CalledAt:    &called,
	}

	c := orig.Clone()
	require.NotSame(t, orig, c)
	assert.Equal(t, orig, c)

	c.Preferences.GroupSize = 5
	*c.CalledAt = c.CalledAt.Add(time.Hour)
	c.Position = 9

	assert.Equal(t, 2, orig.Preferences.GroupSize)
	assert.Equal(t, called, *orig.CalledAt)
	assert.Equal(t, 2, orig.Position)
}

func TestQueueEntry_Clone_NilPointers(t *testing.T) {
	orig := &QueueEntry{ID: "e1", Status: EntryStatusWaiting}

	c := orig.Clone()

	assert.Nil(t, c.Preferences)
	assert.Nil(t, c.CalledAt)
	assert.Nil(t, c.StartedAt)
}

func TestPriority_Rank_Ordering(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityNormal.Rank())
	assert.Less(t, PriorityNormal.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityUrgent.Rank())

	// Unknown values fall back to the normal lane.
	assert.Equal(t, PriorityNormal.Rank(), Priority("vip").Rank())
	assert.Equal(t, PriorityNormal.Rank(), Priority("").Rank())
}

func TestPriority_Valid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent} {
		assert.True(t, p.Valid(), "priority %s", p)
	}

	assert.False(t, Priority("vip").Valid())
	assert.False(t, Priority("").Valid())
}
