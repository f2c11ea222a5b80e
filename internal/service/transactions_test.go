package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
)

func TestTransactionLog_RecentNewestFirst(t *testing.T) {
	log := newTransactionLog(10)
	for i := 1; i <= 3; i++ {
		log.append(domain.QueueTransaction{EntryID: fmt.Sprintf("e%d", i), Action: domain.ActionJoin})
	}

	recent := log.recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e3", recent[0].EntryID)
	assert.Equal(t, "e2", recent[1].EntryID)
	assert.Equal(t, "e1", recent[2].EntryID)

	recent = log.recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "e3", recent[0].EntryID)

	recent = log.recent(100)
	assert.Len(t, recent, 3)
}

func TestTransactionLog_CapDropsOldest(t *testing.T) {
	log := newTransactionLog(3)
	for i := 1; i <= 5; i++ {
		log.append(domain.QueueTransaction{EntryID: fmt.Sprintf("e%d", i), Action: domain.ActionJoin})
	}

	recent := log.recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e5", recent[0].EntryID)
	assert.Equal(t, "e3", recent[2].EntryID)
}

func TestTransactionLog_Empty(t *testing.T) {
	log := newTransactionLog(3)
	assert.Empty(t, log.recent(0))
	assert.Empty(t, log.recent(5))
}
