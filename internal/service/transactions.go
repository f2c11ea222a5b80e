package service

import (
	"sync"

	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
)

// transactionLog keeps the most recent staff/user actions in a ring.
// It is observability data, not part of the persisted queue state.
type transactionLog struct {
	mu      sync.Mutex
	records []domain.QueueTransaction
	cap     int
}

func newTransactionLog(capacity int) *transactionLog {
	if capacity <= 0 {
		capacity = 256
	}
	return &transactionLog{
		cap: capacity,
	}
}

func (t *transactionLog) append(tx domain.QueueTransaction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = append(t.records, tx)
	if len(t.records) > t.cap {
		t.records = t.records[len(t.records)-t.cap:]
	}
}

// recent returns up to limit records, newest first.
func (t *transactionLog) recent(limit int) []*domain.QueueTransaction {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.records) {
		limit = len(t.records)
	}

	out := make([]*domain.QueueTransaction, 0, limit)
	for i := len(t.records) - 1; i >= len(t.records)-limit; i-- {
		tx := t.records[i]
		out = append(out, &tx)
	}
	return out
}
