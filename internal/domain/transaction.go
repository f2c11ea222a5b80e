package domain

import "time"

// QueueTransaction records one staff or user action against an entry.
// Kept in a capped in-memory log for the operations dashboard.
type QueueTransaction struct {
	EntryID   string      `json:"entry_id"`
	ServiceID string      `json:"service_id"`
	Action    EntryAction `json:"action"`
	ActorID   string      `json:"actor_id,omitempty"`
	Note      string      `json:"note,omitempty"`
	At        time.Time   `json:"at"`
}
