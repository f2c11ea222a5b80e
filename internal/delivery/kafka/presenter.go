package kafka

import "time"

// Events published by the service-queue service.

type EntryEvent struct {
	EntryID        string    `json:"entry_id"`
	UserID         string    `json:"user_id"`
	ServiceID      string    `json:"service_id"`
	Status         string    `json:"status"`
	Previous       string    `json:"previous,omitempty"`
	Position       int       `json:"position"`
	EstimatedWait  int       `json:"estimated_wait"`
	AdmissionToken string    `json:"admission_token,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type QueueUpdatedEvent struct {
	ServiceID    string         `json:"service_id"`
	WaitingCount int            `json:"waiting_count"`
	Entries      []EntrySummary `json:"entries"`
	Timestamp    time.Time      `json:"timestamp"`
}

type EntrySummary struct {
	EntryID       string `json:"entry_id"`
	UserID        string `json:"user_id"`
	Position      int    `json:"position"`
	Status        string `json:"status"`
	EstimatedWait int    `json:"estimated_wait"`
}

// Events consumed from the guest service.

type GuestCheckedOutEvent struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}
