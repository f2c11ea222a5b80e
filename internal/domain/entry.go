package domain

import "time"

type QueueEntry struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	UserName       string       `json:"user_name"`
	ServiceID      string       `json:"service_id"`
	ServiceName    string       `json:"service_name"`
	Position       int          `json:"position"`
	EstimatedWait  int          `json:"estimated_wait"`
	JoinedAt       time.Time    `json:"joined_at"`
	Status         EntryStatus  `json:"status"`
	Priority       Priority     `json:"priority"`
	Preferences    *Preferences `json:"preferences,omitempty"`
	StaffNotes     string       `json:"staff_notes,omitempty"`
	AdmissionToken string       `json:"admission_token,omitempty"`
	CalledAt       *time.Time   `json:"called_at,omitempty"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
}

type Preferences struct {
	PreferredTime   string `json:"preferred_time,omitempty"`
	GroupSize       int    `json:"group_size,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type EntryStatus string

const (
	EntryStatusWaiting   EntryStatus = "waiting"
	EntryStatusCalled    EntryStatus = "called"
	EntryStatusInService EntryStatus = "in_service"
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusCancelled EntryStatus = "cancelled"
	EntryStatusSkipped   EntryStatus = "skipped"
)

func (e *QueueEntry) IsActive() bool {
	return e.Status == EntryStatusWaiting ||
		e.Status == EntryStatusCalled ||
		e.Status == EntryStatusInService
}

func (e *QueueEntry) IsTerminal() bool {
	return e.Status == EntryStatusCompleted || e.Status == EntryStatusCancelled
}

func (e *QueueEntry) Clone() *QueueEntry {
	c := *e
	if e.Preferences != nil {
		p := *e.Preferences
		c.Preferences = &p
	}
	if e.CalledAt != nil {
		t := *e.CalledAt
		c.CalledAt = &t
	}
	if e.StartedAt != nil {
		t := *e.StartedAt
		c.StartedAt = &t
	}
	return &c
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for lane insertion. Unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return 1
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
