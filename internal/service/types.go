package service

import (
	"time"

	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
)

type JoinQueueInput struct {
	UserID      string              `json:"user_id" validate:"required"`
	UserName    string              `json:"user_name" validate:"required"`
	ServiceID   string              `json:"service_id" validate:"required"`
	Priority    domain.Priority     `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
}

type SkipEntryInput struct {
	EntryID string `json:"entry_id" validate:"required"`
	Reason  string `json:"reason,omitempty"`
	ActorID string `json:"actor_id,omitempty"`
}

// NewPosition is clamped into the queue bounds, so out-of-range values
// are not a validation error.
type AdjustPositionInput struct {
	EntryID     string `json:"entry_id" validate:"required"`
	NewPosition int    `json:"new_position"`
	ActorID     string `json:"actor_id,omitempty"`
}

type UpdateServiceTypeInput struct {
	ID                string  `json:"id" validate:"required"`
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	EstimatedDuration *int    `json:"estimated_duration,omitempty" validate:"omitempty,gt=0"`
	MaxConcurrent     *int    `json:"max_concurrent,omitempty" validate:"omitempty,gt=0"`
	Active            *bool   `json:"active,omitempty"`
	Icon              *string `json:"icon,omitempty"`
	Color             *string `json:"color,omitempty"`
}

// QueueStats aggregates one service's queue, or the whole system when
// ServiceID is empty (ThroughputPerHour is zero in that case).
type QueueStats struct {
	ServiceID         string  `json:"service_id,omitempty"`
	WaitingCount      int     `json:"waiting_count"`
	InServiceCount    int     `json:"in_service_count"`
	AverageWait       float64 `json:"average_wait"`
	ThroughputPerHour float64 `json:"throughput_per_hour,omitempty"`
}

type QueueUpdatedEvent struct {
	ServiceID string               `json:"service_id"`
	Entries   []*domain.QueueEntry `json:"entries"`
	At        time.Time            `json:"at"`
}

type PositionChangedEvent struct {
	Entry *domain.QueueEntry `json:"entry"`
	At    time.Time          `json:"at"`
}

type StatusChangedEvent struct {
	Entry    *domain.QueueEntry `json:"entry"`
	Previous domain.EntryStatus `json:"previous"`
	At       time.Time          `json:"at"`
}
