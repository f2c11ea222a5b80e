package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
)

var ErrStateNotFound = errors.New("queue state not found")

// State is the full persisted snapshot: per-service queues, the service
// catalogue and the queue configuration. Missing parts are nil.
type State struct {
	Queues       map[string][]*domain.QueueEntry
	ServiceTypes []*domain.ServiceType
	Config       *domain.QueueConfiguration
}

type ServiceStatsSnapshot struct {
	Waiting           int     `json:"waiting"`
	InService         int     `json:"in_service"`
	AverageWait       float64 `json:"average_wait"`
	ThroughputPerHour float64 `json:"throughput_per_hour"`
}

// StatsSnapshot is written under the reserved stats key on shutdown.
// Nothing reads it back; it exists for external dashboards.
type StatsSnapshot struct {
	TakenAt    time.Time                       `json:"taken_at"`
	PerService map[string]ServiceStatsSnapshot `json:"per_service"`
}

// QueueRepository abstracts the persistence of queue state. SaveState
// must write all parts atomically; the targeted Save methods exist for
// mutations touching a single part.
type QueueRepository interface {
	LoadState(ctx context.Context) (*State, error)
	SaveState(ctx context.Context, st *State) error
	SaveQueues(ctx context.Context, queues map[string][]*domain.QueueEntry) error
	SaveServiceTypes(ctx context.Context, types []*domain.ServiceType) error
	SaveConfiguration(ctx context.Context, cfg *domain.QueueConfiguration) error
	SaveStatsSnapshot(ctx context.Context, snap *StatsSnapshot) error
	Ping(ctx context.Context) error
}
