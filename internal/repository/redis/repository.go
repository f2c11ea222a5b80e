package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
	repo "github.com/vogiaan1904/ticketbottle-servicequeue/internal/repository"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

// Storage keys. The key names predate this service and are shared with
// the operations dashboard, so they stay as-is.
const (
	keyServiceQueues = "service_queues"
	keyServiceTypes  = "service_types"
	keyQueueConfig   = "queue_config"
	keyQueueStats    = "queue_stats"
)

type redisQueueRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewQueueRepository(cli *redis.Client, l logger.Logger) repo.QueueRepository {
	return &redisQueueRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisQueueRepository) LoadState(ctx context.Context) (*repo.State, error) {
	vals, err := r.cli.MGet(ctx, keyServiceQueues, keyServiceTypes, keyQueueConfig).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisQueueRepository.LoadState: %v", err)
		return nil, fmt.Errorf("failed to load queue state: %w", err)
	}

	if vals[0] == nil && vals[1] == nil && vals[2] == nil {
		return nil, repo.ErrStateNotFound
	}

	st := &repo.State{}

	if raw, ok := vals[0].(string); ok {
		if err := json.Unmarshal([]byte(raw), &st.Queues); err != nil {
			r.l.Errorf(ctx, "redisQueueRepository.LoadState: %v", err)
			return nil, fmt.Errorf("failed to decode %s: %w", keyServiceQueues, err)
		}
	}
	if raw, ok := vals[1].(string); ok {
		if err := json.Unmarshal([]byte(raw), &st.ServiceTypes); err != nil {
			r.l.Errorf(ctx, "redisQueueRepository.LoadState: %v", err)
			return nil, fmt.Errorf("failed to decode %s: %w", keyServiceTypes, err)
		}
	}
	if raw, ok := vals[2].(string); ok {
		if err := json.Unmarshal([]byte(raw), &st.Config); err != nil {
			r.l.Errorf(ctx, "redisQueueRepository.LoadState: %v", err)
			return nil, fmt.Errorf("failed to decode %s: %w", keyQueueConfig, err)
		}
	}

	return st, nil
}

func (r *redisQueueRepository) SaveState(ctx context.Context, st *repo.State) error {
	qRaw, err := json.Marshal(st.Queues)
	if err != nil {
		return fmt.Errorf("failed to encode queues: %w", err)
	}
	tRaw, err := json.Marshal(st.ServiceTypes)
	if err != nil {
		return fmt.Errorf("failed to encode service types: %w", err)
	}
	cRaw, err := json.Marshal(st.Config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	_, err = r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyServiceQueues, qRaw, 0)
		pipe.Set(ctx, keyServiceTypes, tRaw, 0)
		pipe.Set(ctx, keyQueueConfig, cRaw, 0)
		return nil
	})
	if err != nil {
		r.l.Errorf(ctx, "redisQueueRepository.SaveState: %v", err)
		return fmt.Errorf("failed to save queue state: %w", err)
	}

	return nil
}

func (r *redisQueueRepository) SaveQueues(ctx context.Context, queues map[string][]*domain.QueueEntry) error {
	return r.setJSON(ctx, keyServiceQueues, queues)
}

func (r *redisQueueRepository) SaveServiceTypes(ctx context.Context, types []*domain.ServiceType) error {
	return r.setJSON(ctx, keyServiceTypes, types)
}

func (r *redisQueueRepository) SaveConfiguration(ctx context.Context, cfg *domain.QueueConfiguration) error {
	return r.setJSON(ctx, keyQueueConfig, cfg)
}

func (r *redisQueueRepository) SaveStatsSnapshot(ctx context.Context, snap *repo.StatsSnapshot) error {
	return r.setJSON(ctx, keyQueueStats, snap)
}

func (r *redisQueueRepository) Ping(ctx context.Context) error {
	if err := r.cli.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (r *redisQueueRepository) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := r.cli.Set(ctx, key, raw, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisQueueRepository.setJSON: key=%s: %v", key, err)
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	return nil
}
