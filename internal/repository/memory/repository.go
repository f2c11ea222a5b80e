package memory

import (
	"context"
	"sync"

	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
	repo "github.com/vogiaan1904/ticketbottle-servicequeue/internal/repository"
)

// QueueRepository keeps the persisted state in process memory. Useful
// for tests and for running the service without Redis.
type QueueRepository struct {
	mu    sync.Mutex
	state *repo.State
	stats *repo.StatsSnapshot
}

var _ repo.QueueRepository = (*QueueRepository)(nil)

func NewQueueRepository() *QueueRepository {
	return &QueueRepository{}
}

func (r *QueueRepository) LoadState(ctx context.Context) (*repo.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return nil, repo.ErrStateNotFound
	}

	return cloneState(r.state), nil
}

func (r *QueueRepository) SaveState(ctx context.Context, st *repo.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = cloneState(st)

	return nil
}

func (r *QueueRepository) SaveQueues(ctx context.Context, queues map[string][]*domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureState()
	r.state.Queues = cloneQueues(queues)

	return nil
}

func (r *QueueRepository) SaveServiceTypes(ctx context.Context, types []*domain.ServiceType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureState()
	r.state.ServiceTypes = cloneServiceTypes(types)

	return nil
}

func (r *QueueRepository) SaveConfiguration(ctx context.Context, cfg *domain.QueueConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureState()
	c := *cfg
	r.state.Config = &c

	return nil
}

func (r *QueueRepository) SaveStatsSnapshot(ctx context.Context, snap *repo.StatsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *snap
	r.stats = &s

	return nil
}

func (r *QueueRepository) Ping(ctx context.Context) error {
	return nil
}

// StatsSnapshot returns the last saved snapshot. Test helper; not part
// of the QueueRepository interface.
func (r *QueueRepository) StatsSnapshot() *repo.StatsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stats
}

func (r *QueueRepository) ensureState() {
	if r.state == nil {
		r.state = &repo.State{}
	}
}

func cloneState(st *repo.State) *repo.State {
	out := &repo.State{
		Queues:       cloneQueues(st.Queues),
		ServiceTypes: cloneServiceTypes(st.ServiceTypes),
	}
	if st.Config != nil {
		c := *st.Config
		out.Config = &c
	}
	return out
}

func cloneQueues(queues map[string][]*domain.QueueEntry) map[string][]*domain.QueueEntry {
	if queues == nil {
		return nil
	}
	out := make(map[string][]*domain.QueueEntry, len(queues))
	for svcID, entries := range queues {
		cp := make([]*domain.QueueEntry, len(entries))
		for i, e := range entries {
			cp[i] = e.Clone()
		}
		out[svcID] = cp
	}
	return out
}

func cloneServiceTypes(types []*domain.ServiceType) []*domain.ServiceType {
	if types == nil {
		return nil
	}
	out := make([]*domain.ServiceType, len(types))
	for i, t := range types {
		c := *t
		out[i] = &c
	}
	return out
}
