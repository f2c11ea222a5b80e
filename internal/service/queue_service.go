package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vogiaan1904/ticketbottle-servicequeue/config"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/monitoring"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/repository"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

// queueService owns all queue state for the process. Mutations hold the
// write lock through persistence so operations are strictly serialized;
// events are emitted after the lock is released.
type queueService struct {
	mu     sync.RWMutex
	queues map[string][]*domain.QueueEntry
	types  map[string]*domain.ServiceType
	order  []string
	conf   *domain.QueueConfiguration

	repo     repository.QueueRepository
	issuer   *admissionIssuer
	txLog    *transactionLog
	validate *validator.Validate
	l        logger.Logger

	queueUpdated    *subject[QueueUpdatedEvent]
	positionChanged *subject[PositionChangedEvent]
	statusChanged   *subject[StatusChangedEvent]

	autoDelay time.Duration
	timers    map[int]*time.Timer
	timerSeq  int
	closed    bool
}

func NewQueueService(
	ctx context.Context,
	repo repository.QueueRepository,
	qCfg config.QueueConfig,
	jwtCfg config.JWTConfig,
	l logger.Logger,
) (QueueService, error) {
	s := &queueService{
		queues:    make(map[string][]*domain.QueueEntry),
		types:     make(map[string]*domain.ServiceType),
		repo:      repo,
		issuer:    newAdmissionIssuer(jwtCfg),
		txLog:     newTransactionLog(256),
		validate:  validator.New(),
		l:         l,
		autoDelay: qCfg.AutoProgressDelay,
		timers:    make(map[int]*time.Timer),

		queueUpdated:    newSubject[QueueUpdatedEvent]("queue_updated", l),
		positionChanged: newSubject[PositionChangedEvent]("position_changed", l),
		statusChanged:   newSubject[StatusChangedEvent]("status_changed", l),
	}

	st, err := repo.LoadState(ctx)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStateNotFound):
		st = &repository.State{}
	default:
		return nil, fmt.Errorf("failed to load queue state: %w", err)
	}

	seeded := false
	types := st.ServiceTypes
	if len(types) == 0 {
		types = domain.DefaultServiceTypes()
		seeded = true
	}
	for _, t := range types {
		s.types[t.ID] = t
		s.order = append(s.order, t.ID)
	}

	switch {
	case st.Config != nil:
		s.conf = st.Config
	case qCfg.MaxQueueLength > 0:
		s.conf = &domain.QueueConfiguration{
			MaxQueueLength:      qCfg.MaxQueueLength,
			PriorityEnabled:     qCfg.PriorityEnabled,
			AutoProgressEnabled: qCfg.AutoProgressEnabled,
			EstimationAlgorithm: domain.EstimationAlgorithm(qCfg.EstimationAlgorithm),
		}
	default:
		s.conf = domain.DefaultQueueConfiguration()
	}

	for svcID, q := range st.Queues {
		if _, ok := s.types[svcID]; !ok {
			l.Warnf(ctx, "service.NewQueueService: dropping queue for unknown service %s", svcID)
			continue
		}
		s.queues[svcID] = q
	}
	for _, svcID := range s.order {
		s.recomputeLocked(svcID)
	}

	s.persistLocked(ctx)

	l.Infof(ctx, "queue service initialized: services=%d queues=%d seeded=%t",
		len(s.types), len(s.queues), seeded)

	return s, nil
}

func (s *queueService) JoinQueue(ctx context.Context, in JoinQueueInput) (*domain.QueueEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		monitoring.TrackOperation("join_queue", "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	entry, ev, err := s.joinLocked(ctx, in)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("join_queue", "rejected")
		return nil, err
	}

	monitoring.TrackOperation("join_queue", "ok")
	monitoring.ObserveEstimatedWait(entry.ServiceID, entry.EstimatedWait)
	s.emit(ctx, ev)

	return entry, nil
}

func (s *queueService) joinLocked(ctx context.Context, in JoinQueueInput) (*domain.QueueEntry, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	t, ok := s.types[in.ServiceID]
	if !ok {
		s.l.Warnf(ctx, "service.queueService.JoinQueue: %v: %s", ErrServiceNotFound, in.ServiceID)
		return nil, nil, ErrServiceNotFound
	}
	if !t.Active {
		s.l.Warnf(ctx, "service.queueService.JoinQueue: %v: %s", ErrServiceInactive, in.ServiceID)
		return nil, nil, ErrServiceInactive
	}

	if existing := s.userActiveLocked(in.UserID); existing != nil {
		s.l.Warnf(ctx, "service.queueService.JoinQueue: %v: user=%s entry=%s",
			ErrAlreadyQueued, in.UserID, existing.ID)
		return nil, nil, ErrAlreadyQueued
	}

	q := s.queues[in.ServiceID]
	if len(q) >= s.conf.MaxQueueLength {
		s.l.Warnf(ctx, "service.queueService.JoinQueue: %v: %s", ErrQueueFull, in.ServiceID)
		return nil, nil, ErrQueueFull
	}

	prio := in.Priority
	if prio == "" {
		prio = domain.PriorityNormal
	}
	if !s.conf.PriorityEnabled && prio != domain.PriorityNormal {
		s.l.Warnf(ctx, "service.queueService.JoinQueue: %v: %s", ErrPriorityDisabled, prio)
		return nil, nil, ErrPriorityDisabled
	}

	entry := &domain.QueueEntry{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		UserName:    in.UserName,
		ServiceID:   t.ID,
		ServiceName: t.Name,
		JoinedAt:    time.Now(),
		Status:      domain.EntryStatusWaiting,
		Priority:    prio,
	}
	if in.Preferences != nil {
		p := *in.Preferences
		entry.Preferences = &p
	}

	idx := s.insertIndexLocked(q, prio)
	q = append(q, nil)
	copy(q[idx+1:], q[idx:])
	q[idx] = entry
	s.queues[in.ServiceID] = q

	changed := s.recomputeLocked(in.ServiceID)
	s.persistLocked(ctx)
	s.recordLocked(domain.ActionJoin, entry, "", "")

	ev := newPendingEvents()
	ev.addPositions(changed)
	ev.addUpdated(in.ServiceID, s.snapshotLocked(in.ServiceID))

	s.l.Infof(ctx, "user %s joined %s queue at position %d", in.UserID, t.ID, entry.Position)

	return entry.Clone(), ev, nil
}

// insertIndexLocked places an entry behind every entry of equal or
// higher priority and ahead of all strictly lower lanes.
func (s *queueService) insertIndexLocked(q []*domain.QueueEntry, p domain.Priority) int {
	if !s.conf.PriorityEnabled {
		return len(q)
	}
	for i, e := range q {
		if e.Priority.Rank() < p.Rank() {
			return i
		}
	}
	return len(q)
}

func (s *queueService) LeaveQueue(ctx context.Context, entryID string) (bool, error) {
	s.mu.Lock()
	removed, ev, err := s.leaveLocked(ctx, entryID)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("leave_queue", "error")
		return false, err
	}
	if !removed {
		monitoring.TrackOperation("leave_queue", "not_found")
		return false, nil
	}

	monitoring.TrackOperation("leave_queue", "ok")
	s.emit(ctx, ev)

	return true, nil
}

func (s *queueService) leaveLocked(ctx context.Context, entryID string) (bool, *pendingEvents, error) {
	if s.closed {
		return false, nil, ErrServiceClosed
	}

	svcID, idx := s.findLocked(entryID)
	if idx < 0 {
		return false, nil, nil
	}

	q := s.queues[svcID]
	e := q[idx]
	prev := e.Status

	s.queues[svcID] = append(q[:idx], q[idx+1:]...)
	e.Status = domain.EntryStatusCancelled
	e.Position = 0
	e.EstimatedWait = 0

	changed := s.recomputeLocked(svcID)
	s.persistLocked(ctx)
	s.recordLocked(domain.ActionCancel, e, "", "left the queue")

	ev := newPendingEvents()
	ev.addStatus(e.Clone(), prev)
	ev.addPositions(changed)
	ev.addUpdated(svcID, s.snapshotLocked(svcID))

	s.l.Infof(ctx, "entry %s left %s queue", entryID, svcID)

	return true, ev, nil
}

func (s *queueService) CallNext(ctx context.Context, serviceID string) (*domain.QueueEntry, error) {
	s.mu.Lock()
	entry, ev, err := s.callNextLocked(ctx, serviceID)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("call_next", "error")
		return nil, err
	}
	if entry == nil {
		monitoring.TrackOperation("call_next", "empty")
		return nil, nil
	}

	monitoring.TrackOperation("call_next", "ok")
	s.emit(ctx, ev)

	return entry, nil
}

func (s *queueService) callNextLocked(ctx context.Context, serviceID string) (*domain.QueueEntry, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	var target *domain.QueueEntry
	for _, e := range s.queues[serviceID] {
		if e.Status == domain.EntryStatusWaiting {
			target = e
			break
		}
	}
	if target == nil {
		return nil, nil, nil
	}

	prev := target.Status
	now := time.Now()
	target.Status = domain.EntryStatusCalled
	target.CalledAt = &now
	target.EstimatedWait = 0

	token, err := s.issuer.Issue(target)
	if err != nil {
		s.l.Errorf(ctx, "service.queueService.CallNext: %v", err)
	} else {
		target.AdmissionToken = token
	}

	s.persistLocked(ctx)
	s.recordLocked(domain.ActionCallNext, target, "", "")

	ev := newPendingEvents()
	ev.addStatus(target.Clone(), prev)
	ev.addUpdated(serviceID, s.snapshotLocked(serviceID))

	s.l.Infof(ctx, "called entry %s (user %s) for service %s", target.ID, target.UserID, serviceID)

	return target.Clone(), ev, nil
}

func (s *queueService) MarkServiceStarted(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	s.mu.Lock()
	entry, ev, err := s.startLocked(ctx, entryID)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("start_service", "rejected")
		return nil, err
	}
	if entry == nil {
		monitoring.TrackOperation("start_service", "not_found")
		return nil, nil
	}

	monitoring.TrackOperation("start_service", "ok")
	s.emit(ctx, ev)

	return entry, nil
}

func (s *queueService) startLocked(ctx context.Context, entryID string) (*domain.QueueEntry, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	svcID, idx := s.findLocked(entryID)
	if idx < 0 {
		return nil, nil, nil
	}

	e := s.queues[svcID][idx]
	if !domain.ValidTransition(domain.ActionStart, e.Status) {
		s.l.Warnf(ctx, "service.queueService.MarkServiceStarted: %v: entry=%s status=%s",
			ErrInvalidTransition, entryID, e.Status)
		return nil, nil, ErrInvalidTransition
	}

	prev := e.Status
	now := time.Now()
	e.Status = domain.EntryStatusInService
	e.StartedAt = &now

	changed := s.recomputeLocked(svcID)
	s.persistLocked(ctx)
	s.recordLocked(domain.ActionStart, e, "", "")

	ev := newPendingEvents()
	ev.addStatus(e.Clone(), prev)
	ev.addPositions(changed)
	ev.addUpdated(svcID, s.snapshotLocked(svcID))

	s.l.Infof(ctx, "entry %s started service %s", entryID, svcID)

	return e.Clone(), ev, nil
}

func (s *queueService) MarkServiceCompleted(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	s.mu.Lock()
	entry, ev, err := s.completeLocked(ctx, entryID)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("complete_service", "rejected")
		return nil, err
	}
	if entry == nil {
		monitoring.TrackOperation("complete_service", "not_found")
		return nil, nil
	}

	monitoring.TrackOperation("complete_service", "ok")
	s.emit(ctx, ev)

	return entry, nil
}

func (s *queueService) completeLocked(ctx context.Context, entryID string) (*domain.QueueEntry, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	svcID, idx := s.findLocked(entryID)
	if idx < 0 {
		return nil, nil, nil
	}

	q := s.queues[svcID]
	e := q[idx]
	if !domain.ValidTransition(domain.ActionComplete, e.Status) {
		s.l.Warnf(ctx, "service.queueService.MarkServiceCompleted: %v: entry=%s status=%s",
			ErrInvalidTransition, entryID, e.Status)
		return nil, nil, ErrInvalidTransition
	}

	prev := e.Status
	s.queues[svcID] = append(q[:idx], q[idx+1:]...)
	e.Status = domain.EntryStatusCompleted
	e.Position = 0
	e.EstimatedWait = 0

	changed := s.recomputeLocked(svcID)
	s.persistLocked(ctx)
	s.recordLocked(domain.ActionComplete, e, "", "")

	if s.conf.AutoProgressEnabled {
		s.scheduleAutoAdvanceLocked(svcID)
	}

	ev := newPendingEvents()
	ev.addStatus(e.Clone(), prev)
	ev.addPositions(changed)
	ev.addUpdated(svcID, s.snapshotLocked(svcID))

	s.l.Infof(ctx, "entry %s completed service %s", entryID, svcID)

	return e.Clone(), ev, nil
}

func (s *queueService) SkipEntry(ctx context.Context, in SkipEntryInput) (*domain.QueueEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		monitoring.TrackOperation("skip_entry", "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	entry, ev, err := s.skipLocked(ctx, in)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("skip_entry", "rejected")
		return nil, err
	}
	if entry == nil {
		monitoring.TrackOperation("skip_entry", "not_found")
		return nil, nil
	}

	monitoring.TrackOperation("skip_entry", "ok")
	s.emit(ctx, ev)

	return entry, nil
}

func (s *queueService) skipLocked(ctx context.Context, in SkipEntryInput) (*domain.QueueEntry, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	svcID, idx := s.findLocked(in.EntryID)
	if idx < 0 {
		return nil, nil, nil
	}

	q := s.queues[svcID]
	e := q[idx]
	if !domain.ValidTransition(domain.ActionSkip, e.Status) {
		s.l.Warnf(ctx, "service.queueService.SkipEntry: %v: entry=%s status=%s",
			ErrInvalidTransition, in.EntryID, e.Status)
		return nil, nil, ErrInvalidTransition
	}

	note := "skipped"
	if in.Reason != "" {
		note = "skipped: " + in.Reason
	}
	e.StaffNotes = appendNote(e.StaffNotes, note)
	e.Status = domain.EntryStatusWaiting

	q = append(q[:idx], q[idx+1:]...)
	s.queues[svcID] = append(q, e)

	changed := s.recomputeLocked(svcID)
	s.persistLocked(ctx)
	s.recordLocked(domain.ActionSkip, e, in.ActorID, in.Reason)

	ev := newPendingEvents()
	ev.addPositions(changed)
	ev.addUpdated(svcID, s.snapshotLocked(svcID))

	s.l.Infof(ctx, "entry %s skipped to tail of %s queue", in.EntryID, svcID)

	return e.Clone(), ev, nil
}

func (s *queueService) AdjustPosition(ctx context.Context, in AdjustPositionInput) (*domain.QueueEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		monitoring.TrackOperation("adjust_position", "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	entry, ev, err := s.adjustLocked(ctx, in)
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackOperation("adjust_position", "rejected")
		return nil, err
	}
	if entry == nil {
		monitoring.TrackOperation("adjust_position", "not_found")
		return nil, nil
	}

	monitoring.TrackOperation("adjust_position", "ok")
	s.emit(ctx, ev)

	return entry, nil
}

func (s *queueService) adjustLocked(ctx context.Context, in AdjustPositionInput) (*domain.QueueEntry, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	svcID, idx := s.findLocked(in.EntryID)
	if idx < 0 {
		return nil, nil, nil
	}

	q := s.queues[svcID]
	pos := in.NewPosition
	if pos < 1 {
		pos = 1
	}
	if pos > len(q) {
		pos = len(q)
	}
	if pos == idx+1 {
		return q[idx].Clone(), newPendingEvents(), nil
	}

	e := q[idx]
	q = append(q[:idx], q[idx+1:]...)
	q = append(q, nil)
	copy(q[pos:], q[pos-1:])
	q[pos-1] = e
	s.queues[svcID] = q

	changed := s.recomputeLocked(svcID)
	s.persistLocked(ctx)
	s.recordLocked(domain.ActionAdjust, e, in.ActorID, fmt.Sprintf("moved to position %d", pos))

	ev := newPendingEvents()
	ev.addPositions(changed)
	ev.addUpdated(svcID, s.snapshotLocked(svcID))

	s.l.Infof(ctx, "entry %s moved to position %d in %s queue", in.EntryID, pos, svcID)

	return e.Clone(), ev, nil
}

func (s *queueService) VerifyAdmissionToken(ctx context.Context, token string) (*domain.QueueEntry, error) {
	entryID, err := s.issuer.Verify(token)
	if err != nil {
		monitoring.TrackOperation("verify_token", "invalid")
		s.l.Warnf(ctx, "service.queueService.VerifyAdmissionToken: %v", err)
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	svcID, idx := s.findLocked(entryID)
	if idx < 0 {
		monitoring.TrackOperation("verify_token", "not_found")
		return nil, nil
	}

	monitoring.TrackOperation("verify_token", "ok")
	return s.queues[svcID][idx].Clone(), nil
}

func (s *queueService) GetQueueForService(ctx context.Context, serviceID string) ([]*domain.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(serviceID), nil
}

func (s *queueService) GetAllQueues(ctx context.Context) (map[string][]*domain.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]*domain.QueueEntry, len(s.queues))
	for svcID := range s.queues {
		out[svcID] = s.snapshotLocked(svcID)
	}
	return out, nil
}

func (s *queueService) GetEntry(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svcID, idx := s.findLocked(entryID)
	if idx < 0 {
		return nil, nil
	}
	return s.queues[svcID][idx].Clone(), nil
}

func (s *queueService) GetUserEntry(ctx context.Context, userID string) (*domain.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.userActiveLocked(userID); e != nil {
		return e.Clone(), nil
	}
	return nil, nil
}

func (s *queueService) GetQueueStats(ctx context.Context, serviceID string) (*QueueStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if serviceID == "" {
		return s.overallStatsLocked(), nil
	}

	t, ok := s.types[serviceID]
	if !ok {
		return nil, nil
	}

	waiting, inService, avg := s.statsLocked(serviceID)
	stats := &QueueStats{
		ServiceID:      serviceID,
		WaitingCount:   waiting,
		InServiceCount: inService,
		AverageWait:    avg,
	}
	if t.EstimatedDuration > 0 {
		stats.ThroughputPerHour = 60.0 / float64(t.EstimatedDuration)
	}
	return stats, nil
}

func (s *queueService) overallStatsLocked() *QueueStats {
	stats := &QueueStats{}
	totalWait := 0
	for svcID := range s.queues {
		for _, e := range s.queues[svcID] {
			switch e.Status {
			case domain.EntryStatusWaiting:
				stats.WaitingCount++
				totalWait += e.EstimatedWait
			case domain.EntryStatusInService:
				stats.InServiceCount++
			}
		}
	}
	if stats.WaitingCount > 0 {
		stats.AverageWait = float64(totalWait) / float64(stats.WaitingCount)
	}
	return stats
}

func (s *queueService) GetServiceTypes(ctx context.Context) ([]*domain.ServiceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ServiceType, 0, len(s.order))
	for _, id := range s.order {
		t := *s.types[id]
		out = append(out, &t)
	}
	return out, nil
}

func (s *queueService) GetServiceType(ctx context.Context, serviceID string) (*domain.ServiceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.types[serviceID]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (s *queueService) GetRecentTransactions(ctx context.Context, limit int) ([]*domain.QueueTransaction, error) {
	return s.txLog.recent(limit), nil
}

func (s *queueService) UpdateServiceType(ctx context.Context, in UpdateServiceTypeInput) (*domain.ServiceType, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	t, ev, err := s.updateTypeLocked(ctx, in)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.emit(ctx, ev)
	return t, nil
}

func (s *queueService) updateTypeLocked(ctx context.Context, in UpdateServiceTypeInput) (*domain.ServiceType, *pendingEvents, error) {
	if s.closed {
		return nil, nil, ErrServiceClosed
	}

	t, ok := s.types[in.ID]
	if !ok {
		s.l.Warnf(ctx, "service.queueService.UpdateServiceType: %v: %s", ErrServiceNotFound, in.ID)
		return nil, nil, ErrServiceNotFound
	}

	if in.Name != nil {
		t.Name = *in.Name
		for _, e := range s.queues[t.ID] {
			e.ServiceName = t.Name
		}
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.EstimatedDuration != nil {
		t.EstimatedDuration = *in.EstimatedDuration
	}
	if in.MaxConcurrent != nil {
		t.MaxConcurrent = *in.MaxConcurrent
	}
	if in.Active != nil {
		t.Active = *in.Active
	}
	if in.Icon != nil {
		t.Icon = *in.Icon
	}
	if in.Color != nil {
		t.Color = *in.Color
	}

	changed := s.recomputeLocked(t.ID)
	s.persistLocked(ctx)

	ev := newPendingEvents()
	if len(changed) > 0 || in.Name != nil {
		ev.addPositions(changed)
		ev.addUpdated(t.ID, s.snapshotLocked(t.ID))
	}

	s.l.Infof(ctx, "service type %s updated", t.ID)

	c := *t
	return &c, ev, nil
}

func (s *queueService) GetConfiguration(ctx context.Context) (*domain.QueueConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := *s.conf
	return &c, nil
}

func (s *queueService) UpdateConfiguration(ctx context.Context, cfg *domain.QueueConfiguration) error {
	if cfg == nil {
		return ErrInvalidInput
	}
	if cfg.MaxQueueLength <= 0 {
		return fmt.Errorf("%w: max queue length must be positive", ErrInvalidInput)
	}
	if !cfg.EstimationAlgorithm.Valid() {
		return fmt.Errorf("%w: unknown estimation algorithm %q", ErrInvalidInput, cfg.EstimationAlgorithm)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServiceClosed
	}

	c := *cfg
	s.conf = &c

	if err := s.repo.SaveConfiguration(ctx, s.conf); err != nil {
		s.l.Errorf(ctx, "service.queueService.UpdateConfiguration: %v", err)
	}

	s.l.Infof(ctx, "queue configuration updated: max_length=%d priority=%t auto_progress=%t",
		c.MaxQueueLength, c.PriorityEnabled, c.AutoProgressEnabled)

	return nil
}

// RecomputeWaitTimes refreshes every entry's estimate, persisting and
// emitting only when something actually changed.
func (s *queueService) RecomputeWaitTimes(ctx context.Context) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}

	ev := newPendingEvents()
	dirty := false
	for _, svcID := range s.order {
		changed := s.recomputeLocked(svcID)
		if len(changed) == 0 {
			continue
		}
		dirty = true
		ev.addPositions(changed)
		ev.addUpdated(svcID, s.snapshotLocked(svcID))
	}
	if dirty {
		s.persistLocked(ctx)
	}

	s.mu.Unlock()

	if dirty {
		s.emit(ctx, ev)
	}

	return nil
}

func (s *queueService) SubscribeQueueUpdated(fn QueueUpdatedFunc) func() {
	return s.queueUpdated.subscribe(fn)
}

func (s *queueService) SubscribePositionChanged(fn PositionChangedFunc) func() {
	return s.positionChanged.subscribe(fn)
}

func (s *queueService) SubscribeStatusChanged(fn StatusChangedFunc) func() {
	return s.statusChanged.subscribe(fn)
}

func (s *queueService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil

	st := s.stateLocked()
	snap := s.statsSnapshotLocked()
	s.mu.Unlock()

	var firstErr error
	if err := s.repo.SaveState(ctx, st); err != nil {
		s.l.Errorf(ctx, "service.queueService.Shutdown: %v", err)
		firstErr = err
	}
	if err := s.repo.SaveStatsSnapshot(ctx, snap); err != nil {
		s.l.Errorf(ctx, "service.queueService.Shutdown: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	s.l.Info(ctx, "queue service shut down")

	return firstErr
}

func (s *queueService) scheduleAutoAdvanceLocked(serviceID string) {
	if s.closed {
		return
	}

	s.timerSeq++
	id := s.timerSeq
	s.timers[id] = time.AfterFunc(s.autoDelay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}

		ctx := context.Background()
		entry, err := s.CallNext(ctx, serviceID)
		if err != nil {
			s.l.Errorf(ctx, "service.queueService.autoAdvance: %v", err)
			return
		}
		if entry != nil {
			s.l.Infof(ctx, "auto-progress called entry %s for service %s", entry.ID, serviceID)
		}
	})
}

func (s *queueService) findLocked(entryID string) (string, int) {
	for svcID, q := range s.queues {
		for i, e := range q {
			if e.ID == entryID {
				return svcID, i
			}
		}
	}
	return "", -1
}

func (s *queueService) userActiveLocked(userID string) *domain.QueueEntry {
	for _, q := range s.queues {
		for _, e := range q {
			if e.UserID == userID && e.IsActive() {
				return e
			}
		}
	}
	return nil
}

// recomputeLocked renumbers positions densely (1..N) and refreshes wait
// estimates for waiting entries. Returns clones of entries whose
// position or estimate changed.
func (s *queueService) recomputeLocked(serviceID string) []*domain.QueueEntry {
	q := s.queues[serviceID]
	t := s.types[serviceID]

	inService := 0
	for _, e := range q {
		if e.Status == domain.EntryStatusInService {
			inService++
		}
	}

	var changed []*domain.QueueEntry
	waiting := 0
	for i, e := range q {
		dirty := false
		if e.Position != i+1 {
			e.Position = i + 1
			dirty = true
		}
		if e.Status == domain.EntryStatusWaiting {
			waiting++
			if t != nil {
				if w := estimateWait(t, e.Position, inService); w != e.EstimatedWait {
					e.EstimatedWait = w
					dirty = true
				}
			}
		}
		if dirty {
			changed = append(changed, e.Clone())
		}
	}

	monitoring.SetQueueDepth(serviceID, waiting, inService)

	return changed
}

// estimateWait is the capacity-aware approximation:
// ceil((position-1) / free slots) * duration, with free slots floored
// at one.
func estimateWait(t *domain.ServiceType, position, inService int) int {
	slots := t.MaxConcurrent - inService
	if slots < 1 {
		slots = 1
	}
	rounds := int(math.Ceil(float64(position-1) / float64(slots)))
	return rounds * t.EstimatedDuration
}

func (s *queueService) statsLocked(serviceID string) (waiting, inService int, avg float64) {
	total := 0
	for _, e := range s.queues[serviceID] {
		switch e.Status {
		case domain.EntryStatusWaiting:
			waiting++
			total += e.EstimatedWait
		case domain.EntryStatusInService:
			inService++
		}
	}
	if waiting > 0 {
		avg = float64(total) / float64(waiting)
	}
	return waiting, inService, avg
}

func (s *queueService) statsSnapshotLocked() *repository.StatsSnapshot {
	snap := &repository.StatsSnapshot{
		TakenAt:    time.Now(),
		PerService: make(map[string]repository.ServiceStatsSnapshot, len(s.order)),
	}
	for _, svcID := range s.order {
		waiting, inService, avg := s.statsLocked(svcID)
		st := repository.ServiceStatsSnapshot{
			Waiting:     waiting,
			InService:   inService,
			AverageWait: avg,
		}
		if d := s.types[svcID].EstimatedDuration; d > 0 {
			st.ThroughputPerHour = 60.0 / float64(d)
		}
		snap.PerService[svcID] = st
	}
	return snap
}

func (s *queueService) snapshotLocked(serviceID string) []*domain.QueueEntry {
	q := s.queues[serviceID]
	out := make([]*domain.QueueEntry, len(q))
	for i, e := range q {
		out[i] = e.Clone()
	}
	return out
}

func (s *queueService) stateLocked() *repository.State {
	return &repository.State{
		Queues:       s.queues,
		ServiceTypes: s.orderedTypesLocked(),
		Config:       s.conf,
	}
}

func (s *queueService) orderedTypesLocked() []*domain.ServiceType {
	out := make([]*domain.ServiceType, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.types[id])
	}
	return out
}

func (s *queueService) persistLocked(ctx context.Context) {
	if err := s.repo.SaveState(ctx, s.stateLocked()); err != nil {
		s.l.Errorf(ctx, "service.queueService.persist: %v", err)
	}
}

func (s *queueService) recordLocked(action domain.EntryAction, e *domain.QueueEntry, actorID, note string) {
	s.txLog.append(domain.QueueTransaction{
		EntryID:   e.ID,
		ServiceID: e.ServiceID,
		Action:    action,
		ActorID:   actorID,
		Note:      note,
		At:        time.Now(),
	})
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

type pendingEvents struct {
	status    []StatusChangedEvent
	positions []PositionChangedEvent
	updated   []QueueUpdatedEvent
}

func newPendingEvents() *pendingEvents {
	return &pendingEvents{}
}

func (p *pendingEvents) addStatus(e *domain.QueueEntry, prev domain.EntryStatus) {
	p.status = append(p.status, StatusChangedEvent{Entry: e, Previous: prev, At: time.Now()})
}

func (p *pendingEvents) addPositions(entries []*domain.QueueEntry) {
	for _, e := range entries {
		p.positions = append(p.positions, PositionChangedEvent{Entry: e, At: time.Now()})
	}
}

func (p *pendingEvents) addUpdated(serviceID string, entries []*domain.QueueEntry) {
	p.updated = append(p.updated, QueueUpdatedEvent{ServiceID: serviceID, Entries: entries, At: time.Now()})
}

func (s *queueService) emit(ctx context.Context, ev *pendingEvents) {
	if ev == nil {
		return
	}
	for _, e := range ev.status {
		s.statusChanged.emit(ctx, e)
		monitoring.TrackEventEmitted("status_changed")
	}
	for _, e := range ev.positions {
		s.positionChanged.emit(ctx, e)
		monitoring.TrackEventEmitted("position_changed")
	}
	for _, e := range ev.updated {
		s.queueUpdated.emit(ctx, e)
		monitoring.TrackEventEmitted("queue_updated")
	}
}
