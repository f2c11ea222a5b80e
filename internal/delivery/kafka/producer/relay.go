package producer

import (
	"context"

	kafka "github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/service"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

// Relay forwards queue events onto Kafka so the operations dashboard
// and downstream services see lifecycle changes without polling.
// Publish failures are logged and dropped; the queue itself never
// blocks on the broker.
type Relay struct {
	svc  service.QueueService
	prod Producer
	l    logger.Logger

	ctx      context.Context
	teardown []func()
}

func NewRelay(svc service.QueueService, prod Producer, l logger.Logger) *Relay {
	return &Relay{
		svc:  svc,
		prod: prod,
		l:    l,
	}
}

func (r *Relay) Start(ctx context.Context) {
	r.ctx = ctx
	r.teardown = append(r.teardown,
		r.svc.SubscribeStatusChanged(r.onStatusChanged),
		r.svc.SubscribeQueueUpdated(r.onQueueUpdated),
	)
	r.l.Info(ctx, "kafka relay started")
}

func (r *Relay) Stop() {
	for _, t := range r.teardown {
		t()
	}
	r.teardown = nil
}

func (r *Relay) onStatusChanged(ev service.StatusChangedEvent) {
	e := ev.Entry
	payload := kafka.EntryEvent{
		EntryID:        e.ID,
		UserID:         e.UserID,
		ServiceID:      e.ServiceID,
		Status:         string(e.Status),
		Previous:       string(ev.Previous),
		Position:       e.Position,
		EstimatedWait:  e.EstimatedWait,
		AdmissionToken: e.AdmissionToken,
	}

	var err error
	switch e.Status {
	case domain.EntryStatusCalled:
		err = r.prod.PublishEntryCalled(r.ctx, payload)
	case domain.EntryStatusInService:
		err = r.prod.PublishEntryStarted(r.ctx, payload)
	case domain.EntryStatusCompleted:
		err = r.prod.PublishEntryCompleted(r.ctx, payload)
	case domain.EntryStatusCancelled:
		err = r.prod.PublishEntryCancelled(r.ctx, payload)
	default:
		return
	}
	if err != nil {
		r.l.Errorf(r.ctx, "delivery.kafka.producer.relay.onStatusChanged: %v", err)
	}
}

func (r *Relay) onQueueUpdated(ev service.QueueUpdatedEvent) {
	payload := kafka.QueueUpdatedEvent{
		ServiceID: ev.ServiceID,
		Entries:   make([]kafka.EntrySummary, 0, len(ev.Entries)),
	}
	for _, e := range ev.Entries {
		if e.Status == domain.EntryStatusWaiting {
			payload.WaitingCount++
		}
		payload.Entries = append(payload.Entries, kafka.EntrySummary{
			EntryID:       e.ID,
			UserID:        e.UserID,
			Position:      e.Position,
			Status:        string(e.Status),
			EstimatedWait: e.EstimatedWait,
		})
	}

	if err := r.prod.PublishQueueUpdated(r.ctx, payload); err != nil {
		r.l.Errorf(r.ctx, "delivery.kafka.producer.relay.onQueueUpdated: %v", err)
	}
}
