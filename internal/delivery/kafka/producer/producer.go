package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

type Producer interface {
	PublishEntryCalled(ctx context.Context, event kafka.EntryEvent) error
	PublishEntryStarted(ctx context.Context, event kafka.EntryEvent) error
	PublishEntryCompleted(ctx context.Context, event kafka.EntryEvent) error
	PublishEntryCancelled(ctx context.Context, event kafka.EntryEvent) error
	PublishQueueUpdated(ctx context.Context, event kafka.QueueUpdatedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishEntryCalled(ctx context.Context, event kafka.EntryEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicEntryCalled, event.ServiceID, event)
}

func (p *implProducer) PublishEntryStarted(ctx context.Context, event kafka.EntryEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicEntryStarted, event.ServiceID, event)
}

func (p *implProducer) PublishEntryCompleted(ctx context.Context, event kafka.EntryEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicEntryCompleted, event.ServiceID, event)
}

func (p *implProducer) PublishEntryCancelled(ctx context.Context, event kafka.EntryEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicEntryCancelled, event.ServiceID, event)
}

func (p *implProducer) PublishQueueUpdated(ctx context.Context, event kafka.QueueUpdatedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicQueueUpdated, event.ServiceID, event)
}

func (p *implProducer) publish(ctx context.Context, topic, key string, payload any) error {
	val, err := json.Marshal(payload)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.producer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by service_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	if err := p.prod.Close(); err != nil {
		return err
	}

	return nil
}
