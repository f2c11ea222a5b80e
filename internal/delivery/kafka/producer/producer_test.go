package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafka "github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

func TestProducer_PublishEntryCalled(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev kafka.EntryEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.EntryID != "e1" || ev.ServiceID != "haircut" || ev.Status != "called" {
			return fmt.Errorf("unexpected payload: %+v", ev)
		}
		if ev.Timestamp.IsZero() {
			return fmt.Errorf("timestamp not stamped")
		}
		return nil
	})

	p := NewProducer(sp, logger.InitializeTestZapLogger())
	err := p.PublishEntryCalled(context.Background(), kafka.EntryEvent{
		EntryID:        "e1",
		UserID:         "u1",
		ServiceID:      "haircut",
		Status:         "called",
		AdmissionToken: "tok",
	})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_PublishQueueUpdated(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev kafka.QueueUpdatedEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.ServiceID != "massage" || ev.WaitingCount != 2 || len(ev.Entries) != 2 {
			return fmt.Errorf("unexpected payload: %+v", ev)
		}
		return nil
	})

	p := NewProducer(sp, logger.InitializeTestZapLogger())
	err := p.PublishQueueUpdated(context.Background(), kafka.QueueUpdatedEvent{
		ServiceID:    "massage",
		WaitingCount: 2,
		Entries: []kafka.EntrySummary{
			{EntryID: "e1", UserID: "u1", Position: 1, Status: "waiting"},
			{EntryID: "e2", UserID: "u2", Position: 2, Status: "waiting"},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_PublishBrokerError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducer(sp, logger.InitializeTestZapLogger())
	err := p.PublishEntryCompleted(context.Background(), kafka.EntryEvent{
		EntryID: "e1", ServiceID: "haircut", Status: "completed",
	})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.NoError(t, p.Close())
}
