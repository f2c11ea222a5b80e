package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/kafka"
)

// HandleGuestCheckedOut cancels a guest's active queue entry when the
// guest service reports them checked out of the event.
func (c *Consumer) HandleGuestCheckedOut(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.GuestCheckedOutEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleGuestCheckedOut: %v", err)
		return err
	}

	entry, err := c.svc.GetUserEntry(ctx, e.UserID)
	if err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleGuestCheckedOut: %v", err)
		return err
	}
	if entry == nil {
		c.l.Debugf(ctx, "guest %s checked out with no active queue entry", e.UserID)
		return nil
	}

	removed, err := c.svc.LeaveQueue(ctx, entry.ID)
	if err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleGuestCheckedOut: %v", err)
		return err
	}
	if removed {
		c.l.Infof(ctx, "cancelled entry %s after guest %s checked out", entry.ID, e.UserID)
	}

	return nil
}
