package ws

import (
	"context"
	"sync"

	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/service"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type broadcastMsg struct {
	serviceID string
	msg       Message
}

// Hub fans queue events out to connected dashboard sockets. Clients may
// filter on a single service via ?service_id=; an empty filter receives
// everything. Slow clients are dropped rather than blocking the rest.
type Hub struct {
	svc service.QueueService
	l   logger.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}

	mu       sync.Mutex
	teardown []func()
}

func NewHub(svc service.QueueService, l logger.Logger) *Hub {
	return &Hub{
		svc:        svc,
		l:          l,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	h.subscribe()
	defer h.unsubscribe()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.sendSnapshot(ctx, c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case bm := <-h.broadcast:
			for c := range h.clients {
				if c.serviceID != "" && c.serviceID != bm.serviceID {
					continue
				}
				select {
				case c.send <- bm.msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

func (h *Hub) subscribe() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.teardown = append(h.teardown,
		h.svc.SubscribeQueueUpdated(func(ev service.QueueUpdatedEvent) {
			h.enqueue(ev.ServiceID, Message{Type: "queue_updated", Payload: ev})
		}),
		h.svc.SubscribePositionChanged(func(ev service.PositionChangedEvent) {
			h.enqueue(ev.Entry.ServiceID, Message{Type: "position_changed", Payload: ev})
		}),
		h.svc.SubscribeStatusChanged(func(ev service.StatusChangedEvent) {
			h.enqueue(ev.Entry.ServiceID, Message{Type: "status_changed", Payload: ev})
		}),
	)
}

func (h *Hub) unsubscribe() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range h.teardown {
		t()
	}
	h.teardown = nil
}

// enqueue never blocks the emitting operation; if the hub is backed up
// the message is dropped.
func (h *Hub) enqueue(serviceID string, msg Message) {
	select {
	case h.broadcast <- broadcastMsg{serviceID: serviceID, msg: msg}:
	default:
		h.l.Warnf(context.Background(), "delivery.ws.hub.enqueue: dropping %s broadcast", msg.Type)
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, c *Client) {
	queues, err := h.svc.GetAllQueues(ctx)
	if err != nil {
		h.l.Errorf(ctx, "delivery.ws.hub.sendSnapshot: %v", err)
		return
	}
	if c.serviceID != "" {
		entries := queues[c.serviceID]
		c.send <- Message{Type: "snapshot", Payload: map[string]any{c.serviceID: entries}}
		return
	}
	c.send <- Message{Type: "snapshot", Payload: queues}
}
