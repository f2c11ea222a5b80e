package service

import (
	"context"
	"sync"

	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

type QueueUpdatedFunc func(QueueUpdatedEvent)

type PositionChangedFunc func(PositionChangedEvent)

type StatusChangedFunc func(StatusChangedEvent)

type subscriber[T any] struct {
	id int
	fn func(T)
}

// subject is a typed observer registry. Delivery is synchronous and in
// registration order; a panicking subscriber is logged and skipped
// without aborting delivery to the rest.
type subject[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
	name   string
	l      logger.Logger
}

func newSubject[T any](name string, l logger.Logger) *subject[T] {
	return &subject[T]{
		name: name,
		l:    l,
	}
}

// subscribe registers fn and returns its teardown. Calling the teardown
// more than once is harmless.
func (s *subject[T]) subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *subject[T]) emit(ctx context.Context, ev T) {
	s.mu.Lock()
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		s.deliver(ctx, sub, ev)
	}
}

func (s *subject[T]) deliver(ctx context.Context, sub subscriber[T], ev T) {
	defer func() {
		if r := recover(); r != nil {
			s.l.Errorf(ctx, "service.subject.%s: subscriber %d panicked: %v", s.name, sub.id, r)
		}
	}()
	sub.fn(ev)
}

func (s *subject[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
