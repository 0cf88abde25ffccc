// Package eventbus fans packets and charger events out to interested
// goroutines.
package eventbus

import (
	"sync"
)

// EventBus is a topic-based publish/subscribe hub. Delivery is best-effort:
// a subscriber whose buffer is full misses the message.
type EventBus interface {
	// Publish returns the number of subscribers the message was delivered to.
	Publish(topic string, message any) int
	Subscribe(topic string, bufSize int, filter func(any) bool) Subscriber
}

type Subscriber interface {
	C() <-chan any
	Unsubscribe()
}

type eventBus struct {
	mu     sync.Mutex
	topics map[string]map[*subscriber]struct{}
}

type subscriber struct {
	eb     *eventBus
	topic  string
	filter func(any) bool
	ch     chan any
	once   sync.Once
}

func MatchAll(any) bool {
	return true
}

// New returns an initialized EventBus.
func New() EventBus {
	return &eventBus{
		topics: make(map[string]map[*subscriber]struct{}),
	}
}

func (eb *eventBus) Publish(topic string, message any) int {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	delivered := 0
	for sub := range eb.topics[topic] {
		if !sub.filter(message) {
			continue
		}
		select {
		case sub.ch <- message:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribe to a topic with a filter function. A nil filter matches
// everything.
func (eb *eventBus) Subscribe(topic string, bufSize int, filter func(any) bool) Subscriber {
	if filter == nil {
		filter = MatchAll
	}
	sub := &subscriber{
		eb:     eb,
		topic:  topic,
		filter: filter,
		ch:     make(chan any, bufSize),
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.topics[topic] == nil {
		eb.topics[topic] = make(map[*subscriber]struct{})
	}
	eb.topics[topic][sub] = struct{}{}
	return sub
}

func (s *subscriber) C() <-chan any {
	return s.ch
}

// Unsubscribe detaches the subscriber and closes its channel. It is safe to
// call more than once.
func (s *subscriber) Unsubscribe() {
	s.once.Do(func() {
		s.eb.mu.Lock()
		defer s.eb.mu.Unlock()
		delete(s.eb.topics[s.topic], s)
		if len(s.eb.topics[s.topic]) == 0 {
			delete(s.eb.topics, s.topic)
		}
		close(s.ch)
	})
}
