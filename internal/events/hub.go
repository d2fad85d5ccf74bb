package events

import "sync"

const subscriberBuffer = 10

// Subscription receives the events published on one topic.
type Subscription struct {
	topic string
	ch    chan Event
}

func (s *Subscription) Events() <-chan Event { return s.ch }

// Hub fans events out to subscribers by topic. Each browser session is a
// topic, so a board's events only reach that session's pages.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{topic: topic, ch: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel. It is safe to call twice.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[s.topic]
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.topics, s.topic)
	}
	close(s.ch)
}

// Publish delivers e to every subscriber of topic and reports how many got
// it. A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(topic string, e Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for s := range h.topics[topic] {
		select {
		case s.ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
