package store

import "sync"

// EntityType identifies which kind of record a mutation touched.
type EntityType string

const (
	EntitySong       EntityType = "song"
	EntityPractice   EntityType = "practice"
	EntityDeck       EntityType = "deck"
	EntityMembership EntityType = "deck_membership"
)

// Action is the direction of a mutation.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// Mutation describes one committed local write.
type Mutation struct {
	Entity EntityType
	Action Action
	ID     string
}

type subscriber struct {
	id int
	fn func(Mutation)
}

// Hub fans committed mutations out to subscribers. Subscribers are
// called synchronously, after the write has been persisted, in the
// order they subscribed.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn and returns a function that removes it.
// Unsubscribing twice is harmless.
func (h *Hub) Subscribe(fn func(Mutation)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs = append(h.subs, subscriber{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

func (h *Hub) publish(m Mutation) {
	h.mu.Lock()
	fns := make([]func(Mutation), len(h.subs))
	for i, s := range h.subs {
		fns[i] = s.fn
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}
