package plantjournal

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plantjournal/plantjournal/pkg/store"
)

const subscriberBuffer = 16

// Bus fans committed entity mutations out to WebSocket subscribers. Publish
// never blocks: a subscriber whose buffer is full loses the event, which the
// browser recovers from by re-fetching.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]chan store.Mutation
	closed bool
	log    zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[uuid.UUID]chan store.Mutation),
		log:  log,
	}
}

// Subscribe registers a new subscriber and returns its id and channel. The
// channel is closed on Unsubscribe or when the bus shuts down.
func (b *Bus) Subscribe() (uuid.UUID, <-chan store.Mutation) {
	ch := make(chan store.Mutation, subscriberBuffer)
	id := uuid.New()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	return id, ch
}

func (b *Bus) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the mutation to every subscriber with buffer room.
func (b *Bus) Publish(m store.Mutation) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- m:
		default:
			b.log.Warn().Str("subscriber", id.String()).Msg("live feed subscriber is slow, dropping event")
		}
	}
}

// Close shuts the bus down; all subscriber channels are closed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
