package fanout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/shared"
)

// defaultBufferSize is each subscriber's per-connection queue depth
const defaultBufferSize = 64

// Subscription is one subscriber's membership in a set of channels. Events
// arrive on C in emission order per channel; a subscriber that falls behind
// its buffer loses events rather than slowing publishers down.
type Subscription struct {
	id       uuid.UUID
	channels []string
	C        <-chan shared.Notification
	ch       chan shared.Notification
}

// Channels returns the channels this subscription joined
func (s *Subscription) Channels() []string {
	return s.channels
}

// Bus is an in-process channel-keyed notifier. Subscribers join channels
// explicitly and receive only events for channels they joined. Delivery is
// at-most-once and never blocks a publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[uuid.UUID]*Subscription
	bufferSize  int
	logger      *zap.Logger
}

// NewBus creates a Bus. bufferSize <= 0 uses the default.
func NewBus(bufferSize int, logger *zap.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subscribers: make(map[string]map[uuid.UUID]*Subscription),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Subscribe joins the given channels and returns a subscription whose C
// carries every event published to any of them.
func (b *Bus) Subscribe(channels ...string) *Subscription {
	ch := make(chan shared.Notification, b.bufferSize)
	sub := &Subscription{
		id:       uuid.New(),
		channels: append([]string(nil), channels...),
		C:        ch,
		ch:       ch,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, channel := range channels {
		if b.subscribers[channel] == nil {
			b.subscribers[channel] = make(map[uuid.UUID]*Subscription)
		}
		b.subscribers[channel][sub.id] = sub
	}
	return sub
}

// Unsubscribe removes the subscription from all its channels and closes C
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, channel := range sub.channels {
		if subs := b.subscribers[channel]; subs != nil {
			delete(subs, sub.id)
			if len(subs) == 0 {
				delete(b.subscribers, channel)
			}
		}
	}
	close(sub.ch)
}

// Publish delivers the notification to every current subscriber of the
// channel. A full subscriber buffer drops that subscriber's copy. The read
// lock is held across the sends, which are non-blocking, so Unsubscribe
// cannot close a subscriber channel mid-delivery.
func (b *Bus) Publish(_ context.Context, channel string, n shared.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers[channel] {
		select {
		case sub.ch <- n:
		default:
			b.logger.Debug("subscriber buffer full, dropping notification",
				zap.String("channel", channel),
				zap.String("kind", n.Kind),
			)
		}
	}
}

// SubscriberCount returns how many subscriptions a channel currently has
func (b *Bus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channel])
}

var _ shared.Notifier = (*Bus)(nil)
