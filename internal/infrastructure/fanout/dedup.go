package fanout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/shared"
)

// dedupKeyPrefix namespaces the suppression keys in Redis
const dedupKeyPrefix = "sellerops:notify:dedup:"

// recurringKinds are the alert kinds that fire repeatedly for the same
// underlying condition and are worth suppressing inside the window.
var recurringKinds = map[string]bool{
	shared.KindLowStock: true,
}

// DedupingNotifier wraps a Notifier and suppresses repeats of recurring
// alerts within a rolling window. The check is best-effort and non-locking:
// concurrent triggers can still emit duplicates, and a Redis failure never
// suppresses delivery.
type DedupingNotifier struct {
	next   shared.Notifier
	client *redis.Client
	window time.Duration
	logger *zap.Logger
}

// NewDedupingNotifier creates a deduping wrapper around next
func NewDedupingNotifier(next shared.Notifier, client *redis.Client, window time.Duration, logger *zap.Logger) *DedupingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DedupingNotifier{
		next:   next,
		client: client,
		window: window,
		logger: logger,
	}
}

// Publish forwards the notification unless an identical recurring alert was
// already published to the same channel inside the window.
func (d *DedupingNotifier) Publish(ctx context.Context, channel string, n shared.Notification) {
	if !recurringKinds[n.Kind] || d.client == nil {
		d.next.Publish(ctx, channel, n)
		return
	}

	key := dedupKey(channel, n)
	created, err := d.client.SetNX(ctx, key, 1, d.window).Result()
	if err != nil {
		d.logger.Warn("notification dedup check failed, delivering anyway",
			zap.String("channel", channel),
			zap.String("kind", n.Kind),
			zap.Error(err),
		)
		d.next.Publish(ctx, channel, n)
		return
	}
	if !created {
		d.logger.Debug("suppressed duplicate notification",
			zap.String("channel", channel),
			zap.String("kind", n.Kind),
		)
		return
	}

	d.next.Publish(ctx, channel, n)
}

// dedupKey identifies a notification by channel, kind, and payload content.
// Timestamps are excluded so repeats of the same condition collide.
func dedupKey(channel string, n shared.Notification) string {
	payload, _ := json.Marshal(n.Payload)
	sum := sha256.Sum256(append([]byte(channel+"|"+n.Kind+"|"), payload...))
	return dedupKeyPrefix + hex.EncodeToString(sum[:])
}

var _ shared.Notifier = (*DedupingNotifier)(nil)
