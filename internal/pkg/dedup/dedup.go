// Package dedup suppresses duplicate webhook deliveries. Providers redeliver
// on timeout, and every inbound message id is only processed once.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyTTL = 24 * time.Hour

type Deduper struct {
	client *redis.Client
}

func NewDeduper(client *redis.Client) *Deduper {
	return &Deduper{client: client}
}

// Seen marks the message id and reports whether it was already marked.
// Redis outages fail open: processing a duplicate beats dropping a real
// clock-in.
func (d *Deduper) Seen(ctx context.Context, platform, messageID string) bool {
	if messageID == "" {
		return false
	}

	set, err := d.client.SetNX(ctx, "webhook:"+platform+":"+messageID, 1, keyTTL).Result()
	if err != nil {
		logrus.WithError(err).Warn("webhook dedup check failed")
		return false
	}
	return !set
}
