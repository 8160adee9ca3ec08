// Package stats keeps best-effort per-link claim counters in Redis. The
// counters are observability data, not catalog state: when Redis is not
// configured the recorder is a no-op and the portal behaves identically.
package stats

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

const keyPrefix = "linkdrop:claims:"

func claimKey(linkID string) string {
	return keyPrefix + linkID
}

// Recorder increments and reads claim counters. A nil *Recorder (or one built
// from a nil client) is valid and does nothing.
type Recorder struct {
	client *redis.Client
	log    logger.Logger
}

func New(client *redis.Client, log logger.Logger) *Recorder {
	if client == nil {
		return nil
	}
	return &Recorder{client: client, log: log}
}

// Enabled reports whether a Redis backend is attached.
func (r *Recorder) Enabled() bool {
	return r != nil && r.client != nil
}

// RecordClaim bumps the claim counter for a link. Failures are logged and
// swallowed; a claim must never fail because the counter did.
func (r *Recorder) RecordClaim(ctx context.Context, linkID string) {
	if !r.Enabled() {
		return
	}
	if err := r.client.Incr(ctx, claimKey(linkID)).Err(); err != nil {
		r.log.Warn("failed to record claim counter",
			logger.String("link_id", linkID),
			logger.Error(err))
	}
}

// ClaimCounts returns the claim counter for each given link id. Links that
// were never claimed are reported as 0.
func (r *Recorder) ClaimCounts(ctx context.Context, linkIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(linkIDs))
	if !r.Enabled() || len(linkIDs) == 0 {
		return counts, nil
	}

	keys := make([]string, len(linkIDs))
	for i, id := range linkIDs {
		keys[i] = claimKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		if v == nil {
			counts[linkIDs[i]] = 0
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		counts[linkIDs[i]] = n
	}
	return counts, nil
}
