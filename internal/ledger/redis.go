package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const ttlCeiling = 48 * time.Hour

// RedisLedger is the production Ledger backend.
type RedisLedger struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewRedis builds a RedisLedger from an already-connected client.
func NewRedis(rdb *redis.Client, logger zerolog.Logger) *RedisLedger {
	return &RedisLedger{rdb: rdb, logger: logger.With().Str("component", "ledger").Logger()}
}

func usageKey(credID, day string) string  { return fmt.Sprintf("usage:%s:%s", credID, day) }
func errorsKey(credID, day string) string { return fmt.Sprintf("errors:%s:%s", credID, day) }

func (l *RedisLedger) IncrementUsage(ctx context.Context, credID, day string) (int64, error) {
	return l.increment(ctx, usageKey(credID, day))
}

func (l *RedisLedger) IncrementError(ctx context.Context, credID, day string) (int64, error) {
	return l.increment(ctx, errorsKey(credID, day))
}

// increment performs an atomic INCR and refreshes the key's TTL to the
// 48h ceiling if it currently has none (idempotent refresh is
// acceptable — correctness comes from the DayKey in the key, not from
// TTL precision). On an INCR failure it logs the error and returns a
// zero count with a nil error, so the failure never reaches the client.
func (l *RedisLedger) increment(ctx context.Context, key string) (int64, error) {
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("ledger increment failed, returning best-effort count")
		return 0, nil
	}

	ttl, ttlErr := l.rdb.TTL(ctx, key).Result()
	if ttlErr == nil && ttl < 0 {
		if expErr := l.rdb.Expire(ctx, key, ttlCeiling).Err(); expErr != nil {
			l.logger.Warn().Err(expErr).Str("key", key).Msg("ledger TTL refresh failed")
		}
	}

	return count, nil
}

func (l *RedisLedger) GetUsage(ctx context.Context, credID, day string) (int64, error) {
	return l.get(ctx, usageKey(credID, day))
}

func (l *RedisLedger) GetErrors(ctx context.Context, credID, day string) (int64, error) {
	return l.get(ctx, errorsKey(credID, day))
}

func (l *RedisLedger) get(ctx context.Context, key string) (int64, error) {
	v, err := l.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger read %s: %w", key, err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ledger parse %s: %w", key, err)
	}
	return n, nil
}

// ListAvailable fetches a usage/error snapshot for every credential in
// one pipelined round trip. Unlike Increment*, failure here is terminal:
// a caller that cannot read the ledger cannot enforce quotas and must
// not proceed.
func (l *RedisLedger) ListAvailable(ctx context.Context, credIDs []string, day string) ([]CredentialUsage, error) {
	if len(credIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(credIDs)*2)
	for _, id := range credIDs {
		keys = append(keys, usageKey(id, day), errorsKey(id, day))
	}

	vals, err := l.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger ListAvailable: %w", err)
	}

	result := make([]CredentialUsage, len(credIDs))
	for i, id := range credIDs {
		result[i] = CredentialUsage{
			CredentialID: id,
			Usage:        parseCount(vals[i*2]),
			Errors:       parseCount(vals[i*2+1]),
		}
	}
	return result, nil
}

func parseCount(v interface{}) int64 {
	if v == nil {
		return 0
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Reset clears both counters for a credential/day. Test fixtures only.
func (l *RedisLedger) Reset(ctx context.Context, credID, day string) error {
	return l.rdb.Del(ctx, usageKey(credID, day), errorsKey(credID, day)).Err()
}
