package lottery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDrawJournal appends every draw result to a capped Redis list, newest first.
// It is an audit trail for other readers; the machine never restores from it.
type RedisDrawJournal struct {
	redisClient *redis.Client
	key         string
	maxEntries  int
	timeout     time.Duration
	logger      Logger
	recovery    *ErrorRecovery
}

// NewRedisDrawJournal creates a journal writing to redisClient.
// A nil config uses DefaultJournalConfig.
func NewRedisDrawJournal(redisClient *redis.Client, config *JournalConfig, logger Logger) *RedisDrawJournal {
	if config == nil {
		config = DefaultJournalConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	key := config.Key
	if key == "" {
		key = DefaultJournalKey
	}
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultJournalMaxEntries
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultJournalTimeout
	}

	return &RedisDrawJournal{
		redisClient: redisClient,
		key:         key,
		maxEntries:  maxEntries,
		timeout:     timeout,
		logger:      logger,
		recovery: NewErrorRecovery(
			NewDefaultErrorHandler(logger, config.RetryInterval), config.RetryAttempts, logger),
	}
}

// Key returns the Redis list key
func (j *RedisDrawJournal) Key() string { return j.key }

// redisError reports timeouts as ErrRedisTimeout
func redisError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ErrRedisTimeout.WithCause(err)
	}
	return err
}

// serializeDrawResult serializes a DrawResult to JSON bytes
func serializeDrawResult(result *DrawResult) ([]byte, error) {
	if result == nil {
		return nil, ErrInvalidParameters
	}

	// Validate the result before serialization
	if err := result.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}

	if len(data) > MaxSerializationSize {
		return nil, ErrSerializationFailed.WithDetails(fmt.Sprintf(
			"serialized draw %s size (%d bytes) exceeds maximum allowed size (%d bytes)",
			result.ID, len(data), MaxSerializationSize))
	}

	return data, nil
}

// deserializeDrawResult deserializes JSON bytes back to DrawResult
func deserializeDrawResult(data []byte) (*DrawResult, error) {
	if len(data) == 0 {
		return nil, ErrInvalidParameters
	}
	if len(data) > MaxSerializationSize {
		return nil, ErrDeserializationFailed.WithDetails(fmt.Sprintf("size %d bytes exceeds maximum", len(data)))
	}

	var result DrawResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, ErrDeserializationFailed.WithCause(err)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

// RecordDraw pushes result onto the journal and trims it to the configured size
func (j *RedisDrawJournal) RecordDraw(ctx context.Context, result *DrawResult) error {
	data, err := serializeDrawResult(result)
	if err != nil {
		j.logger.Error("RecordDraw failed to serialize draw: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	startTime := time.Now()
	err = j.recovery.ExecuteWithRetry(withOperation(ctx, "journal.push"), func() error {
		return redisError(j.redisClient.LPush(ctx, j.key, string(data)).Err())
	})
	if err != nil {
		j.logger.Error("RecordDraw failed to push draw %s (round=%d) to %s: %v", result.ID, result.Round, j.key, err)
		return ErrJournalWriteFailure.WithCause(err).WithDetails(fmt.Sprintf("key=%s, draw=%s", j.key, result.ID))
	}

	err = j.recovery.ExecuteWithRetry(withOperation(ctx, "journal.trim"), func() error {
		return redisError(j.redisClient.LTrim(ctx, j.key, 0, int64(j.maxEntries-1)).Err())
	})
	if err != nil {
		// The draw is recorded; an untrimmed list only grows until the next successful trim.
		j.logger.Error("RecordDraw failed to trim %s to %d entries: %v", j.key, j.maxEntries, err)
	}

	j.logger.Debug("Recorded draw %s (round=%d, size=%d bytes) in %v", result.ID, result.Round, len(data), time.Since(startTime))
	return nil
}

// RecentDraws returns up to limit journaled draws, newest first.
// Entries that fail to decode are skipped.
func (j *RedisDrawJournal) RecentDraws(ctx context.Context, limit int) ([]*DrawResult, error) {
	if limit <= 0 {
		return nil, ErrInvalidCount
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	var entries []string
	err := j.recovery.ExecuteWithRetry(withOperation(ctx, "journal.range"), func() error {
		var rangeErr error
		entries, rangeErr = j.redisClient.LRange(ctx, j.key, 0, int64(limit-1)).Result()
		if rangeErr == redis.Nil {
			entries = nil
			return nil
		}
		return redisError(rangeErr)
	})
	if err != nil {
		j.logger.Error("RecentDraws failed to read %s: %v", j.key, err)
		return nil, ErrJournalReadFailure.WithCause(err)
	}

	results := make([]*DrawResult, 0, len(entries))
	for i, entry := range entries {
		result, decodeErr := deserializeDrawResult([]byte(entry))
		if decodeErr != nil {
			j.logger.Error("Skipping corrupted journal entry %d in %s: %v", i, j.key, decodeErr)
			continue
		}
		results = append(results, result)
	}

	j.logger.Debug("Read %d of %d journal entries from %s", len(results), len(entries), j.key)
	return results, nil
}
