package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements the Store interface on a Redis server.
// Each record is a JSON string under <prefix>:run:<runID>; the set
// <prefix>:runs indexes the stored IDs.
type RedisStore struct {
	cli     *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore connects to the server at dsn (redis://host:port/db) and pings it
func NewRedisStore(dsn, prefix string) (*RedisStore, error) {
	options, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid redis dsn: %w", err)
	}

	s := NewRedisStoreFromClient(redis.NewClient(options), prefix)

	ctx, cancel := s.context()
	defer cancel()
	if err := s.cli.Ping(ctx).Err(); err != nil {
		s.cli.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return s, nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(cli *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "weberfit"
	}
	return &RedisStore{
		cli:     cli,
		prefix:  prefix,
		timeout: 3 * time.Second,
	}
}

// Close releases the client connection pool
func (s *RedisStore) Close() error {
	return s.cli.Close()
}

func (s *RedisStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) runKey(runID string) string {
	return s.prefix + ":run:" + runID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":runs"
}

// SaveRun stores the record and adds it to the index in one transaction
func (s *RedisStore) SaveRun(runID string, run *RunRecord) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if err := run.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	ctx, cancel := s.context()
	defer cancel()

	_, err = s.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.runKey(runID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), runID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	slog.Debug("Run saved", "runID", runID, "key", s.runKey(runID))
	return nil
}

// LoadRun retrieves the record for the given run
func (s *RedisStore) LoadRun(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	ctx, cancel := s.context()
	defer cancel()

	data, err := s.cli.Get(ctx, s.runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}
	return &run, nil
}

// ListRuns returns metadata for every indexed run, newest first.
// Index entries whose record has vanished are dropped from the index.
func (s *RedisStore) ListRuns() ([]RunInfo, error) {
	ctx, cancel := s.context()
	defer cancel()

	ids, err := s.cli.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run index: %w", err)
	}

	infos := []RunInfo{}
	for _, runID := range ids {
		run, err := s.LoadRun(runID)
		if errors.Is(err, ErrNotFound) {
			s.cli.SRem(ctx, s.indexKey(), runID)
			continue
		}
		if err != nil {
			slog.Warn("Failed to load run for listing", "runID", runID, "error", err)
			continue
		}
		infos = append(infos, run.ToInfo())
	}

	sortNewestFirst(infos)
	return infos, nil
}

// DeleteRun removes the record and its index entry
func (s *RedisStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	ctx, cancel := s.context()
	defer cancel()

	var del *redis.IntCmd
	_, err := s.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.runKey(runID))
		pipe.SRem(ctx, s.indexKey(), runID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if del.Val() == 0 {
		return &NotFoundError{RunID: runID}
	}

	slog.Debug("Run deleted", "runID", runID)
	return nil
}
