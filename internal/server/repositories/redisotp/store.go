// Package redisotp keeps one-time codes in Redis instead of Postgres. Each
// user owns one key, so replace-or-insert is a plain SET and consumption is
// a WATCH guarded delete.
package redisotp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

const (
	defaultPrefix = "streamforge:otp"
	maxTxRetries  = 4
	scanBatch     = 200
)

// errStillFresh aborts a guarded delete when the record is not expired.
var errStillFresh = errors.New("otp record not expired")

// Grace keeps an expired record readable for a short while so verification
// can still answer "expired" rather than "not found".
const Grace = time.Minute

type record struct {
	CodeHash  string `json:"h"`
	ExpiresAt int64  `json:"e"`
	CreatedAt int64  `json:"c"`
}

type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

type Option func(*Store)

func WithPrefix(p string) Option { return func(s *Store) { s.prefix = p } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{redis: client, prefix: defaultPrefix, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) key(userID string) string {
	return s.prefix + ":" + userID
}

func (s *Store) FindByOwner(ctx context.Context, userID string) (*models.OneTimeCode, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return decode(userID, data)
}

func (s *Store) UpsertByOwner(ctx context.Context, code *models.OneTimeCode) error {
	now := s.now()
	ttl := code.ExpiresAt.Sub(now) + Grace
	if ttl <= 0 {
		return s.DeleteByOwner(ctx, code.UserID)
	}

	data, err := json.Marshal(record{
		CodeHash:  code.CodeHash,
		ExpiresAt: code.ExpiresAt.UnixNano(),
		CreatedAt: now.UnixNano(),
	})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(code.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *Store) DeleteByOwner(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *Store) ConsumeByOwner(ctx context.Context, userID, codeHash string, now time.Time) error {
	key := s.key(userID)

	for i := 0; i < maxTxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			c, err := decode(userID, data)
			if err != nil {
				return err
			}
			if c.CodeHash != codeHash || c.Expired(now) {
				return common.ErrorNotFound
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil), errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		default:
			return fmt.Errorf("redis error: %w", err)
		}
	}

	// Every attempt saw a concurrent write; someone else changed the code.
	return common.ErrorNotFound
}

// DeleteExpiredByOwner removes the code of userID only if it is expired at
// now. A code replaced in the meantime is left alone.
func (s *Store) DeleteExpiredByOwner(ctx context.Context, userID string, now time.Time) error {
	_, err := s.deleteIfExpired(ctx, s.key(userID), now)
	return err
}

// DeleteExpired scans the prefix and removes records past their expiry that
// are still inside the grace window.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis error: %w", err)
		}
		for _, k := range keys {
			n, err := s.deleteIfExpired(ctx, k, now)
			if err != nil {
				return removed, err
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// beforeExpiredDelete runs between reading a record and deleting it. Tests
// use it to write to the key while it is watched.
var beforeExpiredDelete = func(ctx context.Context, key string) {}

// deleteIfExpired deletes key when its record is expired at now or cannot
// be decoded. The read and the delete share one WATCH, so a code written
// concurrently survives.
func (s *Store) deleteIfExpired(ctx context.Context, key string, now time.Time) (int64, error) {
	for i := 0; i < maxTxRetries; i++ {
		var del *redis.IntCmd
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			if c, err := decode("", data); err == nil && !c.Expired(now) {
				return errStillFresh
			}
			beforeExpiredDelete(ctx, key)

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				del = pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return del.Val(), nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil), errors.Is(err, errStillFresh):
			return 0, nil
		default:
			return 0, fmt.Errorf("redis error: %w", err)
		}
	}

	// The key kept changing under us, so it is being written right now.
	return 0, nil
}

func decode(userID string, data []byte) (*models.OneTimeCode, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode otp record: %w", err)
	}
	return &models.OneTimeCode{
		UserID:    userID,
		CodeHash:  r.CodeHash,
		ExpiresAt: time.Unix(0, r.ExpiresAt),
		CreatedAt: time.Unix(0, r.CreatedAt),
	}, nil
}
