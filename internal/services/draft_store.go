package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrDraftBusy     = errors.New("draft is being modified by another request")
)

// DraftLockTTL bounds how long one request may hold a draft
const DraftLockTTL = 30 * time.Second

// DraftStore persists drafts between requests
type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID) (*InvoiceDraft, error)
	Save(ctx context.Context, draft *InvoiceDraft) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DraftLocker serializes load-mutate-save cycles on a draft
type DraftLocker interface {
	Lock(ctx context.Context, id uuid.UUID) (release func(), err error)
}

// RedisDraftStore keeps drafts as JSON in Redis with a sliding TTL
type RedisDraftStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisDraftStore creates a Redis backed draft store
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{redis: client, ttl: ttl}
}

func draftKey(id uuid.UUID) string {
	return fmt.Sprintf("invoicing:draft:%s", id)
}

// Get loads a draft
func (s *RedisDraftStore) Get(ctx context.Context, id uuid.UUID) (*InvoiceDraft, error) {
	val, err := s.redis.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var draft InvoiceDraft
	if err := json.Unmarshal(val, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

// Save stores a draft and refreshes its TTL
func (s *RedisDraftStore) Save(ctx context.Context, draft *InvoiceDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.redis.Set(ctx, draftKey(draft.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Delete removes a draft
func (s *RedisDraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, draftKey(id)).Err()
}

// RedisDraftLocker takes a per-draft distributed lock
type RedisDraftLocker struct {
	locker *redislock.Client
}

// NewRedisDraftLocker creates a locker on the given Redis client
func NewRedisDraftLocker(client *redis.Client) *RedisDraftLocker {
	return &RedisDraftLocker{locker: redislock.New(client)}
}

// Lock obtains the draft lock, retrying briefly before giving up
func (l *RedisDraftLocker) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	lock, err := l.locker.Obtain(ctx, fmt.Sprintf("invoicing:draft-lock:%s", id), DraftLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrDraftBusy
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock draft: %w", err)
	}

	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
