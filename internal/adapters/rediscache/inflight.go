// Package rediscache implements the cross-process in-flight guard on
// redis. Each transaction operation holds a short-lived SETNX key; a key
// that already exists means another process is working the transaction.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultLease bounds how long an in-flight key survives a crashed
// holder. An operation spans at most one provider call plus two database
// round trips, so a minute is generous.
const DefaultLease = 60 * time.Second

// InFlightStore marks transactions that have an operation in progress
type InFlightStore struct {
	client *redis.Client
	lease  time.Duration
}

// NewInFlightStore creates a redis-backed in-flight store
func NewInFlightStore(client *redis.Client, lease time.Duration) *InFlightStore {
	if lease <= 0 {
		lease = DefaultLease
	}
	return &InFlightStore{client: client, lease: lease}
}

// TryAcquire atomically marks the transaction in flight. Returns false
// when another holder already owns it.
func (s *InFlightStore) TryAcquire(ctx context.Context, transactionID string) (bool, error) {
	set, err := s.client.SetNX(ctx, key(transactionID), "1", s.lease).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX: %w", err)
	}
	return set, nil
}

// Release clears the in-flight mark. Releasing an expired or missing key
// is not an error.
func (s *InFlightStore) Release(ctx context.Context, transactionID string) error {
	if err := s.client.Del(ctx, key(transactionID)).Err(); err != nil {
		return fmt.Errorf("redis DEL: %w", err)
	}
	return nil
}

func key(transactionID string) string {
	return fmt.Sprintf("inflight:txn:%s", transactionID)
}
