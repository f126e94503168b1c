package domain

import (
	"context"
	"time"
)

// OddsCache keeps recently fetched provider data for a short TTL.
type OddsCache interface {
	SetSports(ctx context.Context, sports []Sport) error
	GetSports(ctx context.Context) ([]Sport, error)
	SetEvents(ctx context.Context, key string, events []Event) error
	GetEvents(ctx context.Context, key string) ([]Event, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides pub/sub between the scanner and push consumers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Bus channels.
const (
	ChannelArb   = "arb"
	ChannelScans = "scans"
)
