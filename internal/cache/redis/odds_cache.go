package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// DefaultOddsTTL matches the provider's own refresh cadence.
const DefaultOddsTTL = 5 * time.Minute

// OddsCache implements domain.OddsCache with JSON values under a TTL.
//
// Key schema:
//
//	sportsarb:sports       - JSON array of sports
//	sportsarb:events:{key} - JSON array of events for a request key
type OddsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOddsCache creates an OddsCache. A non-positive ttl selects DefaultOddsTTL.
func NewOddsCache(c *Client, ttl time.Duration) *OddsCache {
	if ttl <= 0 {
		ttl = DefaultOddsTTL
	}
	return &OddsCache{rdb: c.Underlying(), ttl: ttl}
}

func sportsKey() string          { return keyPrefix + "sports" }
func eventsKey(key string) string { return keyPrefix + "events:" + key }

// SetSports stores the provider's sport list.
func (oc *OddsCache) SetSports(ctx context.Context, sports []domain.Sport) error {
	return oc.set(ctx, sportsKey(), sports)
}

// GetSports returns the cached sport list or domain.ErrNotFound.
func (oc *OddsCache) GetSports(ctx context.Context) ([]domain.Sport, error) {
	var sports []domain.Sport
	if err := oc.get(ctx, sportsKey(), &sports); err != nil {
		return nil, err
	}
	return sports, nil
}

// SetEvents stores events under a request key (sport, regions, markets).
func (oc *OddsCache) SetEvents(ctx context.Context, key string, events []domain.Event) error {
	return oc.set(ctx, eventsKey(key), events)
}

// GetEvents returns cached events for a request key or domain.ErrNotFound.
func (oc *OddsCache) GetEvents(ctx context.Context, key string) ([]domain.Event, error) {
	var events []domain.Event
	if err := oc.get(ctx, eventsKey(key), &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (oc *OddsCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := oc.rdb.Set(ctx, key, data, oc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (oc *OddsCache) get(ctx context.Context, key string, v any) error {
	data, err := oc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.OddsCache = (*OddsCache)(nil)
