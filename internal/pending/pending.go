// Package pending holds the short-lived server-side record of an in-flight
// OAuth authorization. The record is keyed by the state token itself, expires
// with a TTL, and can be consumed exactly once, which is what makes the state
// token single-use.
package pending

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/crypto"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

// Authorization is one not-yet-completed OAuth attempt. Expiry is enforced by
// the store's TTL; ExpiresAt is carried for diagnostics and re-checked on
// consume.
type Authorization struct {
	State     string          `json:"state"`
	Platform  models.Platform `json:"platform"`
	ProjectID uuid.UUID       `json:"project_id"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NotFoundError is returned when a state token has no live pending
// authorization: never issued, expired, superseded and already consumed, or
// replayed.
type NotFoundError struct{}

func (e NotFoundError) Error() string {
	return "Pending authorization not found"
}

// IsNotFoundError returns whether an error represents a missing or expired
// pending authorization.
func IsNotFoundError(err error) bool {
	switch errors.Cause(err).(type) {
	case NotFoundError, *NotFoundError:
		return true
	}
	return false
}

// Store persists pending authorizations in Redis.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// Dial connects to the Redis instance named by the configuration.
func Dial(ctx context.Context, config *conf.RedisConfiguration) (*Store, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "checking redis connection")
	}

	return NewStore(client, config.KeyPrefix, 0), nil
}

// NewStore wraps an existing Redis client. A non-positive ttl falls back to
// ten minutes.
func NewStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// WithTTL returns a store writing pending authorizations with the provided
// lifetime.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	return NewStore(s.client, s.keyPrefix, ttl)
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(state string) string {
	return s.keyPrefix + ":pending:" + state
}

// Begin issues a fresh state token and stores the pending authorization under
// it. Concurrent begins for the same project/platform each get their own
// token; every stored token stays individually valid until consumed or
// expired.
func (s *Store) Begin(ctx context.Context, projectID uuid.UUID, platform models.Platform) (*Authorization, error) {
	now := time.Now().UTC()
	auth := &Authorization{
		State:     crypto.SecureToken(),
		Platform:  platform,
		ProjectID: projectID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(auth)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling pending authorization")
	}

	if err := s.client.Set(ctx, s.key(auth.State), data, s.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "storing pending authorization")
	}

	return auth, nil
}

// Consume atomically removes and returns the pending authorization for a
// state token. The removal happens in the same Redis command as the read
// (GETDEL), so a replayed callback can never observe the record again, even
// while the first callback is still mid-exchange.
func (s *Store) Consume(ctx context.Context, state string) (*Authorization, error) {
	if state == "" {
		return nil, NotFoundError{}
	}

	data, err := s.client.GetDel(ctx, s.key(state)).Bytes()
	if err == redis.Nil {
		return nil, NotFoundError{}
	}
	if err != nil {
		return nil, errors.Wrap(err, "consuming pending authorization")
	}

	auth := &Authorization{}
	if err := json.Unmarshal(data, auth); err != nil {
		return nil, errors.Wrap(err, "unmarshaling pending authorization")
	}

	// TTL should have reclaimed this already; treat a stale record like a
	// missing one rather than honoring it.
	if time.Now().After(auth.ExpiresAt) {
		return nil, NotFoundError{}
	}

	return auth, nil
}
