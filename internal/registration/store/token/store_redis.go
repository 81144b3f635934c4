package token

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

const redisKeyPrefix = "regtoken:"

// Lua scripts make every validate-then-mutate transition a single atomic step
// on the redis side, matching the in-memory store's one-lock contract.
var (
	// markVerifiedScript flips verified 0 -> 1. Returns "ok", "verified"
	// (already promoted) or "missing".
	markVerifiedScript = redis.NewScript(`
local verified = redis.call('HGET', KEYS[1], 'verified')
if verified == false then return 'missing' end
if verified == '1' then return 'verified' end
redis.call('HSET', KEYS[1], 'verified', '1')
return 'ok'`)

	// consumeScript claims a verified, unclaimed token. Returns "ok",
	// "unverified", "claimed" or "missing".
	consumeScript = redis.NewScript(`
local verified = redis.call('HGET', KEYS[1], 'verified')
if verified == false then return 'missing' end
if verified ~= '1' then return 'unverified' end
if redis.call('HGET', KEYS[1], 'claimed') == '1' then return 'claimed' end
redis.call('HSET', KEYS[1], 'claimed', '1')
return 'ok'`)
)

// RedisStore keeps registration tokens in redis. Expiry is enforced twice:
// natively through key TTLs and logically through the stored expires_at, so
// behavior matches the in-memory store even when TTL precision differs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a redis-backed token store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(value string) string { return redisKeyPrefix + value }

func (s *RedisStore) Create(ctx context.Context, restaurantID uuid.UUID, email string, now time.Time, ttl time.Duration) (*models.RegistrationToken, error) {
	value, err := NewValue()
	if err != nil {
		return nil, err
	}

	record := &models.RegistrationToken{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Email:        email,
		Value:        value,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	key := redisKey(value)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":            record.ID.String(),
		"restaurant_id": record.RestaurantID.String(),
		"email":         record.Email,
		"verified":      "0",
		"claimed":       "0",
		"created_at":    record.CreatedAt.Format(time.RFC3339Nano),
		"expires_at":    record.ExpiresAt.Format(time.RFC3339Nano),
	})
	pipe.PExpireAt(ctx, key, record.ExpiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create registration token: %w", err)
	}
	return record, nil
}

func (s *RedisStore) FindByValue(ctx context.Context, value string, now time.Time) (*models.RegistrationToken, error) {
	fields, err := s.client.HGetAll(ctx, redisKey(value)).Result()
	if err != nil {
		return nil, fmt.Errorf("find registration token: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	record, err := recordFromFields(value, fields)
	if err != nil {
		return nil, err
	}
	if record.Expired(now) {
		return nil, fmt.Errorf("registration token expired: %w", sentinel.ErrExpired)
	}
	return record, nil
}

func (s *RedisStore) MarkVerified(ctx context.Context, value string, now time.Time) (*models.RegistrationToken, error) {
	// Logical expiry check first; the key may outlive expires_at briefly.
	record, err := s.FindByValue(ctx, value, now)
	if err != nil {
		return nil, err
	}

	res, err := markVerifiedScript.Run(ctx, s.client, []string{redisKey(value)}).Text()
	if err != nil {
		return nil, fmt.Errorf("mark registration token verified: %w", err)
	}
	switch res {
	case "ok":
		record.MarkVerified()
		return record, nil
	case "verified":
		return nil, fmt.Errorf("registration token already verified: %w", sentinel.ErrInvalidState)
	default:
		return nil, fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
}

func (s *RedisStore) Consume(ctx context.Context, value string, now time.Time) (*models.RegistrationToken, error) {
	record, err := s.FindByValue(ctx, value, now)
	if err != nil {
		return nil, err
	}

	res, err := consumeScript.Run(ctx, s.client, []string{redisKey(value)}).Text()
	if err != nil {
		return nil, fmt.Errorf("consume registration token: %w", err)
	}
	switch res {
	case "ok":
		record.MarkClaimed()
		return record, nil
	case "unverified":
		return nil, fmt.Errorf("registration token not verified: %w", sentinel.ErrInvalidState)
	case "claimed":
		return nil, fmt.Errorf("registration token already used: %w", sentinel.ErrAlreadyUsed)
	default:
		return nil, fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
}

func (s *RedisStore) Release(ctx context.Context, value string) error {
	if err := s.client.HSet(ctx, redisKey(value), "claimed", "0").Err(); err != nil {
		return fmt.Errorf("release registration token: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, value string) error {
	deleted, err := s.client.Del(ctx, redisKey(value)).Result()
	if err != nil {
		return fmt.Errorf("delete registration token: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *RedisStore) DeleteByRestaurant(ctx context.Context, restaurantID uuid.UUID) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		owner, err := s.client.HGet(ctx, key, "restaurant_id").Result()
		if err != nil {
			continue
		}
		if owner == restaurantID.String() {
			if n, err := s.client.Del(ctx, key).Result(); err == nil {
				deleted += int(n)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan registration tokens: %w", err)
	}
	return deleted, nil
}

// DeleteExpired removes tokens whose logical expiry has passed. Redis key TTL
// already collects most of these; the sweep covers records whose key TTL and
// logical expiry disagree.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.HGet(ctx, key, "expires_at").Result()
		if err != nil {
			continue
		}
		expiresAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil || !now.Before(expiresAt) {
			if n, err := s.client.Del(ctx, key).Result(); err == nil {
				deleted += int(n)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan registration tokens: %w", err)
	}
	return deleted, nil
}

func recordFromFields(value string, fields map[string]string) (*models.RegistrationToken, error) {
	id, err := uuid.Parse(fields["id"])
	if err != nil {
		return nil, fmt.Errorf("parse token id: %w", err)
	}
	restaurantID, err := uuid.Parse(fields["restaurant_id"])
	if err != nil {
		return nil, fmt.Errorf("parse token restaurant id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse token created_at: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("parse token expires_at: %w", err)
	}

	return &models.RegistrationToken{
		ID:           id,
		RestaurantID: restaurantID,
		Email:        fields["email"],
		Value:        value,
		Verified:     fields["verified"] == "1",
		Claimed:      fields["claimed"] == "1",
		CreatedAt:    createdAt,
		ExpiresAt:    expiresAt,
	}, nil
}
