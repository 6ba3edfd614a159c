package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// KYCStore implements ports.KYCRepository using Redis. Tags are plain
// string values with no TTL; a missing key reads back as the empty tag.
type KYCStore struct {
	client *goredis.Client
	prefix string
}

// NewKYCStore creates a new Redis-backed KYC tag store.
func NewKYCStore(client *goredis.Client) *KYCStore {
	return &KYCStore{
		client: client,
		prefix: "kyc:",
	}
}

// SetTag stores the party's tag, overwriting any previous value.
func (s *KYCStore) SetTag(ctx context.Context, party, tag string) error {
	if err := s.client.Set(ctx, s.prefix+party, tag, 0).Err(); err != nil {
		return fmt.Errorf("redis kyc set: %w", err)
	}
	return nil
}

// GetTag retrieves the party's tag. Returns "" with no error when the
// party has never been tagged.
func (s *KYCStore) GetTag(ctx context.Context, party string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+party).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis kyc get: %w", err)
	}
	return val, nil
}
