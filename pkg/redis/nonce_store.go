package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainpe/payvalidator/pkg/auth"
)

// NonceStore implements auth.NonceStore with SET NX, so every replica
// behind the same Redis rejects a nonce seen by any of them.
type NonceStore struct {
	client redis.UniversalClient
	prefix string
}

// NewNonceStore creates a nonce store using keys under prefix.
func NewNonceStore(client redis.UniversalClient, prefix string) *NonceStore {
	return &NonceStore{client: client, prefix: prefix}
}

func (s *NonceStore) Claim(ctx context.Context, signer auth.Principal, nonce string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.prefix+signer.String()+":"+nonce, 1, max(ttl, time.Second)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrReplayedRequest
	}
	return nil
}
