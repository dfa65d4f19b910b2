// Package session implements the server side of the authentication
// boundary: opaque tokens handed to clients, mapped to user ids in redis.
// A token is random bytes with no structure; invalidating the redis key
// on logout kills the session immediately, which a signed token could not.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const tokenBytes = 32

type Store struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewStore builds a session store. secret keys the HMAC applied to tokens
// before they become redis keys, so a dump of redis never yields a usable
// session token.
func NewStore(rdb *redis.Client, secret string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Store{
		rdb:    rdb,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Start issues a fresh session bound to userID and returns the raw token
// for the client cookie.
func (s *Store) Start(ctx context.Context, userID int64) (string, error) {
	token, err := newToken()

	if err != nil {
		return "", err
	}

	err = s.rdb.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), s.ttl).Err()

	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// Resolve maps a presented token to the authenticated user id. A hit
// refreshes the TTL, so sessions expire from inactivity rather than from
// a fixed deadline.
func (s *Store) Resolve(ctx context.Context, token string) (int64, error) {
	key := s.key(token)

	val, err := s.rdb.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)

	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}

	// sliding expiry; best effort, a failed refresh only shortens the session
	_ = s.rdb.Expire(ctx, key, s.ttl).Err()

	return userID, nil
}

// End invalidates the token. Ending an already-ended session is not an
// error.
func (s *Store) End(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.key(token)).Err()
}

func (s *Store) key(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))

	return "session:" + hex.EncodeToString(mac.Sum(nil))
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)

	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
