package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const shortCodeLength = 6

// ShortLinkService hands out short aliases for recipe URLs. Codes live in
// Redis; a failure here surfaces to the caller as a server error, it is
// never retried.
type ShortLinkService struct {
	redis   *redis.Client
	baseURL string
}

func NewShortLinkService(redisClient *redis.Client, baseURL string) *ShortLinkService {
	return &ShortLinkService{
		redis:   redisClient,
		baseURL: baseURL,
	}
}

// Shorten returns a short URL for target, creating a code when none exists
// yet. Repeated calls for the same target reuse the stored code.
func (s *ShortLinkService) Shorten(ctx context.Context, target string) (string, error) {
	reverseKey := "shortlink:by_target:" + target

	if code, err := s.redis.Get(ctx, reverseKey).Result(); err == nil {
		return s.baseURL + "/s/" + code, nil
	} else if err != redis.Nil {
		return "", fmt.Errorf("short link lookup failed: %w", err)
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}

	// SetNX so a racing request for the same target cannot clobber an
	// already published code.
	ok, err := s.redis.SetNX(ctx, reverseKey, code, 0).Result()
	if err != nil {
		return "", fmt.Errorf("short link store failed: %w", err)
	}
	if !ok {
		code, err = s.redis.Get(ctx, reverseKey).Result()
		if err != nil {
			return "", fmt.Errorf("short link lookup failed: %w", err)
		}
	} else if err := s.redis.Set(ctx, "shortlink:by_code:"+code, target, 0).Err(); err != nil {
		return "", fmt.Errorf("short link store failed: %w", err)
	}

	return s.baseURL + "/s/" + code, nil
}

// Resolve returns the target URL for a short code, or ErrNotFound.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (string, error) {
	target, err := s.redis.Get(ctx, "shortlink:by_code:"+code).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("short link lookup failed: %w", err)
	}
	return target, nil
}

func randomCode() (string, error) {
	buf := make([]byte, shortCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:shortCodeLength], nil
}
