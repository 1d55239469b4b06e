package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PreferenceStore implements ports.PreferenceStore with one hash per user.
// Key format: prefs:<username>
type PreferenceStore struct {
	client *redis.Client
}

// NewPreferenceStore creates a PreferenceStore wrapping the given Redis client.
func NewPreferenceStore(client *redis.Client) *PreferenceStore {
	return &PreferenceStore{client: client}
}

func (p *PreferenceStore) SetPreference(ctx context.Context, username, key, value string) error {
	if err := p.client.HSet(ctx, preferenceKey(username), key, value).Err(); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// GetPreference returns "" when the preference is not set.
func (p *PreferenceStore) GetPreference(ctx context.Context, username, key string) (string, error) {
	v, err := p.client.HGet(ctx, preferenceKey(username), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return v, nil
}

func preferenceKey(username string) string {
	return "prefs:" + username
}
