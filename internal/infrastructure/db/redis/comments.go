package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// CommentsOutboxKey is the list the discussion service consumes new accounts from.
const CommentsOutboxKey = "outbox:comments_service:users"

// commentsUser is the payload pushed for each registered account.
type commentsUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt int64  `json:"registered_at"`
}

// CommentsRegistrar implements ports.CommentsRegistrar by queueing the account
// on a Redis list for the discussion service.
type CommentsRegistrar struct {
	client *redis.Client
	key    string
}

// NewCommentsRegistrar creates a registrar pushing to CommentsOutboxKey.
func NewCommentsRegistrar(client *redis.Client) *CommentsRegistrar {
	return &CommentsRegistrar{client: client, key: CommentsOutboxKey}
}

func (c *CommentsRegistrar) RegisterUser(ctx context.Context, user *domain.User) error {
	payload, err := encodeCommentsUser(user, time.Now())
	if err != nil {
		return err
	}
	if err := c.client.LPush(ctx, c.key, payload).Err(); err != nil {
		return fmt.Errorf("queue comments user: %w", err)
	}
	return nil
}

func encodeCommentsUser(user *domain.User, now time.Time) ([]byte, error) {
	b, err := json.Marshal(commentsUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: now.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode comments user: %w", err)
	}
	return b, nil
}
