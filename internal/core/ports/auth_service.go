package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
