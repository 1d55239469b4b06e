package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// PasswordHasher turns a plain password into the opaque stored credential.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// CommentsRegistrar registers accounts with the discussion (comments) service.
type CommentsRegistrar interface {
	RegisterUser(ctx context.Context, user *domain.User) error
}

// PreferenceStore persists per user preferences.
type PreferenceStore interface {
	SetPreference(ctx context.Context, username, key, value string) error
	GetPreference(ctx context.Context, username, key string) (string, error)
}

// AccountSettingsUpdater applies account setting changes. It either applies
// every field or none; field level problems come back as
// *domain.AccountValidationError.
type AccountSettingsUpdater interface {
	UpdateAccountSettings(ctx context.Context, user *domain.User, update map[string]any) (*domain.User, error)
}
