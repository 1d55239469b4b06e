package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// IdentityStore owns persistence of users and their site attribution records.
// It is the only component allowed to touch those records.
type IdentityStore interface {
	// FindUser returns the single user matching q. ErrUserNotFound when nothing
	// matches, ErrAmbiguousUser when an email matches more than one record.
	FindUser(ctx context.Context, q domain.UserQuery) (*domain.User, error)
	// CreateAccount writes the user, its profile and its registration. Callers
	// run it inside a Transactor so the three writes land together.
	CreateAccount(ctx context.Context, user *domain.User, reg *domain.Registration) (*domain.User, error)
	// UpdateUser writes the user row and then its profile; run it inside a
	// Transactor so both land together.
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	// DeactivateUser marks the user inactive and replaces its email.
	DeactivateUser(ctx context.Context, userID, retiredEmail string) error
	// CheckConflicts returns the names of the fields ("email", "username")
	// already used by another account.
	CheckConflicts(ctx context.Context, email, username string) ([]string, error)

	SetUserAttribute(ctx context.Context, userID, name, value string) error
	// GetUserAttribute returns "" when the attribute is not set.
	GetUserAttribute(ctx context.Context, userID, name string) (string, error)
	AddSignupSource(ctx context.Context, userID, site string) error
	HasSignupSource(ctx context.Context, userID, site string) (bool, error)
}

// Transactor runs fn in a transactional scope. Writes made through ctx inside
// fn are committed only if fn returns nil.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
