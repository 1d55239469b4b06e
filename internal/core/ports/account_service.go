package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// CreateAccountInput carries the data needed to provision a learner account.
type CreateAccountInput struct {
	Email              string
	Username           string
	Password           string
	FullName           string
	Site               *domain.Site // nil: account is created without site attribution
	LanguagePreference string
	Activate           bool
}

// AccountService provisions, updates, retires and resolves learner accounts.
type AccountService interface {
	// Create returns the new user plus ordered non-fatal warnings. A non-empty
	// warning list means "created with degraded state", never failure.
	Create(ctx context.Context, in CreateAccountInput) (*domain.User, []string, error)
	Update(ctx context.Context, user *domain.User, update map[string]any) (*domain.User, error)
	Deactivate(ctx context.Context, user *domain.User) error
}

// UserLookup resolves users inside a site.
type UserLookup interface {
	GetUserForSite(ctx context.Context, q domain.UserQuery, site *domain.Site) (*domain.User, error)
}
