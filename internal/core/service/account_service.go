package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openlearn/provisioning/internal/api/metrics"
	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// AccountService provisions, updates and retires learner accounts.
type AccountService struct {
	store    ports.IdentityStore
	tx       ports.Transactor
	hasher   ports.PasswordHasher
	comments ports.CommentsRegistrar
	prefs    ports.PreferenceStore
	settings ports.AccountSettingsUpdater
	cfg      TenancyConfig
	log      zerolog.Logger
}

// AccountDeps groups the collaborators of AccountService.
type AccountDeps struct {
	Store    ports.IdentityStore
	Tx       ports.Transactor
	Hasher   ports.PasswordHasher
	Comments ports.CommentsRegistrar
	Prefs    ports.PreferenceStore
	Settings ports.AccountSettingsUpdater
}

func NewAccountService(deps AccountDeps, cfg TenancyConfig, log zerolog.Logger) *AccountService {
	return &AccountService{
		store:    deps.Store,
		tx:       deps.Tx,
		hasher:   deps.Hasher,
		comments: deps.Comments,
		prefs:    deps.Prefs,
		settings: deps.Settings,
		cfg:      cfg,
		log:      log,
	}
}

// sideEffect is a post creation step. A failure never undoes the account; it
// becomes the warning returned by run.
type sideEffect struct {
	name string
	run  func(ctx context.Context, user *domain.User) (warning string)
}

// Create provisions a new account.
func (s *AccountService) Create(ctx context.Context, in ports.CreateAccountInput) (*domain.User, []string, error) {
	if err := requireAccountFields(in); err != nil {
		return nil, nil, err
	}

	conflicts, err := s.store.CheckConflicts(ctx, in.Email, in.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("check conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		s.log.Info().Str("username", in.Username).Strs("fields", conflicts).Msg("account conflict")
		return nil, nil, domain.NewConflictError(conflicts...)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     in.Activate,
		Profile:      domain.Profile{Name: in.FullName},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	reg := &domain.Registration{UserID: user.ID, ActivationKey: strings.ReplaceAll(uuid.NewString(), "-", "")}

	var created *domain.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.store.CreateAccount(ctx, user, reg)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, nil, err
		}
		s.log.Error().Err(err).Str("username", in.Username).Msg("failed to create account")
		return nil, nil, fmt.Errorf("create account: %w: %v", domain.ErrFatalStore, err)
	}

	var warnings []string
	for _, step := range s.sideEffects(in) {
		if w := step.run(ctx, created); w != "" {
			s.log.Warn().Str("username", created.Username).Str("step", step.name).Msg(w)
			metrics.AccountWarningsTotal.WithLabelValues(step.name).Inc()
			warnings = append(warnings, w)
		}
	}

	metrics.AccountsCreatedTotal.Inc()
	s.log.Info().
		Str("username", created.Username).
		Str("site", domain.DomainOf(in.Site)).
		Bool("active", created.IsActive).
		Int("warnings", len(warnings)).
		Msg("account created")

	return created, warnings, nil
}

// sideEffects lists the best-effort steps run after the account is committed,
// in the order their warnings are reported.
func (s *AccountService) sideEffects(in ports.CreateAccountInput) []sideEffect {
	return []sideEffect{
		{
			name: "site_attribution",
			run: func(ctx context.Context, u *domain.User) string {
				if in.Site == nil || in.Site.Domain == "" {
					return "The user was not assigned to any site"
				}
				if err := s.attributeToSite(ctx, u, in.Site); err != nil {
					return fmt.Sprintf("Could not assign the user to site '%s'", in.Site.Domain)
				}
				return ""
			},
		},
		{
			name: "comments_service",
			run: func(ctx context.Context, u *domain.User) string {
				if s.comments == nil {
					return "No comments_service_user was created"
				}
				if err := s.comments.RegisterUser(ctx, u); err != nil {
					return "No comments_service_user was created"
				}
				return ""
			},
		},
		{
			name: "language_preference",
			run: func(ctx context.Context, u *domain.User) string {
				if in.LanguagePreference == "" {
					return ""
				}
				if s.prefs != nil {
					if err := s.prefs.SetPreference(ctx, u.Username, domain.LanguagePreferenceKey, in.LanguagePreference); err == nil {
						return ""
					}
				}
				return fmt.Sprintf("Could not set lang preference '%s' for user '%s'", in.LanguagePreference, u.Username)
			},
		},
	}
}

func (s *AccountService) attributeToSite(ctx context.Context, u *domain.User, site *domain.Site) error {
	if err := s.store.SetUserAttribute(ctx, u.ID, domain.AttrCreatedOnSite, site.Domain); err != nil {
		return err
	}
	return s.store.AddSignupSource(ctx, u.ID, site.Domain)
}

func requireAccountFields(in ports.CreateAccountInput) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
		{"fullname", in.FullName},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}
	return nil
}

// Update applies account setting changes through the settings subsystem.
func (s *AccountService) Update(ctx context.Context, user *domain.User, update map[string]any) (*domain.User, error) {
	updated, err := s.settings.UpdateAccountSettings(ctx, user, update)
	if err != nil {
		var ve *domain.AccountValidationError
		if errors.As(err, &ve) && len(ve.FieldErrors) > 0 {
			return nil, domain.NewValidationError(ve.Pairs()...)
		}
		s.log.Warn().Err(err).Str("username", user.Username).Msg("account update rejected")
		return nil, domain.ErrUpdateNotProcessed
	}
	s.log.Info().Str("username", updated.Username).Int("fields", len(update)).Msg("account updated")
	return updated, nil
}

// Deactivate retires the account: it is set inactive and its email is moved
// under the retirement domain. No data is deleted.
func (s *AccountService) Deactivate(ctx context.Context, user *domain.User) error {
	retired := domain.RetiredEmail(user.Email, s.cfg.RetirementDomain)
	if err := s.store.DeactivateUser(ctx, user.ID, retired); err != nil {
		s.log.Error().Err(err).Str("username", user.Username).Msg("retirement write failed")
		return domain.ErrRetirementFailed
	}
	user.IsActive = false
	user.Email = retired
	s.log.Info().Str("username", user.Username).Msg("account retired")
	return nil
}
