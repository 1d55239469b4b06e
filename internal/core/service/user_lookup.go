package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openlearn/provisioning/internal/api/metrics"
	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// Names of the built-in site attribution sources, as used in configuration.
const (
	SourceCreatedOnSite   = "fetch_from_created_on_site_prop"
	SourceSignupSource    = "fetch_from_user_signup_source"
	SourceUnfilteredTable = "fetch_from_unfiltered_table"
)

// SiteSourceFunc answers whether user belongs to the site with the given domain.
type SiteSourceFunc func(ctx context.Context, user *domain.User, siteDomain string) (bool, error)

type siteSource struct {
	name  string
	match SiteSourceFunc
}

// SiteSources returns the built-in attribution sources keyed by name.
func SiteSources(store ports.IdentityStore) map[string]SiteSourceFunc {
	return map[string]SiteSourceFunc{
		SourceCreatedOnSite: func(ctx context.Context, u *domain.User, siteDomain string) (bool, error) {
			if siteDomain == "" {
				return false, nil
			}
			v, err := store.GetUserAttribute(ctx, u.ID, domain.AttrCreatedOnSite)
			if err != nil {
				return false, err
			}
			return v == siteDomain, nil
		},
		SourceSignupSource: func(ctx context.Context, u *domain.User, siteDomain string) (bool, error) {
			return store.HasSignupSource(ctx, u.ID, siteDomain)
		},
		// Ignores tenancy entirely, for installations that opt out of isolation.
		SourceUnfilteredTable: func(_ context.Context, u *domain.User, _ string) (bool, error) {
			return u != nil, nil
		},
	}
}

// SiteUserResolver looks users up inside a site. A user that exists but is not
// attributed to the site is reported as not found.
type SiteUserResolver struct {
	store   ports.IdentityStore
	sources []siteSource
	log     zerolog.Logger
}

// NewSiteUserResolver builds the attribution chain from cfg.OriginSources,
// picking each name from available. Unknown names are a configuration error.
func NewSiteUserResolver(store ports.IdentityStore, cfg TenancyConfig, available map[string]SiteSourceFunc, log zerolog.Logger) (*SiteUserResolver, error) {
	chain := make([]siteSource, 0, len(cfg.OriginSources))
	for _, name := range cfg.OriginSources {
		fn, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("unknown user origin site source %q", name)
		}
		chain = append(chain, siteSource{name: name, match: fn})
	}
	return &SiteUserResolver{store: store, sources: chain, log: log}, nil
}

// GetUserForSite returns the user matching q if one of the configured sources
// attributes it to site.
func (r *SiteUserResolver) GetUserForSite(ctx context.Context, q domain.UserQuery, site *domain.Site) (*domain.User, error) {
	siteDomain := domain.DomainOf(site)
	notFound := &domain.UserNotFoundForSiteError{Query: q.String(), Domain: siteDomain}

	if q.IsEmpty() {
		return nil, notFound
	}

	user, err := r.store.FindUser(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAmbiguousUser) {
			metrics.SiteLookupsTotal.WithLabelValues("not_found", "").Inc()
			return nil, notFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	for _, src := range r.sources {
		ok, err := src.match(ctx, user, siteDomain)
		if err != nil {
			return nil, fmt.Errorf("site source %s: %w", src.name, err)
		}
		if ok {
			metrics.SiteLookupsTotal.WithLabelValues("found", src.name).Inc()
			return user, nil
		}
	}

	r.log.Debug().Str("query", q.String()).Str("site", siteDomain).Msg("user not attributed to site")
	metrics.SiteLookupsTotal.WithLabelValues("not_attributed", "").Inc()
	return nil, notFound
}
