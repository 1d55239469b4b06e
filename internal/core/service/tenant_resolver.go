package service

import (
	"context"
	"fmt"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// TenancyConfig holds the multi-tenancy switches. It is built once at startup
// and handed to every component that needs it.
type TenancyConfig struct {
	// MultiTenancyEnabled turns on organization isolation between sites.
	MultiTenancyEnabled bool
	// OriginSources is the ordered list of site attribution sources used by
	// SiteUserResolver (see SourceCreatedOnSite and friends).
	OriginSources []string
	// RetirementDomain is the email domain retired accounts are moved to.
	RetirementDomain string
}

// TenantResolver decides whether a course organization may be used from a site.
type TenantResolver struct {
	cfg  TenancyConfig
	orgs ports.OrganizationSource
}

func NewTenantResolver(cfg TenancyConfig, orgs ports.OrganizationSource) *TenantResolver {
	return &TenantResolver{cfg: cfg, orgs: orgs}
}

// ValidOrganization reports whether key's organization is usable from site.
//
// Scoped sites (non-empty organization set) are an allow-list. Unscoped sites
// accept any organization that no other site has claimed.
func (r *TenantResolver) ValidOrganization(ctx context.Context, key domain.CourseKey, site *domain.Site) (bool, error) {
	if !r.cfg.MultiTenancyEnabled {
		return true, nil
	}

	var siteOrgs []string
	if site != nil {
		siteOrgs = site.Organizations
	}

	if len(siteOrgs) > 0 {
		return contains(siteOrgs, key.Org), nil
	}

	all, err := r.orgs.AllOrganizations(ctx)
	if err != nil {
		return false, fmt.Errorf("list organizations: %w", err)
	}
	return !contains(all, key.Org), nil
}

// ValidCourseID parses courseID and checks its organization against site.
// A malformed id is returned as an *domain.InvalidIdentifierError.
func (r *TenantResolver) ValidCourseID(ctx context.Context, courseID string, site *domain.Site) (bool, error) {
	key, err := domain.ParseCourseKey(courseID)
	if err != nil {
		return false, err
	}
	return r.ValidOrganization(ctx, key, site)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
