package ports

import (
	"context"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// OrganizationSource exposes the organizations claimed by every site.
type OrganizationSource interface {
	AllOrganizations(ctx context.Context) ([]string, error)
}

// SiteStore resolves sites by domain.
type SiteStore interface {
	OrganizationSource
	FindByDomain(ctx context.Context, domain string) (*domain.Site, error)
}
