package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openlearn/provisioning/internal/core/domain"
)

func mustKey(t *testing.T, s string) domain.CourseKey {
	t.Helper()
	k, err := domain.ParseCourseKey(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return k
}

func TestTenantResolver_Disabled(t *testing.T) {
	r := NewTenantResolver(TenancyConfig{MultiTenancyEnabled: false}, stubOrgs{err: errors.New("must not be called")})

	ok, err := r.ValidOrganization(context.Background(), mustKey(t, "course-v1:OrgB+C1+R1"), siteA)
	if err != nil || !ok {
		t.Fatalf("expected valid when multi-tenancy is disabled, got %v %v", ok, err)
	}
}

func TestTenantResolver_ScopedSiteMembership(t *testing.T) {
	r := NewTenantResolver(TenancyConfig{MultiTenancyEnabled: true}, stubOrgs{all: []string{"OrgA", "OrgB"}})

	ok, _ := r.ValidOrganization(context.Background(), mustKey(t, "course-v1:OrgA+C1+R1"), siteA)
	if !ok {
		t.Error("own organization must be valid")
	}
	ok, _ = r.ValidOrganization(context.Background(), mustKey(t, "course-v1:OrgB+C1+R1"), siteA)
	if ok {
		t.Error("other site's organization must be rejected")
	}
	ok, _ = r.ValidOrganization(context.Background(), mustKey(t, "course-v1:Unclaimed+C1+R1"), siteA)
	if ok {
		t.Error("scoped sites are an allow-list; unclaimed organizations are rejected")
	}
}

func TestTenantResolver_UnscopedSiteAsymmetry(t *testing.T) {
	r := NewTenantResolver(TenancyConfig{MultiTenancyEnabled: true}, stubOrgs{all: []string{"OrgA", "OrgB"}})
	unscoped := &domain.Site{Domain: "legacy.example.com"}

	ok, err := r.ValidOrganization(context.Background(), mustKey(t, "course-v1:OrgB+C1+R1"), unscoped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("an organization claimed by another site must be rejected")
	}

	ok, _ = r.ValidOrganization(context.Background(), mustKey(t, "course-v1:Free+C1+R1"), unscoped)
	if !ok {
		t.Error("an organization claimed by no site must be accepted")
	}

	ok, _ = r.ValidOrganization(context.Background(), mustKey(t, "course-v1:Free+C1+R1"), nil)
	if !ok {
		t.Error("a missing site behaves like an unscoped site")
	}
}

func TestTenantResolver_ValidCourseID_Malformed(t *testing.T) {
	r := NewTenantResolver(TenancyConfig{MultiTenancyEnabled: true}, stubOrgs{err: errors.New("must not be called")})

	_, err := r.ValidCourseID(context.Background(), "garbage", siteA)
	if !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestTenantResolver_OrgSourceFailure(t *testing.T) {
	r := NewTenantResolver(TenancyConfig{MultiTenancyEnabled: true}, stubOrgs{err: errors.New("mongo down")})

	if _, err := r.ValidOrganization(context.Background(), mustKey(t, "course-v1:X+C+R"), nil); err == nil {
		t.Fatal("expected error from organization source")
	}
}
