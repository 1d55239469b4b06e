package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/openlearn/provisioning/internal/core/domain"
)

type stubSites struct {
	sites map[string]*domain.Site
	err   error
	asked string
}

func (s *stubSites) FindByDomain(_ context.Context, d string) (*domain.Site, error) {
	s.asked = d
	if s.err != nil {
		return nil, s.err
	}
	site, ok := s.sites[d]
	if !ok {
		return nil, domain.ErrSiteNotFound
	}
	return site, nil
}

func (s *stubSites) AllOrganizations(context.Context) ([]string, error) { return nil, nil }

func runSite(t *testing.T, sites *stubSites, host string) (*domain.Site, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	c := e.NewContext(req, httptest.NewRecorder())

	var got *domain.Site
	err := Site(sites, zerolog.Nop())(func(c echo.Context) error {
		got, _ = c.Get("site").(*domain.Site)
		return nil
	})(c)
	return got, err
}

func TestSite_ResolvesHostWithoutPort(t *testing.T) {
	siteA := &domain.Site{Domain: "a.example.com"}
	sites := &stubSites{sites: map[string]*domain.Site{"a.example.com": siteA}}

	got, err := runSite(t, sites, "a.example.com:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != siteA {
		t.Fatalf("expected site A, got %+v", got)
	}
	if sites.asked != "a.example.com" {
		t.Fatalf("port must be stripped, asked for %q", sites.asked)
	}
}

func TestSite_UnknownHostContinuesWithoutSite(t *testing.T) {
	got, err := runSite(t, &stubSites{}, "unknown.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no site, got %+v", got)
	}
}

func TestSite_StoreFailure(t *testing.T) {
	_, err := runSite(t, &stubSites{err: errors.New("mongo down")}, "a.example.com")
	if err == nil {
		t.Fatal("expected store failure to abort the request")
	}
}
