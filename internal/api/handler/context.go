package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// currentSite returns the site resolved by the Site middleware, or nil when
// the request host is not a known site.
func currentSite(c echo.Context) *domain.Site {
	site, _ := c.Get("site").(*domain.Site)
	return site
}

// currentCaller returns the username and role injected by the Auth middleware.
func currentCaller(c echo.Context) (username, role string) {
	username, _ = c.Get("username").(string)
	role, _ = c.Get("role").(string)
	return username, role
}
