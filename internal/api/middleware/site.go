package middleware

import (
	"errors"
	"net"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// Site resolves the tenant from the request host and stores it under "site".
// Unknown hosts proceed without a site, which handlers treat as unscoped.
func Site(sites ports.SiteStore, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host := c.Request().Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}

			site, err := sites.FindByDomain(c.Request().Context(), host)
			switch {
			case err == nil:
				c.Set("site", site)
			case errors.Is(err, domain.ErrSiteNotFound):
				log.Debug().Str("host", host).Msg("request host is not a known site")
			default:
				return err
			}

			return next(c)
		}
	}
}
