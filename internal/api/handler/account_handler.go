package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

// AccountHandler handles HTTP requests for learner accounts. Every account is
// resolved inside the request's site, so users of other sites are invisible.
type AccountHandler struct {
	accounts ports.AccountService
	lookup   ports.UserLookup
}

func NewAccountHandler(accounts ports.AccountService, lookup ports.UserLookup) *AccountHandler {
	return &AccountHandler{accounts: accounts, lookup: lookup}
}

// Create provisions a learner account on the request's site.
//
// @Summary      Create a learner account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	user, warnings, err := h.accounts.Create(c.Request().Context(), req.toInput(currentSite(c)))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, accountResponse{User: user, Warnings: warnings})
}

// Get looks a learner up by username and/or email inside the request's site.
//
// @Summary      Look up a learner account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        username  query     string  false  "Username"
// @Param        email     query     string  false  "Email"
// @Success      200       {object}  accountResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/accounts [get]
func (h *AccountHandler) Get(c echo.Context) error {
	q := domain.UserQuery{Username: c.QueryParam("username"), Email: c.QueryParam("email")}

	user, err := h.lookup.GetUserForSite(c.Request().Context(), q, currentSite(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, accountResponse{User: user})
}

// Update applies account setting changes. Learners may only update
// themselves; staff may update anyone on the site.
//
// @Summary      Update a learner account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string          true  "Username"
// @Param        body      body      object          true  "Fields to update"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/accounts/{username} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	username := c.Param("username")
	caller, role := currentCaller(c)
	if role != domain.RoleStaff && caller != username {
		return respondError(c, domain.ErrForbidden)
	}

	// Body only: the path parameter must not end up in the update.
	var update map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &update); err != nil || len(update) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	ctx := c.Request().Context()
	user, err := h.lookup.GetUserForSite(ctx, domain.UserQuery{Username: username}, currentSite(c))
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.accounts.Update(ctx, user, update)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, accountResponse{User: updated})
}

// Deactivate retires a learner account.
//
// @Summary      Retire a learner account
// @Tags         accounts
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{username} [delete]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.lookup.GetUserForSite(ctx, domain.UserQuery{Username: c.Param("username")}, currentSite(c))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.accounts.Deactivate(ctx, user); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
