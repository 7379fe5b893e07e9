// Copyright (c) 2026 Maildeck. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/internal/platform/middleware"
	requestutil "github.com/maildeck/maildeck/internal/platform/request"
	"github.com/maildeck/maildeck/internal/platform/respond"
	"github.com/maildeck/maildeck/internal/platform/sec"
	"github.com/maildeck/maildeck/internal/platform/validate"
	"github.com/maildeck/maildeck/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the administrative account-management endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account administration routes.
//
// # Endpoints
//   - GET    /            : List accounts (admin).
//   - GET    /{userID}    : Inspect one account (admin).
//   - PATCH  /{userID}    : Update moderation flags (admin).
//   - DELETE /{userID}    : Delete an account and everything it owns (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Get("/{userID}", handler.get)
	router.Patch("/{userID}", handler.updateFlags)
	router.Delete("/{userID}", handler.remove)

	return router
}

// requireAdmin evaluates the explicit authorization decision for the caller.
// Returning the denial as an error keeps every handler's guard at its top.
func requireAdmin(request *http.Request) error {
	decision := sec.Authorize(requestutil.Claims(request), sec.RoleAdmin)
	if !decision.Allowed() {
		return apperr.Forbidden("Administrator privileges required")
	}
	return nil
}

// # Request Payloads

type updateFlagsRequest struct {
	IsAdmin   *bool `json:"is_admin"`
	IsBanned  *bool `json:"is_banned"`
	IsFlagged *bool `json:"is_flagged"`
}

/*
List returns a page of user accounts.

GET /api/v1/users?page=&limit=&username=

Response:
  - 200: Paginated list of accounts
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	if err := requireAdmin(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	usernameFilter := request.URL.Query().Get("username")

	users, total, err := handler.accountService.ListUsers(request.Context(), params, usernameFilter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get returns a single account by ID.

GET /api/v1/users/{userID}

Response:
  - 200: Account details
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	if err := requireAdmin(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")

	user, err := handler.accountService.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateFlags applies moderation-flag changes to an account.

PATCH /api/v1/users/{userID}

Request:
  - Body: updateFlagsRequest (IsAdmin, IsBanned, IsFlagged; all optional)

Response:
  - 200: Updated account
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) updateFlags(writer http.ResponseWriter, request *http.Request) {
	if err := requireAdmin(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")

	var input updateFlagsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.UpdateFlags(request.Context(), userID, UpdateFlagsInput{
		IsAdmin:   input.IsAdmin,
		IsBanned:  input.IsBanned,
		IsFlagged: input.IsFlagged,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Remove deletes an account and all data it owns.

DELETE /api/v1/users/{userID}

Response:
  - 204: No Content: Account removed
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := requireAdmin(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")

	if err := handler.accountService.DeleteUser(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
