package email

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maildeck/maildeck/internal/platform/middleware"
	requestutil "github.com/maildeck/maildeck/internal/platform/request"
	"github.com/maildeck/maildeck/internal/platform/respond"
	"github.com/maildeck/maildeck/internal/platform/sec"
	"github.com/maildeck/maildeck/internal/platform/validate"
	"github.com/maildeck/maildeck/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{emailID}", handler.get)
	router.Patch("/{emailID}", handler.update)
	router.Delete("/{emailID}", handler.remove)

	return router
}

type createRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type updateRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Subject:  request.URL.Query().Get("subject"),
		SenderID: request.URL.Query().Get("sender_id"),
	}

	emails, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, emails, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("subject", input.Subject).MaxLen("subject", input.Subject, 255)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email, err := handler.service.Create(request.Context(), claims.UserID, CreateInput{
		Subject: input.Subject,
		Body:    input.Body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, email)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	email, err := handler.service.Get(request.Context(), requestutil.ID(request, "emailID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, email)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	isAdmin := sec.Authorize(claims, sec.RoleAdmin).Allowed()

	email, err := handler.service.Update(
		request.Context(),
		requestutil.ID(request, "emailID"),
		claims.UserID,
		isAdmin,
		UpdateInput{Subject: input.Subject, Body: input.Body},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, email)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	isAdmin := sec.Authorize(claims, sec.RoleAdmin).Allowed()

	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "emailID"), claims.UserID, isAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
