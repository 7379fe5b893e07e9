package recipient

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
	router.Get("/{recipientID}", handler.get)
	router.Patch("/{recipientID}", handler.update)
	router.Delete("/{recipientID}", handler.remove)

	return router
}

// TypeRoutes serves the shared recipient type catalogue. Reads are open to
// any authenticated user; mutations require the admin role.
func (handler *Handler) TypeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listTypes)
	router.Post("/", handler.createType)
	router.Patch("/{typeID}", handler.updateType)
	router.Delete("/{typeID}", handler.removeType)

	return router
}

type createRecipientRequest struct {
	Name            string  `json:"name"`
	EmailID         string  `json:"email_id"`
	RecipientTypeID *string `json:"recipient_type_id"`
	UserID          string  `json:"user_id"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	emailID := request.URL.Query().Get("email_id")

	validator := &validate.Validator{}
	validator.Required("email_id", emailID).UUID("email_id", emailID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	recipients, total, err := handler.service.ListByEmail(request.Context(), emailID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, recipients, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRecipientRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 100)
	validator.Required("email_id", input.EmailID).UUID("email_id", input.EmailID)
	validator.Required("user_id", input.UserID).UUID("user_id", input.UserID)
	if input.RecipientTypeID != nil {
		validator.UUID("recipient_type_id", *input.RecipientTypeID)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	recipient, err := handler.service.Create(request.Context(), CreateInput{
		Name:            input.Name,
		EmailID:         input.EmailID,
		RecipientTypeID: input.RecipientTypeID,
		UserID:          input.UserID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, recipient)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	recipient, err := handler.service.Get(request.Context(), requestutil.ID(request, "recipientID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipient)
}

type updateRecipientRequest struct {
	Name            *string `json:"name"`
	RecipientTypeID *string `json:"recipient_type_id"`
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRecipientRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required("name", *input.Name).MaxLen("name", *input.Name, 100)
	}
	if input.RecipientTypeID != nil {
		validator.UUID("recipient_type_id", *input.RecipientTypeID)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	recipient, err := handler.service.Update(request.Context(), requestutil.ID(request, "recipientID"), UpdateInput{
		Name:            input.Name,
		RecipientTypeID: input.RecipientTypeID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipient)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "recipientID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Recipient Types

type recipientTypeRequest struct {
	Name string `json:"name"`
}

func (handler *Handler) listTypes(writer http.ResponseWriter, request *http.Request) {
	types, err := handler.service.ListTypes(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, types)
}

func (handler *Handler) createType(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequireRole(request, sec.RoleAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recipientTypeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 50)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	recipientType, err := handler.service.CreateType(request.Context(), input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, recipientType)
}

func (handler *Handler) updateType(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequireRole(request, sec.RoleAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recipientTypeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 50)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	recipientType, err := handler.service.UpdateType(request.Context(), requestutil.ID(request, "typeID"), input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipientType)
}

func (handler *Handler) removeType(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequireRole(request, sec.RoleAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteType(request.Context(), requestutil.ID(request, "typeID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
