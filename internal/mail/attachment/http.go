package attachment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maildeck/maildeck/internal/platform/middleware"
	requestutil "github.com/maildeck/maildeck/internal/platform/request"
	"github.com/maildeck/maildeck/internal/platform/respond"
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
	router.Get("/{attachmentID}", handler.get)
	router.Patch("/{attachmentID}", handler.update)
	router.Delete("/{attachmentID}", handler.remove)

	return router
}

type createAttachmentRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	EmailID  string `json:"email_id"`
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

	attachments, total, err := handler.service.ListByEmail(request.Context(), emailID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, attachments, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createAttachmentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("filename", input.Filename).MaxLen("filename", input.Filename, 255)
	validator.Required("file_type", input.FileType).MaxLen("file_type", input.FileType, 100)
	validator.Required("email_id", input.EmailID).UUID("email_id", input.EmailID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	attachment, err := handler.service.Create(request.Context(), CreateInput{
		Filename: input.Filename,
		FileType: input.FileType,
		FileSize: input.FileSize,
		EmailID:  input.EmailID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, attachment)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	attachment, err := handler.service.Get(request.Context(), requestutil.ID(request, "attachmentID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, attachment)
}

type updateAttachmentRequest struct {
	Filename *string `json:"filename"`
	FileType *string `json:"file_type"`
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateAttachmentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Filename != nil {
		validator.Required("filename", *input.Filename).MaxLen("filename", *input.Filename, 255)
	}
	if input.FileType != nil {
		validator.Required("file_type", *input.FileType).MaxLen("file_type", *input.FileType, 100)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	attachment, err := handler.service.Update(request.Context(), requestutil.ID(request, "attachmentID"), UpdateInput{
		Filename: input.Filename,
		FileType: input.FileType,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, attachment)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "attachmentID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
