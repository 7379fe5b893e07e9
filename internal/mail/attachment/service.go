package attachment

import (
	"context"
	"time"

	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/pkg/pagination"
	"github.com/maildeck/maildeck/pkg/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Filename string
	FileType string
	FileSize int64
	EmailID  string
}

func (service *Service) Create(context context.Context, input CreateInput) (*Attachment, error) {
	if input.FileSize <= 0 {
		return nil, apperr.ValidationError("File size must be greater than zero", apperr.FieldError{
			Field:   "file_size",
			Message: "must be greater than zero",
		})
	}

	attachment := &Attachment{
		ID:        uuid.New(),
		Filename:  input.Filename,
		FileType:  input.FileType,
		FileSize:  input.FileSize,
		EmailID:   input.EmailID,
		CreatedAt: time.Now(),
	}

	if err := service.repo.Create(context, attachment); err != nil {
		return nil, err
	}

	return attachment, nil
}

func (service *Service) Get(context context.Context, id string) (*Attachment, error) {
	return service.repo.GetByID(context, id)
}

type UpdateInput struct {
	Filename *string
	FileType *string
}

func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Attachment, error) {
	attachment, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Filename != nil {
		attachment.Filename = *input.Filename
	}
	if input.FileType != nil {
		attachment.FileType = *input.FileType
	}

	if err := service.repo.Update(context, attachment); err != nil {
		return nil, err
	}

	return attachment, nil
}

func (service *Service) Delete(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}
	return service.repo.Delete(context, id)
}

func (service *Service) ListByEmail(context context.Context, emailID string, params pagination.Params) ([]*Attachment, int, error) {
	return service.repo.ListByEmail(context, emailID, params)
}
