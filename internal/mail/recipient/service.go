package recipient

import (
	"context"
	"log/slog"
	"time"

	"github.com/maildeck/maildeck/pkg/pagination"
	"github.com/maildeck/maildeck/pkg/uuid"
)

type Service struct {
	repo     Repository
	typeRepo TypeRepository
	logger   *slog.Logger
}

func NewService(repo Repository, typeRepo TypeRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		typeRepo: typeRepo,
		logger:   logger,
	}
}

type CreateInput struct {
	Name            string
	EmailID         string
	RecipientTypeID *string
	UserID          string
}

// Create links a user to an email. Foreign keys validate the email, user,
// and type references; the (email, user, type) unique constraint guards
// duplicates. Both surface as Conflict.
func (service *Service) Create(context context.Context, input CreateInput) (*Recipient, error) {
	recipient := &Recipient{
		ID:              uuid.New(),
		Name:            input.Name,
		EmailID:         input.EmailID,
		RecipientTypeID: input.RecipientTypeID,
		UserID:          input.UserID,
		CreatedAt:       time.Now(),
	}

	if err := service.repo.Create(context, recipient); err != nil {
		return nil, err
	}

	return service.repo.GetByID(context, recipient.ID)
}

func (service *Service) Get(context context.Context, id string) (*Recipient, error) {
	return service.repo.GetByID(context, id)
}

type UpdateInput struct {
	Name            *string
	RecipientTypeID *string
}

func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Recipient, error) {
	recipient, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		recipient.Name = *input.Name
	}
	if input.RecipientTypeID != nil {
		recipient.RecipientTypeID = input.RecipientTypeID
	}

	if err := service.repo.Update(context, recipient); err != nil {
		return nil, err
	}

	return service.repo.GetByID(context, id)
}

func (service *Service) Delete(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}
	return service.repo.Delete(context, id)
}

func (service *Service) ListByEmail(context context.Context, emailID string, params pagination.Params) ([]*Recipient, int, error) {
	return service.repo.ListByEmail(context, emailID, params)
}

// # Recipient Types

// CreateType adds a shared recipient type. Admin-only; the name is unique.
func (service *Service) CreateType(context context.Context, name string) (*RecipientType, error) {
	recipientType := &RecipientType{
		ID:   uuid.New(),
		Name: name,
	}

	if err := service.typeRepo.Create(context, recipientType); err != nil {
		return nil, err
	}

	service.logger.Info("recipient_type_created", slog.String("name", name))

	return recipientType, nil
}

func (service *Service) ListTypes(context context.Context) ([]*RecipientType, error) {
	return service.typeRepo.List(context)
}

func (service *Service) UpdateType(context context.Context, id, name string) (*RecipientType, error) {
	recipientType, err := service.typeRepo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	recipientType.Name = name
	if err := service.typeRepo.Update(context, recipientType); err != nil {
		return nil, err
	}

	return recipientType, nil
}

func (service *Service) DeleteType(context context.Context, id string) error {
	if _, err := service.typeRepo.GetByID(context, id); err != nil {
		return err
	}
	return service.typeRepo.Delete(context, id)
}
