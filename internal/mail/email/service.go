package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/pkg/pagination"
	"github.com/maildeck/maildeck/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

type CreateInput struct {
	Subject string
	Body    string
}

// Create stores a new email authored by the current identity.
func (service *Service) Create(context context.Context, senderID string, input CreateInput) (*Email, error) {
	now := time.Now()
	email := &Email{
		ID:        uuid.New(),
		Subject:   input.Subject,
		Body:      input.Body,
		SenderID:  senderID,
		SentAt:    &now,
		CreatedAt: now,
	}

	if err := service.repo.Create(context, email); err != nil {
		return nil, err
	}

	return email, nil
}

func (service *Service) Get(context context.Context, id string) (*Email, error) {
	return service.repo.GetByID(context, id)
}

type UpdateInput struct {
	Subject *string
	Body    *string
}

// Update edits subject/body. Only the sender or an administrator may edit.
func (service *Service) Update(context context.Context, id, requesterID string, requesterIsAdmin bool, input UpdateInput) (*Email, error) {
	email, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if email.SenderID != requesterID && !requesterIsAdmin {
		return nil, apperr.Forbidden("You can only edit your own emails")
	}

	if input.Subject != nil {
		email.Subject = *input.Subject
	}
	if input.Body != nil {
		email.Body = *input.Body
	}

	if err := service.repo.Update(context, email); err != nil {
		return nil, err
	}

	return email, nil
}

// Delete removes an email. Only the sender or an administrator may delete.
// The schema cascades to recipients, attachments, and folder joins.
func (service *Service) Delete(context context.Context, id, requesterID string, requesterIsAdmin bool) error {
	email, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}

	if email.SenderID != requesterID && !requesterIsAdmin {
		return apperr.Forbidden("You can only delete your own emails")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("email_deleted",
		slog.String("email_id", id),
		slog.String("requester_id", requesterID),
	)

	return nil
}

func (service *Service) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Email, int, error) {
	return service.repo.List(context, filter, params)
}
