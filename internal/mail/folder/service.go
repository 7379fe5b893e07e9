package folder

import (
	"context"
	"log/slog"
	"time"

	"github.com/maildeck/maildeck/internal/mail/email"
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

// Create adds a folder for the current identity. The (user, name) unique
// constraint surfaces duplicates as Conflict.
func (service *Service) Create(context context.Context, userID, name string) (*Folder, error) {
	folder := &Folder{
		ID:        uuid.New(),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := service.repo.Create(context, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// get loads a folder and checks that the requester owns it.
func (service *Service) get(context context.Context, id, requesterID string) (*Folder, error) {
	folder, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	if folder.UserID != requesterID {
		return nil, apperr.Forbidden("You can only manage your own folders")
	}
	return folder, nil
}

func (service *Service) Get(context context.Context, id, requesterID string) (*Folder, error) {
	return service.get(context, id, requesterID)
}

func (service *Service) Rename(context context.Context, id, requesterID, name string) (*Folder, error) {
	folder, err := service.get(context, id, requesterID)
	if err != nil {
		return nil, err
	}

	folder.Name = name
	if err := service.repo.Update(context, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

func (service *Service) Delete(context context.Context, id, requesterID string) error {
	if _, err := service.get(context, id, requesterID); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("folder_deleted",
		slog.String("folder_id", id),
		slog.String("user_id", requesterID),
	)

	return nil
}

func (service *Service) List(context context.Context, userID, nameFilter string, params pagination.Params) ([]*Folder, int, error) {
	return service.repo.ListByUser(context, userID, nameFilter, params)
}

func (service *Service) AttachEmail(context context.Context, folderID, emailID, requesterID string) error {
	if _, err := service.get(context, folderID, requesterID); err != nil {
		return err
	}
	return service.repo.AttachEmail(context, folderID, emailID)
}

func (service *Service) DetachEmail(context context.Context, folderID, emailID, requesterID string) error {
	if _, err := service.get(context, folderID, requesterID); err != nil {
		return err
	}
	return service.repo.DetachEmail(context, folderID, emailID)
}

func (service *Service) ListEmails(context context.Context, folderID, requesterID string, params pagination.Params) ([]*email.Email, int, error) {
	if _, err := service.get(context, folderID, requesterID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListEmails(context, folderID, params)
}
