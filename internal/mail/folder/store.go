package folder

import (
	"context"

	"github.com/maildeck/maildeck/internal/mail/email"
	"github.com/maildeck/maildeck/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, folder *Folder) error
	GetByID(context context.Context, id string) (*Folder, error)
	Update(context context.Context, folder *Folder) error
	Delete(context context.Context, id string) error
	ListByUser(context context.Context, userID, nameFilter string, params pagination.Params) ([]*Folder, int, error)

	AttachEmail(context context.Context, folderID, emailID string) error
	DetachEmail(context context.Context, folderID, emailID string) error
	ListEmails(context context.Context, folderID string, params pagination.Params) ([]*email.Email, int, error)
}
