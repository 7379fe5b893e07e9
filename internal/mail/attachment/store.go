package attachment

import (
	"context"

	"github.com/maildeck/maildeck/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, attachment *Attachment) error
	GetByID(context context.Context, id string) (*Attachment, error)
	Update(context context.Context, attachment *Attachment) error
	Delete(context context.Context, id string) error
	ListByEmail(context context.Context, emailID string, params pagination.Params) ([]*Attachment, int, error)
}
