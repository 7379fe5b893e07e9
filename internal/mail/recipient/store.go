package recipient

import (
	"context"

	"github.com/maildeck/maildeck/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, recipient *Recipient) error
	GetByID(context context.Context, id string) (*Recipient, error)
	Update(context context.Context, recipient *Recipient) error
	Delete(context context.Context, id string) error
	ListByEmail(context context.Context, emailID string, params pagination.Params) ([]*Recipient, int, error)
}

type TypeRepository interface {
	Create(context context.Context, recipientType *RecipientType) error
	GetByID(context context.Context, id string) (*RecipientType, error)
	Update(context context.Context, recipientType *RecipientType) error
	Delete(context context.Context, id string) error
	List(context context.Context) ([]*RecipientType, error)
}
