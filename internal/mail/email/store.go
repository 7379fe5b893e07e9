package email

import (
	"context"

	"github.com/maildeck/maildeck/pkg/pagination"
)

// ListFilter narrows a listing to a subject substring and/or a sender.
type ListFilter struct {
	Subject  string
	SenderID string
}

type Repository interface {
	Create(context context.Context, email *Email) error
	GetByID(context context.Context, id string) (*Email, error)
	Update(context context.Context, email *Email) error
	Delete(context context.Context, id string) error
	List(context context.Context, filter ListFilter, params pagination.Params) ([]*Email, int, error)
}
