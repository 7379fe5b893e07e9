package email_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/maildeck/internal/mail/email"
	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/pkg/pagination"
)

type fakeRepo struct {
	emails map[string]*email.Email
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{emails: make(map[string]*email.Email)}
}

func (r *fakeRepo) Create(_ context.Context, e *email.Email) error {
	r.emails[e.ID] = e
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*email.Email, error) {
	if e, ok := r.emails[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("Email")
}

func (r *fakeRepo) Update(_ context.Context, e *email.Email) error {
	r.emails[e.ID] = e
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.emails, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ email.ListFilter, _ pagination.Params) ([]*email.Email, int, error) {
	out := make([]*email.Email, 0, len(r.emails))
	for _, e := range r.emails {
		out = append(out, e)
	}
	return out, len(out), nil
}

func newService(repo *fakeRepo) *email.Service {
	return email.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	e, err := service.Create(context.Background(), "sender-1", email.CreateInput{
		Subject: "Hello",
		Body:    "World",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "sender-1", e.SenderID)
	require.NotNil(t, e.SentAt)
	assert.Len(t, repo.emails, 1)
}

func TestUpdate_Ownership(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	e, err := service.Create(context.Background(), "sender-1", email.CreateInput{Subject: "Hello"})
	require.NoError(t, err)

	newSubject := "Edited"

	// A stranger cannot edit.
	_, err = service.Update(context.Background(), e.ID, "stranger", false, email.UpdateInput{Subject: &newSubject})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	// The sender can.
	updated, err := service.Update(context.Background(), e.ID, "sender-1", false, email.UpdateInput{Subject: &newSubject})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Subject)

	// An admin can too, regardless of ownership.
	adminSubject := "Admin edit"
	updated, err = service.Update(context.Background(), e.ID, "stranger", true, email.UpdateInput{Subject: &adminSubject})
	require.NoError(t, err)
	assert.Equal(t, "Admin edit", updated.Subject)
}

func TestDelete_Ownership(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	e, err := service.Create(context.Background(), "sender-1", email.CreateInput{Subject: "Hello"})
	require.NoError(t, err)

	err = service.Delete(context.Background(), e.ID, "stranger", false)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
	assert.Len(t, repo.emails, 1)

	require.NoError(t, service.Delete(context.Background(), e.ID, "sender-1", false))
	assert.Empty(t, repo.emails)
}

func TestDelete_NotFound(t *testing.T) {
	service := newService(newFakeRepo())

	err := service.Delete(context.Background(), "missing", "sender-1", false)
	assert.True(t, apperr.IsNotFound(err))
}
