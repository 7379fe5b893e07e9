package folder_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/maildeck/internal/mail/email"
	"github.com/maildeck/maildeck/internal/mail/folder"
	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/pkg/pagination"
)

type fakeRepo struct {
	folders  map[string]*folder.Folder
	contents map[string]map[string]bool // folderID -> emailID set
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		folders:  make(map[string]*folder.Folder),
		contents: make(map[string]map[string]bool),
	}
}

func (r *fakeRepo) Create(_ context.Context, f *folder.Folder) error {
	for _, existing := range r.folders {
		if existing.UserID == f.UserID && existing.Name == f.Name {
			return apperr.Conflict("Resource already exists")
		}
	}
	r.folders[f.ID] = f
	r.contents[f.ID] = make(map[string]bool)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*folder.Folder, error) {
	if f, ok := r.folders[id]; ok {
		return f, nil
	}
	return nil, apperr.NotFound("Folder")
}

func (r *fakeRepo) Update(_ context.Context, f *folder.Folder) error {
	r.folders[f.ID] = f
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.folders, id)
	delete(r.contents, id)
	return nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID, _ string, _ pagination.Params) ([]*folder.Folder, int, error) {
	out := make([]*folder.Folder, 0)
	for _, f := range r.folders {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) AttachEmail(_ context.Context, folderID, emailID string) error {
	r.contents[folderID][emailID] = true
	return nil
}

func (r *fakeRepo) DetachEmail(_ context.Context, folderID, emailID string) error {
	delete(r.contents[folderID], emailID)
	return nil
}

func (r *fakeRepo) ListEmails(_ context.Context, folderID string, _ pagination.Params) ([]*email.Email, int, error) {
	out := make([]*email.Email, 0)
	for id := range r.contents[folderID] {
		out = append(out, &email.Email{ID: id})
	}
	return out, len(out), nil
}

func newService(repo *fakeRepo) *folder.Service {
	return folder.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateAndList(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	f, err := service.Create(context.Background(), "user-1", "Inbox")
	require.NoError(t, err)
	assert.Equal(t, "user-1", f.UserID)

	// Duplicate name for the same user conflicts.
	_, err = service.Create(context.Background(), "user-1", "Inbox")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)

	// Another user may reuse the name.
	_, err = service.Create(context.Background(), "user-2", "Inbox")
	require.NoError(t, err)

	folders, total, err := service.List(context.Background(), "user-1", "", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, folders, 1)
}

func TestOwnerScoping(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	f, err := service.Create(context.Background(), "user-1", "Inbox")
	require.NoError(t, err)

	// Folders are strictly owner-scoped; even reads by others are refused.
	_, err = service.Get(context.Background(), f.ID, "user-2")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	_, err = service.Rename(context.Background(), f.ID, "user-2", "Stolen")
	assert.NotNil(t, apperr.As(err))

	err = service.AttachEmail(context.Background(), f.ID, "email-1", "user-2")
	assert.NotNil(t, apperr.As(err))
}

func TestAttachDetach(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	f, err := service.Create(context.Background(), "user-1", "Inbox")
	require.NoError(t, err)

	require.NoError(t, service.AttachEmail(context.Background(), f.ID, "email-1", "user-1"))
	// Attaching twice is a no-op, mirroring ON CONFLICT DO NOTHING.
	require.NoError(t, service.AttachEmail(context.Background(), f.ID, "email-1", "user-1"))

	emails, total, err := service.ListEmails(context.Background(), f.ID, "user-1", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, emails, 1)

	require.NoError(t, service.DetachEmail(context.Background(), f.ID, "email-1", "user-1"))
	_, total, err = service.ListEmails(context.Background(), f.ID, "user-1", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
}
