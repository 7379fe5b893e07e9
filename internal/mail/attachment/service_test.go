package attachment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/maildeck/internal/mail/attachment"
	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/pkg/pagination"
	"github.com/maildeck/maildeck/pkg/pointer"
)

type fakeRepo struct {
	attachments map[string]*attachment.Attachment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{attachments: make(map[string]*attachment.Attachment)}
}

func (r *fakeRepo) Create(_ context.Context, a *attachment.Attachment) error {
	r.attachments[a.ID] = a
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*attachment.Attachment, error) {
	if a, ok := r.attachments[id]; ok {
		return a, nil
	}
	return nil, apperr.NotFound("Attachment")
}

func (r *fakeRepo) Update(_ context.Context, a *attachment.Attachment) error {
	r.attachments[a.ID] = a
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.attachments, id)
	return nil
}

func (r *fakeRepo) ListByEmail(_ context.Context, emailID string, _ pagination.Params) ([]*attachment.Attachment, int, error) {
	out := make([]*attachment.Attachment, 0)
	for _, a := range r.attachments {
		if a.EmailID == emailID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func TestCreate_RejectsNonPositiveSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
	}{
		{"zero", 0},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			service := attachment.NewService(repo)

			_, err := service.Create(context.Background(), attachment.CreateInput{
				Filename: "report.pdf",
				FileType: "application/pdf",
				FileSize: tt.size,
				EmailID:  "email-1",
			})

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, "file_size", ae.Details[0].Field)
			assert.Empty(t, repo.attachments, "rejected attachments must not persist")
		})
	}
}

func TestCreate_Success(t *testing.T) {
	repo := newFakeRepo()
	service := attachment.NewService(repo)

	created, err := service.Create(context.Background(), attachment.CreateInput{
		Filename: "report.pdf",
		FileType: "application/pdf",
		FileSize: 2048,
		EmailID:  "email-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(2048), created.FileSize)
	assert.Len(t, repo.attachments, 1)
}

func TestUpdate_PartialMetadata(t *testing.T) {
	repo := newFakeRepo()
	service := attachment.NewService(repo)

	created, err := service.Create(context.Background(), attachment.CreateInput{
		Filename: "draft.txt",
		FileType: "text/plain",
		FileSize: 10,
		EmailID:  "email-1",
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, attachment.UpdateInput{
		Filename: pointer.To("final.txt"),
	})

	require.NoError(t, err)
	assert.Equal(t, "final.txt", updated.Filename)
	assert.Equal(t, "text/plain", updated.FileType, "unspecified fields must not change")
	assert.Equal(t, int64(10), updated.FileSize)
}
