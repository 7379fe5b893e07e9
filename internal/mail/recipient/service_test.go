package recipient_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maildeck/maildeck/internal/mail/recipient"
	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/internal/platform/ctxkey"
	"github.com/maildeck/maildeck/internal/platform/sec"
	"github.com/maildeck/maildeck/pkg/pagination"
	"github.com/maildeck/maildeck/pkg/pointer"
)

type fakeRepo struct {
	recipients map[string]*recipient.Recipient
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{recipients: make(map[string]*recipient.Recipient)}
}

func sameType(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *fakeRepo) Create(_ context.Context, rec *recipient.Recipient) error {
	for _, existing := range r.recipients {
		if existing.EmailID == rec.EmailID && existing.UserID == rec.UserID && sameType(existing.RecipientTypeID, rec.RecipientTypeID) {
			return apperr.Conflict("Resource already exists")
		}
	}
	r.recipients[rec.ID] = rec
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*recipient.Recipient, error) {
	if rec, ok := r.recipients[id]; ok {
		return rec, nil
	}
	return nil, apperr.NotFound("Recipient")
}

func (r *fakeRepo) Update(_ context.Context, rec *recipient.Recipient) error {
	r.recipients[rec.ID] = rec
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.recipients, id)
	return nil
}

func (r *fakeRepo) ListByEmail(_ context.Context, emailID string, _ pagination.Params) ([]*recipient.Recipient, int, error) {
	out := make([]*recipient.Recipient, 0)
	for _, rec := range r.recipients {
		if rec.EmailID == emailID {
			out = append(out, rec)
		}
	}
	return out, len(out), nil
}

type fakeTypeRepo struct {
	types map[string]*recipient.RecipientType
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[string]*recipient.RecipientType)}
}

func (r *fakeTypeRepo) Create(_ context.Context, recipientType *recipient.RecipientType) error {
	for _, existing := range r.types {
		if existing.Name == recipientType.Name {
			return apperr.Conflict("Resource already exists")
		}
	}
	r.types[recipientType.ID] = recipientType
	return nil
}

func (r *fakeTypeRepo) GetByID(_ context.Context, id string) (*recipient.RecipientType, error) {
	if recipientType, ok := r.types[id]; ok {
		return recipientType, nil
	}
	return nil, apperr.NotFound("Recipient type")
}

func (r *fakeTypeRepo) Update(_ context.Context, recipientType *recipient.RecipientType) error {
	r.types[recipientType.ID] = recipientType
	return nil
}

func (r *fakeTypeRepo) Delete(_ context.Context, id string) error {
	delete(r.types, id)
	return nil
}

func (r *fakeTypeRepo) List(_ context.Context) ([]*recipient.RecipientType, error) {
	out := make([]*recipient.RecipientType, 0, len(r.types))
	for _, recipientType := range r.types {
		out = append(out, recipientType)
	}
	return out, nil
}

func newService(repo *fakeRepo, typeRepo *fakeTypeRepo) *recipient.Service {
	return recipient.NewService(repo, typeRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreate_DuplicateConflict(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, newFakeTypeRepo())

	input := recipient.CreateInput{
		Name:            "Alice",
		EmailID:         "email-1",
		RecipientTypeID: pointer.To("type-to"),
		UserID:          "user-1",
	}

	_, err := service.Create(context.Background(), input)
	require.NoError(t, err)

	// The same (email, user, type) triple cannot be linked twice.
	_, err = service.Create(context.Background(), input)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Len(t, repo.recipients, 1)

	// A different type for the same pair is a new link.
	input.RecipientTypeID = pointer.To("type-cc")
	_, err = service.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, repo.recipients, 2)
}

func TestCreateType_DuplicateName(t *testing.T) {
	typeRepo := newFakeTypeRepo()
	service := newService(newFakeRepo(), typeRepo)

	_, err := service.CreateType(context.Background(), "To")
	require.NoError(t, err)

	_, err = service.CreateType(context.Background(), "To")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Len(t, typeRepo.types, 1)
}

// typeRequest runs a request against the type catalogue routes with the given
// claims injected, mimicking what the authentication middleware does.
func typeRequest(t *testing.T, handler *recipient.Handler, claims *sec.AuthClaims, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if claims != nil {
		request = request.WithContext(context.WithValue(request.Context(), ctxkey.KeyUser, claims))
	}

	recorder := httptest.NewRecorder()
	handler.TypeRoutes().ServeHTTP(recorder, request)
	return recorder
}

func TestTypeRoutes_AdminGating(t *testing.T) {
	typeRepo := newFakeTypeRepo()
	handler := recipient.NewHandler(newService(newFakeRepo(), typeRepo))

	member := &sec.AuthClaims{UserID: "user-1", Username: "alice", Role: "member"}
	admin := &sec.AuthClaims{UserID: "user-2", Username: "root", Role: "admin"}

	// Anonymous callers are rejected before any role check.
	recorder := typeRequest(t, handler, nil, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Any authenticated user may read the catalogue.
	recorder = typeRequest(t, handler, member, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Mutations are refused for members and leave the catalogue unchanged.
	recorder = typeRequest(t, handler, member, http.MethodPost, "/", `{"name":"To"}`)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Empty(t, typeRepo.types)

	// Administrators may mutate.
	recorder = typeRequest(t, handler, admin, http.MethodPost, "/", `{"name":"To"}`)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Len(t, typeRepo.types, 1)
}
