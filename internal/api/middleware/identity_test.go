package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshu-app/renshu/internal/api/shared"
)

type staticResolver struct {
	userID uuid.UUID
	err    error
}

func (r staticResolver) ResolveUser(context.Context, string) (uuid.UUID, error) {
	return r.userID, r.err
}

func identityProbe(t *testing.T, resolver UserResolver, authorization string) (*httptest.ResponseRecorder, uuid.UUID) {
	t.Helper()

	var seen uuid.UUID
	handler := IdentityMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder, seen
}

func TestIdentityMiddlewareResolvesUser(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	recorder, seen := identityProbe(t, staticResolver{userID: userID}, "Bearer some-token")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, userID, seen)
}

func TestIdentityMiddlewareAcceptsBareToken(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	recorder, seen := identityProbe(t, staticResolver{userID: userID}, "some-token")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, userID, seen)
}

func TestIdentityMiddlewareRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	recorder, _ := identityProbe(t, staticResolver{userID: uuid.New()}, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestIdentityMiddlewareRejectsResolverFailure(t *testing.T) {
	t.Parallel()

	recorder, _ := identityProbe(t, staticResolver{err: errors.New("unknown token")}, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestIdentityMiddlewareRequiresResolver(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		IdentityMiddleware(nil)
	})
}
