package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/auth"
	"github.com/sakif/pokedex-api/internal/model"
)

type fakeResolver struct {
	users map[string]*model.User
	err   error
	calls int
}

func (f *fakeResolver) Authenticate(_ context.Context, token string) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[token]
	if !ok {
		return nil, apperror.Unauthorized("invalid token")
	}
	return u, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// echoUser responds 200 with the caller's email, or "anonymous".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		_, _ = io.WriteString(w, u.Email)
		return
	}
	_, _ = io.WriteString(w, "anonymous")
})

func newResolver() *fakeResolver {
	return &fakeResolver{users: map[string]*model.User{
		"good-token": {ID: "u1", Email: "ash@example.com"},
	}}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		resolver   *fakeResolver
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good-token", newResolver(), http.StatusOK, "ash@example.com"},
		{"lowercase scheme", "bearer good-token", newResolver(), http.StatusOK, "ash@example.com"},
		{"no header", "", newResolver(), http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good-token", newResolver(), http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", newResolver(), http.StatusUnauthorized, ""},
		{"unknown token", "Bearer bad-token", newResolver(), http.StatusUnauthorized, ""},
		{"store failure", "Bearer good-token", &fakeResolver{err: errors.New("disk on fire")}, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			auth.RequireAuth(tt.resolver, discard)(echoUser).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			} else {
				assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		resolver *fakeResolver
		wantBody string
	}{
		{"valid token", "Bearer good-token", newResolver(), "ash@example.com"},
		{"no header", "", newResolver(), "anonymous"},
		{"invalid token stays anonymous", "Bearer nope", newResolver(), "anonymous"},
		{"store failure stays anonymous", "Bearer good-token", &fakeResolver{err: errors.New("boom")}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/pokemon", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			auth.OptionalAuth(tt.resolver, discard)(echoUser).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestOptionalAuth_NoHeaderSkipsResolver(t *testing.T) {
	r := newResolver()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	auth.OptionalAuth(r, discard)(echoUser).ServeHTTP(httptest.NewRecorder(), req)

	assert.Zero(t, r.calls)
}

func TestUserFromContext_Empty(t *testing.T) {
	u, ok := auth.UserFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, u)
}
