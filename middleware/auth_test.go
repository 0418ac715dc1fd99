package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sorabackend/appctx"
	"sorabackend/core"
)

const testDiscordUserID = "123456789012345678"

type mockTokenVerifier struct {
	mock.Mock
}

func (m *mockTokenVerifier) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type mockDiscordAccountResolver struct {
	mock.Mock
}

func (m *mockDiscordAccountResolver) ResolveDiscordUserID(ctx context.Context, clerkUserID string) (string, error) {
	args := m.Called(ctx, clerkUserID)
	return args.String(0), args.Error(1)
}

func echoUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.GetDiscordUserID(r.Context())
	if !ok {
		http.Error(w, "no user", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(userID))
}

func TestClerkAuthMiddleware_WithAuth(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		mockSetup      func(v *mockTokenVerifier, r *mockDiscordAccountResolver)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing header",
			mockSetup:      func(v *mockTokenVerifier, r *mockDiscordAccountResolver) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "missing authorization header",
		},
		{
			name:           "not a bearer token",
			authHeader:     "Basic abc",
			mockSetup:      func(v *mockTokenVerifier, r *mockDiscordAccountResolver) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid authorization header format",
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad",
			mockSetup: func(v *mockTokenVerifier, r *mockDiscordAccountResolver) {
				v.On("Verify", mock.Anything, "bad").Return("", errors.New("signature mismatch"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid token",
		},
		{
			name:       "no discord account",
			authHeader: "Bearer good",
			mockSetup: func(v *mockTokenVerifier, r *mockDiscordAccountResolver) {
				v.On("Verify", mock.Anything, "good").Return("user_clerk", nil)
				r.On("ResolveDiscordUserID", mock.Anything, "user_clerk").
					Return("", fmt.Errorf("no discord: %w", core.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "discord account required",
		},
		{
			name:       "clerk lookup failure",
			authHeader: "Bearer good",
			mockSetup: func(v *mockTokenVerifier, r *mockDiscordAccountResolver) {
				v.On("Verify", mock.Anything, "good").Return("user_clerk", nil)
				r.On("ResolveDiscordUserID", mock.Anything, "user_clerk").Return("", errors.New("clerk down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal server error",
		},
		{
			name:       "authenticated",
			authHeader: "Bearer good",
			mockSetup: func(v *mockTokenVerifier, r *mockDiscordAccountResolver) {
				v.On("Verify", mock.Anything, "good").Return("user_clerk", nil)
				r.On("ResolveDiscordUserID", mock.Anything, "user_clerk").Return(testDiscordUserID, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   testDiscordUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockTokenVerifier{}
			resolver := &mockDiscordAccountResolver{}
			tt.mockSetup(verifier, resolver)
			middleware := NewAuthMiddleware(verifier, resolver, false)

			req := httptest.NewRequest(http.MethodGet, "/api/guilds", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.WithAuth(echoUserHandler)(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			verifier.AssertExpectations(t)
			resolver.AssertExpectations(t)
		})
	}
}

func TestClerkAuthMiddleware_TestingMode(t *testing.T) {
	verifier := &mockTokenVerifier{}
	resolver := &mockDiscordAccountResolver{}
	middleware := NewAuthMiddleware(verifier, resolver, true)

	t.Run("uses header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/guilds", nil)
		req.Header.Set(TestingUserHeader, testDiscordUserID)
		rec := httptest.NewRecorder()

		middleware.WithAuth(echoUserHandler)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testDiscordUserID, rec.Body.String())
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/guilds", nil)
		rec := httptest.NewRecorder()

		middleware.WithAuth(echoUserHandler)(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestNewClerkAuthMiddleware_WithoutSecretKey(t *testing.T) {
	t.Run("rejects bearer tokens", func(t *testing.T) {
		m := NewClerkAuthMiddleware("", false)
		called := false
		handler := m.WithAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/api/guilds", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid token")
		assert.False(t, called)
	})

	t.Run("testing mode still accepts the user header", func(t *testing.T) {
		m := NewClerkAuthMiddleware("", true)
		handler := m.WithAuth(echoUserHandler)

		req := httptest.NewRequest(http.MethodGet, "/api/guilds", nil)
		req.Header.Set(TestingUserHeader, "123456789012345678")
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "123456789012345678", rec.Body.String())
	})
}
