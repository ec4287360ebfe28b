package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "Admin", Email: "admin@natours.io", Role: models.RoleAdmin}

	tests := []struct {
		name           string
		requestBody    any
		mockUser       *models.User
		mockErr        error
		callService    bool
		wantStatusCode int
		wantStatus     string
		wantMessage    string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "admin@natours.io", Password: "test1234"},
			mockUser:       user,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "success",
		},
		{
			name:           "missing password",
			requestBody:    Request{Email: "admin@natours.io"},
			mockErr:        apperr.New(apperr.KindBadRequest, auth.MsgMissingCredentials),
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "fail",
			wantMessage:    auth.MsgMissingCredentials,
		},
		{
			name:           "wrong password",
			requestBody:    Request{Email: "admin@natours.io", Password: "wrong"},
			mockErr:        apperr.New(apperr.KindIncorrectCredentials, auth.MsgIncorrectCredentials),
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "fail",
			wantMessage:    auth.MsgIncorrectCredentials,
		},
		{
			name:           "invalid json",
			requestBody:    "{bad json}",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "fail",
			wantMessage:    "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock, session.New(time.Hour, false))

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}
			if tt.callService {
				req := tt.requestBody.(Request)
				token := ""
				if tt.mockErr == nil {
					token = "signed-token"
				}
				authMock.On("Login", mock.Anything, req.Email, req.Password).Return(tt.mockUser, token, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp["message"])
			}
			if tt.wantStatus == "success" {
				assert.Equal(t, "signed-token", resp["token"])
				data := resp["data"].(map[string]any)
				assert.Equal(t, "admin@natours.io", data["user"].(map[string]any)["email"])
				assert.Contains(t, rr.Header().Get("Set-Cookie"), "HttpOnly")
			}
			authMock.AssertExpectations(t)
		})
	}
}
