package register_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uzeed/uzeed-backend/internal/http/handlers/auth/register"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, req models.DummyRegister, now time.Time) (*models.User, error) {
	args := m.Called(ctx, req, now)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockUser   *models.User
		mockErr    error
		wantStatus int
	}{
		{
			name:       "valid registration",
			body:       `{"email":"a@b.cl","username":"newuser","password":"longpassword"}`,
			mockUser:   &models.User{ID: "user-1", Username: "newuser", ProfileType: models.ProfileTypeViewer},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing email",
			body:       `{"username":"newuser","password":"longpassword"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "short password",
			body:       `{"email":"a@b.cl","username":"newuser","password":"short"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "bad profile type",
			body:       `{"email":"a@b.cl","username":"newuser","password":"longpassword","profile_type":"WIZARD"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "username taken",
			body:       `{"email":"a@b.cl","username":"taken","password":"longpassword"}`,
			mockErr:    auth.ErrUserExists,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockUser != nil || tt.mockErr != nil {
				svc.On("Register", mock.Anything, mock.Anything, mock.Anything).
					Return(tt.mockUser, tt.mockErr).Once()
			}

			handler := register.New(newNoopLogger(), svc)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
