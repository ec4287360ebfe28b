package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.D) (*models.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

func TestUserService_UpdateMe(t *testing.T) {
	id := primitive.NewObjectID()
	current := &models.User{ID: id, Name: "Jonas", Email: "jonas@example.com", Role: models.RoleUser, Active: true}

	tests := []struct {
		name     string
		input    UpdateMeInput
		setup    func(users *MockUsers)
		wantKind apperr.Kind
		wantName string
	}{
		{
			name:  "name and email",
			input: UpdateMeInput{Name: ptr("  Jonas S "), Email: ptr("New@Example.com")},
			setup: func(users *MockUsers) {
				users.On("FindActiveByID", mock.Anything, id).Return(current, nil).Once()
				users.On("UpdateProfile", mock.Anything, id, bson.D{
					{Key: "name", Value: "Jonas S"},
					{Key: "email", Value: "new@example.com"},
				}).Return(&models.User{ID: id, Name: "Jonas S", Email: "new@example.com"}, nil).Once()
			},
			wantName: "Jonas S",
		},
		{
			name:     "password is rejected",
			input:    UpdateMeInput{Name: ptr("Jonas"), Password: "newpass123"},
			setup:    func(_ *MockUsers) {},
			wantKind: apperr.KindBadRequest,
		},
		{
			name:  "invalid email",
			input: UpdateMeInput{Email: ptr("not-an-email")},
			setup: func(users *MockUsers) {
				users.On("FindActiveByID", mock.Anything, id).Return(current, nil).Once()
			},
			wantKind: apperr.KindValidation,
		},
		{
			name:  "nothing to update",
			input: UpdateMeInput{},
			setup: func(users *MockUsers) {
				users.On("FindActiveByID", mock.Anything, id).Return(current, nil).Once()
			},
			wantName: "Jonas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUsers)
			tt.setup(users)
			svc := NewUserService(users, newNoopLogger())

			got, err := svc.UpdateMe(context.Background(), id, tt.input)

			if tt.wantName == "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			users.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateMe_PasswordMessage(t *testing.T) {
	svc := NewUserService(new(MockUsers), newNoopLogger())

	_, err := svc.UpdateMe(context.Background(), primitive.NewObjectID(), UpdateMeInput{PasswordConfirm: "x"})

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgPasswordRoute, e.Message)
}

func TestUserService_DeleteMe(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("deactivated", func(t *testing.T) {
		users := new(MockUsers)
		users.On("Deactivate", mock.Anything, id).Return(nil).Once()

		require.NoError(t, NewUserService(users, newNoopLogger()).DeleteMe(context.Background(), id))
		users.AssertExpectations(t)
	})

	t.Run("already inactive", func(t *testing.T) {
		users := new(MockUsers)
		users.On("Deactivate", mock.Anything, id).Return(mongodb.ErrNotFound).Once()

		err := NewUserService(users, newNoopLogger()).DeleteMe(context.Background(), id)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("storage error", func(t *testing.T) {
		users := new(MockUsers)
		users.On("Deactivate", mock.Anything, id).Return(errors.New("connection reset")).Once()

		err := NewUserService(users, newNoopLogger()).DeleteMe(context.Background(), id)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "user.DeleteMe")
	})
}

func TestUserService_Me(t *testing.T) {
	id := primitive.NewObjectID()
	users := new(MockUsers)
	users.On("FindActiveByID", mock.Anything, id).Return(nil, mongodb.ErrNotFound).Once()

	_, err := NewUserService(users, newNoopLogger()).Me(context.Background(), id)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestProtect(t *testing.T) {
	changed := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	old := &models.User{
		ID:                 primitive.NewObjectID(),
		Password:           "$2a$12$hash",
		PasswordChangedAt:  &changed,
		PasswordResetToken: "digest",
		Active:             true,
	}
	merged := &models.User{Name: "Renamed", Role: models.RoleGuide}

	Protect(old, merged)

	assert.Equal(t, old.ID, merged.ID)
	assert.Equal(t, "$2a$12$hash", merged.Password)
	assert.Equal(t, &changed, merged.PasswordChangedAt)
	assert.Equal(t, "digest", merged.PasswordResetToken)
	assert.True(t, merged.Active)
	assert.Equal(t, "Renamed", merged.Name)
	assert.Equal(t, models.RoleGuide, merged.Role)
}
