package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studydeck/studydeck-server/internal/auth"
	"github.com/studydeck/studydeck-server/internal/domain"
	"github.com/studydeck/studydeck-server/internal/event"
	apperrors "github.com/studydeck/studydeck-server/pkg/errors"
	pkgkafka "github.com/studydeck/studydeck-server/pkg/kafka"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute)
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestUserService(userRepo *mockUserRepository) *UserService {
	return NewUserService(userRepo, newTestJWTManager(), newTestEventProducer(), newTestLogger())
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, token, err := svc.Register(ctx, RegisterInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "SecurePass123",
	})

	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotZero(t, user.CreatedAt)
	assert.NotEmpty(t, token)

	// Password must be stored hashed, never in the clear.
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("SecurePass123")))

	userRepo.AssertExpectations(t)
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"no name", RegisterInput{Email: "a@b.com", Password: "SecurePass123"}},
		{"no email", RegisterInput{Name: "A", Password: "SecurePass123"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(mockUserRepository)
			svc := newTestUserService(userRepo)

			_, _, err := svc.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.Duplicate("email already registered"))

	_, _, err := svc.Register(ctx, RegisterInput{
		Name:     "John Doe",
		Email:    "taken@example.com",
		Password: "SecurePass123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicate))
	userRepo.AssertExpectations(t)
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "u-1",
		Name:         "John Doe",
		Email:        "john@example.com",
		PasswordHash: hashForTest("SecurePass123"),
		Role:         domain.RoleUser,
	}
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	user, token, err := svc.Login(ctx, LoginInput{Email: "john@example.com", Password: "SecurePass123"})

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.NotEmpty(t, token)
	userRepo.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "u-1",
		Email:        "john@example.com",
		PasswordHash: hashForTest("SecurePass123"),
	}
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	_, _, err := svc.Login(ctx, LoginInput{Email: "john@example.com", Password: "WrongPass999"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	// The message must not reveal which part was wrong.
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLogin_MissingFields(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "", Password: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: ""})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

// --- GetProfile Tests ---

func TestGetProfile_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	stored := &domain.User{ID: "u-1", Name: "John Doe", Email: "john@example.com"}
	userRepo.On("GetByID", ctx, "u-1").Return(stored, nil)

	user, err := svc.GetProfile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", user.Name)
}

func TestGetProfile_NotFound(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(userRepo)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetProfile(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
