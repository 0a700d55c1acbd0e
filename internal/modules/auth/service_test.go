package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cutline/internal/domain"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(userID, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func TestRegister_NewUser(t *testing.T) {
	users := new(MockUserStore)
	jwt := new(MockTokenIssuer)
	svc := NewService(users, jwt)

	users.On("GetByEmail", mock.Anything, "dana@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dana",
		Email:    "Dana@Example.com ",
		Password: "secret123",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Empty(t, user.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, new(MockTokenIssuer))

	users.On("GetByEmail", mock.Anything, "dana@example.com").Return(&domain.User{ID: "u1"}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	users := new(MockUserStore)
	jwt := new(MockTokenIssuer)
	svc := NewService(users, jwt)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	users.On("GetByEmail", mock.Anything, "dana@example.com").Return(&domain.User{
		ID:           "u1",
		Email:        "dana@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleOwner,
	}, nil)
	jwt.On("GenerateToken", "u1", "owner").Return("token-123", nil)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "dana@example.com",
		Password: "secret123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "token-123", result.Token)
	assert.Empty(t, result.User.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, new(MockTokenIssuer))

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	users.On("GetByEmail", mock.Anything, "dana@example.com").Return(&domain.User{
		ID:           "u1",
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "dana@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, new(MockTokenIssuer))

	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
