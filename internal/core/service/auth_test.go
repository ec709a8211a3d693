package service_test

import (
	"context"
	"testing"

	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUsersRepository struct {
	mock.Mock
}

func (m *MockUsersRepository) CreateUser(
	ctx context.Context, u domain.User,
) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUsersRepository) FindUserByEmail(
	ctx context.Context, email string,
) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUsersRepository) UserExists(
	ctx context.Context, email, username string,
) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(u domain.User) (string, error) {
	args := m.Called(u)
	return args.String(0), args.Error(1)
}

func TestAuthRegister(t *testing.T) {
	in := service.RegisterInput{
		Username: "gopher",
		Email:    "gopher@example.com",
		Password: "Sup3r-secret",
	}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUsersRepository)
		hasher := new(MockPasswordHasher)

		users.On("UserExists", mock.Anything, in.Email, in.Username).
			Return(false, nil)
		hasher.On("Hash", in.Password).Return("$2a$hash", nil)
		users.On("CreateUser", mock.Anything, mock.MatchedBy(
			func(u domain.User) bool {
				return u.PasswordHash == "$2a$hash" &&
					u.Role == domain.RoleCustomer
			},
		)).Return(domain.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: "$2a$hash",
			Role:         domain.RoleCustomer,
		}, nil)

		auth := service.NewAuth(users, hasher, nil)
		user, err := auth.Register(t.Context(), in)
		require.NoError(t, err)

		assert.Empty(t, user.PasswordHash, "hash never leaves the service")
		assert.Equal(t, in.Username, user.Username)
	})

	t.Run("DuplicateIsConflict", func(t *testing.T) {
		users := new(MockUsersRepository)
		users.On("UserExists", mock.Anything, in.Email, in.Username).
			Return(true, nil)

		auth := service.NewAuth(users, new(MockPasswordHasher), nil)
		_, err := auth.Register(t.Context(), in)

		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		users.AssertNotCalled(t, "CreateUser")
	})
}

func TestAuthLogin(t *testing.T) {
	user := domain.User{
		Email:        "gopher@example.com",
		PasswordHash: "$2a$hash",
	}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUsersRepository)
		hasher := new(MockPasswordHasher)
		tokens := new(MockTokenIssuer)

		users.On("FindUserByEmail", mock.Anything, user.Email).
			Return(user, nil)
		hasher.On("Compare", user.PasswordHash, "pass").Return(nil)
		tokens.On("Issue", user).Return("jwt-token", nil)

		auth := service.NewAuth(users, hasher, tokens)
		token, err := auth.Login(t.Context(), user.Email, "pass")
		require.NoError(t, err)
		assert.Equal(t, "jwt-token", token)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(MockUsersRepository)
		hasher := new(MockPasswordHasher)

		users.On("FindUserByEmail", mock.Anything, user.Email).
			Return(user, nil)
		hasher.On("Compare", user.PasswordHash, "wrong").
			Return(domain.Unauthorized("mismatch"))

		auth := service.NewAuth(users, hasher, nil)
		_, err := auth.Login(t.Context(), user.Email, "wrong")

		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	t.Run("UnknownEmailIsUnauthorized", func(t *testing.T) {
		users := new(MockUsersRepository)
		users.On("FindUserByEmail", mock.Anything, "nobody@example.com").
			Return(domain.User{}, domain.NotFound("user not found"))

		auth := service.NewAuth(users, new(MockPasswordHasher), nil)
		_, err := auth.Login(t.Context(), "nobody@example.com", "pass")

		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err),
			"login never reveals whether the email exists")
	})
}
