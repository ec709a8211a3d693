package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type Auth struct {
	users  port.UsersRepository
	hasher port.PasswordHasher
	tokens port.TokenIssuer
}

func NewAuth(
	users port.UsersRepository,
	hasher port.PasswordHasher,
	tokens port.TokenIssuer,
) Auth {
	return Auth{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a user with a hashed password. The returned user
// carries no password hash.
func (s Auth) Register(
	ctx context.Context, in RegisterInput,
) (domain.User, error) {
	const op = "Auth.Register"

	if err := ctx.Err(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	taken, err := s.users.UserExists(ctx, in.Email, in.Username)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return domain.User{}, domain.Conflict(
			"email or username is already taken",
		)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	slog.Info("user registered", "op", op, "userID", user.ID)

	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and issues a signed session token.
func (s Auth) Login(
	ctx context.Context, email, password string,
) (token string, err error) {
	const op = "Auth.Login"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.NotFound("")) {
			return "", domain.Unauthorized("invalid email or password")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", domain.Unauthorized("invalid email or password")
	}

	token, err = s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
