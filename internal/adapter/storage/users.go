package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
)

var _ port.UsersRepository = (*UsersRepository)(nil)

type UsersRepository struct {
	sqldb sqldb
}

func NewUsersRepository(sqldb sqldb) UsersRepository {
	return UsersRepository{sqldb}
}

func (r UsersRepository) CreateUser(
	ctx context.Context, u domain.User,
) (domain.User, error) {
	const op = "UsersRepository.CreateUser"

	if err := ctx.Err(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, password_hash, role, created_at;`

	var created domain.User
	err := r.sqldb.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Role,
	).Scan(
		&created.ID, &created.Username, &created.Email,
		&created.PasswordHash, &created.Role, &created.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) &&
			pgErr.Code == pgerrcode.UniqueViolation {
			return domain.User{}, domain.Conflict(
				"email or username is already taken",
			)
		}
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (r UsersRepository) FindUserByEmail(
	ctx context.Context, email string,
) (domain.User, error) {
	const op = "UsersRepository.FindUserByEmail"

	if err := ctx.Err(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE email = $1;`

	var u domain.User
	err := r.sqldb.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Username, &u.Email,
		&u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.NotFound("user not found")
		}
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r UsersRepository) UserExists(
	ctx context.Context, email, username string,
) (bool, error) {
	const op = "UsersRepository.UserExists"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE email = $1 OR username = $2
		);`

	var exists bool
	err := r.sqldb.QueryRowContext(ctx, query, email, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
