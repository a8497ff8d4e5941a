package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usersTable = "users"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         VARCHAR(320) NOT NULL UNIQUE,
	password_hash VARCHAR(100) NOT NULL,
	name          VARCHAR(200) NOT NULL,
	role          VARCHAR(20)  NOT NULL CHECK (role IN ('admin', 'editor')),
	created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
)`

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

// EnsureSchema создаёт таблицу users, если её нет
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpInsert, usersTable).Observe(&err)

	query := `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail - сравнение без учёта регистра
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (_ *entity.User, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, usersTable).Observe(&err)

	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, usersTable).Observe(&err)

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET name = $1, role = $2, updated_at = $3 WHERE id = $4`,
		user.Name, user.Role, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, usersTable).Observe(&err)

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpDelete, usersTable).Observe(&err)

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) (_ []entity.User, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, usersTable).Observe(&err)

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (n int, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpCount, usersTable).Observe(&err)

	if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
