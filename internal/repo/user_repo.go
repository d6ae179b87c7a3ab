package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/PlanujHajs/analiza-backend/internal/domain"
	"github.com/PlanujHajs/analiza-backend/internal/utils"

	"github.com/jackc/pgx/v5"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	Create(ctx context.Context, email, hashedPassword string) (dom.User, error)
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) (dom.User, error)
}

// pool is the subset of pgxpool.Pool the repo needs; pgxmock satisfies it in tests.
type pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGUserRepo implements UserRepo with Postgres. Each method is a single
// statement, so atomicity comes from the database; email uniqueness is a
// UNIQUE constraint, not a check in application code.
type PGUserRepo struct {
	db pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByEmail returns the user with exactly this email (no case folding).
// Absent user yields domain.ErrNotFound.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, hashed_password, is_active, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, dom.ErrNotFound
		}
		return dom.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetByID returns the user by primary key. Absent user yields domain.ErrNotFound.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, hashed_password, is_active, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, dom.ErrNotFound
		}
		return dom.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// Create inserts a new active user and returns it. A unique-constraint
// violation on email is translated to domain.ErrEmailTaken; under two
// concurrent creates for the same email exactly one caller sees it.
func (r *PGUserRepo) Create(ctx context.Context, email, hashedPassword string) (dom.User, error) {
	query := `
		INSERT INTO users (email, hashed_password, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, email, hashed_password, is_active, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, email, hashedPassword).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, dom.ErrEmailTaken
		}
		return dom.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the stored hash in one statement and returns the
// updated user. Absent user yields domain.ErrNotFound.
func (r *PGUserRepo) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) (dom.User, error) {
	query := `
		UPDATE users SET hashed_password = $2
		WHERE id = $1
		RETURNING id, email, hashed_password, is_active, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, userID, hashedPassword).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, dom.ErrNotFound
		}
		return dom.User{}, fmt.Errorf("update password: %w", err)
	}
	return u, nil
}
