package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, email, password_hash, is_verified, verification_token, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsVerified, &u.VerificationToken, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) findOne(ctx context.Context, what, where string, arg any) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` LIMIT 1`, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by %s: %w", what, err)
	}
	return u, nil
}

// FindByUsername looks up a user by username
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", "username = $1", username)
}

// FindByEmail looks up a user by email
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", "email = $1", email)
}

// FindByID looks up a user by id
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, "id", "id = $1", id)
}

// Create inserts a new user. A nil verificationToken creates an already-verified account.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, verificationToken *string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		username, email, passwordHash, verificationToken == nil, verificationToken,
	))
	if err != nil {
		switch uniqueConstraint(err) {
		case "users_username_key":
			return nil, ErrDuplicateUsername
		case "users_email_key":
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// VerifyByToken marks the token's owner verified and clears the token.
// Returns false when no user holds the token.
func (r *UserRepo) VerifyByToken(ctx context.Context, token string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL
		WHERE verification_token = $1
	`, token)
	if err != nil {
		return false, fmt.Errorf("verifying user: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes a user; applications and resumes go with it via ON DELETE CASCADE
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
