package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/otpauth/internal/pkg/models"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
	"github.com/piresc/otpauth/services/users"
)

const uniqueViolation = "23505"

// GetUserByEmail retrieves a user by email. Emails are matched exactly.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserByField(ctx, "email", email)
}

// GetUserByID retrieves a user by ID
func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, users.ErrUserNotFound
	}
	return r.getUserByField(ctx, "id", id)
}

// CreateUser creates a new user in the database
func (r *UserRepo) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, name, email, password, verified, created_at, updated_at)
		VALUES (:id, :name, :email, :password, :verified, :created_at, :updated_at)
	`

	err := nrpkg.WithDatastoreSegment(ctx, newrelic.DatastorePostgres, "users", "INSERT", func() error {
		_, err := r.db.NamedExecContext(ctx, query, user)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("failed to insert user: %w", users.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// getUserByField is a helper function to get a user by a specific column
func (r *UserRepo) getUserByField(ctx context.Context, field, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password, verified, created_at, updated_at
		FROM users
		WHERE %s = $1
	`, field)

	var user models.User
	err := nrpkg.WithDatastoreSegment(ctx, newrelic.DatastorePostgres, "users", "SELECT", func() error {
		return r.db.GetContext(ctx, &user, query, value)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
