package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, first_name, last_name, email, phone, role, facility_id,
			district_id, region_id, password_hash, status, login_attempts,
			last_login_attempt, created_at, updated_at
		) VALUES (
			:id, :first_name, :last_name, :email, :phone, :role, :facility_id,
			:district_id, :region_id, :password_hash, :status, :login_attempts,
			:last_login_attempt, :created_at, :updated_at
		)
	`
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = $1 AND deleted_at IS NULL`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			first_name = :first_name, last_name = :last_name, email = :email,
			phone = :phone, facility_id = :facility_id, district_id = :district_id,
			region_id = :region_id, password_hash = :password_hash, status = :status,
			login_attempts = :login_attempts, last_login_attempt = :last_login_attempt,
			last_login_at = :last_login_at, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	user.UpdatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*model.User, error) {
	query := `SELECT * FROM users WHERE facility_id = $1 AND deleted_at IS NULL ORDER BY last_name`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, facilityID); err != nil {
		return nil, fmt.Errorf("failed to list users by facility: %w", err)
	}
	return users, nil
}
