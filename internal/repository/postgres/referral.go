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

type referralRepository struct {
	db *sqlx.DB
}

func NewReferralRepository(db *sqlx.DB) repository.ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(ctx context.Context, referral *model.Referral) error {
	query := `
		INSERT INTO referrals (
			id, patient_id, alert_type, status, origin_facility_id,
			sonu_facility_id, alerted_at, transport_at, admitted_at,
			counter_referral_at, transfer_delay_min, created_at, updated_at
		) VALUES (
			:id, :patient_id, :alert_type, :status, :origin_facility_id,
			:sonu_facility_id, :alerted_at, :transport_at, :admitted_at,
			:counter_referral_at, :transfer_delay_min, :created_at, :updated_at
		)
	`
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) Get(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	query := `SELECT * FROM referrals WHERE id = $1 AND deleted_at IS NULL`
	var referral model.Referral
	if err := r.db.GetContext(ctx, &referral, query, id); err != nil {
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &referral, nil
}

func (r *referralRepository) Update(ctx context.Context, referral *model.Referral) error {
	query := `
		UPDATE referrals SET
			status = :status, transport_at = :transport_at,
			admitted_at = :admitted_at, counter_referral_at = :counter_referral_at,
			transfer_delay_min = :transfer_delay_min, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	referral.UpdatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
	}
	return nil
}

func (r *referralRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE referrals SET deleted_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to delete referral: %w", err)
	}
	return nil
}

func (r *referralRepository) List(ctx context.Context) ([]*model.Referral, error) {
	query := `SELECT * FROM referrals WHERE deleted_at IS NULL ORDER BY alerted_at DESC`
	var referrals []*model.Referral
	if err := r.db.SelectContext(ctx, &referrals, query); err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}
