package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

type smsRepository struct {
	db *sqlx.DB
}

func NewSMSRepository(db *sqlx.DB) repository.SMSRepository {
	return &smsRepository{db: db}
}

func (r *smsRepository) Create(ctx context.Context, record *model.SMSRecord) error {
	query := `
		INSERT INTO sms_records (
			id, phone, agent_id, content, enrollment_code, status, sent_at
		) VALUES (
			:id, :phone, :agent_id, :content, :enrollment_code, :status, :sent_at
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to create sms record: %w", err)
	}
	return nil
}

func (r *smsRepository) ListByPhone(ctx context.Context, phone string) ([]*model.SMSRecord, error) {
	query := `SELECT * FROM sms_records WHERE phone = $1 ORDER BY sent_at DESC`
	var records []*model.SMSRecord
	if err := r.db.SelectContext(ctx, &records, query, phone); err != nil {
		return nil, fmt.Errorf("failed to list sms records by phone: %w", err)
	}
	return records, nil
}

func (r *smsRepository) List(ctx context.Context, limit int) ([]*model.SMSRecord, error) {
	query := `SELECT * FROM sms_records ORDER BY sent_at DESC LIMIT $1`
	var records []*model.SMSRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list sms records: %w", err)
	}
	return records, nil
}
