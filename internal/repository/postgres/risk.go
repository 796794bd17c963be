package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

type riskRepository struct {
	db *sqlx.DB
}

func NewRiskRepository(db *sqlx.DB) repository.RiskRepository {
	return &riskRepository{db: db}
}

func (r *riskRepository) Create(ctx context.Context, entry *model.RiskEntry) error {
	if err := marshalFactors(entry); err != nil {
		return err
	}

	query := `
		INSERT INTO risk_entries (
			id, patient_id, score, level, factors, rule, prediction,
			gestation_weeks, assessed_at, created_at, updated_at
		) VALUES (
			:id, :patient_id, :score, :level, :factors, :rule, :prediction,
			:gestation_weeks, :assessed_at, :created_at, :updated_at
		)
	`
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to create risk entry: %w", err)
	}
	return nil
}

func (r *riskRepository) Get(ctx context.Context, id uuid.UUID) (*model.RiskEntry, error) {
	query := `SELECT * FROM risk_entries WHERE id = $1 AND deleted_at IS NULL`
	var entry model.RiskEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, fmt.Errorf("failed to get risk entry: %w", err)
	}
	if err := unmarshalFactors(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *riskRepository) Update(ctx context.Context, entry *model.RiskEntry) error {
	if err := marshalFactors(entry); err != nil {
		return err
	}

	query := `
		UPDATE risk_entries SET
			score = :score, level = :level, factors = :factors, rule = :rule,
			prediction = :prediction, gestation_weeks = :gestation_weeks,
			updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	entry.UpdatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to update risk entry: %w", err)
	}
	return nil
}

func (r *riskRepository) List(ctx context.Context, filters *model.RiskFilters) ([]*model.RiskEntry, error) {
	query := `SELECT * FROM risk_entries WHERE deleted_at IS NULL`
	args := []interface{}{}

	if filters != nil && filters.Level != "" {
		query += " AND level = $1"
		args = append(args, filters.Level)
	}
	query += " ORDER BY assessed_at DESC"

	var entries []*model.RiskEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list risk entries: %w", err)
	}
	for _, e := range entries {
		if err := unmarshalFactors(e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func marshalFactors(entry *model.RiskEntry) error {
	raw, err := json.Marshal(entry.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}
	entry.FactorsRaw = raw
	return nil
}

func unmarshalFactors(entry *model.RiskEntry) error {
	if len(entry.FactorsRaw) == 0 {
		return nil
	}
	if err := json.Unmarshal(entry.FactorsRaw, &entry.Factors); err != nil {
		return fmt.Errorf("failed to unmarshal risk factors: %w", err)
	}
	return nil
}
