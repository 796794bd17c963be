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

type visitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	query := `
		INSERT INTO visits (
			id, patient_id, type, date, weight_kg, blood_pressure, muac, bmi,
			hemoglobin, agent_id, facility_id, checklist_ok, status,
			reminder_sent, created_at, updated_at
		) VALUES (
			:id, :patient_id, :type, :date, :weight_kg, :blood_pressure, :muac, :bmi,
			:hemoglobin, :agent_id, :facility_id, :checklist_ok, :status,
			:reminder_sent, :created_at, :updated_at
		)
	`
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, visit); err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	query := `SELECT * FROM visits WHERE id = $1 AND deleted_at IS NULL`
	var visit model.Visit
	if err := r.db.GetContext(ctx, &visit, query, id); err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

func (r *visitRepository) Update(ctx context.Context, visit *model.Visit) error {
	query := `
		UPDATE visits SET
			type = :type, date = :date, weight_kg = :weight_kg,
			blood_pressure = :blood_pressure, muac = :muac, bmi = :bmi,
			hemoglobin = :hemoglobin, checklist_ok = :checklist_ok,
			status = :status, reminder_sent = :reminder_sent, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	visit.UpdatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, visit); err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE visits SET deleted_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	return nil
}

func (r *visitRepository) List(ctx context.Context) ([]*model.Visit, error) {
	query := `SELECT * FROM visits WHERE deleted_at IS NULL ORDER BY date DESC`
	var visits []*model.Visit
	if err := r.db.SelectContext(ctx, &visits, query); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Visit, error) {
	query := `SELECT * FROM visits WHERE patient_id = $1 AND deleted_at IS NULL ORDER BY date`
	var visits []*model.Visit
	if err := r.db.SelectContext(ctx, &visits, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list visits by patient: %w", err)
	}
	return visits, nil
}
