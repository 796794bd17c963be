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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, last_name, age, phone, last_period_date, due_date,
			gestation_weeks, facility_id, district_id, region_id, agent_id,
			coverage_status, birth_plan, bmi, muac, weight_gain, hemoglobin,
			enrolled_at, created_at, updated_at
		) VALUES (
			:id, :first_name, :last_name, :age, :phone, :last_period_date, :due_date,
			:gestation_weeks, :facility_id, :district_id, :region_id, :agent_id,
			:coverage_status, :birth_plan, :bmi, :muac, :weight_gain, :hemoglobin,
			:enrolled_at, :created_at, :updated_at
		)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1 AND deleted_at IS NULL`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			first_name = :first_name, last_name = :last_name, age = :age,
			phone = :phone, gestation_weeks = :gestation_weeks,
			coverage_status = :coverage_status, birth_plan = :birth_plan,
			bmi = :bmi, muac = :muac, weight_gain = :weight_gain,
			hemoglobin = :hemoglobin, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE patients SET deleted_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE deleted_at IS NULL`
	args := []interface{}{}
	n := 0

	if filters != nil {
		if filters.FacilityID != uuid.Nil {
			n++
			query += fmt.Sprintf(" AND facility_id = $%d", n)
			args = append(args, filters.FacilityID)
		}
		if filters.CoverageStatus != "" {
			n++
			query += fmt.Sprintf(" AND coverage_status = $%d", n)
			args = append(args, filters.CoverageStatus)
		}
		if filters.SearchTerm != "" {
			n++
			query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", n, n)
			args = append(args, "%"+filters.SearchTerm+"%")
		}
	}
	query += " ORDER BY enrolled_at DESC"

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
