package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

type facilityRepository struct {
	db *sqlx.DB
}

func NewFacilityRepository(db *sqlx.DB) repository.FacilityRepository {
	return &facilityRepository{db: db}
}

func (r *facilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	query := `SELECT * FROM facilities WHERE id = $1 AND deleted_at IS NULL`
	var facility model.Facility
	if err := r.db.GetContext(ctx, &facility, query, id); err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	return &facility, nil
}

func (r *facilityRepository) List(ctx context.Context) ([]*model.Facility, error) {
	query := `SELECT * FROM facilities WHERE deleted_at IS NULL ORDER BY name`
	var facilities []*model.Facility
	if err := r.db.SelectContext(ctx, &facilities, query); err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	return facilities, nil
}

func (r *facilityRepository) ListByDistrict(ctx context.Context, districtID uuid.UUID) ([]*model.Facility, error) {
	query := `SELECT * FROM facilities WHERE district_id = $1 AND deleted_at IS NULL ORDER BY name`
	var facilities []*model.Facility
	if err := r.db.SelectContext(ctx, &facilities, query, districtID); err != nil {
		return nil, fmt.Errorf("failed to list facilities by district: %w", err)
	}
	return facilities, nil
}

func (r *facilityRepository) GetDistrict(ctx context.Context, id uuid.UUID) (*model.District, error) {
	query := `SELECT * FROM districts WHERE id = $1 AND deleted_at IS NULL`
	var district model.District
	if err := r.db.GetContext(ctx, &district, query, id); err != nil {
		return nil, fmt.Errorf("failed to get district: %w", err)
	}
	return &district, nil
}

func (r *facilityRepository) GetRegion(ctx context.Context, id uuid.UUID) (*model.Region, error) {
	query := `SELECT * FROM regions WHERE id = $1 AND deleted_at IS NULL`
	var region model.Region
	if err := r.db.GetContext(ctx, &region, query, id); err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return &region, nil
}
