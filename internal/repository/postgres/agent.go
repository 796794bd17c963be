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

type agentRepository struct {
	db *sqlx.DB
}

func NewAgentRepository(db *sqlx.DB) repository.AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *model.HealthAgent) error {
	query := `
		INSERT INTO health_agents (
			id, first_name, last_name, phone, email, facility_id, enrollment_code,
			download_link, status, enrolled_by, created_at, updated_at
		) VALUES (
			:id, :first_name, :last_name, :phone, :email, :facility_id, :enrollment_code,
			:download_link, :status, :enrolled_by, :created_at, :updated_at
		)
	`
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, agent); err != nil {
		return fmt.Errorf("failed to create health agent: %w", err)
	}
	return nil
}

func (r *agentRepository) Get(ctx context.Context, id uuid.UUID) (*model.HealthAgent, error) {
	query := `SELECT * FROM health_agents WHERE id = $1 AND deleted_at IS NULL`
	var agent model.HealthAgent
	if err := r.db.GetContext(ctx, &agent, query, id); err != nil {
		return nil, fmt.Errorf("failed to get health agent: %w", err)
	}
	return &agent, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *model.HealthAgent) error {
	query := `
		UPDATE health_agents SET
			first_name = :first_name, last_name = :last_name, phone = :phone, email = :email,
			status = :status, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`
	agent.UpdatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, agent); err != nil {
		return fmt.Errorf("failed to update health agent: %w", err)
	}
	return nil
}

func (r *agentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE health_agents SET deleted_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to delete health agent: %w", err)
	}
	return nil
}

func (r *agentRepository) ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*model.HealthAgent, error) {
	query := `SELECT * FROM health_agents WHERE facility_id = $1 AND deleted_at IS NULL ORDER BY last_name`
	var agents []*model.HealthAgent
	if err := r.db.SelectContext(ctx, &agents, query, facilityID); err != nil {
		return nil, fmt.Errorf("failed to list health agents: %w", err)
	}
	return agents, nil
}
