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

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, user_id, user_role, user_name, action, resource, resource_id,
			details, success, error_message, ip_address, user_agent, created_at
		) VALUES (
			:id, :user_id, :user_role, :user_name, :action, :resource, :resource_id,
			:details, :success, :error_message, :ip_address, :user_agent, :created_at
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	query := `SELECT * FROM audit_logs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filters != nil {
		if filters.UserID != uuid.Nil {
			n++
			query += fmt.Sprintf(" AND user_id = $%d", n)
			args = append(args, filters.UserID)
		}
		if filters.Resource != "" {
			n++
			query += fmt.Sprintf(" AND resource = $%d", n)
			args = append(args, filters.Resource)
		}
		if filters.ResourceID != uuid.Nil {
			n++
			query += fmt.Sprintf(" AND resource_id = $%d", n)
			args = append(args, filters.ResourceID)
		}
		if !filters.StartDate.IsZero() {
			n++
			query += fmt.Sprintf(" AND created_at >= $%d", n)
			args = append(args, filters.StartDate)
		}
		if !filters.EndDate.IsZero() {
			n++
			query += fmt.Sprintf(" AND created_at <= $%d", n)
			args = append(args, filters.EndDate)
		}
		if filters.FailedOnly {
			query += " AND success = false"
		}
	}
	query += " ORDER BY created_at DESC"

	var logs []*model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) Stats(ctx context.Context) (*model.AuditStats, error) {
	stats := &model.AuditStats{
		ActionsByType:   map[model.Action]int64{},
		ResourcesByType: map[model.Resource]int64{},
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE success),
		       COUNT(*) FILTER (WHERE NOT success)
		FROM audit_logs
	`)
	if err := row.Scan(&stats.TotalEntries, &stats.SuccessfulActions, &stats.FailedActions); err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT action, COUNT(*) FROM audit_logs GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to group audit actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action model.Action
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		stats.ActionsByType[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	resourceRows, err := r.db.QueryContext(ctx, `SELECT resource, COUNT(*) FROM audit_logs GROUP BY resource`)
	if err != nil {
		return nil, fmt.Errorf("failed to group audit resources: %w", err)
	}
	defer resourceRows.Close()
	for resourceRows.Next() {
		var resource model.Resource
		var count int64
		if err := resourceRows.Scan(&resource, &count); err != nil {
			return nil, fmt.Errorf("failed to scan resource count: %w", err)
		}
		stats.ResourcesByType[resource] = count
	}
	if err := resourceRows.Err(); err != nil {
		return nil, err
	}

	recent := `SELECT * FROM audit_logs ORDER BY created_at DESC LIMIT 10`
	if err := r.db.SelectContext(ctx, &stats.RecentActivity, recent); err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	return stats, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", err)
	}
	return res.RowsAffected()
}
