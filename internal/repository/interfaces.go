package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*model.User, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
}

type VisitRepository interface {
	Create(ctx context.Context, visit *model.Visit) error
	Get(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	Update(ctx context.Context, visit *model.Visit) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Visit, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Visit, error)
}

type RiskRepository interface {
	Create(ctx context.Context, entry *model.RiskEntry) error
	Get(ctx context.Context, id uuid.UUID) (*model.RiskEntry, error)
	Update(ctx context.Context, entry *model.RiskEntry) error
	List(ctx context.Context, filters *model.RiskFilters) ([]*model.RiskEntry, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, referral *model.Referral) error
	Get(ctx context.Context, id uuid.UUID) (*model.Referral, error)
	Update(ctx context.Context, referral *model.Referral) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Referral, error)
}

type FacilityRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Facility, error)
	List(ctx context.Context) ([]*model.Facility, error)
	ListByDistrict(ctx context.Context, districtID uuid.UUID) ([]*model.Facility, error)
	GetDistrict(ctx context.Context, id uuid.UUID) (*model.District, error)
	GetRegion(ctx context.Context, id uuid.UUID) (*model.Region, error)
}

type AgentRepository interface {
	Create(ctx context.Context, agent *model.HealthAgent) error
	Get(ctx context.Context, id uuid.UUID) (*model.HealthAgent, error)
	Update(ctx context.Context, agent *model.HealthAgent) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*model.HealthAgent, error)
}

type SMSRepository interface {
	Create(ctx context.Context, record *model.SMSRecord) error
	ListByPhone(ctx context.Context, phone string) ([]*model.SMSRecord, error)
	List(ctx context.Context, limit int) ([]*model.SMSRecord, error)
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error)
	Stats(ctx context.Context) (*model.AuditStats, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionRepository persists the authenticated identity between requests.
// Get returns (nil, nil) when no session exists.
type SessionRepository interface {
	Save(ctx context.Context, session *model.Session, ttl time.Duration) error
	Get(ctx context.Context, userID uuid.UUID) (*model.Session, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	All(ctx context.Context) ([]*model.Session, error)
}
