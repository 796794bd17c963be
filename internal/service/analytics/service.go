package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/metrics"
)

const (
	statsCacheTTL = 5 * time.Minute
	kpiCacheTTL   = 5 * time.Minute
)

type AnalyticsService interface {
	AnonymizedStats(ctx context.Context, user *model.User) (*model.AnonymizedStats, error)
	KPIs(ctx context.Context, user *model.User) (*model.KPISummary, error)
}

// Service computes dashboard aggregates. Scoped roles aggregate over their
// visible slice of data; ANONYMOUS-scope partners aggregate over the full
// store and only ever receive the counts.
type Service struct {
	patients  repository.PatientRepository
	visits    repository.VisitRepository
	risks     repository.RiskRepository
	referrals repository.ReferralRepository
	engine    *rbac.Engine
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(patients repository.PatientRepository, visits repository.VisitRepository, risks repository.RiskRepository, referrals repository.ReferralRepository, engine *rbac.Engine, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		patients:  patients,
		visits:    visits,
		risks:     risks,
		referrals: referrals,
		engine:    engine,
		cache:     cache.New(statsCacheTTL, 10*time.Minute),
		metrics:   m,
		logger:    logger,
	}
}

// AnonymizedStats returns aggregate counts with no record-level data.
// Partner roles only ever see this shape. Results are cached per user since
// the visible slice depends on the user's scope attributes.
func (s *Service) AnonymizedStats(ctx context.Context, user *model.User) (*model.AnonymizedStats, error) {
	if err := s.requireAnalytics(user); err != nil {
		return nil, err
	}

	key := "stats:" + user.ID.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.AnonymizedStats), nil
	}

	visible, _, err := s.aggregationSlice(ctx, user)
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(visible, time.Now())
	s.cache.Set(key, stats, statsCacheTTL)
	return stats, nil
}

func (s *Service) KPIs(ctx context.Context, user *model.User) (*model.KPISummary, error) {
	if err := s.requireAnalytics(user); err != nil {
		return nil, err
	}

	key := "kpi:" + user.ID.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.KPISummary), nil
	}

	visible, anonymous, err := s.aggregationSlice(ctx, user)
	if err != nil {
		return nil, err
	}

	allVisits, err := s.visits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	allRisks, err := s.risks.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk entries: %w", err)
	}
	allReferrals, err := s.referrals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	visits := allVisits
	risks := allRisks
	referrals := allReferrals
	if !anonymous {
		visits = s.engine.FilterVisits(allVisits, visible, user)
		risks = s.engine.FilterRiskEntries(allRisks, visible, user)
		referrals = s.engine.FilterReferrals(allReferrals, visible, user)
	}

	kpis := ComputeKPIs(visible, visits, risks, referrals)
	s.cache.Set(key, kpis, kpiCacheTTL)
	return kpis, nil
}

// aggregationSlice returns the patients a user's aggregates are computed
// over. Scoped roles aggregate their visible slice. ANONYMOUS-scope partners
// aggregate the full store: individual records never leave this package, so
// widening the input widens nothing a partner can read.
func (s *Service) aggregationSlice(ctx context.Context, user *model.User) ([]*model.Patient, bool, error) {
	patients, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list patients: %w", err)
	}

	scope, err := rbac.ScopeOf(user.Role)
	if err != nil {
		return nil, false, fmt.Errorf("scope lookup failed: %w", err)
	}
	if scope == model.ScopeAnonymous {
		return patients, true, nil
	}

	visible := s.engine.FilterPatients(patients, user)
	if s.metrics != nil {
		s.metrics.RecordsVisible.WithLabelValues("patients").Observe(float64(len(visible)))
	}
	return visible, false, nil
}

func (s *Service) requireAnalytics(user *model.User) error {
	ok, err := rbac.HasPermission(user.Role, model.ResourceAnalytics, model.ActionRead)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("", nil)
	}
	return nil
}

// ComputeStats buckets the given patients into the anonymized distribution
// shape. Pure so the bucketing rules can be tested directly.
func ComputeStats(patients []*model.Patient, now time.Time) *model.AnonymizedStats {
	stats := &model.AnonymizedStats{TotalPatients: len(patients)}
	for _, p := range patients {
		switch {
		case p.Age < 18:
			stats.Ages.Under18++
		case p.Age <= 25:
			stats.Ages.From18To25++
		case p.Age <= 35:
			stats.Ages.From26To35++
		default:
			stats.Ages.Over35++
		}

		weeks := int(now.Sub(p.LastPeriodDate).Hours() / 24 / 7)
		switch {
		case weeks <= 12:
			stats.Gestation.Trimester1++
		case weeks <= 26:
			stats.Gestation.Trimester2++
		default:
			stats.Gestation.Trimester3++
		}
	}
	return stats
}

// ComputeKPIs derives the dashboard headline numbers from the visible
// slices.
func ComputeKPIs(patients []*model.Patient, visits []*model.Visit, risks []*model.RiskEntry, referrals []*model.Referral) *model.KPISummary {
	kpis := &model.KPISummary{TotalPatients: len(patients)}

	var cponDone int
	for _, v := range visits {
		if v.Status != model.VisitDone {
			continue
		}
		switch v.Type {
		case model.VisitCPN1:
			kpis.CPN1Done++
		case model.VisitCPN4:
			kpis.CPN4Done++
		case model.VisitCPON:
			cponDone++
		}
	}
	if len(patients) > 0 {
		kpis.CPONRate = float64(cponDone) / float64(len(patients))
	}

	for _, r := range risks {
		switch r.Level {
		case model.RiskRed:
			kpis.RisksRed++
		case model.RiskOrange:
			kpis.RisksOrange++
		case model.RiskGreen:
			kpis.RisksGreen++
		}
	}

	var delaySum, delayCount int
	for _, ref := range referrals {
		if ref.TransferDelayMin > 0 {
			delaySum += ref.TransferDelayMin
			delayCount++
		}
	}
	if delayCount > 0 {
		kpis.ReferralDelayAvg = float64(delaySum) / float64(delayCount)
	}

	for _, p := range patients {
		switch p.CoverageStatus {
		case model.CoverageActive:
			kpis.CoverageActive++
		case model.CoverageRenewalDue:
			kpis.CoverageRenewal++
		}
	}
	return kpis
}
