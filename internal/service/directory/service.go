package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

const (
	cacheTTL        = 15 * time.Minute
	cleanupInterval = 1 * time.Hour
)

// Service is the facility directory: the lookup table that turns a facility
// id into its district and region so records can be scoped on stable
// identifiers at ingestion instead of display names at query time.
type Service struct {
	repo  repository.FacilityRepository
	cache *cache.Cache
}

func NewService(repo repository.FacilityRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cleanupInterval),
	}
}

func (s *Service) GetFacility(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Facility), nil
	}

	facility, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("facility lookup failed: %w", err)
	}
	s.cache.Set(id.String(), facility, cache.DefaultExpiration)
	return facility, nil
}

// ResolveScope returns the (district, region) pair of a facility. Every
// record ingestion path goes through this so dependent collections never
// carry unresolved location attributes.
func (s *Service) ResolveScope(ctx context.Context, facilityID uuid.UUID) (districtID, regionID uuid.UUID, err error) {
	facility, err := s.GetFacility(ctx, facilityID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return facility.DistrictID, facility.RegionID, nil
}

func (s *Service) ListFacilities(ctx context.Context) ([]*model.Facility, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByDistrict(ctx context.Context, districtID uuid.UUID) ([]*model.Facility, error) {
	return s.repo.ListByDistrict(ctx, districtID)
}
