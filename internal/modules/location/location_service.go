package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"colisapp/internal/cache"
	"colisapp/internal/models"

	"golang.org/x/sync/singleflight"
)

const cachePrefix = "options:"

// ServiceInterface defines what the location handler and other modules need.
type ServiceInterface interface {
	ListCountries(ctx context.Context) ([]models.Option, error)
	ListCitiesForCountry(ctx context.Context, countryID string) ([]models.Option, error)
	ListAgenciesForCity(ctx context.Context, cityID string) ([]models.Option, error)
	ListDestinationCountries(ctx context.Context, departureCountryID string) ([]models.Option, error)
	GetAgency(ctx context.Context, agencyID string) (*models.Agency, error)
	RouteAllowed(ctx context.Context, departureCountryID, arrivalCountryID string) (bool, error)
	CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error)
	DeleteAgency(ctx context.Context, agencyID string) error
}

// Cache is the subset of cache.Redis the service uses.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Service serves option lists, read-through cached.
type Service struct {
	repo   RepositoryInterface
	routes RouteFilter
	cache  Cache // may be nil
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewService creates a location service. cache may be nil.
func NewService(repo RepositoryInterface, routes RouteFilter, c Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		routes: routes,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *Service) ListCountries(ctx context.Context) ([]models.Option, error) {
	return s.cached(ctx, cachePrefix+"countries", s.repo.ListCountriesWithAgencies)
}

func (s *Service) ListCitiesForCountry(ctx context.Context, countryID string) ([]models.Option, error) {
	return s.cached(ctx, cachePrefix+"cities:"+countryID, func(ctx context.Context) ([]models.Option, error) {
		return s.repo.ListCitiesWithAgencies(ctx, countryID)
	})
}

func (s *Service) ListAgenciesForCity(ctx context.Context, cityID string) ([]models.Option, error) {
	return s.cached(ctx, cachePrefix+"agencies:"+cityID, func(ctx context.Context) ([]models.Option, error) {
		return s.repo.ListAgenciesByCity(ctx, cityID)
	})
}

// ListDestinationCountries returns the countries with agencies that the route
// filter accepts for departureCountryID.
func (s *Service) ListDestinationCountries(ctx context.Context, departureCountryID string) ([]models.Option, error) {
	return s.cached(ctx, cachePrefix+"destinations:"+departureCountryID, func(ctx context.Context) ([]models.Option, error) {
		candidates, err := s.repo.ListCountriesWithAgencies(ctx)
		if err != nil {
			return nil, err
		}
		return s.routes.Filter(ctx, departureCountryID, candidates)
	})
}

func (s *Service) GetAgency(ctx context.Context, agencyID string) (*models.Agency, error) {
	return s.repo.FindAgency(ctx, agencyID)
}

func (s *Service) RouteAllowed(ctx context.Context, departureCountryID, arrivalCountryID string) (bool, error) {
	kept, err := s.routes.Filter(ctx, departureCountryID, []models.Option{{ID: arrivalCountryID}})
	if err != nil {
		return false, fmt.Errorf("service.RouteAllowed: %w", err)
	}
	return len(kept) == 1, nil
}

func (s *Service) CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error) {
	a, err := s.repo.CreateAgency(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("service.CreateAgency: %w", err)
	}
	s.invalidate(ctx)
	return a, nil
}

func (s *Service) DeleteAgency(ctx context.Context, agencyID string) error {
	if err := s.repo.DeleteAgency(ctx, agencyID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		s.logger.Warn("option cache invalidation failed", slog.String("error", err.Error()))
	}
}

// cached reads key from the cache, falling back to load. Concurrent misses on
// the same key share one load.
func (s *Service) cached(ctx context.Context, key string, load func(context.Context) ([]models.Option, error)) ([]models.Option, error) {
	if s.cache != nil {
		var opts []models.Option
		err := s.cache.Get(ctx, key, &opts)
		if err == nil {
			return opts, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("option cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		opts, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if opts == nil {
			opts = []models.Option{}
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, opts, s.ttl); err != nil {
				s.logger.Warn("option cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
		return opts, nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.options %s: %w", key, err)
	}
	return v.([]models.Option), nil
}
