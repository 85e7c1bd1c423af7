package location

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"colisapp/internal/cache"
	"colisapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countryBE = "5a1e9d2c-7b3f-4c8e-a6d0-00000000000b"

// fakeRepo keeps countries, cities and agencies in memory and counts loads.
type fakeRepo struct {
	mu        sync.Mutex
	countries []models.Option
	cities    map[string][]models.Option
	agencies  map[string][]models.Option
	routes    map[string][]string
	byID      map[string]*models.Agency
	loads     int
	failWith  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		countries: []models.Option{{ID: countryBE, Name: "Belgium"}, {ID: "fr", Name: "France"}, {ID: "ma", Name: "Morocco"}},
		cities: map[string][]models.Option{
			countryBE: {{ID: "bru", Name: "Brussels"}},
			"fr":      {{ID: "par", Name: "Paris"}},
		},
		agencies: map[string][]models.Option{
			"bru": {{ID: "louise", Name: "Agence Louise"}},
			"par": {{ID: "gare", Name: "Agence Gare"}},
		},
		routes: map[string][]string{countryBE: {countryBE, "fr"}},
		byID: map[string]*models.Agency{
			"louise": {ID: "louise", Name: "Agence Louise", CityID: "bru", CountryID: countryBE},
		},
	}
}

func (f *fakeRepo) count() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.failWith
}

func (f *fakeRepo) ListCountriesWithAgencies(ctx context.Context) ([]models.Option, error) {
	if err := f.count(); err != nil {
		return nil, err
	}
	return f.countries, nil
}

func (f *fakeRepo) ListCitiesWithAgencies(ctx context.Context, countryID string) ([]models.Option, error) {
	if err := f.count(); err != nil {
		return nil, err
	}
	return f.cities[countryID], nil
}

func (f *fakeRepo) ListAgenciesByCity(ctx context.Context, cityID string) ([]models.Option, error) {
	if err := f.count(); err != nil {
		return nil, err
	}
	return f.agencies[cityID], nil
}

func (f *fakeRepo) ListRouteArrivals(ctx context.Context, departureCountryID string) ([]string, error) {
	return f.routes[departureCountryID], nil
}

func (f *fakeRepo) FindAgency(ctx context.Context, agencyID string) (*models.Agency, error) {
	a, ok := f.byID[agencyID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error) {
	a := &models.Agency{ID: "new", Name: req.Name, CityID: req.CityID}
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeRepo) DeleteAgency(ctx context.Context, agencyID string) error {
	if _, ok := f.byID[agencyID]; !ok {
		return models.ErrNotFound
	}
	delete(f.byID, agencyID)
	return nil
}

// mapCache is an in-memory Cache storing JSON like Redis does.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (m *mapCache) Get(ctx context.Context, key string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dst)
}

func (m *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *mapCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *fakeRepo, c Cache) *Service {
	return NewService(repo, NewRouteTableFilter(repo), c, time.Minute, discardLogger())
}

func TestListCitiesIsCached(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newMapCache())
	ctx := context.Background()

	first, err := svc.ListCitiesForCountry(ctx, countryBE)
	require.NoError(t, err)
	second, err := svc.ListCitiesForCountry(ctx, countryBE)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.loads)
}

func TestListWithoutCacheHitsRepository(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.ListAgenciesForCity(ctx, "bru")
	require.NoError(t, err)
	_, err = svc.ListAgenciesForCity(ctx, "bru")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.loads)
}

func TestEmptyListIsNotNil(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	opts, err := svc.ListCitiesForCountry(context.Background(), "ma")
	require.NoError(t, err)
	assert.NotNil(t, opts)
	assert.Empty(t, opts)
}

func TestDestinationCountriesAreFilteredByRoutes(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	opts, err := svc.ListDestinationCountries(context.Background(), countryBE)
	require.NoError(t, err)
	assert.Equal(t, []models.Option{{ID: countryBE, Name: "Belgium"}, {ID: "fr", Name: "France"}}, opts)
}

func TestDestinationFilterIsPluggable(t *testing.T) {
	repo := newFakeRepo()
	onlyAbroad := RouteFilterFunc(func(ctx context.Context, dep string, candidates []models.Option) ([]models.Option, error) {
		var out []models.Option
		for _, c := range candidates {
			if c.ID != dep {
				out = append(out, c)
			}
		}
		return out, nil
	})
	svc := NewService(repo, onlyAbroad, nil, time.Minute, discardLogger())

	opts, err := svc.ListDestinationCountries(context.Background(), countryBE)
	require.NoError(t, err)
	assert.Len(t, opts, 2)
	assert.NotContains(t, opts, models.Option{ID: countryBE, Name: "Belgium"})
}

func TestRouteAllowed(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	ctx := context.Background()

	ok, err := svc.RouteAllowed(ctx, countryBE, "fr")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.RouteAllowed(ctx, countryBE, "ma")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryErrorIsNotCached(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("db down")
	c := newMapCache()
	svc := newTestService(repo, c)

	_, err := svc.ListCountries(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.data)
}

func TestCreateAgencyInvalidatesCache(t *testing.T) {
	repo := newFakeRepo()
	c := newMapCache()
	svc := newTestService(repo, c)
	ctx := context.Background()

	_, err := svc.ListCountries(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, c.data)

	_, err = svc.CreateAgency(ctx, models.CreateAgencyRequest{Name: "Agence Midi", CityID: "bru"})
	require.NoError(t, err)
	assert.Empty(t, c.data)
}
