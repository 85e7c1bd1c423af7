package wizard

import (
	"context"
	"sync"

	"colisapp/internal/models"
)

// fakeLocations serves the Belgium/France/Morocco fixture. A call whose key
// has a gate blocks until the gate is closed.
type fakeLocations struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	fail  map[string]error
	calls []string
}

func newFakeLocations() *fakeLocations {
	return &fakeLocations{gates: map[string]chan struct{}{}, fail: map[string]error{}}
}

var (
	countries = []models.Option{{ID: "be", Name: "Belgium"}, {ID: "fr", Name: "France"}, {ID: "ma", Name: "Morocco"}}
	cities    = map[string][]models.Option{
		"be": {{ID: "bru", Name: "Brussels"}},
		"fr": {{ID: "par", Name: "Paris"}, {ID: "lyo", Name: "Lyon"}},
		"ma": {{ID: "cas", Name: "Casablanca"}},
	}
	agencies = map[string][]models.Option{
		"bru": {{ID: "louise", Name: "Agence Louise"}},
		"par": {{ID: "gare", Name: "Agence Gare"}},
		"lyo": {{ID: "bellecour", Name: "Agence Bellecour"}},
		"cas": {{ID: "anfa", Name: "Agence Anfa"}},
	}
	destinations = map[string][]models.Option{
		"be": {{ID: "be", Name: "Belgium"}, {ID: "fr", Name: "France"}},
	}
)

func (f *fakeLocations) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeLocations) enter(ctx context.Context, key string) error {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	ch := f.gates[key]
	err := f.fail[key]
	f.mu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeLocations) ListCountries(ctx context.Context) ([]models.Option, error) {
	if err := f.enter(ctx, "countries"); err != nil {
		return nil, err
	}
	return countries, nil
}

func (f *fakeLocations) ListCitiesForCountry(ctx context.Context, countryID string) ([]models.Option, error) {
	if err := f.enter(ctx, "cities:"+countryID); err != nil {
		return nil, err
	}
	return cities[countryID], nil
}

func (f *fakeLocations) ListAgenciesForCity(ctx context.Context, cityID string) ([]models.Option, error) {
	if err := f.enter(ctx, "agencies:"+cityID); err != nil {
		return nil, err
	}
	return agencies[cityID], nil
}

func (f *fakeLocations) ListDestinationCountries(ctx context.Context, departureCountryID string) ([]models.Option, error) {
	if err := f.enter(ctx, "destinations:"+departureCountryID); err != nil {
		return nil, err
	}
	return destinations[departureCountryID], nil
}

// fakeSimulations records creation requests.
type fakeSimulations struct {
	mu         sync.Mutex
	requests   []models.CreateSimulationRequest
	pending    *models.Simulation
	pendingErr error
	createErr  error
	discarded  int
}

func (f *fakeSimulations) CreateSimulation(ctx context.Context, req models.CreateSimulationRequest) (*models.SimulationCreated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.SimulationCreated{ID: "sim-1", VerificationToken: "tok-1"}, nil
}

func (f *fakeSimulations) PendingSimulation(ctx context.Context) (*models.Simulation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, f.pendingErr
}

func (f *fakeSimulations) DiscardPending(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded++
	f.pending = nil
	return nil
}

func (f *fakeSimulations) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// recorder collects notifications.
type recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

type statusErr struct {
	code int
	msgs []string
}

func (e *statusErr) Error() string      { return "http error" }
func (e *statusErr) StatusCode() int    { return e.code }
func (e *statusErr) Messages() []string { return e.msgs }
