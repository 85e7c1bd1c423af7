package wizard

import (
	"context"
	"errors"
	"sync"

	"colisapp/internal/models"
)

// ErrStale is returned when a response arrived after a newer request for the
// same option list and was discarded.
var ErrStale = errors.New("stale option response discarded")

const transportMessage = "Impossible de charger les options, veuillez réessayer"

// LocationSource lists the options behind the cascading dropdowns. Destination
// countries are already filtered by the source's route predicate.
type LocationSource interface {
	ListCountries(ctx context.Context) ([]models.Option, error)
	ListCitiesForCountry(ctx context.Context, countryID string) ([]models.Option, error)
	ListAgenciesForCity(ctx context.Context, cityID string) ([]models.Option, error)
	ListDestinationCountries(ctx context.Context, departureCountryID string) ([]models.Option, error)
}

// Side picks the departure or destination half of a draft.
type Side int

const (
	Departure Side = iota
	Destination
)

type list int

const (
	listCountries list = iota
	listDepartureCities
	listDepartureAgencies
	listDestinationCountries
	listDestinationCities
	listDestinationAgencies
	listCount
)

// Resolver owns both location selections and their option lists. Every list
// has a generation counter; a response is applied only if no newer request
// for that list was issued or cleared it in the meantime.
type Resolver struct {
	src    LocationSource
	notify Notifier

	mu          sync.Mutex
	departure   LocationSelection
	destination LocationSelection
	options     Options
	gen         [listCount]uint64
}

func NewResolver(src LocationSource, notify Notifier) *Resolver {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &Resolver{src: src, notify: notify}
}

// LoadCountries fills the departure country list.
func (r *Resolver) LoadCountries(ctx context.Context) error {
	r.mu.Lock()
	gen := r.bump(listCountries)
	r.mu.Unlock()

	return r.fetch(ctx, listCountries, gen, r.src.ListCountries)
}

// SelectCountry sets the country of side and clears everything below it.
// Choosing a departure country also clears the whole destination.
func (r *Resolver) SelectCountry(ctx context.Context, side Side, countryID string) error {
	r.mu.Lock()
	var target list
	if side == Departure {
		r.departure = LocationSelection{CountryID: countryID}
		r.clearDestination()
		r.clear(listDepartureCities, listDepartureAgencies)
		target = listDepartureCities
	} else {
		r.destination = LocationSelection{CountryID: countryID}
		r.clear(listDestinationCities, listDestinationAgencies)
		target = listDestinationCities
	}
	gen := r.bump(target)
	r.mu.Unlock()

	if countryID == "" {
		return nil
	}
	return r.fetch(ctx, target, gen, func(ctx context.Context) ([]models.Option, error) {
		return r.src.ListCitiesForCountry(ctx, countryID)
	})
}

// SelectCity sets the city of side and clears its agency. A departure city
// change also clears the destination.
func (r *Resolver) SelectCity(ctx context.Context, side Side, cityID string) error {
	r.mu.Lock()
	var target list
	if side == Departure {
		r.departure.CityID = cityID
		r.departure.AgencyID = ""
		r.clearDestination()
		r.clear(listDepartureAgencies)
		target = listDepartureAgencies
	} else {
		r.destination.CityID = cityID
		r.destination.AgencyID = ""
		r.clear(listDestinationAgencies)
		target = listDestinationAgencies
	}
	gen := r.bump(target)
	r.mu.Unlock()

	if cityID == "" {
		return nil
	}
	return r.fetch(ctx, target, gen, func(ctx context.Context) ([]models.Option, error) {
		return r.src.ListAgenciesForCity(ctx, cityID)
	})
}

// SelectAgency sets the agency of side. A departure agency resets the
// destination and loads the countries reachable from the departure country.
func (r *Resolver) SelectAgency(ctx context.Context, side Side, agencyID string) error {
	r.mu.Lock()
	if side == Destination {
		r.destination.AgencyID = agencyID
		r.mu.Unlock()
		return nil
	}
	r.departure.AgencyID = agencyID
	r.clearDestination()
	gen := r.bump(listDestinationCountries)
	countryID := r.departure.CountryID
	r.mu.Unlock()

	if agencyID == "" || countryID == "" {
		return nil
	}
	return r.fetch(ctx, listDestinationCountries, gen, func(ctx context.Context) ([]models.Option, error) {
		return r.src.ListDestinationCountries(ctx, countryID)
	})
}

// Selection returns a copy of side's selection.
func (r *Resolver) Selection(side Side) LocationSelection {
	r.mu.Lock()
	defer r.mu.Unlock()
	if side == Departure {
		return r.departure
	}
	return r.destination
}

// Options returns a copy of every option list.
func (r *Resolver) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options.clone()
}

// Reset clears both selections and every list but the countries.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departure = LocationSelection{}
	r.clearDestination()
	r.clear(listDepartureCities, listDepartureAgencies)
}

// clearDestination must be called with mu held.
func (r *Resolver) clearDestination() {
	r.destination = LocationSelection{}
	r.clear(listDestinationCountries, listDestinationCities, listDestinationAgencies)
}

// clear empties lists and invalidates their in-flight requests. mu must be held.
func (r *Resolver) clear(lists ...list) {
	for _, l := range lists {
		r.set(l, nil)
		r.gen[l]++
	}
}

func (r *Resolver) bump(l list) uint64 {
	r.gen[l]++
	return r.gen[l]
}

func (r *Resolver) set(l list, opts []models.Option) {
	switch l {
	case listCountries:
		r.options.Countries = opts
	case listDepartureCities:
		r.options.DepartureCities = opts
	case listDepartureAgencies:
		r.options.DepartureAgencies = opts
	case listDestinationCountries:
		r.options.DestinationCountries = opts
	case listDestinationCities:
		r.options.DestinationCities = opts
	case listDestinationAgencies:
		r.options.DestinationAgencies = opts
	}
}

// fetch runs load without the lock and applies its result if gen is still current.
// Failures leave the selection untouched.
func (r *Resolver) fetch(ctx context.Context, l list, gen uint64, load func(context.Context) ([]models.Option, error)) error {
	opts, err := load(ctx)

	r.mu.Lock()
	stale := r.gen[l] != gen
	if !stale && err == nil {
		r.set(l, opts)
	}
	r.mu.Unlock()

	switch {
	case stale:
		return ErrStale
	case err != nil:
		r.notify.Notify(Notification{Kind: KindTransport, Messages: []string{transportMessage}})
		return err
	}
	return nil
}
