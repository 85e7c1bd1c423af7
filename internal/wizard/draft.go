// Package wizard drives the shipment simulation wizard: cascading location
// selection, parcel editing, per-step validation and submission. It holds no
// UI code; front ends render the snapshots it hands out.
package wizard

import "colisapp/internal/models"

// LocationSelection is a partial country/city/agency choice. A city only
// makes sense under its country and an agency under its city.
type LocationSelection struct {
	CountryID string
	CityID    string
	AgencyID  string
}

// Complete reports whether all three fields are set.
func (s LocationSelection) Complete() bool {
	return s.CountryID != "" && s.CityID != "" && s.AgencyID != ""
}

// SimulationDraft is the aggregate state of one wizard session.
type SimulationDraft struct {
	Departure   LocationSelection
	Destination LocationSelection
	Parcels     []models.Parcel
}

// International reports whether the draft crosses a border.
func (d SimulationDraft) International() bool {
	return d.Departure.CountryID != d.Destination.CountryID
}

// Options holds one list per cascading dropdown.
type Options struct {
	Countries            []models.Option
	DepartureCities      []models.Option
	DepartureAgencies    []models.Option
	DestinationCountries []models.Option
	DestinationCities    []models.Option
	DestinationAgencies  []models.Option
}

func (o Options) clone() Options {
	return Options{
		Countries:            append([]models.Option(nil), o.Countries...),
		DepartureCities:      append([]models.Option(nil), o.DepartureCities...),
		DepartureAgencies:    append([]models.Option(nil), o.DepartureAgencies...),
		DestinationCountries: append([]models.Option(nil), o.DestinationCountries...),
		DestinationCities:    append([]models.Option(nil), o.DestinationCities...),
		DestinationAgencies:  append([]models.Option(nil), o.DestinationAgencies...),
	}
}

// Kind classifies a Notification.
type Kind int

const (
	KindIncomplete Kind = iota
	KindParcel
	KindTransport
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindParcel:
		return "parcel"
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Notification is a user-visible message produced by a failed action.
type Notification struct {
	Kind     Kind
	Messages []string
}

// Notifier receives every Notification. It is called without wizard locks held.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
