// Package pricing computes the quote of a simulation: totals, price and
// estimated dates.
package pricing

import (
	"math"
	"time"

	"colisapp/internal/models"
)

// VolumetricDivisor converts cm³ into a volumetric weight in kg.
const VolumetricDivisor = 5000.0

// Tariff holds the price parameters. Amounts are in euros.
type Tariff struct {
	BasePerParcel            float64
	PerKg                    float64
	InternationalFactor      float64
	DomesticTransitDays      int
	InternationalTransitDays int
}

// DefaultTariff is used when no tariff is configured.
var DefaultTariff = Tariff{
	BasePerParcel:            4.50,
	PerKg:                    1.20,
	InternationalFactor:      1.5,
	DomesticTransitDays:      2,
	InternationalTransitDays: 4,
}

// Quote is the result of pricing a set of parcels on a route.
type Quote struct {
	TotalWeight   float64
	TotalVolume   float64
	TotalPrice    float64
	DepartureDate time.Time
	ArrivalDate   time.Time
}

// ChargeableWeight is the larger of the real and the volumetric weight.
func ChargeableWeight(p models.Parcel) float64 {
	return math.Max(p.Weight, p.Volume()/VolumetricDivisor)
}

// Compute prices parcels shipped on now's next day. international is true
// when departure and arrival countries differ.
func (t Tariff) Compute(parcels []models.Parcel, international bool, now time.Time) Quote {
	var q Quote
	var price float64
	for _, p := range parcels {
		q.TotalWeight += p.Weight
		q.TotalVolume += p.Volume()
		price += t.BasePerParcel + t.PerKg*ChargeableWeight(p)
	}
	transit := t.DomesticTransitDays
	if international {
		price *= t.InternationalFactor
		transit = t.InternationalTransitDays
	}
	q.TotalWeight = round2(q.TotalWeight)
	q.TotalVolume = round2(q.TotalVolume)
	q.TotalPrice = round2(price)

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	q.DepartureDate = day.AddDate(0, 0, 1)
	q.ArrivalDate = q.DepartureDate.AddDate(0, 0, transit)
	return q
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
