package wizard

import (
	"math"
	"testing"

	"colisapp/internal/models"
	"colisapp/internal/parcel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okParcel = models.Parcel{Height: 30, Width: 20, Length: 40, Weight: 5}

func TestValidateLocations(t *testing.T) {
	full := LocationSelection{CountryID: "be", CityID: "bru", AgencyID: "louise"}
	assert.NoError(t, ValidateDeparture(full))
	assert.NoError(t, ValidateDestination(full))

	for _, partial := range []LocationSelection{
		{},
		{CountryID: "be"},
		{CountryID: "be", CityID: "bru"},
		{CountryID: "be", AgencyID: "louise"},
	} {
		assert.ErrorIs(t, ValidateDeparture(partial), ErrIncompleteDeparture)
		assert.ErrorIs(t, ValidateDestination(partial), ErrIncompleteDestination)
	}
}

func parcelErrors(t *testing.T, err error) ParcelErrors {
	t.Helper()
	var pe ParcelErrors
	require.ErrorAs(t, err, &pe)
	return pe
}

func TestValidateParcelsWeightOutOfRange(t *testing.T) {
	for _, w := range []float64{0.5, 70.5, 100} {
		p := okParcel
		p.Weight = w
		pe := parcelErrors(t, ValidateParcels([]models.Parcel{okParcel, p}))
		require.NotEmpty(t, pe)
		assert.Equal(t, 2, pe[0].Position)
		assert.Equal(t, parcel.RuleWeight, pe[0].Rule)
	}
}

func TestValidateParcelsLargestSide(t *testing.T) {
	p := okParcel
	p.Height = 200
	pe := parcelErrors(t, ValidateParcels([]models.Parcel{p}))
	assert.Contains(t, pe, parcel.Violation{Position: 1, Rule: parcel.RuleLargestSide})
}

func TestValidateParcelsVolume(t *testing.T) {
	pe := parcelErrors(t, ValidateParcels([]models.Parcel{{Height: 10, Width: 10, Length: 10, Weight: 5}}))
	assert.Equal(t, ParcelErrors{{Position: 1, Rule: parcel.RuleVolume}}, pe)
	assert.Equal(t, []string{"Colis 1 : le volume doit être d'au moins 1728 cm³"}, pe.Messages())
}

// The step validator stops at the first failing parcel; the submission
// schema reports every parcel.
func TestValidateParcelsFailFast(t *testing.T) {
	bad1 := models.Parcel{Height: 10, Width: 10, Length: 10, Weight: 5}
	bad2 := models.Parcel{Height: 130, Width: 130, Length: 130, Weight: 80}

	pe := parcelErrors(t, ValidateParcels([]models.Parcel{okParcel, bad1, bad2}))
	for _, v := range pe {
		assert.Equal(t, 2, v.Position)
	}

	gw := NewGateway(&fakeSimulations{}, 10, testTariff)
	_, err := gw.Submit(t.Context(), SimulationDraft{
		Departure:   LocationSelection{CountryID: "be", CityID: "bru", AgencyID: "louise"},
		Destination: LocationSelection{CountryID: "fr", CityID: "par", AgencyID: "gare"},
		Parcels:     []models.Parcel{okParcel, bad1, bad2},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Messages, "Colis 2 : le volume doit être d'au moins 1728 cm³")
	assert.Contains(t, ve.Messages, "Colis 3 : le plus grand côté ne doit pas dépasser 120 cm")
}

func TestValidateParcelsEmptyAndValid(t *testing.T) {
	assert.ErrorIs(t, ValidateParcels(nil), ErrNoParcels)
	assert.NoError(t, ValidateParcels([]models.Parcel{okParcel, okParcel}))
}

func TestValidateParcelsRejectsNaNAndInf(t *testing.T) {
	nanHeight := okParcel
	nanHeight.Height = math.NaN()
	nanWeight := okParcel
	nanWeight.Weight = math.NaN()
	infLength := okParcel
	infLength.Length = math.Inf(1)
	allNaN := models.Parcel{Height: math.NaN(), Width: math.NaN(), Length: math.NaN(), Weight: math.NaN()}

	pe := parcelErrors(t, ValidateParcels([]models.Parcel{nanHeight}))
	assert.Contains(t, pe, parcel.Violation{Position: 1, Rule: parcel.RuleNotPositive})

	pe = parcelErrors(t, ValidateParcels([]models.Parcel{okParcel, nanWeight}))
	assert.Contains(t, pe, parcel.Violation{Position: 2, Rule: parcel.RuleWeight})

	pe = parcelErrors(t, ValidateParcels([]models.Parcel{infLength}))
	assert.Contains(t, pe, parcel.Violation{Position: 1, Rule: parcel.RuleLargestSide})

	pe = parcelErrors(t, ValidateParcels([]models.Parcel{allNaN}))
	assert.Contains(t, pe, parcel.Violation{Position: 1, Rule: parcel.RuleNotPositive})
}
