package parcel

import (
	"math"
	"testing"

	"colisapp/internal/models"

	"github.com/stretchr/testify/assert"
)

func rulesOf(vs []Violation) []Rule {
	out := make([]Rule, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		parcel models.Parcel
		want   []Rule
	}{
		{"valid", models.Parcel{Height: 30, Width: 20, Length: 40, Weight: 5}, nil},
		{"too heavy", models.Parcel{Height: 30, Width: 20, Length: 40, Weight: 71}, []Rule{RuleWeight}},
		{"too light", models.Parcel{Height: 30, Width: 20, Length: 40, Weight: 0.5}, []Rule{RuleWeight}},
		{"largest side", models.Parcel{Height: 200, Width: 20, Length: 40, Weight: 5}, []Rule{RuleLargestSide}},
		{"sum of sides", models.Parcel{Height: 120, Width: 120, Length: 120, Weight: 5}, []Rule{RuleSumOfSides}},
		{"small volume", models.Parcel{Height: 10, Width: 10, Length: 10, Weight: 5}, []Rule{RuleVolume}},
		{"zero parcel", models.Parcel{}, []Rule{RuleNotPositive, RuleWeight, RuleVolume}},
		{"bounds are inclusive", models.Parcel{Height: 120, Width: 12, Length: 12, Weight: 70}, nil},
		{"nan height", models.Parcel{Height: math.NaN(), Width: 20, Length: 40, Weight: 5}, []Rule{RuleNotPositive, RuleLargestSide, RuleSumOfSides, RuleVolume}},
		{"nan weight", models.Parcel{Height: 30, Width: 20, Length: 40, Weight: math.NaN()}, []Rule{RuleNotPositive, RuleWeight}},
		{"infinite length", models.Parcel{Height: 30, Width: 20, Length: math.Inf(1), Weight: 5}, []Rule{RuleLargestSide, RuleSumOfSides}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(1, tt.parcel)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, rulesOf(got))
		})
	}
}

func TestFirstFailingStopsAtFirstParcel(t *testing.T) {
	parcels := []models.Parcel{
		{Height: 30, Width: 20, Length: 40, Weight: 5},
		{Height: 10, Width: 10, Length: 10, Weight: 5},
		{Height: 30, Width: 20, Length: 40, Weight: 99},
	}

	first := FirstFailing(parcels)
	assert.Len(t, first, 1)
	assert.Equal(t, 2, first[0].Position)

	all := CheckAll(parcels)
	assert.Len(t, all, 2)
	assert.Equal(t, 3, all[1].Position)
}

func TestViolationMessageNamesPosition(t *testing.T) {
	v := Violation{Position: 3, Rule: RuleVolume}
	assert.Equal(t, "Colis 3 : le volume doit être d'au moins 1728 cm³", v.Message())
}
