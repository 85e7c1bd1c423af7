// Package parcel holds the business rules every parcel of a shipment must
// satisfy. Both the wizard step validator and the submission schema use it.
package parcel

import (
	"fmt"

	"colisapp/internal/models"
)

const (
	MinWeightKg  = 1.0
	MaxWeightKg  = 70.0
	MaxSideCm    = 120.0
	MaxSumSideCm = 360.0 // exclusive
	MinVolumeCm3 = 1728.0
)

// Rule identifies which constraint a parcel broke.
type Rule string

const (
	RuleNotPositive Rule = "positive"
	RuleWeight      Rule = "weight"
	RuleLargestSide Rule = "largest_side"
	RuleSumOfSides  Rule = "sum_of_sides"
	RuleVolume      Rule = "volume"
)

// Violation is one broken rule on the parcel at Position (1-based).
type Violation struct {
	Position int
	Rule     Rule
}

func (v Violation) Error() string {
	return v.Message()
}

// Message renders the violation in French, the display language of ColisApp.
func (v Violation) Message() string {
	switch v.Rule {
	case RuleNotPositive:
		return fmt.Sprintf("Colis %d : la hauteur, la largeur, la longueur et le poids doivent être strictement positifs", v.Position)
	case RuleWeight:
		return fmt.Sprintf("Colis %d : le poids doit être compris entre %g et %g kg", v.Position, MinWeightKg, MaxWeightKg)
	case RuleLargestSide:
		return fmt.Sprintf("Colis %d : le plus grand côté ne doit pas dépasser %g cm", v.Position, MaxSideCm)
	case RuleSumOfSides:
		return fmt.Sprintf("Colis %d : la somme des trois dimensions doit être inférieure à %g cm", v.Position, MaxSumSideCm)
	case RuleVolume:
		return fmt.Sprintf("Colis %d : le volume doit être d'au moins %g cm³", v.Position, MinVolumeCm3)
	}
	return fmt.Sprintf("Colis %d : colis invalide", v.Position)
}

// Check returns every rule broken by p, in a stable order. position is the
// 1-based index of p inside its shipment. Each rule tests the passing
// condition, so NaN fields fail.
func Check(position int, p models.Parcel) []Violation {
	var out []Violation
	if !(p.Height > 0 && p.Width > 0 && p.Length > 0 && p.Weight > 0) {
		out = append(out, Violation{Position: position, Rule: RuleNotPositive})
	}
	if !(p.Weight >= MinWeightKg && p.Weight <= MaxWeightKg) {
		out = append(out, Violation{Position: position, Rule: RuleWeight})
	}
	if !(max(p.Height, p.Width, p.Length) <= MaxSideCm) {
		out = append(out, Violation{Position: position, Rule: RuleLargestSide})
	}
	if !(p.Height+p.Width+p.Length < MaxSumSideCm) {
		out = append(out, Violation{Position: position, Rule: RuleSumOfSides})
	}
	if !(p.Volume() >= MinVolumeCm3) {
		out = append(out, Violation{Position: position, Rule: RuleVolume})
	}
	return out
}

// CheckAll checks every parcel and collects all violations.
func CheckAll(parcels []models.Parcel) []Violation {
	var out []Violation
	for i, p := range parcels {
		out = append(out, Check(i+1, p)...)
	}
	return out
}

// FirstFailing stops at the first parcel breaking a rule and returns its violations.
func FirstFailing(parcels []models.Parcel) []Violation {
	for i, p := range parcels {
		if v := Check(i+1, p); len(v) > 0 {
			return v
		}
	}
	return nil
}
