// Package validation wraps go-playground/validator with the ColisApp schema
// rules and French messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"colisapp/internal/models"
	"colisapp/internal/parcel"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

const (
	parcelTagPrefix = "parcel_"
	tagMaxParcels   = "max_parcels"
)

// Validator validates request structs and renders every violation in French.
type Validator struct {
	validate   *validator.Validate
	trans      ut.Translator
	maxParcels int
}

// New builds a Validator. maxParcels is COLIS_MAX_PER_ENVOI.
func New(maxParcels int) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	locale := fr.New()
	trans, _ := ut.New(locale, locale).GetTranslator("fr")
	_ = fr_translations.RegisterDefaultTranslations(v, trans)

	out := &Validator{validate: v, trans: trans, maxParcels: maxParcels}
	v.RegisterStructValidation(out.simulationRules, models.CreateSimulationRequest{})
	out.registerRuleTranslations()
	return out
}

// Struct implements echo.Validator.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// simulationRules reports every parcel rule violation and the parcel count bound.
func (v *Validator) simulationRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CreateSimulationRequest)
	if v.maxParcels > 0 && len(req.Parcels) > v.maxParcels {
		sl.ReportError(req.Parcels, "parcels", "Parcels", tagMaxParcels, strconv.Itoa(v.maxParcels))
	}
	for _, violation := range parcel.CheckAll(req.Parcels) {
		idx := violation.Position - 1
		sl.ReportError(req.Parcels[idx],
			fmt.Sprintf("parcels[%d]", idx), fmt.Sprintf("Parcels[%d]", idx),
			parcelTagPrefix+string(violation.Rule), strconv.Itoa(violation.Position))
	}
}

func (v *Validator) registerRuleTranslations() {
	rules := []parcel.Rule{
		parcel.RuleNotPositive, parcel.RuleWeight, parcel.RuleLargestSide,
		parcel.RuleSumOfSides, parcel.RuleVolume,
	}
	for _, rule := range rules {
		_ = v.validate.RegisterTranslation(parcelTagPrefix+string(rule), v.trans,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				pos, _ := strconv.Atoi(fe.Param())
				return parcel.Violation{Position: pos, Rule: rule}.Message()
			})
	}
	_ = v.validate.RegisterTranslation(tagMaxParcels, v.trans,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fmt.Sprintf("Un envoi ne peut pas contenir plus de %s colis", fe.Param())
		})
}

// Messages flattens a validation error into one translated message per violation.
// Non-validation errors yield their own text.
func (v *Validator) Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Translate(v.trans))
	}
	return out
}

// MaxParcels returns the configured parcel count bound.
func (v *Validator) MaxParcels() int {
	return v.maxParcels
}
