package wizard

import (
	"errors"
	"strings"

	"colisapp/internal/models"
	"colisapp/internal/parcel"
)

var (
	ErrIncompleteDeparture   = errors.New("incomplete departure")
	ErrIncompleteDestination = errors.New("incomplete destination")
	ErrNoParcels             = errors.New("no parcels")
)

var stepMessages = map[error]string{
	ErrIncompleteDeparture:   "Veuillez sélectionner le pays, la ville et l'agence de départ",
	ErrIncompleteDestination: "Veuillez sélectionner le pays, la ville et l'agence de destination",
	ErrNoParcels:             "Veuillez ajouter au moins un colis",
}

func ValidateDeparture(s LocationSelection) error {
	if !s.Complete() {
		return ErrIncompleteDeparture
	}
	return nil
}

func ValidateDestination(s LocationSelection) error {
	if !s.Complete() {
		return ErrIncompleteDestination
	}
	return nil
}

// ParcelErrors lists every violation of one parcel.
type ParcelErrors []parcel.Violation

func (e ParcelErrors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages renders each violation in French.
func (e ParcelErrors) Messages() []string {
	out := make([]string, len(e))
	for i, v := range e {
		out[i] = v.Message()
	}
	return out
}

// ValidateParcels stops at the first failing parcel and returns all of its
// violations as ParcelErrors. Submission uses the collect-all schema instead.
func ValidateParcels(parcels []models.Parcel) error {
	if len(parcels) == 0 {
		return ErrNoParcels
	}
	if v := parcel.FirstFailing(parcels); len(v) > 0 {
		return ParcelErrors(v)
	}
	return nil
}

// messagesFor turns a step validation error into notification text.
func messagesFor(err error) (Kind, []string) {
	var pe ParcelErrors
	if errors.As(err, &pe) {
		return KindParcel, pe.Messages()
	}
	if msg, ok := stepMessages[err]; ok {
		return KindIncomplete, []string{msg}
	}
	return KindIncomplete, []string{err.Error()}
}
