package wizard

import (
	"errors"
	"fmt"

	"colisapp/internal/models"
)

// Field names one scalar of a parcel.
type Field int

const (
	FieldHeight Field = iota
	FieldWidth
	FieldLength
	FieldWeight
)

func (f Field) String() string {
	switch f {
	case FieldHeight:
		return "hauteur"
	case FieldWidth:
		return "largeur"
	case FieldLength:
		return "longueur"
	case FieldWeight:
		return "poids"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

var (
	ErrParcelIndex  = errors.New("parcel index out of range")
	ErrUnknownField = errors.New("unknown parcel field")
)

// Editor holds the ordered parcels of a draft and the one currently edited.
// It is not safe for concurrent use; the Controller serializes access.
type Editor struct {
	max     int
	parcels []models.Parcel
	current int
}

// NewEditor starts with a single zero-valued parcel. max is COLIS_MAX_PER_ENVOI.
func NewEditor(max int) *Editor {
	if max < 1 {
		max = 1
	}
	return &Editor{max: max, parcels: make([]models.Parcel, 1)}
}

// SetCount resizes the collection to n clamped into [1, max]. Existing parcels
// keep their index; new ones are zero-valued; extra ones are dropped from the tail.
func (e *Editor) SetCount(n int) {
	n = clamp(n, 1, e.max)
	switch {
	case n > len(e.parcels):
		e.parcels = append(e.parcels, make([]models.Parcel, n-len(e.parcels))...)
	case n < len(e.parcels):
		e.parcels = e.parcels[:n:n]
	}
	e.current = clamp(e.current, 0, n-1)
}

// UpdateField replaces one field of the parcel at index.
func (e *Editor) UpdateField(index int, field Field, value float64) error {
	if index < 0 || index >= len(e.parcels) {
		return fmt.Errorf("%w: %d", ErrParcelIndex, index)
	}
	p := &e.parcels[index]
	switch field {
	case FieldHeight:
		p.Height = value
	case FieldWidth:
		p.Width = value
	case FieldLength:
		p.Length = value
	case FieldWeight:
		p.Weight = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *Editor) Next()     { e.JumpTo(e.current + 1) }
func (e *Editor) Previous() { e.JumpTo(e.current - 1) }

// JumpTo focuses parcel i, clamped into range.
func (e *Editor) JumpTo(i int) {
	e.current = clamp(i, 0, len(e.parcels)-1)
}

func (e *Editor) Current() int { return e.current }
func (e *Editor) Count() int   { return len(e.parcels) }
func (e *Editor) Max() int     { return e.max }

// Parcels returns a copy of the collection.
func (e *Editor) Parcels() []models.Parcel {
	return append([]models.Parcel(nil), e.parcels...)
}

// Reset goes back to a single zero-valued parcel.
func (e *Editor) Reset() {
	e.parcels = make([]models.Parcel, 1)
	e.current = 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
