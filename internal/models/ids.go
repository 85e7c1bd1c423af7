package models

import "github.com/google/uuid"

// ValidID reports whether id is a UUID in its canonical 36-character form,
// the only id shape callers may hand to the repositories.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
