// Package testmodels holds the shared demo types used by tests and examples.
package testmodels

import "github.com/google/uuid"

// Building is the canonical guarded record: its identity is marked protected
// and must survive any partial update.
type Building struct {
	ID       uuid.UUID `json:"id" guard:"protected"`
	Material string    `json:"material"`
	Floors   int       `json:"floors"`
}

// NewBuilding creates a Building with a fresh identity.
func NewBuilding(material string, floors int) *Building {
	return &Building{
		ID:       uuid.New(),
		Material: material,
		Floors:   floors,
	}
}
