package entity

import (
	"time"

	"github.com/google/uuid"
)

// SoilData is the soil snapshot of a forest. Health is in [0,1].
type SoilData struct {
	Health   *float64 `json:"health,omitempty"`
	PH       *float64 `json:"ph,omitempty"`
	Moisture *float64 `json:"moisture,omitempty"`
}

// IsEmpty reports whether no soil measurement is present.
func (s *SoilData) IsEmpty() bool {
	return s == nil || (s.Health == nil && s.PH == nil && s.Moisture == nil)
}

// AnimalData is the wildlife snapshot of a forest. Activity is in [0,1].
type AnimalData struct {
	Activity        *float64 `json:"activity,omitempty"`
	SpeciesRichness *int64   `json:"species_richness,omitempty"`
}

// IsEmpty reports whether no wildlife measurement is present.
func (a *AnimalData) IsEmpty() bool {
	return a == nil || (a.Activity == nil && a.SpeciesRichness == nil)
}

// CalamityHistory counts recorded events by name, e.g. "fires", "floods".
type CalamityHistory map[string]int64

// ForestData is the mutable measurement snapshot attached to a forest.
type ForestData struct {
	ID              uuid.UUID       `json:"id"`
	ForestID        uuid.UUID       `json:"forest_id"`
	TreeCount       *int64          `json:"tree_count,omitempty"`
	SoilData        *SoilData       `json:"soil_data,omitempty"`
	AnimalData      *AnimalData     `json:"animal_data,omitempty"`
	CalamityHistory CalamityHistory `json:"calamity_history,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
