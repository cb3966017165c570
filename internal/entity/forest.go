package entity

import (
	"time"

	"github.com/google/uuid"
)

// Forest represents one surveyed plot.
type Forest struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Location    *string   `json:"location,omitempty"`
	Area        *float64  `json:"area,omitempty"`
	Coordinates *string   `json:"coordinates,omitempty"` // "lat,lon"
	CreatedAt   time.Time `json:"created_at"`
}
