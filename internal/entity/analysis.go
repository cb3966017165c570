package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wildsync/constants"
)

// RiskZones holds the scores of an assessment.
type RiskZones struct {
	Overall float64 `json:"overall"`
}

// Resources is the estimate attached to a recommendation bundle.
type Resources struct {
	Budget    int      `json:"budget"`
	Manpower  int      `json:"manpower"`
	Materials []string `json:"materials"`
}

// Recommendations is the action bundle for a severity tier.
type Recommendations struct {
	Severity         constants.Severity `json:"severity"`
	Timeline         string             `json:"timeline"`
	Steps            []string           `json:"steps"`
	Resources        Resources          `json:"resources"`
	ExpectedOutcomes []string           `json:"expected_outcomes"`
	Metrics          []string           `json:"metrics"`
}

// RiskDetails are the raw scoring inputs echoed on the overlay.
type RiskDetails struct {
	TreeCount      int64   `json:"tree_count"`
	SoilHealth     float64 `json:"soil_health"`
	AnimalActivity float64 `json:"animal_activity"`
}

// FeatureProperties are the properties of the risk feature.
type FeatureProperties struct {
	Risk     float64            `json:"risk"`
	Severity constants.Severity `json:"severity"`
	Details  RiskDetails        `json:"details"`
}

// Geometry is a GeoJSON point; coordinates are [lon, lat].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   Geometry          `json:"geometry"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// HeatMap is the spatial overlay stored with an analysis.
type HeatMap struct {
	Layers map[string]FeatureCollection `json:"layers"`
	Legend map[string]string            `json:"legend"`
}

// Analysis is an immutable, timestamped risk assessment.
type Analysis struct {
	ID              uuid.UUID       `json:"id"`
	ForestID        uuid.UUID       `json:"forest_id"`
	RiskZones       RiskZones       `json:"risk_zones"`
	Recommendations Recommendations `json:"recommendations"`
	HeatMapData     HeatMap         `json:"heat_map_data"`
	CreatedAt       time.Time       `json:"created_at"`
}
