package analysis

import (
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/extract"
)

// RiskLayer is the heat map layer carrying the risk feature.
const RiskLayer = "risk"

// Inputs are the raw values a score was computed from.
type Inputs struct {
	TreeCount      int64
	SoilHealth     float64
	AnimalActivity float64
	Coordinates    *string // "lat,lon" of the forest, when known
}

// Legend is the fixed colour banding of the overlay.
func Legend() map[string]string {
	return map[string]string{
		"0.0-0.3": "Green (healthy)",
		"0.3-0.6": "Yellow (moderate)",
		"0.6-1.0": "Red (high-risk)",
	}
}

// HeatMapFor builds the single-feature overlay for a score.
// The point sits at the forest coordinates, or [0,0] when unknown.
func HeatMapFor(score float64, in Inputs) entity.HeatMap {
	var point [2]float64
	if in.Coordinates != nil {
		if lat, lon, ok := extract.ParseCoordinates(*in.Coordinates); ok {
			point = [2]float64{lon, lat}
		}
	}
	return entity.HeatMap{
		Layers: map[string]entity.FeatureCollection{
			RiskLayer: {
				Type: "FeatureCollection",
				Features: []entity.Feature{{
					Type: "Feature",
					Properties: entity.FeatureProperties{
						Risk:     score,
						Severity: SeverityFor(score),
						Details: entity.RiskDetails{
							TreeCount:      in.TreeCount,
							SoilHealth:     in.SoilHealth,
							AnimalActivity: in.AnimalActivity,
						},
					},
					Geometry: entity.Geometry{Type: "Point", Coordinates: point},
				}},
			},
		},
		Legend: Legend(),
	}
}
