package enrich

import (
	"context"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/document"
	"github.com/joseph-ayodele/wildsync/internal/extract"
)

const ManualLocationMessage = "Unable to detect location. Please provide exact area and coordinates."

// LatLon is a decimal-degree position.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationGuess reports where an upload was taken and how that was decided.
type LocationGuess struct {
	Method      constants.LocationMethod `json:"method"`
	Coordinates *LatLon                  `json:"coordinates,omitempty"`
	Message     string                   `json:"message,omitempty"`
}

// Locator decides the location of an upload. When the geocoder already runs
// as an Enricher, build the Locator without one so a place is looked up once.
type Locator struct {
	geocoder *Geocoder // nil disables place-name lookup
}

func NewLocator(g *Geocoder) *Locator {
	return &Locator{geocoder: g}
}

// Detect tries EXIF GPS, then coordinates contributed by enrichment, then
// coordinates found in the document, then the place name through the geocoder.
// Otherwise the caller must supply a location. added holds the fields an
// enricher merged into fs; it may be nil.
func (l *Locator) Detect(ctx context.Context, gps *document.GPS, fs, added extract.Fields) LocationGuess {
	if gps != nil && extract.InRange(gps.Lat, gps.Lon) {
		return LocationGuess{Method: constants.LocationMethodEXIF, Coordinates: &LatLon{Lat: gps.Lat, Lon: gps.Lon}}
	}
	if c, ok := coordinates(added); ok {
		return LocationGuess{Method: constants.LocationMethodGeocoding, Coordinates: c}
	}
	if c, ok := coordinates(fs); ok {
		return LocationGuess{Method: constants.LocationMethodText, Coordinates: c}
	}
	if place, ok := fs.Text(constants.FieldLocation); ok && l != nil && l.geocoder != nil {
		if lat, lon, ok := l.geocoder.Lookup(ctx, place); ok {
			return LocationGuess{Method: constants.LocationMethodGeocoding, Coordinates: &LatLon{Lat: lat, Lon: lon}}
		}
	}
	return LocationGuess{Method: constants.LocationMethodManual, Message: ManualLocationMessage}
}

func coordinates(fs extract.Fields) (*LatLon, bool) {
	raw, ok := fs.Text(constants.FieldCoordinates)
	if !ok {
		return nil, false
	}
	lat, lon, ok := extract.ParseCoordinates(raw)
	if !ok {
		return nil, false
	}
	return &LatLon{Lat: lat, Lon: lon}, true
}
