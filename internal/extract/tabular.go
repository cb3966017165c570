package extract

import (
	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/document"
)

// FromTable reads the first data row of t. Surveys carry one row per forest,
// so later rows are ignored. Unknown columns are dropped.
func FromTable(t *document.Table) Fields {
	fs := Fields{}
	if t.Empty() {
		return fs
	}
	for col, label := range t.Columns {
		f, ok := constants.CanonicalField(label)
		if !ok {
			continue
		}
		fs.Set(f, t.Cell(0, col))
	}

	if !fs.Has(constants.FieldCoordinates) {
		lat, okLat := fs.Float(constants.FieldLat)
		lon, okLon := fs.Float(constants.FieldLon)
		if okLat && okLon && InRange(lat, lon) {
			fs[constants.FieldCoordinates] = FormatCoordinates(lat, lon)
		}
	}
	return fs
}
