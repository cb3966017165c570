package constants

import (
	"strings"
	"unicode"
)

// Field is a canonical survey field name.
type Field string

const (
	FieldLocation        Field = "location"
	FieldArea            Field = "area"
	FieldCoordinates     Field = "coordinates"
	FieldTreeCount       Field = "tree_count"
	FieldSoilHealth      Field = "soil_health"
	FieldSoilPH          Field = "soil_ph"
	FieldSoilMoisture    Field = "soil_moisture"
	FieldAnimalActivity  Field = "animal_activity"
	FieldSpeciesRichness Field = "species_richness"
	FieldFires           Field = "fires"
	FieldFloods          Field = "floods"
	FieldLat             Field = "lat"
	FieldLon             Field = "lon"
)

var allFields = []Field{
	FieldLocation,
	FieldArea,
	FieldCoordinates,
	FieldTreeCount,
	FieldSoilHealth,
	FieldSoilPH,
	FieldSoilMoisture,
	FieldAnimalActivity,
	FieldSpeciesRichness,
	FieldFires,
	FieldFloods,
	FieldLat,
	FieldLon,
}

// fieldAliases is keyed by the normalized label (see NormalizeLabel).
var fieldAliases = map[string]Field{
	"location":  FieldLocation,
	"place":     FieldLocation,
	"site":      FieldLocation,
	"sitename":  FieldLocation,
	"forest":    FieldLocation,
	"area":      FieldArea,
	"areakm":    FieldArea,
	"areakm2":   FieldArea,
	"areasqkm":  FieldArea,
	"areaha":    FieldArea,
	"totalarea": FieldArea,

	"coordinates": FieldCoordinates,
	"coordinate":  FieldCoordinates,
	"coords":      FieldCoordinates,
	"coord":       FieldCoordinates,
	"latlon":      FieldCoordinates,
	"latlng":      FieldCoordinates,

	"treecount":     FieldTreeCount,
	"trees":         FieldTreeCount,
	"tree":          FieldTreeCount,
	"numtrees":      FieldTreeCount,
	"numberoftrees": FieldTreeCount,
	"totaltrees":    FieldTreeCount,
	"treecounts":    FieldTreeCount,

	"soilhealth":   FieldSoilHealth,
	"soilquality":  FieldSoilHealth,
	"soil":         FieldSoilHealth,
	"soilindex":    FieldSoilHealth,
	"ph":           FieldSoilPH,
	"soilph":       FieldSoilPH,
	"phlevel":      FieldSoilPH,
	"moisture":     FieldSoilMoisture,
	"soilmoisture": FieldSoilMoisture,
	"moisturepct":  FieldSoilMoisture,

	"animalactivity":   FieldAnimalActivity,
	"activity":         FieldAnimalActivity,
	"animalindex":      FieldAnimalActivity,
	"wildlifeactivity": FieldAnimalActivity,
	"wildlifeindex":    FieldAnimalActivity,
	"speciesrichness":  FieldSpeciesRichness,
	"richness":         FieldSpeciesRichness,
	"species":          FieldSpeciesRichness,
	"speciescount":     FieldSpeciesRichness,

	"fires":     FieldFires,
	"fire":      FieldFires,
	"wildfires": FieldFires,
	"floods":    FieldFloods,
	"flood":     FieldFloods,

	"lat":       FieldLat,
	"latitude":  FieldLat,
	"lon":       FieldLon,
	"lng":       FieldLon,
	"long":      FieldLon,
	"longitude": FieldLon,
}

// AllFields returns every canonical field name.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// NormalizeLabel lowercases a label and drops everything that is not a letter or digit.
func NormalizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalField resolves an arbitrary column or label spelling to its canonical field.
func CanonicalField(label string) (Field, bool) {
	key := NormalizeLabel(label)
	if key == "" {
		return "", false
	}
	f, ok := fieldAliases[key]
	return f, ok
}

// IsIntegerField reports whether values of f are whole counts.
func IsIntegerField(f Field) bool {
	switch f {
	case FieldTreeCount, FieldSpeciesRichness, FieldFires, FieldFloods:
		return true
	}
	return false
}

// IsTextField reports whether values of f are carried as text.
func IsTextField(f Field) bool {
	return f == FieldLocation || f == FieldCoordinates
}
