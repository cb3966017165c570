package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalField(t *testing.T) {
	tests := map[string]Field{
		"Location":         FieldLocation,
		"AREA":             FieldArea,
		"Area (km²)":       FieldArea,
		"coord":            FieldCoordinates,
		"Coordinates":      FieldCoordinates,
		"Tree Count":       FieldTreeCount,
		"tree_count":       FieldTreeCount,
		"Number of Trees":  FieldTreeCount,
		"Soil-Health":      FieldSoilHealth,
		"Soil Quality":     FieldSoilHealth,
		"pH":               FieldSoilPH,
		"Soil Moisture %":  FieldSoilMoisture,
		"Animal Activity":  FieldAnimalActivity,
		"wildlife_index":   FieldAnimalActivity,
		"Species Richness": FieldSpeciesRichness,
		"Fires":            FieldFires,
		"floods":           FieldFloods,
		"LAT":              FieldLat,
		"Latitude":         FieldLat,
		"lon":              FieldLon,
		"lng":              FieldLon,
		"Longitude":        FieldLon,
	}
	for label, want := range tests {
		got, ok := CanonicalField(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}
}

func TestCanonicalField_Unknown(t *testing.T) {
	for _, label := range []string{"", "   ", "ranger name", "%%%"} {
		_, ok := CanonicalField(label)
		assert.False(t, ok, label)
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "soilph", NormalizeLabel(" Soil pH "))
	assert.Equal(t, "treecount", NormalizeLabel("Tree_Count:"))
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, TABULAR, MapExtToFormat(".CSV"))
	assert.Equal(t, TABULAR, MapExtToFormat("xls"))
	assert.Equal(t, PDF, MapExtToFormat("pdf"))
	assert.Equal(t, IMAGE, MapExtToFormat(".JPEG"))
	assert.Equal(t, Format(""), MapExtToFormat("docx"))
	assert.True(t, IsAllowedExt(".png"))
	assert.False(t, IsAllowedExt("gif"))
}
