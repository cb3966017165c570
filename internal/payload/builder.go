// Package payload turns extracted fields into record updates. It is the only
// place where missing measurements are replaced by defaults, and every default
// it applies is reported as a warning.
package payload

import (
	"math"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/extract"
)

const (
	DefaultTreeCount      int64   = 500
	DefaultSoilHealth     float64 = 0.5
	DefaultAnimalActivity float64 = 0.5

	// neutralPH scores 1.0; the score falls off linearly to 0 at pH 0 and 13.
	neutralPH = 6.5
)

const (
	WarnTreeCountDefault      = "Tree count missing; defaulting to 500."
	WarnSoilHealthDefault     = "Soil health missing; defaulting to 0.5."
	WarnAnimalActivityDefault = "Animal activity missing; defaulting to 0.5."
	WarnCoordinatesIgnored    = "Coordinates not recognized or out of range; ignoring."
)

// ForestUpdate carries forest fields to apply; nil means "leave unchanged".
type ForestUpdate struct {
	Location    *string  `json:"location,omitempty"`
	Area        *float64 `json:"area,omitempty"`
	Coordinates *string  `json:"coordinates,omitempty"`
}

// DataUpdate carries forest-data fields to apply; nil means "leave unchanged".
type DataUpdate struct {
	TreeCount       *int64                 `json:"tree_count,omitempty"`
	SoilData        *entity.SoilData       `json:"soil_data,omitempty"`
	AnimalData      *entity.AnimalData     `json:"animal_data,omitempty"`
	CalamityHistory entity.CalamityHistory `json:"calamity_history,omitempty"`
}

// Payload is the result of Build.
type Payload struct {
	Forest   ForestUpdate `json:"forest"`
	Data     DataUpdate   `json:"data"`
	Warnings []string     `json:"warnings"`
}

func (p *Payload) warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}

// Build derives record updates from fs. Each rule is applied independently.
func Build(fs extract.Fields) Payload {
	p := Payload{Warnings: []string{}}
	buildForest(&p, fs)
	buildTreeCount(&p, fs)
	buildSoil(&p, fs)
	buildAnimal(&p, fs)
	buildCalamity(&p, fs)
	return p
}

func buildForest(p *Payload, fs extract.Fields) {
	if loc, ok := fs.Text(constants.FieldLocation); ok {
		p.Forest.Location = &loc
	}
	if area, ok := fs.Float(constants.FieldArea); ok && area >= 0 && !math.IsInf(area, 0) {
		p.Forest.Area = &area
	}
	if raw, ok := fs.Text(constants.FieldCoordinates); ok {
		if lat, lon, ok := extract.ParseCoordinates(raw); ok {
			c := extract.FormatCoordinates(lat, lon)
			p.Forest.Coordinates = &c
		} else {
			p.warn(WarnCoordinatesIgnored)
		}
	}
}

func buildTreeCount(p *Payload, fs extract.Fields) {
	if tc, ok := fs.Int(constants.FieldTreeCount); ok && tc >= 0 {
		p.Data.TreeCount = &tc
		return
	}
	tc := DefaultTreeCount
	p.Data.TreeCount = &tc
	p.warn(WarnTreeCountDefault)
}

func buildSoil(p *Payload, fs extract.Fields) {
	soil := &entity.SoilData{}
	if ph, ok := fs.Float(constants.FieldSoilPH); ok && ph >= 0 && ph <= 14 {
		soil.PH = &ph
	}
	if m, ok := fs.Float(constants.FieldSoilMoisture); ok && m >= 0 && !math.IsInf(m, 0) {
		soil.Moisture = &m
	}

	if h, ok := fs.Float(constants.FieldSoilHealth); ok {
		h = Clamp01(h)
		soil.Health = &h
	} else if h, ok := SoilHealthFromComponents(soil.PH, soil.Moisture); ok {
		soil.Health = &h
	} else {
		h := DefaultSoilHealth
		soil.Health = &h
		p.warn(WarnSoilHealthDefault)
	}
	p.Data.SoilData = soil
}

// SoilHealthFromComponents averages the pH and moisture scores that are available.
func SoilHealthFromComponents(ph, moisture *float64) (float64, bool) {
	var sum float64
	var n int
	if ph != nil {
		sum += math.Max(0, 1-math.Abs(*ph-neutralPH)/neutralPH)
		n++
	}
	if moisture != nil {
		sum += Clamp01(*moisture / 100)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return Clamp01(sum / float64(n)), true
}

func buildAnimal(p *Payload, fs extract.Fields) {
	animal := &entity.AnimalData{}
	if a, ok := fs.Float(constants.FieldAnimalActivity); ok {
		a = Clamp01(a)
		animal.Activity = &a
	} else {
		a := DefaultAnimalActivity
		animal.Activity = &a
		p.warn(WarnAnimalActivityDefault)
	}
	if r, ok := fs.Int(constants.FieldSpeciesRichness); ok && r >= 0 {
		animal.SpeciesRichness = &r
	}
	p.Data.AnimalData = animal
}

// buildCalamity never defaults: no counters means "no data", not "zero events".
func buildCalamity(p *Payload, fs extract.Fields) {
	var hist entity.CalamityHistory
	for _, f := range []constants.Field{constants.FieldFires, constants.FieldFloods} {
		n, ok := fs.Int(f)
		if !ok || n < 0 {
			continue
		}
		if hist == nil {
			hist = entity.CalamityHistory{}
		}
		hist[string(f)] = n
	}
	p.Data.CalamityHistory = hist
}

// Clamp01 limits v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
