package analysis

import (
	"github.com/joseph-ayodele/wildsync/internal/entity"
)

// MinCompleteness is the lowest percentage that allows analysis.
const MinCompleteness = 70

// Core field names reported as missing.
const (
	CoreTreeCount  = "tree_count"
	CoreSoilData   = "soil_data"
	CoreAnimalData = "animal_data"
)

const coreFields = 3

// CompletenessReport describes how much of the core data a record carries.
type CompletenessReport struct {
	Percent int      `json:"completeness"`
	Missing []string `json:"missing"`
}

// Sufficient reports whether the record may be analysed.
func (c CompletenessReport) Sufficient() bool {
	return c.Percent >= MinCompleteness
}

// Completeness scores d as present/3 of tree count, soil data and animal data,
// truncated to a whole percent. A nil record is 0%.
func Completeness(d *entity.ForestData) CompletenessReport {
	r := CompletenessReport{Missing: []string{}}
	present := 0
	check := func(ok bool, name string) {
		if ok {
			present++
			return
		}
		r.Missing = append(r.Missing, name)
	}

	var (
		trees  bool
		soil   bool
		animal bool
	)
	if d != nil {
		trees = d.TreeCount != nil
		soil = !d.SoilData.IsEmpty()
		animal = !d.AnimalData.IsEmpty()
	}
	check(trees, CoreTreeCount)
	check(soil, CoreSoilData)
	check(animal, CoreAnimalData)

	r.Percent = present * 100 / coreFields
	return r
}
