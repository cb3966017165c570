package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/wildsync/constants"
)

// textRule recovers one field from free text. Rules are independent;
// each applies at most once (first match in the document).
type textRule struct {
	field   constants.Field
	pattern *regexp.Regexp
}

const number = `(\d+(?:\.\d+)?)`

var textRules = []textRule{
	{constants.FieldArea, regexp.MustCompile(`(?i)\barea\s+of\s+(?:approximately\s+|approx\.?\s+|about\s+|around\s+)?(\d[\d,]*(?:\.\d+)?)\s*(?:sq\.?\s*|square\s+)?(?:km|kilomet)`)},
	{constants.FieldTreeCount, regexp.MustCompile(`(?i)\b(?:tree\s+count|trees)\s*:\s*(\d{1,3}(?:,\d{3})+|\d+)`)},
	{constants.FieldSoilPH, regexp.MustCompile(`(?i)\bsoil\s+ph\s*:\s*` + number)},
	{constants.FieldSoilHealth, regexp.MustCompile(`(?i)\bsoil\s+(?:health|quality)\s*:\s*` + number)},
	{constants.FieldSoilMoisture, regexp.MustCompile(`(?i)\bsoil\s+moisture\s*:\s*` + number + `\s*%`)},
	{constants.FieldAnimalActivity, regexp.MustCompile(`(?i)\banimal\s+(?:activity|index)\s*:\s*` + number)},
	{constants.FieldSpeciesRichness, regexp.MustCompile(`(?i)\bspecies\s+richness\s*:\s*(\d+)`)},
	{constants.FieldFires, regexp.MustCompile(`(?i)\b(?:wild)?fires?\s*:\s*(\d+)`)},
	{constants.FieldFloods, regexp.MustCompile(`(?i)\bfloods?\s*:\s*(\d+)`)},
}

var (
	locationLineRe = regexp.MustCompile(`(?im)^[\s\-–•*]*location\s*:\s*(.+)$`)
	qualifierRe    = regexp.MustCompile(`\(([^()]+)\)\s*$`)
	compassRe      = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)\s*[°º]?\s*([NS])\b\s*,\s*(\d{1,3}(?:\.\d+)?)\s*[°º]?\s*([EW])\b`)
	sightingRe     = regexp.MustCompile(`(?i)\b(\d[\d,]*)\s+sightings?\b`)
)

// sightingsPerFullActivity is the sighting total that maps to activity 1.0.
const sightingsPerFullActivity = 20.0

// FromText applies the text rules to the concatenated text of a document.
func FromText(text string) Fields {
	fs := Fields{}
	if strings.TrimSpace(text) == "" {
		return fs
	}

	for _, r := range textRules {
		if m := r.pattern.FindStringSubmatch(text); m != nil {
			fs.Set(r.field, m[1])
		}
	}

	applyLocationLine(fs, text)

	if !fs.Has(constants.FieldCoordinates) {
		if lat, lon, _, ok := findCoordinates(text); ok {
			fs[constants.FieldCoordinates] = FormatCoordinates(lat, lon)
		}
	}

	if total, lines := countSightings(text); lines > 0 {
		fs[constants.FieldAnimalActivity] = math.Min(1.0, total/sightingsPerFullActivity)
		fs[constants.FieldSpeciesRichness] = int64(lines)
	}
	return fs
}

// applyLocationLine prefers a trailing "(place name)" over the raw line and
// lifts inline compass coordinates out of it.
func applyLocationLine(fs Fields, text string) {
	m := locationLineRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	line := strings.TrimSpace(m[1])
	if q := qualifierRe.FindStringSubmatch(line); q != nil && strings.TrimSpace(q[1]) != "" {
		fs.Set(constants.FieldLocation, q[1])
	} else {
		fs.Set(constants.FieldLocation, line)
	}

	c := compassRe.FindStringSubmatch(line)
	if c == nil {
		return
	}
	lat, lon, ok := parsePair(c[1], c[3])
	if !ok {
		return
	}
	lat, lon = hemisphere(lat, c[2]), hemisphere(lon, c[4])
	if InRange(lat, lon) {
		fs[constants.FieldCoordinates] = FormatCoordinates(lat, lon)
	}
}

// countSightings sums "N sighting(s)" counts, one per line.
func countSightings(text string) (total float64, lines int) {
	for _, line := range strings.Split(text, "\n") {
		m := sightingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, ok := ToNumeric(m[1])
		if !ok {
			continue
		}
		total += n
		lines++
	}
	return total, lines
}
