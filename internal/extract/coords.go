package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// InRange reports whether lat/lon are valid decimal degrees.
func InRange(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) && math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}

// FormatCoordinates renders a pair as "lat,lon" with at most six decimals.
func FormatCoordinates(lat, lon float64) string {
	return formatDegrees(lat) + "," + formatDegrees(lon)
}

func formatDegrees(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var coordPairRe = regexp.MustCompile(`^\s*\(?\s*(-?\d+(?:\.\d+)?)\s*[,;\s]\s*(-?\d+(?:\.\d+)?)\s*\)?\s*$`)

// ParseCoordinates parses "lat,lon" text and range-checks it.
func ParseCoordinates(s string) (lat, lon float64, ok bool) {
	m := coordPairRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || !InRange(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// coordStrategy recovers a coordinate pair from free text.
type coordStrategy struct {
	name string
	find func(text string) (lat, lon float64, ok bool)
}

// coordStrategies are tried in order; the first in-range result wins.
var coordStrategies = []coordStrategy{
	{name: "explicit_pair", find: explicitPair},
	{name: "labeled_decimals", find: labeledDecimals},
	{name: "dm_range", find: degreeMinuteRange},
	{name: "dm_point", find: degreeMinutePoint},
	{name: "decimal_scan", find: decimalScan},
}

// findCoordinates runs the fallback chain and returns the winning strategy name.
func findCoordinates(text string) (lat, lon float64, strategy string, ok bool) {
	for _, s := range coordStrategies {
		if lat, lon, ok := s.find(text); ok && InRange(lat, lon) {
			return lat, lon, s.name, true
		}
	}
	return 0, 0, "", false
}

const (
	decimal = `-?\d{1,3}(?:\.\d+)?`
	degSign = `\s*(?:°|º|deg\.?|degrees?)\s*`
	minSign = `\s*(?:′|'|’)?\s*`
	secSign = `\s*(?:″|"|''|′′)\s*`
)

var (
	explicitPairRe = regexp.MustCompile(`(?i)\b(?:coordinates?|coords?|gps)\s*[:=]?\s*\(?\s*(` + decimal + `)\s*,\s*(` + decimal + `)`)
	labeledLatRe   = regexp.MustCompile(`(?i)\blat(?:itude)?\s*[:=]\s*(` + decimal + `)(\s*[°º])?`)
	labeledLonRe   = regexp.MustCompile(`(?i)\b(?:lon|lng|long|longitude)\s*[:=]\s*(` + decimal + `)(\s*[°º])?`)
	decimalPairRe  = regexp.MustCompile(`(-?\d{1,3}\.\d+)\s*,\s*(-?\d{1,3}\.\d+)`)

	latRangeRe = regexp.MustCompile(`(?i)latitudes?\s*:?\s*(\d{1,3})` + degSign + `(\d{1,2}(?:\.\d+)?)` + minSign +
		`(?:[NS]\s*)?(?:to|and|-|–|—)\s*(\d{1,3})` + degSign + `(\d{1,2}(?:\.\d+)?)` + minSign + `([NS])`)
	lonRangeRe = regexp.MustCompile(`(?i)longitudes?\s*:?\s*(\d{1,3})` + degSign + `(\d{1,2}(?:\.\d+)?)` + minSign +
		`(?:[EW]\s*)?(?:to|and|-|–|—)\s*(\d{1,3})` + degSign + `(\d{1,2}(?:\.\d+)?)` + minSign + `([EW])`)

	latPointRe = regexp.MustCompile(`(?i)latitude\s*:?\s*(\d{1,3})` + degSign + `(\d{1,2}(?:\.\d+)?)` + minSign +
		`(?:(\d{1,2}(?:\.\d+)?)` + secSign + `)?([NS])`)
	lonPointRe = regexp.MustCompile(`(?i)longitude\s*:?\s*(\d{1,3})` + degSign + `(\d{1,2}(?:\.\d+)?)` + minSign +
		`(?:(\d{1,2}(?:\.\d+)?)` + secSign + `)?([EW])`)
)

func explicitPair(text string) (float64, float64, bool) {
	m := explicitPairRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	return parsePair(m[1], m[2])
}

func labeledDecimals(text string) (float64, float64, bool) {
	la := labeledLatRe.FindStringSubmatch(text)
	lo := labeledLonRe.FindStringSubmatch(text)
	// a degree sign means degree-minute notation, handled further down the chain
	if la == nil || lo == nil || la[2] != "" || lo[2] != "" {
		return 0, 0, false
	}
	return parsePair(la[1], lo[1])
}

func degreeMinuteRange(text string) (float64, float64, bool) {
	la := latRangeRe.FindStringSubmatch(text)
	lo := lonRangeRe.FindStringSubmatch(text)
	if la == nil || lo == nil {
		return 0, 0, false
	}
	lat := (dm(la[1], la[2], "") + dm(la[3], la[4], "")) / 2
	lon := (dm(lo[1], lo[2], "") + dm(lo[3], lo[4], "")) / 2
	return hemisphere(lat, la[5]), hemisphere(lon, lo[5]), true
}

func degreeMinutePoint(text string) (float64, float64, bool) {
	la := latPointRe.FindStringSubmatch(text)
	lo := lonPointRe.FindStringSubmatch(text)
	if la == nil || lo == nil {
		return 0, 0, false
	}
	lat := hemisphere(dm(la[1], la[2], la[3]), la[4])
	lon := hemisphere(dm(lo[1], lo[2], lo[3]), lo[4])
	return lat, lon, true
}

func decimalScan(text string) (float64, float64, bool) {
	for _, m := range decimalPairRe.FindAllStringSubmatch(text, -1) {
		if lat, lon, ok := parsePair(m[1], m[2]); ok && InRange(lat, lon) {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

func parsePair(a, b string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// dm converts degrees, minutes and optional seconds to decimal degrees.
func dm(deg, mins, secs string) float64 {
	d, _ := strconv.ParseFloat(deg, 64)
	m, _ := strconv.ParseFloat(mins, 64)
	s, _ := strconv.ParseFloat(secs, 64)
	return d + m/60 + s/3600
}

func hemisphere(v float64, dir string) float64 {
	switch strings.ToUpper(dir) {
	case "S", "W":
		return -v
	}
	return v
}
