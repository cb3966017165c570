package constants

// Severity is the risk tier stored with every analysis.
type Severity string

// Stable values (store these exact strings in DB).
const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// AnalysisStatus is the outcome of an analysis request.
type AnalysisStatus string

const (
	AnalysisStatusOK           AnalysisStatus = "ok"
	AnalysisStatusInsufficient AnalysisStatus = "insufficient"
)

// LocationMethod records how an upload's location guess was obtained.
type LocationMethod string

const (
	LocationMethodEXIF      LocationMethod = "exif"
	LocationMethodText      LocationMethod = "document"
	LocationMethodGeocoding LocationMethod = "geocoding"
	LocationMethodManual    LocationMethod = "manual_required"
)
