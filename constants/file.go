package constants

import "strings"

// Format groups upload extensions by the reader that handles them.
type Format string

const (
	TABULAR Format = "TABULAR"
	PDF     Format = "PDF"
	IMAGE   Format = "IMAGE"
)

// AllowedExtensions holds the upload extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
	"xls":  {},
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedExt reports whether ext (with or without the dot) may be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToFormat returns the reader format for ext, or "" when unsupported.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "csv", "xlsx", "xls":
		return TABULAR
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg":
		return IMAGE
	default:
		return ""
	}
}
