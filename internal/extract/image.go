package extract

import (
	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/document"
)

// FromImage recovers the position embedded in a photograph's EXIF block.
func FromImage(info *document.ImageInfo) Fields {
	fs := Fields{}
	if info == nil || info.GPS == nil {
		return fs
	}
	if InRange(info.GPS.Lat, info.GPS.Lon) {
		fs[constants.FieldLat] = info.GPS.Lat
		fs[constants.FieldLon] = info.GPS.Lon
		fs[constants.FieldCoordinates] = FormatCoordinates(info.GPS.Lat, info.GPS.Lon)
	}
	return fs
}
