package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
)

// GPS is a decimal-degree position read from EXIF.
type GPS struct {
	Lat float64
	Lon float64
}

// String renders the position as "lat,lon".
func (g GPS) String() string {
	return fmt.Sprintf("%.6f,%.6f", g.Lat, g.Lon)
}

// ImageInfo describes a decoded photograph.
type ImageInfo struct {
	Format string
	Width  int
	Height int
	GPS    *GPS
}

// ReadImage decodes the image header and, when present, its EXIF GPS block.
// Images without EXIF are valid; undecodable bytes are an error.
func ReadImage(data []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	info := &ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	if gps, ok := readGPS(data); ok {
		info.GPS = &gps
	}
	return info, nil
}

func readGPS(data []byte) (gps GPS, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			gps, ok = GPS{}, false
		}
	}()
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return GPS{}, false
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return GPS{}, false
	}
	return GPS{Lat: lat, Lon: lon}, true
}
