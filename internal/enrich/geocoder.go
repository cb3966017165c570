package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/extract"
)

const maxGeocodeBody = 1 << 20

// Geocoder resolves place names through a Nominatim-compatible search endpoint.
type Geocoder struct {
	endpoint  string
	userAgent string
	client    *http.Client
	cache     Cache
	logger    *zap.Logger
}

// NewGeocoder builds a geocoder from cfg. cache may be nil.
func NewGeocoder(cfg common.GeocodeConfig, client *http.Client, cache Cache, logger *zap.Logger) *Geocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Geocoder{
		endpoint:  cfg.URL,
		userAgent: cfg.UserAgent,
		client:    client,
		cache:     cache,
		logger:    logger,
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup returns the first match for place.
func (g *Geocoder) Lookup(ctx context.Context, place string) (lat, lon float64, ok bool) {
	place = strings.TrimSpace(place)
	if place == "" {
		return 0, 0, false
	}
	key := cacheKey(place)
	if g.cache != nil {
		if v, hit := g.cache.Get(ctx, key); hit {
			if lat, lon, ok := extract.ParseCoordinates(v); ok {
				g.logger.Debug("geocode.cache.hit", zap.String("place", place))
				return lat, lon, true
			}
		}
	}

	lat, lon, err := g.search(ctx, place)
	if err != nil {
		g.logger.Warn("geocode.lookup.failed", zap.String("place", place), zap.Error(err))
		return 0, 0, false
	}
	if g.cache != nil {
		g.cache.Set(ctx, key, extract.FormatCoordinates(lat, lon))
	}
	return lat, lon, true
}

func (g *Geocoder) search(ctx context.Context, place string) (float64, float64, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	reqID := uuid.New().String()
	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.Warn("geocode.http.response_body_close_error", zap.String("req_id", reqID), zap.Error(err))
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGeocodeBody))
	if err != nil {
		return 0, 0, fmt.Errorf("read body: %w", err)
	}
	g.logger.Debug("geocode.http.response",
		zap.String("req_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode/100 != 2 {
		return 0, 0, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(raw, &places); err != nil {
		return 0, 0, fmt.Errorf("decode: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("no match")
	}
	lat, err1 := strconv.ParseFloat(places[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(places[0].Lon, 64)
	if err1 != nil || err2 != nil || !extract.InRange(lat, lon) {
		return 0, 0, fmt.Errorf("invalid coordinates %q,%q", places[0].Lat, places[0].Lon)
	}
	return lat, lon, nil
}

// Enrich fills coordinates from the location name when none were recovered.
func (g *Geocoder) Enrich(ctx context.Context, fs extract.Fields) (extract.Fields, bool) {
	if fs.Has(constants.FieldCoordinates) {
		return nil, false
	}
	place, ok := fs.Text(constants.FieldLocation)
	if !ok {
		return nil, false
	}
	lat, lon, ok := g.Lookup(ctx, place)
	if !ok {
		return nil, false
	}
	return extract.Fields{constants.FieldCoordinates: extract.FormatCoordinates(lat, lon)}, true
}
