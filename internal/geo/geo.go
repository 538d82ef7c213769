// oreon/lumen · watchthelight <wtl>

// Package geo resolves the machine's coordinates: live IP-geolocation lookup
// first, then the on-disk cache, then a fixed fallback. Lookups are never
// fatal to the caller.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oreonproject/lumen/internal/fault"
	"github.com/oreonproject/lumen/pkg/events"
)

const apiURL = "https://api.ipgeolocation.io/ipgeo"

// Fallback coordinates when neither the API nor the cache can answer.
const (
	FallbackLat     = 51.5074
	FallbackLon     = -0.1278
	FallbackCity    = "London"
	FallbackCountry = "United Kingdom"
)

// Place is the cached location detail record.
type Place struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Provider resolves coordinates with cache and fixed-default fallbacks.
type Provider struct {
	apiKey        string
	coordsCache   string
	locationCache string
	client        *http.Client
	baseURL       string
	logger        *slog.Logger
	emitter       *events.Emitter
}

// NewProvider creates a location provider. An empty apiKey disables live
// lookups; the provider then answers from cache or the fixed fallback.
func NewProvider(apiKey, coordsCache, locationCache string, logger *slog.Logger, emitter *events.Emitter) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	return &Provider{
		apiKey:        apiKey,
		coordsCache:   coordsCache,
		locationCache: locationCache,
		client:        &http.Client{Timeout: 10 * time.Second},
		baseURL:       apiURL,
		logger:        logger,
		emitter:       emitter,
	}
}

// ipgeolocation.io returns numeric fields as JSON strings.
type apiResponse struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	City      string `json:"city"`
	Country   string `json:"country_name"`
}

// Coordinates returns the current latitude and longitude. Resolution order:
// live API (when a key is configured), coordinate cache, fixed fallback.
// A successful live lookup rewrites both cache files.
func (p *Provider) Coordinates(ctx context.Context) (float64, float64) {
	evt := events.StartFetch("geo")
	defer func() { p.emitter.Emit(evt.End()) }()

	if p.apiKey == "" {
		evt.SetError(fault.Newf(fault.KindConfig, "no ipgeolocation API key configured"))
	} else {
		place, err := p.fetch(ctx)
		if err != nil {
			evt.SetError(err)
			p.logger.Warn("geolocation lookup failed, falling back", "error", err)
		} else {
			p.cache(place)
			return place.Lat, place.Lon
		}
	}

	if lat, lon, ok := p.cachedCoordinates(); ok {
		evt.CacheHit(true)
		return lat, lon
	}

	p.logger.Info("using fallback coordinates", "city", FallbackCity)
	return FallbackLat, FallbackLon
}

// LocationDetails returns the cached city and country, or the fixed fallback
// when no cache exists.
func (p *Provider) LocationDetails() Place {
	data, err := os.ReadFile(p.locationCache)
	if err == nil {
		var place Place
		if err := json.Unmarshal(data, &place); err == nil {
			return place
		}
		p.logger.Warn("location cache malformed", "path", p.locationCache,
			"error", fault.New(fault.KindCache, err))
	}
	return Place{City: FallbackCity, Country: FallbackCountry, Lat: FallbackLat, Lon: FallbackLon}
}

// Refresh drops the cache files and forces a fresh lookup.
func (p *Provider) Refresh(ctx context.Context) (float64, float64) {
	os.Remove(p.coordsCache)
	os.Remove(p.locationCache)
	return p.Coordinates(ctx)
}

func (p *Provider) fetch(ctx context.Context) (Place, error) {
	params := url.Values{}
	params.Set("apiKey", p.apiKey)
	params.Set("fields", "latitude,longitude,city,country_name")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Place{}, fault.New(fault.KindNetwork, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Place{}, fault.New(fault.KindNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Place{}, fault.Newf(fault.KindNetwork, "geolocation API: %s", resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fault.New(fault.KindNetwork, err)
	}
	lat, err := strconv.ParseFloat(body.Latitude, 64)
	if err != nil {
		return Place{}, fault.Newf(fault.KindNetwork, "bad latitude %q", body.Latitude)
	}
	lon, err := strconv.ParseFloat(body.Longitude, 64)
	if err != nil {
		return Place{}, fault.Newf(fault.KindNetwork, "bad longitude %q", body.Longitude)
	}

	place := Place{City: body.City, Country: body.Country, Lat: lat, Lon: lon}
	if place.City == "" {
		place.City = "Unknown"
	}
	if place.Country == "" {
		place.Country = "Unknown"
	}
	p.logger.Info("location resolved", "city", place.City, "country", place.Country,
		"lat", lat, "lon", lon)
	return place, nil
}

func (p *Provider) cache(place Place) {
	coords := fmt.Sprintf("%v %v", place.Lat, place.Lon)
	if err := os.WriteFile(p.coordsCache, []byte(coords), 0o644); err != nil {
		p.logger.Warn("could not cache coordinates", "path", p.coordsCache, "error", err)
	}
	data, err := json.Marshal(place)
	if err == nil {
		err = os.WriteFile(p.locationCache, data, 0o644)
	}
	if err != nil {
		p.logger.Warn("could not cache location details", "path", p.locationCache, "error", err)
	}
}

func (p *Provider) cachedCoordinates() (float64, float64, bool) {
	data, err := os.ReadFile(p.coordsCache)
	if err != nil {
		return 0, 0, false
	}
	parts := strings.Fields(string(data))
	if len(parts) != 2 {
		p.logger.Warn("coordinate cache malformed", "path", p.coordsCache)
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(parts[0], 64)
	lon, errLon := strconv.ParseFloat(parts[1], 64)
	if errLat != nil || errLon != nil {
		p.logger.Warn("coordinate cache malformed", "path", p.coordsCache)
		return 0, 0, false
	}
	return lat, lon, true
}
