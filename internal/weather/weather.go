// oreon/lumen · watchthelight <wtl>

// Package weather fetches current conditions from OpenWeatherMap, falling
// back to the last successful snapshot on disk. The cache has no expiry:
// stale data beats no data for a lighting decision.
package weather

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/oreonproject/lumen/internal/fault"
	"github.com/oreonproject/lumen/pkg/events"
)

const apiURL = "https://api.openweathermap.org/data/2.5/weather"

// Condition categories the decision engine distinguishes. Anything else is
// treated as cloudy.
const (
	ConditionClear        = "Clear"
	ConditionRain         = "Rain"
	ConditionDrizzle      = "Drizzle"
	ConditionThunderstorm = "Thunderstorm"
)

// Snapshot is the weather data the engine needs.
type Snapshot struct {
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	TempC       float64   `json:"temp_c"`
	FetchedAt   time.Time `json:"fetched_at"`
	Stale       bool      `json:"stale,omitempty"` // served from cache after a failed fetch
}

// Precipitating reports whether the condition is one of the rain family.
func (s Snapshot) Precipitating() bool {
	switch s.Condition {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm:
		return true
	}
	return false
}

// Provider fetches and caches weather snapshots.
type Provider struct {
	apiKey    string
	cachePath string
	client    *http.Client
	baseURL   string
	logger    *slog.Logger
	emitter   *events.Emitter
}

// NewProvider creates a weather provider. An empty apiKey disables live
// fetches; the provider then answers from cache or reports no data.
func NewProvider(apiKey, cachePath string, logger *slog.Logger, emitter *events.Emitter) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	return &Provider{
		apiKey:    apiKey,
		cachePath: cachePath,
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   apiURL,
		logger:    logger,
		emitter:   emitter,
	}
}

type apiResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current returns the weather at the given coordinates. On any failure it
// serves the last cached snapshot; ok is false only when there is neither
// live nor cached data.
func (p *Provider) Current(ctx context.Context, lat, lon float64) (Snapshot, bool) {
	evt := events.StartFetch("weather")
	defer func() { p.emitter.Emit(evt.End()) }()

	if p.apiKey == "" {
		evt.SetError(fault.Newf(fault.KindConfig, "no openweather API key configured"))
		return p.cached(evt)
	}

	snap, err := p.fetch(ctx, lat, lon)
	if err != nil {
		evt.SetError(err)
		p.logger.Warn("weather fetch failed, trying cache", "error", err)
		return p.cached(evt)
	}
	p.cache(snap)
	return snap, true
}

func (p *Provider) fetch(ctx context.Context, lat, lon float64) (Snapshot, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", p.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Snapshot{}, fault.New(fault.KindNetwork, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Snapshot{}, fault.New(fault.KindNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fault.Newf(fault.KindNetwork, "weather API: %s", resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, fault.New(fault.KindNetwork, err)
	}
	if len(body.Weather) == 0 {
		return Snapshot{}, fault.Newf(fault.KindNetwork, "weather API: empty conditions")
	}

	return Snapshot{
		Condition:   body.Weather[0].Main,
		Description: body.Weather[0].Description,
		TempC:       body.Main.Temp,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func (p *Provider) cache(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err == nil {
		err = os.WriteFile(p.cachePath, data, 0o644)
	}
	if err != nil {
		p.logger.Warn("could not cache weather", "path", p.cachePath, "error", err)
	}
}

func (p *Provider) cached(evt *events.FetchBuilder) (Snapshot, bool) {
	data, err := os.ReadFile(p.cachePath)
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn("weather cache malformed", "path", p.cachePath,
			"error", fault.New(fault.KindCache, err))
		return Snapshot{}, false
	}
	snap.Stale = true
	evt.CacheHit(true)
	return snap, true
}
