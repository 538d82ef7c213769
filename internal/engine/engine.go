// oreon/lumen · watchthelight <wtl>

// Package engine decides the target display temperature from time of day and
// weather. The decision itself is pure; providers and the clock are injected.
package engine

import (
	"context"
	"time"

	"github.com/oreonproject/lumen/internal/weather"
)

// Temperature presets in Kelvin.
const (
	DayClear     = 6500
	DayCloudy    = 5800
	DayRainy     = 5200
	NightDefault = 4200
	NightCold    = 3800

	// Manual-mode presets. The filter toggle chooses between these; the
	// automatic path never uses them.
	ManualOn  = 5000
	ManualOff = 6500
)

// ColdNightThresholdC: below this ambient temperature a clear night still
// gets the coldest preset. The rule is strictly-less-than.
const ColdNightThresholdC = 5.0

// IsNight reports whether t falls in the night period [20:00, 06:00) UTC.
func IsNight(t time.Time) bool {
	h := t.UTC().Hour()
	return h < 6 || h >= 20
}

// Period renders the day/night period for notifications and status output.
func Period(t time.Time) string {
	if IsNight(t) {
		return "night"
	}
	return "day"
}

// LocationSource yields current coordinates. Implementations never fail;
// they fall back to cached or fixed coordinates.
type LocationSource interface {
	Coordinates(ctx context.Context) (lat, lon float64)
}

// WeatherSource yields current conditions; ok is false when neither live nor
// cached data exists.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (weather.Snapshot, bool)
}

// Decider computes the automatic-mode target temperature.
type Decider struct {
	location LocationSource
	weather  WeatherSource
	now      func() time.Time
}

// NewDecider creates a decider. A nil now defaults to time.Now.
func NewDecider(location LocationSource, weather WeatherSource, now func() time.Time) *Decider {
	if now == nil {
		now = time.Now
	}
	return &Decider{location: location, weather: weather, now: now}
}

// Target returns the temperature automatic mode should apply right now.
func (d *Decider) Target(ctx context.Context) int {
	lat, lon := d.location.Coordinates(ctx)
	snap, ok := d.weather.Current(ctx, lat, lon)
	return Decide(d.now(), snap, ok)
}

// Weather exposes the current snapshot for status output.
func (d *Decider) Weather(ctx context.Context) (weather.Snapshot, bool) {
	lat, lon := d.location.Coordinates(ctx)
	return d.weather.Current(ctx, lat, lon)
}

// Decide is the pure decision table.
//
// Without weather data the period default applies. At night, precipitation
// or an ambient temperature below the cold threshold selects the coldest
// preset. By day, clear skies get the full preset, precipitation the rainy
// one, and everything else counts as cloudy.
func Decide(now time.Time, snap weather.Snapshot, haveWeather bool) int {
	night := IsNight(now)

	if !haveWeather {
		if night {
			return NightDefault
		}
		return DayClear
	}

	if night {
		if snap.Precipitating() {
			return NightCold
		}
		if snap.TempC < ColdNightThresholdC {
			return NightCold
		}
		return NightDefault
	}

	switch {
	case snap.Condition == weather.ConditionClear:
		return DayClear
	case snap.Precipitating():
		return DayRainy
	default:
		return DayCloudy
	}
}
