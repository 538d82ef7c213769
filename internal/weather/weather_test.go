// oreon/lumen · watchthelight <wtl>

package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, apiKey string) *Provider {
	t.Helper()
	return NewProvider(apiKey, filepath.Join(t.TempDir(), "weather.json"), nil, nil)
}

const owmBody = `{"weather":[{"main":"Rain","description":"light rain"}],"main":{"temp":7.3}}`

func TestCurrentLiveFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(owmBody))
	}))
	defer server.Close()

	p := newTestProvider(t, "test-key")
	p.baseURL = server.URL

	snap, ok := p.Current(context.Background(), 51.5, -0.1)
	require.True(t, ok)
	assert.Equal(t, ConditionRain, snap.Condition)
	assert.Equal(t, "light rain", snap.Description)
	assert.InDelta(t, 7.3, snap.TempC, 1e-9)
	assert.False(t, snap.Stale)

	// Cache file is rewritten on success.
	_, err := os.Stat(p.cachePath)
	assert.NoError(t, err)
}

func TestCurrentServesCacheOnFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(owmBody))
			return
		}
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	p := newTestProvider(t, "test-key")
	p.baseURL = server.URL

	_, ok := p.Current(context.Background(), 51.5, -0.1)
	require.True(t, ok)

	snap, ok := p.Current(context.Background(), 51.5, -0.1)
	require.True(t, ok, "cached snapshot should be served after a failed fetch")
	assert.Equal(t, ConditionRain, snap.Condition)
	assert.True(t, snap.Stale)
}

func TestCurrentNoKeyNoCache(t *testing.T) {
	p := newTestProvider(t, "")

	_, ok := p.Current(context.Background(), 51.5, -0.1)
	assert.False(t, ok)
}

func TestCurrentNoKeyWithCache(t *testing.T) {
	p := newTestProvider(t, "")
	snap := Snapshot{Condition: ConditionClear, TempC: 20}
	p.cache(snap)

	got, ok := p.Current(context.Background(), 51.5, -0.1)
	require.True(t, ok)
	assert.Equal(t, ConditionClear, got.Condition)
	assert.True(t, got.Stale)
}

func TestCurrentCorruptCache(t *testing.T) {
	p := newTestProvider(t, "")
	require.NoError(t, os.WriteFile(p.cachePath, []byte("{broken"), 0o644))

	_, ok := p.Current(context.Background(), 51.5, -0.1)
	assert.False(t, ok, "corrupt cache must count as a miss")
}

func TestPrecipitating(t *testing.T) {
	for _, cond := range []string{ConditionRain, ConditionDrizzle, ConditionThunderstorm} {
		assert.True(t, Snapshot{Condition: cond}.Precipitating(), cond)
	}
	assert.False(t, Snapshot{Condition: ConditionClear}.Precipitating())
	assert.False(t, Snapshot{Condition: "Clouds"}.Precipitating())
}
