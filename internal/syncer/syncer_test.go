package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	conf "github.com/bartek5186/wooexport/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/store/v1/products" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Mug", "prices": {"price": "500", "currency_minor_unit": 2}}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, urls ...string) *conf.Config {
	cfg := conf.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Integrations["woocommerce"] = json.RawMessage(`{"rate_per_minute":0}`)
	for _, u := range urls {
		cfg.Watch = append(cfg.Watch, conf.WatchTarget{URL: u})
	}
	return cfg
}

func TestSyncer_StartWithoutTargets(t *testing.T) {
	s := New(zerolog.Nop(), testConfig(t), nil)

	err := s.Start(context.Background())

	assert.ErrorIs(t, err, conf.ErrNoWatchTargets)
	assert.False(t, s.IsRunning())
}

func TestSyncer_ExportsTargetsOnStart(t *testing.T) {
	srv := store(t)
	cfg := testConfig(t, srv.URL, "ftp://invalid.example")
	s := New(zerolog.Nop(), cfg, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.Eventually(t, func() bool {
		return !s.Status().LastRun.IsZero()
	}, 5*time.Second, 20*time.Millisecond)
	s.Stop()
	s.Stop()

	st := s.Status()
	assert.False(t, st.Running)
	assert.Equal(t, uint64(1), st.Ticks)
	assert.Equal(t, 2, st.Targets)
	assert.Equal(t, time.Hour, st.Interval)
	assert.Contains(t, st.LastErr, "http:// or https://", "failed target is reported, others still run")

	csvs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "127.0.0.1", "*", "woocommerce", "woocommerce-import.csv"))
	require.NoError(t, err)
	assert.Len(t, csvs, 1)
}

func TestSyncer_RunOnce(t *testing.T) {
	srv := store(t)
	cfg := testConfig(t)
	cfg.MaxProducts = 1
	s := New(zerolog.Nop(), cfg, nil)

	res, err := s.RunOnce(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.ProductsDiscovered)
	assert.FileExists(t, res.Files.MetadataJSON)
}

func TestSyncer_UpdateConfigKeepsStoppedState(t *testing.T) {
	s := New(zerolog.Nop(), testConfig(t), nil)
	cfg := testConfig(t)
	cfg.SyncIntervalSeconds = 30

	s.UpdateConfig(cfg)

	assert.False(t, s.IsRunning())
	assert.Equal(t, 30*time.Second, s.Status().Interval)
}
