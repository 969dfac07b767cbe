// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/spool"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/stanley"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/w1"
)

const validPayload = "2d 00 4b 46 ff ff 02 10 19 : crc=19 YES\n" +
	"2d 00 4b 46 ff ff 02 10 19 t=22625\n"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "daemon.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o666))
	return filename
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(writeConfig(t, `
interval: 30s
sensors:
  - 10-000802be5d21
spool: /var/lib/stanley-driver/spool.db
archiver:
  url: https://stanley.example.com
  username: driver
  ca-cert: /etc/ssl/stanley.pem
`))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Interval.Duration)
	assert.Equal(t, []string{"10-000802be5d21"}, cfg.Sensors)
	assert.Equal(t, "/var/lib/stanley-driver/spool.db", cfg.Spool)
	assert.Equal(t, "https://stanley.example.com", cfg.Archiver.URL)
	assert.Equal(t, "driver", cfg.Archiver.Username)
	assert.Equal(t, "/etc/ssl/stanley.pem", cfg.Archiver.CACert)
	assert.Equal(t, ":9101", cfg.Listen, "listen gets a default")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(writeConfig(t, `
archiver:
  url: https://stanley.example.com
  username: driver
`))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Interval.Duration)
	assert.Empty(t, cfg.Sensors)
	assert.Empty(t, cfg.Spool)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	testcases := map[string]string{
		"unknown-field": `
intervall: 30s
archiver:
  url: https://stanley.example.com
  username: driver
`,
		"bad-interval": `
interval: soon
archiver:
  url: https://stanley.example.com
  username: driver
`,
		"missing-url": `
archiver:
  username: driver
`,
		"missing-username": `
archiver:
  url: https://stanley.example.com
`,
	}
	for tcName, content := range testcases {
		content := content
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	t.Run("missing-file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		assert.Error(t, err)
	})
}

// testDaemon wires a Daemon to a fake sysfs bus, an in-memory spool, and
// the given archiver.
func testDaemon(t *testing.T, archiverURL string) *Daemon {
	t.Helper()

	busDir := t.TempDir()
	sensorDir := filepath.Join(busDir, "10-000802be5d21")
	require.NoError(t, os.MkdirAll(sensorDir, 0o777))
	require.NoError(t, os.WriteFile(filepath.Join(sensorDir, "w1_slave"), []byte(validPayload), 0o666))

	sp, err := spool.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sp.Close() })

	d := &Daemon{
		cfg: Config{
			Interval: Duration{time.Minute},
			Archiver: ArchiverConfig{URL: archiverURL, Username: "driver"},
		},
		bus:      w1.Bus{Dir: busDir},
		client:   &stanley.Client{BaseURL: archiverURL, Username: "driver", Password: "hunter2"},
		spool:    sp,
		registry: prom.NewRegistry(),
	}
	d.metrics = NewMetrics(d.registry)
	return d
}

func TestSample(t *testing.T) {
	t.Parallel()
	var posts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := testDaemon(t, server.URL)
	d.sample(context.Background())

	assert.Equal(t, int64(1), posts.Load())
	assert.Equal(t, 22.625,
		promtestutil.ToFloat64(d.metrics.Temperature.WithLabelValues("10-000802be5d21")))
	assert.Equal(t, 1.0,
		promtestutil.ToFloat64(d.metrics.Readings.WithLabelValues("10-000802be5d21", "ok")))
	assert.Equal(t, 1.0,
		promtestutil.ToFloat64(d.metrics.PostResults.WithLabelValues("ok")))

	count, err := d.spool.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count, "nothing gets spooled when the archiver is up")
}

func TestSampleSpoolsOnPostFailure(t *testing.T) {
	t.Parallel()
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := testDaemon(t, server.URL)
	ctx := context.Background()

	d.sample(ctx)
	count, err := d.spool.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(d.metrics.Spooled))

	// Once the archiver recovers, the next round drains the spool.
	fail.Store(false)
	d.sample(ctx)
	count, err = d.spool.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, promtestutil.ToFloat64(d.metrics.Spooled))
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	d := &Daemon{
		cfg: Config{Interval: Duration{time.Minute}},
	}

	rec := httptest.NewRecorder()
	d.healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	d.lastSample.Store(time.Now().UnixNano())
	rec = httptest.NewRecorder()
	d.healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
