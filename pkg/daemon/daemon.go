// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package daemon

import (
	"context"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dhttp"
	"github.com/datawire/dlib/dlog"
	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/spool"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/stanley"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/w1"
)

// Daemon samples the 1-wire bus on a fixed interval and forwards the
// readings to the archiver, spooling them locally when the archiver is
// unreachable.
type Daemon struct {
	cfg      Config
	bus      w1.Bus
	client   *stanley.Client
	spool    *spool.Spool
	registry *prom.Registry
	metrics  *Metrics

	lastSample atomic.Int64
}

// New builds a Daemon from a validated configuration.  The archiver
// password is taken from the environment, which is scrubbed afterwards.
func New(cfg Config) (*Daemon, error) {
	password, err := stanley.ReadPassword()
	if err != nil {
		return nil, err
	}
	client := &stanley.Client{
		BaseURL:  cfg.Archiver.URL,
		Username: cfg.Archiver.Username,
		Password: password,
	}
	if cfg.Archiver.CACert != "" {
		client, err = client.WithCACert(cfg.Archiver.CACert)
		if err != nil {
			return nil, err
		}
	}

	d := &Daemon{
		cfg:      cfg,
		bus:      w1.Bus{Dir: cfg.BusDir},
		client:   client,
		registry: prom.NewRegistry(),
	}
	d.metrics = NewMetrics(d.registry)

	if cfg.Spool != "" {
		sp, err := spool.Open(cfg.Spool)
		if err != nil {
			return nil, err
		}
		d.spool = sp
	}

	return d, nil
}

// Registry exposes the daemon's metrics registry.
func (d *Daemon) Registry() *prom.Registry {
	return d.registry
}

// Run blocks until the Context is canceled, supervising the sampler and
// the metrics endpoint.
func (d *Daemon) Run(ctx context.Context) error {
	if d.spool != nil {
		defer d.spool.Close()
	}

	grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
		EnableSignalHandling: true,
	})
	grp.Go("sampler", d.runSampler)
	grp.Go("http", d.runHTTP)
	return grp.Wait()
}

func (d *Daemon) runSampler(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "create scheduler")
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(d.cfg.Interval.Duration),
		gocron.NewTask(d.sample, ctx),
		gocron.WithName("sample"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return errors.Wrap(err, "schedule sampling")
	}

	dlog.Infof(ctx, "sampling every %v", d.cfg.Interval.Duration)
	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}

func (d *Daemon) runHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(d.registry))
	mux.HandleFunc("/healthz", d.healthz)

	dlog.Infof(ctx, "listening on %s", d.cfg.Listen)
	sc := &dhttp.ServerConfig{
		Handler: mux,
	}
	return sc.ListenAndServe(ctx, d.cfg.Listen)
}

// healthz reports failure when no sampling round has completed for two
// intervals.
func (d *Daemon) healthz(w http.ResponseWriter, r *http.Request) {
	last := d.lastSample.Load()
	if last == 0 || time.Since(time.Unix(0, last)) > 2*d.cfg.Interval.Duration {
		http.Error(w, "no recent sample", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (d *Daemon) sample(ctx context.Context) {
	ids := d.cfg.Sensors
	if len(ids) == 0 {
		var err error
		ids, err = d.bus.ListSensors()
		if err != nil {
			dlog.Errorf(ctx, "list sensors: %v", err)
			return
		}
	}
	if len(ids) == 0 {
		dlog.Warnf(ctx, "no sensors on the bus")
		d.lastSample.Store(time.Now().UnixNano())
		return
	}

	now := time.Now()
	temperatures := d.bus.ReadAll(ctx, ids)

	readings := make(map[string][]stanley.Reading, len(temperatures))
	for id, temperature := range temperatures {
		if math.IsNaN(temperature) {
			d.metrics.Readings.WithLabelValues(id, "error").Inc()
		} else {
			d.metrics.Readings.WithLabelValues(id, "ok").Inc()
			d.metrics.Temperature.WithLabelValues(id).Set(temperature)
		}
		readings[stanley.SeriesPath(id)] = []stanley.Reading{
			{Time: now, Value: temperature},
		}
	}

	if err := d.post(ctx, readings); err != nil {
		dlog.Errorf(ctx, "post readings: %v", err)
		d.metrics.PostResults.WithLabelValues("error").Inc()
		d.enspool(ctx, readings)
	} else {
		d.metrics.PostResults.WithLabelValues("ok").Inc()
		d.drainSpool(ctx)
	}

	d.lastSample.Store(time.Now().UnixNano())
}

func (d *Daemon) post(ctx context.Context, readings map[string][]stanley.Reading) error {
	timer := prom.NewTimer(d.metrics.PostDuration)
	defer timer.ObserveDuration()
	return d.client.PostReadings(ctx, readings)
}

func (d *Daemon) enspool(ctx context.Context, readings map[string][]stanley.Reading) {
	if d.spool == nil {
		return
	}
	if err := d.spool.Add(ctx, readings); err != nil {
		dlog.Errorf(ctx, "spool readings: %v", err)
	}
	d.updateSpoolGauge(ctx)
}

func (d *Daemon) drainSpool(ctx context.Context) {
	if d.spool == nil {
		return
	}
	count, err := d.spool.Drain(ctx, d.client.PostReadings)
	if err != nil {
		dlog.Warnf(ctx, "drain spool: %v", err)
	} else if count > 0 {
		dlog.Infof(ctx, "delivered %d spooled readings", count)
	}
	d.updateSpoolGauge(ctx)
}

func (d *Daemon) updateSpoolGauge(ctx context.Context) {
	count, err := d.spool.Count(ctx)
	if err != nil {
		dlog.Warnf(ctx, "count spool: %v", err)
		return
	}
	d.metrics.Spooled.Set(float64(count))
}
