// Package metrics pushes batch run tallies to a Prometheus pushgateway.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kimseungO/news-sum/internal/config"
	"github.com/kimseungO/news-sum/internal/ports"
)

const namespace = "newsdigest"

// runGauges is the set pushed for one operation. The operation is carried
// by the grouping key, so metric names stay label-free apart from the tally.
type runGauges struct {
	tally          *prometheus.GaugeVec
	duration       prometheus.Gauge
	lastCompletion prometheus.Gauge
}

func newRunGauges(subsystem, tallyHelp, tallyLabel string) runGauges {
	return runGauges{
		tally: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items",
			Help:      tallyHelp,
		}, []string{tallyLabel}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastCompletion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_completion_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Pusher records gauges per operation and pushes them after each run.
// With no gateway URL the gauges are still updated but nothing is sent.
type Pusher struct {
	url    string
	job    string
	client *http.Client

	load      runGauges
	summarize runGauges
}

var _ ports.RunRecorder = (*Pusher)(nil)

// NewPusher builds the recorder for cfg.
func NewPusher(cfg config.MetricsConfig) *Pusher {
	job := cfg.Job
	if job == "" {
		job = namespace
	}
	return &Pusher{
		url:       cfg.PushgatewayURL,
		job:       job,
		client:    &http.Client{Timeout: 10 * time.Second},
		load:      newRunGauges("load", "Rows handled by the last raw load, by result", "result"),
		summarize: newRunGauges("summarize", "Clusters handled by the last summarizer run, by state", "state"),
	}
}

// Enabled reports whether a gateway is configured.
func (p *Pusher) Enabled() bool {
	return p.url != ""
}

// RecordLoad implements ports.RunRecorder.
func (p *Pusher) RecordLoad(ctx context.Context, inserted, updated, failed int, took time.Duration) error {
	p.load.tally.WithLabelValues("inserted").Set(float64(inserted))
	p.load.tally.WithLabelValues("updated").Set(float64(updated))
	p.load.tally.WithLabelValues("failed").Set(float64(failed))
	return p.push(ctx, "load", p.load, took)
}

// RecordSummarize implements ports.RunRecorder.
func (p *Pusher) RecordSummarize(ctx context.Context, persisted, skipped, failed int, took time.Duration) error {
	p.summarize.tally.WithLabelValues("persisted").Set(float64(persisted))
	p.summarize.tally.WithLabelValues("skipped").Set(float64(skipped))
	p.summarize.tally.WithLabelValues("failed").Set(float64(failed))
	return p.push(ctx, "summarize", p.summarize, took)
}

func (p *Pusher) push(ctx context.Context, operation string, g runGauges, took time.Duration) error {
	g.duration.Set(took.Seconds())
	g.lastCompletion.SetToCurrentTime()

	if !p.Enabled() {
		return nil
	}

	err := push.New(p.url, p.job).
		Client(p.client).
		Grouping("operation", operation).
		Collector(g.tally).
		Collector(g.duration).
		Collector(g.lastCompletion).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push %s metrics: %w", operation, err)
	}
	return nil
}
