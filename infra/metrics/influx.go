package metrics

import (
	"context"
	"math"
	"net/http"
	"slices"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordRun writes one "scheduling_run" point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(ev))
}

func runPoint(ev coremetrics.RunEvent) *write.Point {
	p := write.NewPointWithMeasurement("scheduling_run").
		AddTag("algorithm", ev.Algorithm).
		AddTag("run_id", ev.RunID).
		AddField("received", ev.Received).
		AddField("accepted", ev.Accepted).
		AddField("rejected", ev.Rejected).
		AddField("utilization", round4(ev.Utilization)).
		AddField("steps", ev.Steps).
		AddField("duration_ms", round4(ev.Duration.Seconds()*1000))
	cats := make([]string, 0, len(ev.PerCategory))
	for c := range ev.PerCategory {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	for _, c := range cats {
		p = p.AddField("utilization_"+c, round4(ev.PerCategory[c]))
	}
	return p.SetTime(ev.Time)
}

// RecordOptimizerStep writes one "optimizer_step" point.
func (s *InfluxSink) RecordOptimizerStep(ev coremetrics.OptimizerStepEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimizer_step").
		AddTag("run_id", ev.RunID).
		AddField("step", ev.Step).
		AddField("temperature", ev.Temperature).
		AddField("current", round4(ev.Current)).
		AddField("best", round4(ev.Best)).
		AddField("accepted", ev.Accepted).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordInvalidCommand writes one "invalid_command" point.
func (s *InfluxSink) RecordInvalidCommand(ev coremetrics.InvalidCommandEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("invalid_command").
		AddTag("source", ev.Source).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
