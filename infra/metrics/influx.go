package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
	"github.com/kilianp07/patrolsim/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving run points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes simulation records to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
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

func runPoint(rec coremetrics.RunRecord) *write.Point {
	return write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", rec.RunID).
		AddTag("period", periodTag(rec.Year, rec.Month, rec.Day)).
		AddTag("headquarters", strconv.Itoa(rec.HQ)).
		AddField("agents", rec.Agents).
		AddField("incidents", rec.Incidents).
		AddField("mishandled", rec.Mishandled).
		AddField("no_agent", rec.NoAgent).
		AddField("late", rec.Late).
		AddField("elapsed_ms", round3(rec.Elapsed.Seconds()*1000)).
		SetTime(rec.Time)
}

// RecordRun writes one simulation_run point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(rec))
}

// RecordGraph writes one graph_built point.
func (s *InfluxSink) RecordGraph(ev coremetrics.GraphEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("graph_built").
		AddTag("year", strconv.Itoa(ev.Year)).
		AddField("vertices", ev.Vertices).
		AddField("edges", ev.Edges).
		AddField("excluded", ev.Excluded).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSweep writes one sweep_point per agent count in a single request.
func (s *InfluxSink) RecordSweep(points []coremetrics.SweepPoint) error {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ps := make([]*write.Point, 0, len(points))
	for _, sp := range points {
		ps = append(ps, write.NewPointWithMeasurement("sweep_point").
			AddTag("period", periodTag(sp.Year, sp.Month, sp.Day)).
			AddTag("agents", strconv.Itoa(sp.Agents)).
			AddField("trials", sp.Trials).
			AddField("mean", round3(sp.Mean)).
			AddField("stddev", round3(sp.StdDev)).
			SetTime(sp.Time))
	}
	return s.writeAPI.WritePoint(ctx, ps...)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func periodTag(y, m, d int) string {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
