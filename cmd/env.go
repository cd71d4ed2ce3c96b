package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kilianp07/patrolsim/app"
	"github.com/kilianp07/patrolsim/config"
	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
	"github.com/kilianp07/patrolsim/infra/logger"
	"github.com/kilianp07/patrolsim/infra/metrics"
	_ "github.com/kilianp07/patrolsim/infra/mqtt"
	"github.com/kilianp07/patrolsim/infra/store"
)

// env holds what every subcommand needs.
type env struct {
	cfg   *config.Config
	store *store.SQLiteStore
	sink  coremetrics.MetricsSink
	model *app.Model
	log   logger.Logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New("patrolsim")
	if metricsAddr != "" {
		if _, err := metrics.StartPromServer(ctx, metricsAddr, nil); err != nil {
			return nil, fmt.Errorf("metrics server: %w", err)
		}
	}
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return &env{
		cfg:   cfg,
		store: st,
		sink:  sink,
		model: app.New(st, sink, cfg.Simulation, logger.New("model")),
		log:   log,
	}, nil
}

func (e *env) close() {
	if f, ok := e.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(); err != nil {
			e.log.Errorf("metrics flush: %v", err)
		}
	}
	if err := e.store.Close(); err != nil {
		e.log.Errorf("store close: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
