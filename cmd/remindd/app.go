package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/desktop"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/metrics"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/tasks"
)

// app holds everything one process mode needs.
type app struct {
	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
	backend   storage.Backend
	engine    *scheduler.Engine
	scheduler *notify.Scheduler
	canceller *notify.Canceller
	service   *tasks.Service
	registry  *prometheus.Registry
	notifier  desktop.Notifier

	// shared with the storeless engine of the test command
	authorizer scheduler.Authorizer
	metrics    metrics.Recorder
}

// newApp opens the store and wires the alarm engine and task service. The
// engine is neither restored nor started; each mode decides that.
func newApp(ctx context.Context, cfg config.Config, logPath string) (*app, error) {
	logger, closer, err := logging.New(cfg.LogLevel, logPath)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Driver,
		SQLitePath:  cfg.DBPath,
		PostgresURL: cfg.PostgresURL,
	})
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPromMetrics(registry)

	desktop.ConfigurePresentation(desktop.DefaultPresentation())
	auth := desktop.NewPermission(cfg.DesktopNotifications)
	engine := newEngine(cfg, auth, rec, logger, scheduler.WithStore(backend))

	notifyLog := logger.WithPrefix("notify")
	gate := notify.NewGate(engine, notify.DefaultChannel, notifyLog)
	sched := notify.NewScheduler(engine, gate, notify.WithMetrics(rec), notify.WithLogger(notifyLog))
	canceller := notify.NewCanceller(engine, notify.WithMetrics(rec), notify.WithLogger(notifyLog))
	service := tasks.NewService(
		storage.NewTaskStore(backend, cfg.StoreKey),
		sched,
		canceller,
		tasks.WithLogger(logger.WithPrefix("tasks")),
		tasks.WithMetrics(rec),
	)

	var notifier desktop.Notifier = desktop.Noop{}
	if cfg.DesktopNotifications {
		notifier = desktop.NewExecNotifier()
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
		backend:   backend,
		engine:    engine,
		scheduler: sched,
		canceller: canceller,
		service:   service,
		registry:  registry,
		notifier:  notifier,

		authorizer: auth,
		metrics:    rec,
	}, nil
}

func newEngine(cfg config.Config, auth scheduler.Authorizer, rec metrics.Recorder, logger *log.Logger, opts ...scheduler.Option) *scheduler.Engine {
	opts = append([]scheduler.Option{
		scheduler.WithAuthorizer(auth),
		scheduler.WithMetrics(rec),
		scheduler.WithLogger(logger.WithPrefix("engine")),
	}, opts...)
	return scheduler.NewEngine(cfg.SchedulerBuffer, opts...)
}

// testScheduler wires a scheduler to a fresh engine without a store. Starting
// it fires only the test alert; alarms persisted for tasks stay untouched
// for whichever process delivers them.
func (a *app) testScheduler() (*scheduler.Engine, *notify.Scheduler) {
	engine := newEngine(a.cfg, a.authorizer, a.metrics, a.logger)
	notifyLog := a.logger.WithPrefix("notify")
	gate := notify.NewGate(engine, notify.DefaultChannel, notifyLog)
	return engine, notify.NewScheduler(engine, gate, notify.WithMetrics(a.metrics), notify.WithLogger(notifyLog))
}

func (a *app) Close() error {
	a.engine.Stop()
	return errors.Join(a.backend.Close(), a.logCloser.Close())
}
