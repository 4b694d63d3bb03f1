package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/desktop"
	"github.com/sandeepkv93/remindd/internal/metrics"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/tasks"
	"github.com/sandeepkv93/remindd/internal/update"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "remindd failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("remindd", flag.ContinueOnError)
	defaultConfig := os.Getenv("REMINDD_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "remindd.yaml"
	}
	configPath := fs.String("config", defaultConfig, "YAML config file (missing file means defaults)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := fs.Args()
	switch {
	case len(rest) == 0:
		return runTUI(ctx, cfg)
	case rest[0] == "daemon":
		return runDaemon(ctx, cfg)
	default:
		return runOnce(ctx, cfg, strings.Join(rest, " "), stdout)
	}
}

// runTUI owns the terminal, so logs go to the configured file.
func runTUI(ctx context.Context, cfg config.Config) error {
	a, err := newApp(ctx, cfg, cfg.LogFile)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	notify.NewGate(a.engine, notify.DefaultChannel, a.logger).EnsurePermission(ctx)

	m := update.NewModel(update.Deps{
		Service:  a.service,
		Tester:   a.scheduler,
		Purger:   a.canceller,
		Alarms:   a.engine.C(),
		Notifier: a.notifier,
		Channels: a.engine.Channel,
		Logger:   a.logger.WithPrefix("tui"),
	})
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// runDaemon delivers alarms headlessly and serves /metrics.
func runDaemon(ctx context.Context, cfg config.Config) error {
	a, err := newApp(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.engine.Start(ctx); err != nil {
		return err
	}

	// Alarms fire on the default channel, which only exists once the gate
	// has run.
	if !notify.NewGate(a.engine, notify.DefaultChannel, a.logger).EnsurePermission(ctx) {
		a.logger.Warn("desktop notifications unavailable; alarms will only be logged",
			"desktop_notifications", cfg.DesktopNotifications)
	}

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(a), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.logger.Info("serving metrics", "addr", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server", "err", err)
		}
	}()

	go syncLoop(ctx, a)

	a.logger.Info("daemon started", "pending", len(a.engine.Pending()))
	delivered := desktop.Deliver(ctx, a.engine.C(), a.notifier, a.engine.Channel, a.logger.WithPrefix("desktop"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	a.logger.Info("daemon stopped", "delivered", delivered, "dropped", a.engine.Dropped())
	return nil
}

func metricsMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// syncLoop picks up alarms armed or disarmed by one-shot commands.
func syncLoop(ctx context.Context, a *app) {
	ticker := time.NewTicker(a.cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			added, dropped, err := a.engine.Sync(ctx)
			if err != nil {
				a.logger.Error("sync alarms", "err", err)
				continue
			}
			if added+dropped > 0 {
				a.logger.Info("alarms synced", "added", added, "dropped", dropped)
			}
		}
	}
}

// runOnce executes a single command against the store. The engine is
// restored but never started, so nothing fires from a one-shot process. The
// test notification goes through its own storeless engine and is waited for.
func runOnce(ctx context.Context, cfg config.Config, line string, stdout io.Writer) error {
	a, err := newApp(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := a.engine.Restore(ctx); err != nil {
		return err
	}

	cmd, err := commands.Parse(line, time.Now())
	if err != nil {
		return err
	}
	if cmd.Type == commands.TypeTest {
		return runTest(ctx, a, stdout)
	}

	res, err := commands.Execute(ctx, cmd, commands.Bind(a.service, a.scheduler, a.canceller))
	if err != nil {
		return errors.New(tasks.UserMessage(err))
	}
	fmt.Fprintln(stdout, res.Message)
	if cmd.Type == commands.TypeList || cmd.Type == commands.TypeAdd || cmd.Type == commands.TypeDelete {
		printTasks(stdout, res.Tasks, time.Now())
	}
	return nil
}

// runTest arms a test alert and stays up until it has been shown.
func runTest(ctx context.Context, a *app, stdout io.Writer) error {
	engine, sched := a.testScheduler()
	defer engine.Stop()

	handle, err := sched.ScheduleTest(ctx)
	if err != nil {
		return err
	}
	if err := engine.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "test notification armed, firing in %s\n", notify.TestDelay)

	ctx, cancel := context.WithTimeout(ctx, notify.TestDelay+10*time.Second)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("test notification not delivered: %w", ctx.Err())
		case alarm, ok := <-engine.C():
			if !ok {
				return errors.New("engine stopped before the test notification fired")
			}
			if err := desktop.Show(ctx, alarm, a.notifier, engine.Channel); err != nil {
				a.logger.Error("show notification", "handle", alarm.Handle, "err", err)
			}
			if alarm.Handle == handle {
				fmt.Fprintf(stdout, "%s %s\n", alarm.Payload.Title, alarm.Payload.Body)
				return nil
			}
		}
	}
}

func printTasks(w io.Writer, list []model.Task, now time.Time) {
	if len(list) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tDEADLINE\tALARMS\tNAME\t")
	for _, t := range list {
		state := ""
		switch {
		case t.IsOverdue(now):
			state = " (overdue)"
		case t.IsNearDeadline(now):
			state = " (due soon)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t%d\t%s\t\n",
			commands.ShortID(t.ID), t.Priority.Label(), t.Deadline.Local().Format("2006-01-02 15:04"), state,
			len(t.NotificationHandles), t.Name)
	}
	_ = tw.Flush()
}
