package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dwelltrack/lumen/internal/config"
	"github.com/dwelltrack/lumen/internal/logger"
	"github.com/dwelltrack/lumen/internal/poller"
	"github.com/dwelltrack/lumen/internal/server"
	"github.com/dwelltrack/lumen/internal/storage"
	"github.com/dwelltrack/lumen/internal/tracker"
)

// Execute implements the go-flags Commander interface for TrackCommand.
// It runs the polling daemon until interrupted.
func (c *TrackCommand) Execute(args []string) error {
	cfg, err := c.loadDaemonConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := c.buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	deviceID, err := cfg.ResolveDeviceID()
	if err != nil {
		return fmt.Errorf("resolve device id: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules, err := store.ListRules(ctx)
	if err != nil {
		return err
	}
	rec := tracker.NewRecorder(store, tracker.NewFilter(rules), tracker.Config{
		MinDuration: cfg.MinDuration(),
		SuspendGap:  cfg.SuspendGap(),
	}, log)

	log.Info().
		Str("device_id", deviceID).
		Str("db", cfg.Storage.Path).
		Dur("poll_interval", cfg.PollInterval()).
		Msg("tracker starting")

	if !c.NoServer {
		port := cfg.Server.Port
		if c.Port != 0 {
			port = c.Port
		}
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		srv := server.New(store, rec, log, c.version)
		go func() {
			if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", addr).Msg("api server stopped")
			}
		}()
	}

	go c.pruneLoop(ctx, store, cfg, log)

	c.pollLoop(ctx, rec, cfg, deviceID, log)

	// Interrupted: close any open segments before exiting.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Flush(flushCtx, time.Now()); err != nil {
		log.Error().Err(err).Msg("flush on shutdown")
	}
	log.Info().Msg("tracker stopped")
	return nil
}

func (c *TrackCommand) loadDaemonConfig() (*config.Config, error) {
	if c.globals != nil && c.globals.Config != "" {
		return config.LoadOrCreateAt(c.globals.Config)
	}
	return config.LoadOrCreate()
}

func (c *TrackCommand) buildLogger(cfg *config.Config) (*logger.Logger, func(), error) {
	level := cfg.Logging.Level
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	if c.globals != nil && c.globals.Verbose {
		level = "debug"
	}

	var w io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}
	return logger.New(w, "tracker", level), closeFn, nil
}

// pollLoop samples the active window at the configured interval and
// feeds the recorder. Returns when ctx is cancelled.
func (c *TrackCommand) pollLoop(ctx context.Context, rec *tracker.Recorder, cfg *config.Config, deviceID string, log *logger.Logger) {
	src := poller.XTool{}
	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			smp, ok := c.sample(ctx, src, cfg, deviceID, now, log)
			if !ok {
				continue
			}
			if err := rec.Submit(ctx, smp); err != nil {
				log.Error().Err(err).Msg("record sample")
			}
		}
	}
}

// sample builds one Sample from the window source, folding idle
// detection into it. Returns ok=false when no usable reading exists.
func (c *TrackCommand) sample(ctx context.Context, src poller.Source, cfg *config.Config, deviceID string, now time.Time, log *logger.Logger) (tracker.Sample, bool) {
	idleFor, err := src.IdleTime(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("idle time unavailable")
	}
	if err == nil && idleFor >= cfg.IdleThreshold() {
		return tracker.Sample{DeviceID: deviceID, IsIdle: true, Time: now}, true
	}

	win, err := src.ActiveWindow(ctx)
	if err != nil {
		// Screen locked or no X session: treat as idle rather than
		// dropping the sample, so dwell time stays continuous.
		log.Debug().Err(err).Msg("active window unavailable")
		return tracker.Sample{DeviceID: deviceID, IsIdle: true, Time: now}, true
	}

	return tracker.Sample{
		DeviceID: deviceID,
		WMClass:  win.WMClass,
		Title:    win.Title,
		Time:     now,
	}, true
}

// pruneLoop applies the retention policy on a fixed schedule.
func (c *TrackCommand) pruneLoop(ctx context.Context, store *storage.Store, cfg *config.Config, log *logger.Logger) {
	if cfg.Retention.Days <= 0 {
		return
	}
	interval := time.Duration(cfg.Retention.PruneIntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -cfg.Retention.Days)
			n, err := store.PurgeOlderThan(ctx, cutoff)
			if err != nil {
				log.Error().Err(err).Msg("retention prune")
				continue
			}
			if n > 0 {
				log.Info().Int64("pruned", n).Time("cutoff", cutoff).Msg("retention prune")
			}
		}
	}
}
