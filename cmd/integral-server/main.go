// cmd/integral-server/main.go: HTTP server for the integration service.
//
// Usage:
//
//	go run ./cmd/integral-server -port 8080
//
// Every flag can also be set through the environment: INTEGRAL_PORT,
// INTEGRAL_TIMEOUT, INTEGRAL_LOG_LEVEL, INTEGRAL_STRICT_BOUNDS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/njchilds90/integral"
	"github.com/njchilds90/integral/internal/server"
)

type config struct {
	port         int
	timeout      time.Duration
	logLevel     string
	strictBounds bool
}

func parseConfig(args []string, getenv func(string) string) (config, error) {
	fs := flag.NewFlagSet("integral-server", flag.ContinueOnError)
	cfg := config{}
	fs.IntVar(&cfg.port, "port", 8080, "Port to listen on")
	fs.DurationVar(&cfg.timeout, "timeout", server.DefaultConfig().Timeout, "Per-request integration time budget")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.strictBounds, "strict-bounds", false, "Fail requests whose limits cannot be read")

	// Environment values become flag defaults; explicit flags win.
	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		name := "INTEGRAL_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v := getenv(name); v != "" {
			if err := f.Value.Set(v); err != nil && envErr == nil {
				envErr = fmt.Errorf("%s: %w", name, err)
			}
		}
	})
	if envErr != nil {
		return cfg, envErr
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// logEvent forwards pipeline events to the logger.
func logEvent(logger *slog.Logger) func(context.Context, *capitan.Event) {
	return func(ctx context.Context, e *capitan.Event) {
		id, _ := integral.RequestIDKey.From(e)
		attrs := []any{slog.String("signal", string(e.Signal())), slog.String("request_id", id)}
		switch e.Signal() {
		case integral.RequestFailed, integral.StageFailed:
			reason, _ := integral.ReasonKey.From(e)
			kind, _ := integral.KindKey.From(e)
			detail, _ := integral.ErrorKey.From(e)
			stage, _ := integral.StageKey.From(e)
			attrs = append(attrs, slog.String("kind", kind), slog.String("reason", reason),
				slog.String("stage", stage), slog.String("detail", detail))
			level := slog.LevelDebug
			if kind == integral.KindInternal.String() {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "integration event", attrs...)
		case integral.RequestCompleted:
			mode, _ := integral.ModeKey.From(e)
			ms, _ := integral.DurationKey.From(e)
			logger.Debug("integration event", append(attrs, slog.String("mode", mode), slog.Int("duration_ms", ms))...)
		default:
			logger.Debug("integration event", attrs...)
		}
	}
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.logLevel)}))
	slog.SetDefault(logger)

	observer := capitan.Observe(logEvent(logger))
	defer observer.Close()

	svc := integral.NewService(integral.NewEnv(integral.Options{StrictBounds: cfg.strictBounds}))
	srvCfg := server.DefaultConfig()
	srvCfg.Timeout = cfg.timeout

	addr := fmt.Sprintf(":%d", cfg.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(svc, srvCfg, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("integral server listening",
		slog.String("addr", addr),
		slog.Duration("timeout", cfg.timeout),
		slog.Bool("strict_bounds", cfg.strictBounds),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
