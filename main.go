// Command leetbot runs the 1337 chat game: it scores qualifying
// messages posted inside the daily 13:37 minute, keeps rolling
// day/week/month/year leaderboards, and announces results on schedule.
// It:
//   - Loads configuration and initializes structured logging.
//   - Loads the score snapshot and starts the announcement scheduler.
//   - Joins the configured chat channel and answers !commands.
//   - Exposes a minimal HTTP server with /healthz, /status, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mbhooden/leetbot/announce"
	"github.com/mbhooden/leetbot/bot"
	"github.com/mbhooden/leetbot/chat"
	"github.com/mbhooden/leetbot/config"
	"github.com/mbhooden/leetbot/server"
	"github.com/mbhooden/leetbot/store"
	"github.com/mbhooden/leetbot/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("leetbot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Score snapshot: absent or corrupt state starts empty, never fatal.
	st := store.Open(cfg.ScoresFile)
	st.Load()
	b := bot.New(st)

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := announce.New(b.Query())
	go scheduler.Run(ctx)

	// Chat adapter: blocks on the connection; without credentials the
	// bot still serves HTTP and logs announcements instead of saying them.
	chatDone := make(chan struct{})
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Warn("chat disabled", slog.Any("err", err))
		go func() {
			defer close(chatDone)
			for {
				select {
				case <-ctx.Done():
					return
				case line := <-scheduler.Lines():
					slog.Info("announcement (chat disabled)", slog.String("line", line))
				}
			}
		}()
	} else {
		go func() {
			defer close(chatDone)
			if err := chat.Start(ctx, cfg, b, scheduler.Lines()); err != nil && ctx.Err() == nil {
				slog.Error("chat connection closed", slog.Any("err", err))
				stop()
			}
		}()
	}

	go func() {
		if err := server.Start(ctx, b.Query(), cfg.TwitchChannel, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	<-chatDone
	if err := st.Save(); err != nil {
		slog.Warn("final snapshot write failed", slog.Any("err", err))
	}
	slog.Info("shutting down")
}
