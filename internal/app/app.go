package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/dispatcher"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/dispatcher/dispatcherimpl"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/feed"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/feed/feedimpl"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/poller"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/poller/pollerimpl"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/ratelimit"
	repositories "github.com/orgball2608/v2ex-feed-telegram-bot/internal/repositories/fx"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/telegram"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/config"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/logger"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/pgx"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		newLimiter,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			feedimpl.New,
			fx.As(new(feed.Client)),
		),
		fx.Annotate(
			dispatcherimpl.New,
			fx.As(new(dispatcher.Client)),
		),
		fx.Annotate(
			pollerimpl.New,
			fx.As(new(poller.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

// newLimiter builds the two shared send gates: one per-chat flood gate and
// one per-minute aggregate gate. Every dispatch call contends on the same
// pair.
func newLimiter(cfg *config.Config) ratelimit.Limiter {
	return ratelimit.NewDualLimiter(
		cfg.Dispatcher.FastSendEvery,
		cfg.Dispatcher.SustainedLimit,
		cfg.Dispatcher.SustainedWindow,
	)
}

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	return goose.Up(db, filepath.Join(wd, "migrations"))
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, tgClient telegram.Client,
	pClient poller.Client) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {

			go startHttpServer(log, cfg)

			ctx := context.Background()
			if err := pClient.ScheduleFeedChecking(ctx); err != nil {
				log.Error("Feed checking error", "error", err)
				tgClient.SendMessageToUser("Feed checking error:" + err.Error())
				return err
			}

			if err := pClient.ScheduleDatabaseCleanup(ctx); err != nil {
				log.Error("Database cleanup scheduling error", "error", err)
				tgClient.SendMessageToUser("Database cleanup scheduling error:" + err.Error())
			}

			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start: %v", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
