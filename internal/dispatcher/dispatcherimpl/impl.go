package dispatcherimpl

import (
	"time"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/dispatcher"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/ratelimit"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/telegram"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/config"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/formatter"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram telegram.Client
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config
}

// retryConfig holds the resolved retry parameters of the send state machine.
type retryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	FloodMargin    time.Duration
}

type DispatcherImpl struct {
	Telegram telegram.Client
	Limiter  ratelimit.Limiter
	Logger   logger.Logger

	fmtOpts formatter.Options
	retry   retryConfig
}

func New(opts Opts) *DispatcherImpl {
	loc, err := time.LoadLocation(opts.Config.Telegram.Timezone)
	if err != nil {
		loc = time.UTC
		opts.Logger.Warn("Failed to load display timezone, using UTC",
			"timezone", opts.Config.Telegram.Timezone,
			"error", err)
	}

	retry := retryConfig{
		MaxAttempts:    opts.Config.Dispatcher.MaxAttempts,
		InitialBackoff: opts.Config.Dispatcher.InitialBackoff,
		MaxBackoff:     opts.Config.Dispatcher.MaxBackoff,
		FloodMargin:    opts.Config.Dispatcher.FloodMargin,
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 3
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = time.Second
	}
	if retry.MaxBackoff <= 0 {
		retry.MaxBackoff = 30 * time.Second
	}
	if retry.FloodMargin <= 0 {
		retry.FloodMargin = 500 * time.Millisecond
	}

	return &DispatcherImpl{
		Telegram: opts.Telegram,
		Limiter:  opts.Limiter,
		Logger:   opts.Logger.WithComponent("Dispatcher"),
		fmtOpts: formatter.Options{
			Location: loc,
			ChatTag:  opts.Config.Telegram.ChatTag,
		},
		retry: retry,
	}
}

var _ dispatcher.Client = (*DispatcherImpl)(nil)
