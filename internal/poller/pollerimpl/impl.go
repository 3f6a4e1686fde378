package pollerimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/dispatcher"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/feed"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/poller"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/repositories/post"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/telegram"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/config"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Feed       feed.Client
	Dispatcher dispatcher.Client
	Telegram   telegram.Client
	PostRepo   post.Repository
	Logger     logger.Logger
	Config     *config.Config
}

type PollerImpl struct {
	Feed       feed.Client
	Dispatcher dispatcher.Client
	Telegram   telegram.Client
	PostRepo   post.Repository
	Logger     logger.Logger
	Config     *config.Config
	Scheduler  gocron.Scheduler
}

func New(opts Opts) *PollerImpl {
	return &PollerImpl{
		Feed:       opts.Feed,
		Dispatcher: opts.Dispatcher,
		Telegram:   opts.Telegram,
		PostRepo:   opts.PostRepo,
		Logger:     opts.Logger,
		Config:     opts.Config,
	}
}

var _ poller.Client = (*PollerImpl)(nil)

func (p *PollerImpl) ensureScheduler() error {
	if p.Scheduler != nil {
		return nil
	}

	loc, err := time.LoadLocation(p.Config.Telegram.Timezone)
	if err != nil {
		loc = time.Local
		p.Logger.Warn("Failed to load configured timezone, using local timezone",
			"timezone", p.Config.Telegram.Timezone, "error", err)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	p.Scheduler = scheduler
	return nil
}

// ScheduleFeedChecking sets up a cron job that polls the feed for new posts
func (p *PollerImpl) ScheduleFeedChecking(ctx context.Context) error {
	if err := p.ensureScheduler(); err != nil {
		return err
	}

	interval := p.Config.Feed.CheckInterval
	p.Logger.Info("Setting up feed check interval", "interval", interval)

	_, err := p.Scheduler.NewJob(
		gocron.CronJob(
			interval,
			false, // Don't use seconds precision
		),
		gocron.NewTask(func() {
			p.Logger.Info("Running scheduled feed check")

			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()

			p.CheckFeed(checkCtx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule feed checking: %w", err)
	}

	p.Scheduler.Start()

	go func() {
		<-ctx.Done()
		p.Logger.Info("Stopping feed scheduler")
		if err := p.Scheduler.Shutdown(); err != nil {
			p.Logger.Error("Failed to shut down feed scheduler", "error", err)
		}
	}()

	return nil
}

// ScheduleDatabaseCleanup sets up a daily job that prunes old delivered posts
func (p *PollerImpl) ScheduleDatabaseCleanup(ctx context.Context) error {
	if err := p.ensureScheduler(); err != nil {
		return err
	}

	_, err := p.Scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0)), // At 3:00 AM
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				p.Logger.Info("Context cancelled, stopping database cleanup job")
				return
			}

			p.Logger.Info("Starting scheduled database cleanup job")

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			rowsDeleted, err := p.PostRepo.CleanupOldRecords(cleanupCtx, p.cleanupAfter())
			if err != nil {
				p.Logger.Error("Failed to clean up old records", "error", err)
				return
			}

			p.Logger.Info("Database cleanup completed successfully", "rows_deleted", rowsDeleted)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule database cleanup: %w", err)
	}

	p.Scheduler.Start()
	return nil
}

func (p *PollerImpl) cleanupAfter() time.Duration {
	d, err := time.ParseDuration(p.Config.Feed.CleanupAfter)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}
