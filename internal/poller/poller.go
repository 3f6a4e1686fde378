package poller

import "context"

type Client interface {
	// ScheduleFeedChecking sets up the recurring feed poll.
	ScheduleFeedChecking(ctx context.Context) error

	// ScheduleDatabaseCleanup sets up the daily prune of old delivered posts.
	ScheduleDatabaseCleanup(ctx context.Context) error

	// CheckFeed runs one poll cycle: fetch, skip seen posts, dispatch the
	// rest and mark the delivered ones.
	CheckFeed(ctx context.Context)
}
