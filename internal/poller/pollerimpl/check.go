package pollerimpl

import (
	"context"
	"errors"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/repositories/post"
)

// CheckFeed runs one poll cycle. A post is only marked as seen after a
// successful delivery, so a failed send is retried on the next cycle.
func (p *PollerImpl) CheckFeed(ctx context.Context) {
	posts, err := p.Feed.FetchLatest(ctx)
	if err != nil {
		p.Logger.Error("Failed to fetch feed", "error", err)
		p.Telegram.SendMessageToUser("Feed check error:" + err.Error())
		return
	}

	p.Logger.Info("Fetched feed entries", "count", len(posts))

	for _, item := range posts {
		if ctx.Err() != nil {
			return
		}

		exists, err := p.PostRepo.Exists(ctx, item.Link)
		if err != nil {
			p.Logger.Error("Failed to check if post exists", "link", item.Link, "error", err)
			continue
		}
		if exists {
			p.Logger.Debug("Post already delivered", "link", item.Link)
			continue
		}

		if err := p.Dispatcher.Dispatch(ctx, item); err != nil {
			p.Logger.Error("Failed to dispatch post, will retry next cycle",
				"link", item.Link, "error", err)
			continue
		}

		if err := p.PostRepo.Create(ctx, item); err != nil && !errors.Is(err, post.ErrAlreadyExists) {
			p.Logger.Error("Failed to mark post as delivered", "link", item.Link, "error", err)
		}
	}
}
