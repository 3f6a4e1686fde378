package dispatcher

import (
	"context"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
)

type Client interface {
	// Dispatch formats the post and delivers it to the configured channel
	// under rate limiting and bounded retry. The last underlying error is
	// returned once retries are exhausted; no failure is swallowed.
	Dispatch(ctx context.Context, post domain.PostPayload) error
}
