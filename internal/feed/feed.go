package feed

import (
	"context"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
)

type Client interface {
	// FetchLatest downloads the configured feed and returns its entries as
	// post payloads, oldest first.
	FetchLatest(ctx context.Context) ([]domain.PostPayload, error)
}
