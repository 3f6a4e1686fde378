package feedimpl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/feed"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/config"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/errors"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/htmlconv"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type FeedImpl struct {
	URL    string
	Client *http.Client
	Logger logger.Logger
}

func New(opts Opts) *FeedImpl {
	return &FeedImpl{
		URL: opts.Config.Feed.URL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: opts.Logger.WithComponent("Feed"),
	}
}

var _ feed.Client = (*FeedImpl)(nil)

// FetchLatest downloads and parses the Atom feed. The dedicated atom parser
// is used instead of the universal one because it preserves the author URI.
func (f *FeedImpl) FetchLatest(ctx context.Context) ([]domain.PostPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build feed request")
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch feed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.Logger.Error("Error closing feed response body", "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			"failed to fetch feed",
		)
	}

	parsed, err := (&atom.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse feed")
	}

	// Feeds list newest first; deliver oldest first.
	posts := make([]domain.PostPayload, 0, len(parsed.Entries))
	for i := len(parsed.Entries) - 1; i >= 0; i-- {
		posts = append(posts, entryToPayload(parsed.Entries[i]))
	}

	f.Logger.Debug("Fetched feed", "url", f.URL, "entries", len(posts))
	return posts, nil
}

func entryToPayload(entry *atom.Entry) domain.PostPayload {
	payload := domain.PostPayload{
		Title: entry.Title,
		Link:  entryLink(entry),
	}

	if entry.PublishedParsed != nil {
		payload.Published = entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		payload.Updated = entry.UpdatedParsed.UTC()
	}

	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		payload.AuthorName = entry.Authors[0].Name
		payload.AuthorURI = entry.Authors[0].URI
	}

	if len(entry.Categories) > 0 && entry.Categories[0] != nil {
		payload.NodeName = entry.Categories[0].Label
		if payload.NodeName == "" {
			payload.NodeName = entry.Categories[0].Term
		}
	}

	if entry.Content != nil {
		payload.Content = htmlconv.ToTelegramHTML(entry.Content.Value, 0)
	}

	return payload
}

func entryLink(entry *atom.Entry) string {
	for _, link := range entry.Links {
		if link == nil {
			continue
		}
		if link.Rel == "" || link.Rel == "alternate" {
			return link.Href
		}
	}
	if len(entry.Links) > 0 && entry.Links[0] != nil {
		return entry.Links[0].Href
	}
	return ""
}
