package feedimpl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/feed/feedimpl"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/config"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/logger"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>V2EX</title>
  <entry>
    <title>Newest post</title>
    <link rel="alternate" type="text/html" href="https://www.v2ex.com/t/2"/>
    <id>tag:www.v2ex.com,2024:/t/2</id>
    <published>2024-05-06T03:00:00Z</published>
    <updated>2024-05-06T04:00:00Z</updated>
    <author>
      <name>alice</name>
      <uri>https://www.v2ex.com/member/alice</uri>
    </author>
    <category term="jobs" label="酷工作"/>
    <content type="html">&lt;p&gt;body &lt;script&gt;x()&lt;/script&gt;text&lt;/p&gt;</content>
  </entry>
  <entry>
    <title>Older post</title>
    <link rel="alternate" type="text/html" href="https://www.v2ex.com/t/1"/>
    <id>tag:www.v2ex.com,2024:/t/1</id>
    <published>2024-05-06T01:00:00Z</published>
  </entry>
</feed>`

func newFeed(url string) *feedimpl.FeedImpl {
	cfg := &config.Config{}
	cfg.Feed.URL = url
	return feedimpl.New(feedimpl.Opts{
		Config: cfg,
		Logger: logger.New(logger.Opts{}),
	})
}

func TestFetchLatestMapsEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomFixture))
	}))
	defer srv.Close()

	posts, err := newFeed(srv.URL).FetchLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Oldest first.
	assert.Equal(t, "Older post", posts[0].Title)
	assert.Equal(t, "https://www.v2ex.com/t/1", posts[0].Link)

	newest := posts[1]
	assert.Equal(t, "Newest post", newest.Title)
	assert.Equal(t, "https://www.v2ex.com/t/2", newest.Link)
	assert.Equal(t, "alice", newest.AuthorName)
	assert.Equal(t, "https://www.v2ex.com/member/alice", newest.AuthorURI)
	assert.Equal(t, "酷工作", newest.NodeName)
	assert.Equal(t, time.Date(2024, 5, 6, 3, 0, 0, 0, time.UTC), newest.Published)
	assert.Equal(t, time.Date(2024, 5, 6, 4, 0, 0, 0, time.UTC), newest.Updated)
	// Content is sanitized on the way in.
	assert.Equal(t, "body text", newest.Content)
}

func TestFetchLatestBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newFeed(srv.URL).FetchLatest(context.Background())
	assert.Error(t, err)
}
