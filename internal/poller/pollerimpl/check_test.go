package pollerimpl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/poller/pollerimpl"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/config"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/logger"
)

type fakeFeed struct {
	posts []domain.PostPayload
	err   error
}

func (f *fakeFeed) FetchLatest(context.Context) ([]domain.PostPayload, error) {
	return f.posts, f.err
}

type fakeDispatcher struct {
	dispatched []string
	failLinks  map[string]error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, post domain.PostPayload) error {
	if err := f.failLinks[post.Link]; err != nil {
		return err
	}
	f.dispatched = append(f.dispatched, post.Link)
	return nil
}

type fakeRepo struct {
	seen    map[string]bool
	created []string
}

func (f *fakeRepo) Create(_ context.Context, post domain.PostPayload) error {
	f.created = append(f.created, post.Link)
	return nil
}

func (f *fakeRepo) Exists(_ context.Context, link string) (bool, error) {
	return f.seen[link], nil
}

func (f *fakeRepo) CleanupOldRecords(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type fakeTelegram struct {
	userMessages []string
}

func (f *fakeTelegram) SendChannelMessage(string) error { return nil }
func (f *fakeTelegram) SendMessageToUser(msg string)    { f.userMessages = append(f.userMessages, msg) }

func newPoller(feed *fakeFeed, disp *fakeDispatcher, repo *fakeRepo, tg *fakeTelegram) *pollerimpl.PollerImpl {
	cfg := &config.Config{}
	cfg.Telegram.Timezone = "UTC"
	return pollerimpl.New(pollerimpl.Opts{
		Feed:       feed,
		Dispatcher: disp,
		Telegram:   tg,
		PostRepo:   repo,
		Logger:     logger.New(logger.Opts{}),
		Config:     cfg,
	})
}

func TestCheckFeedDispatchesOnlyUnseenPosts(t *testing.T) {
	feed := &fakeFeed{posts: []domain.PostPayload{
		{Title: "old", Link: "https://x/1"},
		{Title: "new", Link: "https://x/2"},
	}}
	disp := &fakeDispatcher{}
	repo := &fakeRepo{seen: map[string]bool{"https://x/1": true}}
	tg := &fakeTelegram{}

	newPoller(feed, disp, repo, tg).CheckFeed(context.Background())

	assert.Equal(t, []string{"https://x/2"}, disp.dispatched)
	assert.Equal(t, []string{"https://x/2"}, repo.created)
	assert.Empty(t, tg.userMessages)
}

func TestCheckFeedFailedDispatchNotMarkedSeen(t *testing.T) {
	feed := &fakeFeed{posts: []domain.PostPayload{
		{Title: "bad", Link: "https://x/1"},
		{Title: "good", Link: "https://x/2"},
	}}
	disp := &fakeDispatcher{failLinks: map[string]error{
		"https://x/1": errors.New("send failed"),
	}}
	repo := &fakeRepo{seen: map[string]bool{}}
	tg := &fakeTelegram{}

	newPoller(feed, disp, repo, tg).CheckFeed(context.Background())

	// The failing post is skipped but the rest of the batch still goes out.
	assert.Equal(t, []string{"https://x/2"}, disp.dispatched)
	assert.Equal(t, []string{"https://x/2"}, repo.created)
}

func TestCheckFeedFetchErrorNotifiesAdmin(t *testing.T) {
	feed := &fakeFeed{err: errors.New("network down")}
	disp := &fakeDispatcher{}
	repo := &fakeRepo{}
	tg := &fakeTelegram{}

	newPoller(feed, disp, repo, tg).CheckFeed(context.Background())

	assert.Empty(t, disp.dispatched)
	assert.Len(t, tg.userMessages, 1)
}
