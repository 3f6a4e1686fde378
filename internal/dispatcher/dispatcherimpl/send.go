package dispatcherimpl

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/telegram"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/formatter"
)

// Dispatch is the single external entry point of the delivery pipeline.
func (d *DispatcherImpl) Dispatch(ctx context.Context, post domain.PostPayload) error {
	d.Logger.Debug("Dispatching post", "title", post.Title)

	if err := d.send(ctx, post); err != nil {
		d.Logger.Error("Failed to deliver post",
			"error", err,
			"title", post.Title,
			"link", post.Link,
			"node", post.NodeName,
			"content", post.Content,
			"published", post.Published,
			"updated", post.Updated,
			"author_name", post.AuthorName,
			"author_uri", post.AuthorURI,
		)
		return err
	}

	return nil
}

// send runs the attempt loop: acquire both rate gates, format, send. A flood
// response sleeps the mandated wait plus a safety margin; any other failure
// backs off exponentially with jitter. After MaxAttempts the last underlying
// error is returned unchanged.
func (d *DispatcherImpl) send(ctx context.Context, post domain.PostPayload) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.retry.InitialBackoff
	bo.MaxInterval = d.retry.MaxBackoff
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= d.retry.MaxAttempts; attempt++ {
		if err := d.Limiter.Wait(ctx); err != nil {
			return err
		}

		err := d.Telegram.SendChannelMessage(formatter.Format(post, d.fmtOpts))
		if err == nil {
			d.Logger.Debug("Post delivered", "title", post.Title, "attempt", attempt)
			return nil
		}
		lastErr = err

		if attempt == d.retry.MaxAttempts {
			break
		}

		var wait time.Duration
		var floodErr *telegram.FloodError
		if errors.As(err, &floodErr) {
			wait = floodErr.RetryAfter + d.retry.FloodMargin
			d.Logger.Warn("Flood control hit, honouring mandated wait",
				"title", post.Title,
				"retry_after", floodErr.RetryAfter,
				"wait", wait,
				"attempt", attempt)
		} else {
			wait = bo.NextBackOff()
			d.Logger.Warn("Send failed, backing off",
				"title", post.Title,
				"error", err,
				"next_attempt_in", wait.Round(time.Millisecond).String(),
				"attempt", attempt)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
