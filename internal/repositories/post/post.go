package post

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("post already exists")
	ErrNotFound      = errors.New("post not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// Create records a delivered post
	Create(ctx context.Context, post domain.PostPayload) error

	// Exists checks whether a post with the given link was already delivered
	Exists(ctx context.Context, link string) (bool, error)

	// CleanupOldRecords deletes records older than the specified duration and
	// returns the number of rows removed
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
