package telegram

import (
	"fmt"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	// SendChannelMessage delivers an HTML-formatted message to the configured
	// channel with link previews disabled. A flood-control response is
	// returned as *FloodError.
	SendChannelMessage(text string) error

	// SendMessageToUser notifies the configured admin user, best effort.
	SendMessageToUser(message string)
}

// FloodError reports that the API demanded a cooldown before the next send.
type FloodError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *FloodError) Error() string {
	return fmt.Sprintf("telegram flood control: retry after %s", e.RetryAfter)
}

func (e *FloodError) Unwrap() error {
	return e.Err
}
