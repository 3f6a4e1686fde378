package domain

import "time"

// PostPayload carries every field of a feed post that can be pushed to the
// channel. It is a value object: built once by the feed layer, handed to the
// dispatcher exactly once and never mutated.
type PostPayload struct {
	Title      string    // Post title, always present
	Link       string    // Absolute URL to the post
	NodeName   string    // Node (category) the post belongs to, may be empty
	Content    string    // Telegram-safe HTML fragment, may be empty
	Published  time.Time // Zero when the feed did not provide it
	Updated    time.Time // Zero when the feed did not provide it
	AuthorName string    // May be empty; AuthorURI is only rendered with it
	AuthorURI  string
}
