package formatter

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
)

// noContentPlaceholder fills the quote block when a post has no body.
const noContentPlaceholder = "[此贴没有内容～]"

// weekdayLabels is ordered Monday first.
var weekdayLabels = [7]string{"一", "二", "三", "四", "五", "六", "日"}

// Options holds the fixed rendering configuration shared by every post.
type Options struct {
	// Location is the display timezone for timestamps.
	Location *time.Location

	// ChatTag is appended verbatim after the node hashtag, e.g. " @v2ex_feed".
	ChatTag string
}

// Format renders a post payload into a Telegram HTML message. It is a pure
// function of the payload and options: same input, same output.
//
// Layout: bold title, blank line, expandable quote body, blank line, then the
// optional author / node / time / link lines. Optional lines are dropped
// entirely when their source field is empty.
func Format(p domain.PostPayload, opts Options) string {
	parts := make([]string, 0, 8)

	parts = append(parts, "<b>"+html.EscapeString(p.Title)+"</b>", "")

	body := p.Content
	if body == "" {
		body = noContentPlaceholder
	}
	parts = append(parts, "<blockquote expandable>"+body+"</blockquote>", "")

	if p.AuthorName != "" {
		parts = append(parts, fmt.Sprintf(`作者: <a href="%s">%s</a>`, p.AuthorURI, html.EscapeString(p.AuthorName)))
	}

	if tag := nodeTag(p.NodeName); tag != "" {
		parts = append(parts, "标签: #"+tag+opts.ChatTag)
	}

	if !p.Published.IsZero() {
		parts = append(parts, "时间: "+formatPublished(p.Published, opts.Location))
	}

	if p.Link != "" {
		parts = append(parts, "链接: "+p.Link)
	}

	return strings.Join(parts, "\n")
}

// nodeTag turns a node name into a hashtag-safe label: whitespace and "#"
// stripped, HTML-escaped.
func nodeTag(name string) string {
	if name == "" {
		return ""
	}
	raw := strings.ReplaceAll(strings.Join(strings.Fields(name), ""), "#", "")
	return strings.TrimSpace(html.EscapeString(raw))
}

// formatPublished renders a timestamp in the display timezone with the
// localized weekday suffix. A timezone-naive source time must already be
// interpreted as UTC by the feed layer.
func formatPublished(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	// time.Weekday is Sunday-based, the label set is Monday-based.
	weekday := (int(local.Weekday()) + 6) % 7
	return local.Format("2006-01-02 15:04:05") + " 周" + weekdayLabels[weekday]
}
