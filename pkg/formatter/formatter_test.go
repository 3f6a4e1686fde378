package formatter_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/domain"
	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/formatter"
)

func shanghai(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return loc
}

func TestFormatFullPayload(t *testing.T) {
	published := time.Date(2024, 5, 6, 3, 0, 0, 0, time.UTC)
	p := domain.PostPayload{
		Title:      "Hello <World>",
		Link:       "https://www.v2ex.com/t/1",
		NodeName:   "分享创造",
		Content:    "<b>bold body</b>",
		Published:  published,
		AuthorName: "some&one",
		AuthorURI:  "https://www.v2ex.com/member/someone",
	}
	opts := formatter.Options{Location: shanghai(t), ChatTag: " @v2ex_feed"}

	got := formatter.Format(p, opts)

	want := strings.Join([]string{
		"<b>Hello &lt;World&gt;</b>",
		"",
		"<blockquote expandable><b>bold body</b></blockquote>",
		"",
		`作者: <a href="https://www.v2ex.com/member/someone">some&amp;one</a>`,
		"标签: #分享创造 @v2ex_feed",
		// 2024-05-06 03:00 UTC is 11:00 the same Monday in Shanghai.
		"时间: 2024-05-06 11:00:00 周一",
		"链接: https://www.v2ex.com/t/1",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatIsDeterministic(t *testing.T) {
	p := domain.PostPayload{
		Title:     "Hello",
		Link:      "https://x/1",
		NodeName:  "Jobs",
		Published: time.Date(2024, 5, 6, 3, 0, 0, 0, time.UTC),
	}
	opts := formatter.Options{Location: shanghai(t), ChatTag: " @v2ex_feed"}

	first := formatter.Format(p, opts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, formatter.Format(p, opts))
	}
}

func TestFormatEmptyContentUsesPlaceholder(t *testing.T) {
	p := domain.PostPayload{Title: "Hello", Link: "https://x/1"}

	got := formatter.Format(p, formatter.Options{})

	assert.Contains(t, got, "<blockquote expandable>[此贴没有内容～]</blockquote>")
}

func TestFormatAuthorURIWithoutNameIsDropped(t *testing.T) {
	p := domain.PostPayload{
		Title:     "Hello",
		Link:      "https://x/1",
		AuthorURI: "https://www.v2ex.com/member/ghost",
	}

	got := formatter.Format(p, formatter.Options{})

	assert.NotContains(t, got, "作者:")
	assert.NotContains(t, got, "ghost")
}

func TestFormatOptionalLinesAbsent(t *testing.T) {
	p := domain.PostPayload{Title: "Hello", Link: "https://x/1"}

	got := formatter.Format(p, formatter.Options{})

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "<b>Hello</b>", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "链接: https://x/1", lines[4])
}

func TestFormatNodeTagStripped(t *testing.T) {
	p := domain.PostPayload{
		Title:    "Hello",
		Link:     "https://x/1",
		NodeName: "  #Sha re#  ",
	}

	got := formatter.Format(p, formatter.Options{ChatTag: "@c"})

	assert.Contains(t, got, "标签: #Share@c")
}

func TestFormatWeekdayAcrossDayBoundary(t *testing.T) {
	// 17:00 UTC Sunday is 01:00 Monday in Shanghai; the label must follow
	// the converted date, not the source date.
	p := domain.PostPayload{
		Title:     "Hello",
		Link:      "https://x/1",
		Published: time.Date(2024, 5, 5, 17, 0, 0, 0, time.UTC),
	}

	got := formatter.Format(p, formatter.Options{Location: shanghai(t)})

	assert.Contains(t, got, "时间: 2024-05-06 01:00:00 周一")
}

func TestFormatWeekdaySunday(t *testing.T) {
	p := domain.PostPayload{
		Title:     "Hello",
		Link:      "https://x/1",
		Published: time.Date(2024, 5, 5, 1, 0, 0, 0, time.UTC),
	}

	got := formatter.Format(p, formatter.Options{Location: shanghai(t)})

	assert.Contains(t, got, "周日")
}
