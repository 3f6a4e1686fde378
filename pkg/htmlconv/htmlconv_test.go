package htmlconv_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orgball2608/v2ex-feed-telegram-bot/pkg/htmlconv"
)

func TestToTelegramHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", htmlconv.ToTelegramHTML("", 0))
	assert.Equal(t, "", htmlconv.ToTelegramHTML("   \n ", 0))
}

func TestToTelegramHTMLKeepsAllowedTags(t *testing.T) {
	got := htmlconv.ToTelegramHTML(`<b>bold</b> and <a href="https://x/1">link</a>`, 0)

	assert.Equal(t, `<b>bold</b> and <a href="https://x/1">link</a>`, got)
}

func TestToTelegramHTMLHeadingsBecomeBold(t *testing.T) {
	got := htmlconv.ToTelegramHTML("<h2>Title</h2>", 0)

	assert.Equal(t, "<b>Title</b>", got)
}

func TestToTelegramHTMLDropsScriptAndStyle(t *testing.T) {
	got := htmlconv.ToTelegramHTML("<p>ok</p><script>evil()</script><style>p{}</style>", 0)

	assert.Equal(t, "ok", got)
}

func TestToTelegramHTMLUnwrapsUnknownTags(t *testing.T) {
	got := htmlconv.ToTelegramHTML(`<article><span class="x">text</span></article>`, 0)

	assert.Equal(t, "text", got)
}

func TestToTelegramHTMLKeepsSpoilerSpan(t *testing.T) {
	got := htmlconv.ToTelegramHTML(`<span class="tg-spoiler">secret</span>`, 0)

	assert.Equal(t, `<span class="tg-spoiler">secret</span>`, got)
}

func TestToTelegramHTMLLists(t *testing.T) {
	got := htmlconv.ToTelegramHTML("<ul><li>one</li><li>two</li></ul>", 0)
	assert.Equal(t, "• one\n• two", got)

	got = htmlconv.ToTelegramHTML("<ol><li>one</li><li>two</li></ol>", 0)
	assert.Equal(t, "1. one\n2. two", got)
}

func TestToTelegramHTMLImagesBecomeNumberedLinks(t *testing.T) {
	got := htmlconv.ToTelegramHTML(`<img src="https://x/a.png"><img src="https://x/b.png"><img>`, 0)

	assert.Equal(t, `<a href="https://x/a.png">[图片 1]</a><a href="https://x/b.png">[图片 2]</a>`, got)
}

func TestToTelegramHTMLTable(t *testing.T) {
	got := htmlconv.ToTelegramHTML("<table><tr><th>h1</th><th>h2</th></tr><tr><td>a</td><td>b</td></tr></table>", 0)

	assert.Equal(t, "<b>h1</b> | <b>h2</b>\na | b", got)
}

func TestToTelegramHTMLCodeLanguageClass(t *testing.T) {
	got := htmlconv.ToTelegramHTML(`<pre><code class="language-go hl">x</code></pre>`, 0)
	assert.Equal(t, `<pre><code class="language-go">x</code></pre>`, got)

	got = htmlconv.ToTelegramHTML(`<code class="hl">x</code>`, 0)
	assert.Equal(t, `<code>x</code>`, got)
}

func TestToTelegramHTMLEscapesText(t *testing.T) {
	got := htmlconv.ToTelegramHTML("<p>1 < 2 & 3</p>", 0)

	assert.Equal(t, "1 &lt; 2 &amp; 3", got)
}

func TestTruncateClosesOpenTags(t *testing.T) {
	raw := "<b>" + strings.Repeat("a", 50) + "</b>"

	got := htmlconv.ToTelegramHTML(raw, 20)

	assert.True(t, strings.HasSuffix(got, "…</b>"), "got %q", got)
	assert.True(t, strings.HasPrefix(got, "<b>aaaa"), "got %q", got)
}

func TestTruncateShortInputUntouched(t *testing.T) {
	got := htmlconv.ToTelegramHTML("<b>short</b>", 100)

	assert.Equal(t, "<b>short</b>", got)
}
