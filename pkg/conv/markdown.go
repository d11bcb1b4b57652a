package conv

import (
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

// TelegramMessageLimit is the maximum text length of one Telegram message.
const TelegramMessageLimit = 4096

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	// no smartypants: it turns readings like 92/100 into fraction glyphs
	htmlFlags   = (html.CommonFlags | html.HrefTargetBlank) &^ (html.Smartypants | html.SmartypantsFractions)
	tgPolicy    = bluemonday.NewPolicy()
	plainPolicy = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")

	// Block structure only; emphasis tags are dropped so html2text does not
	// print them back as asterisks.
	plainPolicy.AllowElements("p", "br", "ul", "ol", "li", "pre", "code", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "table", "thead", "tbody", "tr", "th", "td", "hr")
	plainPolicy.AllowAttrs("href").OnElements("a")
}

func render(md []byte) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse(md), renderer)
}

// MarkdownToTelegramHTML renders advisor markdown with only the tags
// Telegram's HTML parse mode accepts.
func MarkdownToTelegramHTML(md []byte) string {
	return string(tgPolicy.SanitizeBytes(render(md)))
}

// MarkdownToPlainText renders advisor markdown for terminals and logs.
func MarkdownToPlainText(md []byte) string {
	if len(md) == 0 {
		return ""
	}
	text, err := html2text.FromString(string(plainPolicy.SanitizeBytes(render(md))), html2text.Options{
		OmitLinks:    false,
		PrettyTables: true,
	})
	if err != nil {
		return string(md)
	}
	return strings.TrimSpace(text)
}

// SplitMessage cuts text into parts of at most limit runes, preferring
// paragraph breaks, then line breaks, then spaces.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	for utf8.RuneCountInString(text) > limit {
		cut := byteOffset(text, limit)
		head := text[:cut]

		at := strings.LastIndex(head, "\n\n")
		if at <= 0 {
			at = strings.LastIndex(head, "\n")
		}
		if at <= 0 {
			at = strings.LastIndex(head, " ")
		}
		if at <= 0 {
			at = cut
		}

		parts = append(parts, strings.TrimRight(text[:at], " \n"))
		text = strings.TrimLeft(text[at:], " \n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
