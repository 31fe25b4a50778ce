package markdown

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var extraNewlines = regexp.MustCompile(`\n{3,}`)

// ToHTML converts a markdown reply to HTML. Raw HTML in the input is dropped.
func ToHTML(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
	})
	html := string(blackfriday.Run(
		[]byte(markdown),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.HardLineBreak),
		blackfriday.WithRenderer(renderer),
	))

	// Clean up extra newlines
	html = extraNewlines.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
