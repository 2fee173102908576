package client

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Preview renders entry markup as a single line of plain text, cut to at
// most max runes. Block elements and <br> become spaces.
func Preview(content string, max int) string {
	tokenizer := html.NewTokenizer(strings.NewReader(content))

	var b strings.Builder
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
				b.WriteByte(' ')
			}
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	if max > 0 && utf8.RuneCountInString(text) > max {
		runes := []rune(text)
		if max == 1 {
			return "…"
		}
		return string(runes[:max-1]) + "…"
	}
	return text
}
