package graph

import (
	"strings"

	"golang.org/x/net/html"
)

// FlattenHTML extracts the visible text of an HTML fragment, collapsing
// whitespace. Graph returns event bodies as HTML; prompts want plain text.
func FlattenHTML(fragment string) string {
	tok := html.NewTokenizer(strings.NewReader(fragment))

	var sb strings.Builder
	skipDepth := 0
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tok.Text())
				sb.WriteByte(' ')
			}
		}
	}
}
