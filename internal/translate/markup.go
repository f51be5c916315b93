package translate

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// MarkupPreserved reports whether translated has the same sequence of
// start, end and self-closing tags as source. Text and attribute values
// may differ.
func MarkupPreserved(source, translated string) bool {
	return slices.Equal(tagSequence(source), tagSequence(translated))
}

func tagSequence(s string) []string {
	var tags []string
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken:
			name, _ := z.TagName()
			tags = append(tags, string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			tags = append(tags, "/"+string(name))
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			tags = append(tags, string(name)+"/")
		}
	}
}
