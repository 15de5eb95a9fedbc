package table

import (
	"strings"
	"unicode/utf8"
)

// Segment is a run of cell text; Match marks an occurrence of the search text
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// Highlight splits text around every case-insensitive occurrence of query.
// The query is matched literally; an empty query yields the text unmarked.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if query == "" {
		return []Segment{{Text: text}}
	}

	var (
		segs  []Segment
		start int
	)
	for i := 0; i < len(text); {
		if n := matchAt(text[i:], query); n > 0 {
			if i > start {
				segs = append(segs, Segment{Text: text[start:i]})
			}
			segs = append(segs, Segment{Text: text[i : i+n], Match: true})
			i += n
			start = i
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	if start < len(text) {
		segs = append(segs, Segment{Text: text[start:]})
	}
	return segs
}

// matchAt returns the byte length of the prefix of s that case-folds to query, or 0
func matchAt(s, query string) int {
	n := 0
	for _, qr := range query {
		if n >= len(s) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(s[n:])
		if !strings.EqualFold(string(r), string(qr)) {
			return 0
		}
		n += size
	}
	return n
}

// Join concatenates the segments back into the original text
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
