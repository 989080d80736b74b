package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark under NFD and so survive mark removal.
var foldTable = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "TH",
	'ı': "i",
}

// transliterate reduces s to its base Latin letters: "Crème Brûlée" -> "Creme Brulee".
// Characters without a Latin base are left for the caller to strip.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	if !strings.ContainsFunc(out, func(r rune) bool { _, ok := foldTable[r]; return ok }) {
		return out
	}
	var b strings.Builder
	for _, r := range out {
		if rep, ok := foldTable[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize transliterates s, drops every character that is not an ASCII
// letter or digit (spaces included) and lowercases the rest.
func Normalize(s string) string {
	s = transliterate(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// Tokenize splits a title on whitespace and hyphens, normalizes each piece and
// returns the distinct non-empty keywords in sorted order.
func Tokenize(title string) []string {
	kws := keywords(title)
	sort.Strings(kws)
	return kws
}

// keywords is Tokenize without the sort: distinct keywords in order of first
// appearance.
func keywords(s string) []string {
	pieces := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})

	seen := make(map[string]struct{}, len(pieces))
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		k := Normalize(p)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
