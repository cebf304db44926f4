package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ligatures maps Latin letters that have no canonical decomposition to
// their closest ASCII spelling.
var ligatures = map[rune]string{
	'ß': "ss",
	'ẞ': "ss",
	'æ': "ae",
	'Æ': "ae",
	'œ': "oe",
	'Œ': "oe",
	'ø': "o",
	'Ø': "o",
	'ł': "l",
	'Ł': "l",
	'đ': "d",
	'Đ': "d",
	'þ': "th",
	'Þ': "th",
	'ı': "i",
}

// Make converts s into a URL-safe slug.
//
// Letters are lower-cased and kept (non-ASCII letters too, unless ASCIIOnly
// is set), ASCII digits are kept, combining marks stay attached to a kept
// non-ASCII letter, and every other rune acts as a word boundary. Runs of boundaries collapse into a single separator and the
// result never starts or ends with one. Make is total: input without letters
// or digits yields an empty string.
func Make(s string, opts ...Option) string {
	o := newOptions(opts)

	s = o.prepare(s)
	s = stripLatinMarks(s)

	var b strings.Builder
	b.Grow(len(s))

	gap := false
	emit := func(r rune) {
		if gap && b.Len() > 0 {
			b.WriteString(o.separator)
		}
		gap = false
		b.WriteRune(r)
	}

	// attached is set while the last kept rune is a non-ASCII letter or one
	// of its marks.
	attached := false
	for _, r := range s {
		if folded, ok := ligatures[r]; ok {
			for _, fr := range folded {
				emit(fr)
			}
			attached = false
			continue
		}

		switch {
		case r < utf8.RuneSelf && isASCIIAlnum(r):
			emit(unicode.ToLower(r))
			attached = false
		case r >= utf8.RuneSelf && !o.asciiOnly && unicode.IsLetter(r):
			emit(unicode.ToLower(r))
			attached = true
		case attached && isMark(r):
			b.WriteRune(r)
		default:
			gap = true
			attached = false
		}
	}

	out := b.String()
	if o.maxLength > 0 {
		out = truncate(out, o.maxLength, o.separator)
	}
	return out
}

// stripLatinMarks removes nonspacing marks that follow a Latin letter so
// that "Café" becomes "Cafe". Marks on other scripts are kept: they tell
// "ガイド" from "カイト" and carry Indic vowel signs. Hangul round-trips
// unchanged through NFD/NFC.
func stripLatinMarks(s string) string {
	d := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(d))

	latin := false
	for _, r := range d {
		if unicode.Is(unicode.Mn, r) {
			if !latin {
				b.WriteRune(r)
			}
			continue
		}
		latin = unicode.Is(unicode.Latin, r)
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

func isMark(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me)
}

func truncate(s string, maxLength int, separator string) string {
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	rs := []rune(s)
	s = string(rs[:maxLength])
	if separator != "" {
		s = strings.TrimRight(s, separator)
	}
	return s
}

func isASCIIAlnum(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
