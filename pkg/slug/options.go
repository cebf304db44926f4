package slug

import (
	"sort"
	"strings"
)

type options struct {
	separator     string
	maxLength     int
	asciiOnly     bool
	stripChars    string
	customReplace map[string]string
}

// Option configures slug generation.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		separator: "-",
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// prepare applies custom replacements and strips configured characters.
// Replacement keys are applied in sorted order so output is deterministic.
func (o *options) prepare(s string) string {
	if len(o.customReplace) > 0 {
		keys := make([]string, 0, len(o.customReplace))
		for k := range o.customReplace {
			if k != "" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			s = strings.ReplaceAll(s, k, " "+o.customReplace[k]+" ")
		}
	}
	if o.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(o.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}
	return s
}

// Separator sets the string placed between words. Default is "-".
func Separator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// MaxLength caps the slug at n runes. Zero disables the limit.
func MaxLength(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxLength = n
		}
	}
}

// ASCIIOnly drops non-ASCII letters instead of keeping them.
func ASCIIOnly() Option {
	return func(o *options) {
		o.asciiOnly = true
	}
}

// StripChars removes every rune in chars before slugification.
func StripChars(chars string) Option {
	return func(o *options) {
		o.stripChars = chars
	}
}

// CustomReplace substitutes strings before slugification.
func CustomReplace(replacements map[string]string) Option {
	return func(o *options) {
		o.customReplace = replacements
	}
}
