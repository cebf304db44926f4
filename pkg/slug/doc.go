// Package slug turns post titles into URL-safe, human-readable slugs.
//
// Make is deterministic and total: the same input and options always produce
// the same output, and every input, including empty or punctuation-only text,
// yields a (possibly empty) result.
//
// Basic usage:
//
//	import "github.com/notionblog/notionblog/pkg/slug"
//
//	s := slug.Make("Hello, World!")
//	// Output: "hello-world"
//
//	s = slug.Make("Café & Restaurant")
//	// Output: "cafe-restaurant"
//
//	s = slug.Make("Go 1.22 릴리스 노트")
//	// Output: "go-1-22-릴리스-노트"
//
// # Normalization
//
// The text is decomposed to NFD, nonspacing marks that follow a Latin letter
// are removed, and the result is recomposed to NFC. Latin diacritics fold to
// their base letter. Marks in other scripts stay with their letter, so kana
// voicing and Devanagari vowel signs survive, and Hangul is kept intact. A short table folds
// letters with no decomposition:
//
//	slug.Make("Über Größe straße") // "uber-grosse-strasse"
//	slug.Make("Smørrebrød")        // "smorrebrod"
//
// Whitespace, punctuation, symbols and emoji act as word boundaries. Runs of
// boundaries collapse into one separator, and the result never begins or ends
// with a separator.
//
// # Configuration Options
//
// MaxLength limits the slug length in runes, trimming a dangling separator:
//
//	slug.Make("Cut off cleanly", slug.MaxLength(7))
//	// Output: "cut-off"
//
// Separator sets the string used between words:
//
//	slug.Make("Product Name", slug.Separator("_"))
//	// Output: "product_name"
//
// ASCIIOnly drops letters outside ASCII:
//
//	slug.Make("Go 릴리스", slug.ASCIIOnly())
//	// Output: "go"
//
// StripChars removes specific characters before processing:
//
//	slug.Make("Don't stop", slug.StripChars("'"))
//	// Output: "dont-stop"
//
// CustomReplace applies string replacements before slugification:
//
//	slug.Make("Fish & Chips", slug.CustomReplace(map[string]string{"&": "and"}))
//	// Output: "fish-and-chips"
package slug
