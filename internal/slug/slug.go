// Package slug provides URL-friendly slug generation from arbitrary strings,
// including titles and filenames containing non-ASCII characters.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// maxLen caps the base slug before any timestamp suffix.
	maxLen = 50
	// asciiPartLen caps the salvaged ASCII fragment of a non-ASCII title.
	asciiPartLen = 20
)

var (
	// nonWord matches anything that isn't a letter, digit, underscore, space, or hyphen.
	nonWord = regexp.MustCompile(`[^\w\s-]`)
	// whitespace collapses runs of whitespace.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug is the canonical slug shape: lowercase words joined by single hyphens.
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	// nonSlugChar matches characters not allowed in a sanitized slug.
	nonSlugChar = regexp.MustCompile(`[^a-z0-9-]`)
)

// now is swapped out by tests to pin the timestamp suffix.
var now = time.Now

// Generate creates a URL-friendly slug from a title or filename. A trailing
// ".md" extension is dropped. ASCII input becomes a plain hyphenated slug.
// Input containing non-ASCII characters (transliteration is not attempted)
// keeps its ASCII fragment and gains a base-36 timestamp suffix; input with
// no usable characters at all yields "post-<timestamp>". The result is never
// empty and always URL-safe.
func Generate(s string) string {
	s = strings.TrimSuffix(strings.TrimSuffix(s, ".md"), ".MD")
	s = strings.ToLower(strings.TrimSpace(s))

	if hasNonASCII(s) {
		ascii := clean(s)
		if len(ascii) > asciiPartLen {
			ascii = strings.Trim(ascii[:asciiPartLen], "-")
		}
		stamp := strconv.FormatInt(now().UnixMilli(), 36)
		if ascii == "" {
			return "post-" + stamp
		}
		return ascii + "-" + stamp
	}

	out := clean(s)
	if out == "" {
		return "post-" + strconv.FormatInt(now().UnixMilli(), 36)
	}
	if len(out) > maxLen {
		out = strings.Trim(out[:maxLen], "-")
	}
	return out
}

// Valid reports whether s is already a canonical slug.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

// Sanitize coerces an arbitrary string into slug-safe form without adding
// any suffix. May return an empty string.
func Sanitize(s string) string {
	s = strings.ToLower(s)
	s = nonSlugChar.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// clean applies the standard pipeline: strip non-word runes, whitespace to
// hyphens, collapse and trim hyphens.
func clean(s string) string {
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}
