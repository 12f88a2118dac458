package utils

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
)

// Slugify derives the URL-safe identifier of a name. Letters outside ASCII are
// transliterated first ("Физика" -> "fizika", "Café" -> "cafe"), then the result
// is lowercased, whitespace runs become a single hyphen and anything outside
// [a-z0-9-_.~] is dropped.
func Slugify(name string) string {
	ascii := unidecode.Unidecode(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(ascii))

	pendingHyphen := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '~':
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}

// IsValidSlug reports whether s is already in slug form
func IsValidSlug(s string) bool {
	return s != "" && len(s) <= 255 && Slugify(s) == s
}

// Tokenize splits text into lowercase alphanumeric tokens, first occurrence order, no duplicates
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// TokenIndex renders the keyword index stored next to a name.
// Tokens are space separated with a leading and trailing space so that
// "% tok %" matches whole words only.
func TokenIndex(name string) string {
	tokens := Tokenize(name)
	if len(tokens) == 0 {
		return " "
	}
	return " " + strings.Join(tokens, " ") + " "
}
