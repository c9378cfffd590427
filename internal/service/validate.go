package service

import (
	"regexp"

	"eventdash/internal/apperr"
)

// Category names are lowercase on disk; input may arrive in any case and
// is normalized before storage or lookup.
var categoryNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]{1,50}$`)

// ValidateCategoryName rejects malformed names before any store query is
// issued.
func ValidateCategoryName(name string) error {
	if !categoryNamePattern.MatchString(name) {
		return apperr.Validation("category name must be 1-50 letters, digits or hyphens")
	}
	return nil
}

// CategoryNamePattern exposes the grammar so the transport layer can
// register it as a request-binding rule.
func CategoryNamePattern() *regexp.Regexp {
	return categoryNamePattern
}

// ValidateEmoji accepts an empty value (the emoji is optional) or a
// string made of emoji runes, including joiners, variation selectors and
// skin-tone modifiers for composed sequences.
func ValidateEmoji(emoji string) error {
	for _, r := range emoji {
		if !emojiRune(r) {
			return apperr.Validation("emoji must contain only emoji characters")
		}
	}
	return nil
}

func emojiRune(r rune) bool {
	switch {
	case r == 0x200D || r == 0xFE0F || r == 0x20E3: // joiner, variation selector, keycap
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r >= 0x2300 && r <= 0x23FF: // misc technical (watch, hourglass)
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // stars and arrows
		return true
	}
	return false
}
