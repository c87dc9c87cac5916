package locale

import (
	"strings"

	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// DefaultLanguage is used when a request carries no usable locale.
const DefaultLanguage = enums.LanguageKR

// ResolveDisplayName returns the first non-blank candidate in priority order:
// requested locale, Korean, English, then the business code.
func ResolveDisplayName(requested, korean, english, code string) string {
	for _, candidate := range []string{requested, korean, english, code} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// FromUI maps a UI locale ("ko", "en", "ja", "en-US", ...) or a raw
// language code ("KR", "EN", "JP") to a catalog language.
func FromUI(value string) enums.LanguageCode {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if idx := strings.IndexAny(normalized, "-_"); idx > 0 {
		normalized = normalized[:idx]
	}
	switch normalized {
	case "en":
		return enums.LanguageEN
	case "ja", "jp":
		return enums.LanguageJP
	case "ko", "kr":
		return enums.LanguageKR
	default:
		return DefaultLanguage
	}
}

// Names is a per-language name lookup used to feed ResolveDisplayName.
type Names map[enums.LanguageCode]string

// Resolve picks the display name for lang with the standard fallback chain.
func (n Names) Resolve(lang enums.LanguageCode, code string) string {
	return ResolveDisplayName(n[lang], n[enums.LanguageKR], n[enums.LanguageEN], code)
}
