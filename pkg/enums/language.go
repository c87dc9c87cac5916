package enums

import (
	"fmt"
	"strings"
)

// LanguageCode maps to language_code_enum.
type LanguageCode string

const (
	LanguageKR LanguageCode = "KR"
	LanguageEN LanguageCode = "EN"
	LanguageJP LanguageCode = "JP"
)

var validLanguageCodes = []LanguageCode{
	LanguageKR,
	LanguageEN,
	LanguageJP,
}

// String implements fmt.Stringer.
func (l LanguageCode) String() string {
	return string(l)
}

// IsValid reports whether the language is supported by the catalog.
func (l LanguageCode) IsValid() bool {
	for _, candidate := range validLanguageCodes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLanguageCode converts raw input into a LanguageCode.
func ParseLanguageCode(value string) (LanguageCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validLanguageCodes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid language code %q", value)
}

// Currency returns the currency conventionally paired with the language.
func (l LanguageCode) Currency() Currency {
	switch l {
	case LanguageKR:
		return CurrencyKRW
	case LanguageJP:
		return CurrencyJPY
	default:
		return CurrencyUSD
	}
}
