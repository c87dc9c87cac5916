package enums

import "fmt"

// Currency maps to currency_code_enum.
type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyUSD Currency = "USD"
	CurrencyJPY Currency = "JPY"
)

var validCurrencies = []Currency{
	CurrencyKRW,
	CurrencyUSD,
	CurrencyJPY,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}

// MinorUnitDigits returns how many decimal places the currency is billed in.
func (c Currency) MinorUnitDigits() int32 {
	switch c {
	case CurrencyKRW, CurrencyJPY:
		return 0
	default:
		return 2
	}
}
