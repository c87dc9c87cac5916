package enums

import "fmt"

// BillingCycle maps to billing_cycle_enum.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
	BillingCycleOnce    BillingCycle = "ONCE"
)

var validBillingCycles = []BillingCycle{
	BillingCycleMonthly,
	BillingCycleYearly,
	BillingCycleOnce,
}

// String implements fmt.Stringer.
func (b BillingCycle) String() string {
	return string(b)
}

// IsValid reports whether the cycle is recognized.
func (b BillingCycle) IsValid() bool {
	for _, candidate := range validBillingCycles {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillingCycle converts raw input into a BillingCycle.
func ParseBillingCycle(value string) (BillingCycle, error) {
	for _, candidate := range validBillingCycles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing cycle %q", value)
}

// BillingInterval is the provider-facing recurrence unit.
type BillingInterval string

const (
	BillingIntervalMonth BillingInterval = "month"
	BillingIntervalYear  BillingInterval = "year"
)

// Interval returns the provider recurrence for the cycle. ONCE has none.
func (b BillingCycle) Interval() (BillingInterval, bool) {
	switch b {
	case BillingCycleMonthly:
		return BillingIntervalMonth, true
	case BillingCycleYearly:
		return BillingIntervalYear, true
	default:
		return "", false
	}
}
