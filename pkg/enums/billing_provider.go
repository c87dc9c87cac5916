package enums

import "fmt"

// BillingProvider identifies the remote system holding product/price objects.
type BillingProvider string

const (
	BillingProviderPaddle BillingProvider = "paddle"
	BillingProviderStripe BillingProvider = "stripe"
)

// String implements fmt.Stringer.
func (b BillingProvider) String() string {
	return string(b)
}

// ParseBillingProvider converts raw input into a BillingProvider.
func ParseBillingProvider(value string) (BillingProvider, error) {
	switch BillingProvider(value) {
	case BillingProviderPaddle, BillingProviderStripe:
		return BillingProvider(value), nil
	default:
		return "", fmt.Errorf("invalid billing provider %q", value)
	}
}

// SyncStatus summarizes the outcome of a billing sync attempt.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
	SyncStatusSkipped SyncStatus = "skipped"
)
