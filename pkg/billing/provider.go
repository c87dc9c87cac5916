// Package billing defines the contract between the catalog and a remote billing
// provider, plus the mapping from a catalog product to provider payloads.
package billing

import (
	"context"
	"net/http"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
)

// Provider pushes catalog products and prices to a remote billing system.
type Provider interface {
	Name() enums.BillingProvider
	CreateProduct(ctx context.Context, payload ProductPayload) (string, error)
	UpdateProduct(ctx context.Context, remoteID string, payload ProductPayload) error
	CreatePrice(ctx context.Context, payload PricePayload) (string, error)
	// UpdatePrice returns the id of the price that is effective after the update.
	// Providers with immutable prices may return a new id.
	UpdatePrice(ctx context.Context, remoteID string, payload PricePayload) (string, error)
}

// ProductPayload is the provider-facing product shape.
type ProductPayload struct {
	Name        string
	Description string
	ImageURL    string
	// CustomData is attached to the remote object for traceability.
	CustomData map[string]string
}

// Recurrence describes a subscription billing cycle.
type Recurrence struct {
	Interval  enums.BillingInterval
	Frequency int
}

// PriceOverride is a per-country price in the currency's smallest billable unit.
type PriceOverride struct {
	CountryCode string
	Currency    enums.Currency
	Amount      int64
}

// PricePayload is the provider-facing price shape. Amounts are in minor units.
type PricePayload struct {
	RemoteProductID string
	Description     string
	Currency        enums.Currency
	Amount          int64
	Overrides       []PriceOverride
	Recurrence      *Recurrence
	CustomData      map[string]string
}

// Override returns the override for the currency, if any.
func (p PricePayload) Override(currency enums.Currency) (PriceOverride, bool) {
	for _, override := range p.Overrides {
		if override.Currency == currency {
			return override, true
		}
	}
	return PriceOverride{}, false
}

// ProviderError classifies a failed provider call by HTTP status.
// Client errors other than 409 and 429 are terminal; everything else is retried.
func ProviderError(provider enums.BillingProvider, op string, status int, err error) error {
	if err == nil {
		return nil
	}
	msg := provider.String() + " " + op + " failed"
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError &&
		status != http.StatusConflict && status != http.StatusTooManyRequests {
		return pkgerrors.Wrap(pkgerrors.CodeRejected, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeProvider, err, msg)
}
