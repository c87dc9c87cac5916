package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// catalogAPI is the subset of Stripe's v1 product and price endpoints used for catalog sync.
type catalogAPI interface {
	CreateProduct(ctx context.Context, params *stripe.ProductCreateParams) (*stripe.Product, error)
	UpdateProduct(ctx context.Context, id string, params *stripe.ProductUpdateParams) (*stripe.Product, error)
	RetrievePrice(ctx context.Context, id string) (*stripe.Price, error)
	CreatePrice(ctx context.Context, params *stripe.PriceCreateParams) (*stripe.Price, error)
	UpdatePrice(ctx context.Context, id string, params *stripe.PriceUpdateParams) (*stripe.Price, error)
}

type v1Catalog struct {
	api *stripe.Client
}

func (c v1Catalog) CreateProduct(ctx context.Context, params *stripe.ProductCreateParams) (*stripe.Product, error) {
	return c.api.V1Products.Create(ctx, params)
}

func (c v1Catalog) UpdateProduct(ctx context.Context, id string, params *stripe.ProductUpdateParams) (*stripe.Product, error) {
	return c.api.V1Products.Update(ctx, id, params)
}

func (c v1Catalog) RetrievePrice(ctx context.Context, id string) (*stripe.Price, error) {
	return c.api.V1Prices.Retrieve(ctx, id, &stripe.PriceRetrieveParams{})
}

func (c v1Catalog) CreatePrice(ctx context.Context, params *stripe.PriceCreateParams) (*stripe.Price, error) {
	return c.api.V1Prices.Create(ctx, params)
}

func (c v1Catalog) UpdatePrice(ctx context.Context, id string, params *stripe.PriceUpdateParams) (*stripe.Price, error) {
	return c.api.V1Prices.Update(ctx, id, params)
}

// CatalogProvider implements billing.Provider on Stripe.
// A Stripe price's amount and recurrence are immutable: when either changes the
// price is replaced and the previous one archived.
type CatalogProvider struct {
	api catalogAPI
}

var _ billing.Provider = (*CatalogProvider)(nil)

// NewCatalogProvider wraps the Stripe client as a billing provider.
func NewCatalogProvider(client *Client) (*CatalogProvider, error) {
	if client == nil || client.API() == nil {
		return nil, errors.New("stripe client is required")
	}
	return &CatalogProvider{api: v1Catalog{api: client.API()}}, nil
}

func (p *CatalogProvider) Name() enums.BillingProvider {
	return enums.BillingProviderStripe
}

func (p *CatalogProvider) CreateProduct(ctx context.Context, payload billing.ProductPayload) (string, error) {
	params := &stripe.ProductCreateParams{Name: stripe.String(payload.Name)}
	if payload.Description != "" {
		params.Description = stripe.String(payload.Description)
	}
	if payload.ImageURL != "" {
		params.Images = stripe.StringSlice([]string{payload.ImageURL})
	}
	for k, v := range payload.CustomData {
		params.AddMetadata(k, v)
	}
	product, err := p.api.CreateProduct(ctx, params)
	if err != nil {
		return "", classify("create product", err)
	}
	return product.ID, nil
}

func (p *CatalogProvider) UpdateProduct(ctx context.Context, remoteID string, payload billing.ProductPayload) error {
	params := &stripe.ProductUpdateParams{Name: stripe.String(payload.Name)}
	if payload.Description != "" {
		params.Description = stripe.String(payload.Description)
	}
	if payload.ImageURL != "" {
		params.Images = stripe.StringSlice([]string{payload.ImageURL})
	}
	for k, v := range payload.CustomData {
		params.AddMetadata(k, v)
	}
	if _, err := p.api.UpdateProduct(ctx, remoteID, params); err != nil {
		return classify("update product", err)
	}
	return nil
}

func (p *CatalogProvider) CreatePrice(ctx context.Context, payload billing.PricePayload) (string, error) {
	params := &stripe.PriceCreateParams{
		Product:         stripe.String(payload.RemoteProductID),
		Currency:        stripe.String(currencyCode(payload.Currency)),
		UnitAmount:      stripe.Int64(payload.Amount),
		Nickname:        stripe.String(payload.Description),
		CurrencyOptions: map[string]*stripe.PriceCreateCurrencyOptionsParams{},
	}
	for _, override := range payload.Overrides {
		params.CurrencyOptions[currencyCode(override.Currency)] = &stripe.PriceCreateCurrencyOptionsParams{
			UnitAmount: stripe.Int64(override.Amount),
		}
	}
	if payload.Recurrence != nil {
		params.Recurring = &stripe.PriceCreateRecurringParams{
			Interval:      stripe.String(string(payload.Recurrence.Interval)),
			IntervalCount: stripe.Int64(int64(payload.Recurrence.Frequency)),
		}
	}
	for k, v := range payload.CustomData {
		params.AddMetadata(k, v)
	}
	price, err := p.api.CreatePrice(ctx, params)
	if err != nil {
		return "", classify("create price", err)
	}
	return price.ID, nil
}

func (p *CatalogProvider) UpdatePrice(ctx context.Context, remoteID string, payload billing.PricePayload) (string, error) {
	existing, err := p.api.RetrievePrice(ctx, remoteID)
	if err != nil {
		return "", classify("retrieve price", err)
	}

	if !sameShape(existing, payload) {
		newID, err := p.CreatePrice(ctx, payload)
		if err != nil {
			return "", err
		}
		archive := &stripe.PriceUpdateParams{Active: stripe.Bool(false)}
		if _, err := p.api.UpdatePrice(ctx, remoteID, archive); err != nil {
			return "", classify("archive price", err)
		}
		return newID, nil
	}

	params := &stripe.PriceUpdateParams{
		Nickname:        stripe.String(payload.Description),
		CurrencyOptions: map[string]*stripe.PriceUpdateCurrencyOptionsParams{},
	}
	for _, override := range payload.Overrides {
		params.CurrencyOptions[currencyCode(override.Currency)] = &stripe.PriceUpdateCurrencyOptionsParams{
			UnitAmount: stripe.Int64(override.Amount),
		}
	}
	for k, v := range payload.CustomData {
		params.AddMetadata(k, v)
	}
	if _, err := p.api.UpdatePrice(ctx, remoteID, params); err != nil {
		return "", classify("update price", err)
	}
	return remoteID, nil
}

// sameShape reports whether the immutable parts of the existing price match the payload.
func sameShape(existing *stripe.Price, payload billing.PricePayload) bool {
	if existing == nil || !existing.Active {
		return false
	}
	if existing.Product != nil && existing.Product.ID != "" && existing.Product.ID != payload.RemoteProductID {
		return false
	}
	if !strings.EqualFold(string(existing.Currency), currencyCode(payload.Currency)) || existing.UnitAmount != payload.Amount {
		return false
	}
	if payload.Recurrence == nil {
		return existing.Recurring == nil
	}
	if existing.Recurring == nil {
		return false
	}
	return string(existing.Recurring.Interval) == string(payload.Recurrence.Interval) &&
		existing.Recurring.IntervalCount == int64(payload.Recurrence.Frequency)
}

func currencyCode(currency enums.Currency) string {
	return strings.ToLower(string(currency))
}

func classify(op string, err error) error {
	status := 0
	var apiErr *stripe.Error
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
	}
	return billing.ProviderError(enums.BillingProviderStripe, op, status, err)
}
