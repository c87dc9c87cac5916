package paddle

import (
	"context"
	"errors"
	"strconv"

	paddlesdk "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/PaddleHQ/paddle-go-sdk/v4/pkg/paddleerr"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// catalogAPI is the subset of the Paddle SDK used for catalog sync.
type catalogAPI interface {
	CreateProduct(ctx context.Context, req *paddlesdk.CreateProductRequest) (*paddlesdk.Product, error)
	UpdateProduct(ctx context.Context, req *paddlesdk.UpdateProductRequest) (*paddlesdk.Product, error)
	CreatePrice(ctx context.Context, req *paddlesdk.CreatePriceRequest) (*paddlesdk.Price, error)
	UpdatePrice(ctx context.Context, req *paddlesdk.UpdatePriceRequest) (*paddlesdk.Price, error)
}

// Provider implements billing.Provider on top of Paddle Billing.
// Paddle prices are mutable, so updates happen in place.
type Provider struct {
	api catalogAPI
}

var _ billing.Provider = (*Provider)(nil)

// NewProvider wraps the Paddle client as a billing provider.
func NewProvider(client *Client) (*Provider, error) {
	if client == nil || client.SDK() == nil {
		return nil, errors.New("paddle client is required")
	}
	return &Provider{api: client.SDK()}, nil
}

func (p *Provider) Name() enums.BillingProvider {
	return enums.BillingProviderPaddle
}

func (p *Provider) CreateProduct(ctx context.Context, payload billing.ProductPayload) (string, error) {
	req := &paddlesdk.CreateProductRequest{
		Name:        payload.Name,
		TaxCategory: paddlesdk.TaxCategoryStandard,
		Description: optionalString(payload.Description),
		ImageURL:    optionalString(payload.ImageURL),
		CustomData:  customData(payload.CustomData),
	}
	product, err := p.api.CreateProduct(ctx, req)
	if err != nil {
		return "", classify("create product", err)
	}
	return product.ID, nil
}

func (p *Provider) UpdateProduct(ctx context.Context, remoteID string, payload billing.ProductPayload) error {
	req := &paddlesdk.UpdateProductRequest{
		ProductID:   remoteID,
		Name:        paddlesdk.NewPatchField(payload.Name),
		Description: paddlesdk.NewPatchField(optionalString(payload.Description)),
		ImageURL:    paddlesdk.NewPatchField(optionalString(payload.ImageURL)),
		CustomData:  paddlesdk.NewPatchField(customData(payload.CustomData)),
	}
	if _, err := p.api.UpdateProduct(ctx, req); err != nil {
		return classify("update product", err)
	}
	return nil
}

func (p *Provider) CreatePrice(ctx context.Context, payload billing.PricePayload) (string, error) {
	req := &paddlesdk.CreatePriceRequest{
		Description:        payload.Description,
		ProductID:          payload.RemoteProductID,
		UnitPrice:          money(payload.Currency, payload.Amount),
		BillingCycle:       billingCycle(payload.Recurrence),
		UnitPriceOverrides: overrides(payload.Overrides),
		CustomData:         customData(payload.CustomData),
	}
	price, err := p.api.CreatePrice(ctx, req)
	if err != nil {
		return "", classify("create price", err)
	}
	return price.ID, nil
}

func (p *Provider) UpdatePrice(ctx context.Context, remoteID string, payload billing.PricePayload) (string, error) {
	req := &paddlesdk.UpdatePriceRequest{
		PriceID:            remoteID,
		Description:        paddlesdk.NewPatchField(payload.Description),
		UnitPrice:          paddlesdk.NewPatchField(money(payload.Currency, payload.Amount)),
		BillingCycle:       paddlesdk.NewPatchField(billingCycle(payload.Recurrence)),
		UnitPriceOverrides: paddlesdk.NewPatchField(overrides(payload.Overrides)),
		CustomData:         paddlesdk.NewPatchField(customData(payload.CustomData)),
	}
	price, err := p.api.UpdatePrice(ctx, req)
	if err != nil {
		return "", classify("update price", err)
	}
	if price == nil || price.ID == "" {
		return remoteID, nil
	}
	return price.ID, nil
}

func money(currency enums.Currency, amount int64) paddlesdk.Money {
	return paddlesdk.Money{
		Amount:       strconv.FormatInt(amount, 10),
		CurrencyCode: paddlesdk.CurrencyCode(currency),
	}
}

func billingCycle(recurrence *billing.Recurrence) *paddlesdk.Duration {
	if recurrence == nil {
		return nil
	}
	interval := paddlesdk.IntervalMonth
	if recurrence.Interval == enums.BillingIntervalYear {
		interval = paddlesdk.IntervalYear
	}
	return &paddlesdk.Duration{Interval: interval, Frequency: recurrence.Frequency}
}

func overrides(items []billing.PriceOverride) []paddlesdk.UnitPriceOverride {
	out := make([]paddlesdk.UnitPriceOverride, 0, len(items))
	for _, item := range items {
		out = append(out, paddlesdk.UnitPriceOverride{
			CountryCodes: []paddlesdk.CountryCode{paddlesdk.CountryCode(item.CountryCode)},
			UnitPrice:    money(item.Currency, item.Amount),
		})
	}
	return out
}

func customData(values map[string]string) paddlesdk.CustomData {
	if len(values) == 0 {
		return nil
	}
	out := make(paddlesdk.CustomData, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func classify(op string, err error) error {
	status := 0
	var apiErr *paddleerr.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	return billing.ProviderError(enums.BillingProviderPaddle, op, status, err)
}
