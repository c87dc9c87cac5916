package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// Country codes carrying per-currency price overrides.
const (
	CountryKR = "KR"
	CountryJP = "JP"
)

// Snapshot is the catalog state pushed to the provider for one product.
type Snapshot struct {
	ProductID    uuid.UUID
	ProductCode  string
	Type         enums.ProductType
	BillingCycle enums.BillingCycle
	Name         string
	Description  string
	IconURL      string
	USD          decimal.Decimal
	KRW          decimal.Decimal
	JPY          decimal.Decimal
}

// BuildProductPayload maps the snapshot onto the provider product shape.
func BuildProductPayload(s Snapshot) ProductPayload {
	return ProductPayload{
		Name:        strings.TrimSpace(s.Name),
		Description: s.Description,
		ImageURL:    s.IconURL,
		CustomData:  customData(s),
	}
}

// BuildPricePayload maps the snapshot onto the provider price shape.
// USD becomes the base amount in cents; KRW and JPY become whole-unit overrides for KR and JP.
func BuildPricePayload(remoteProductID string, s Snapshot) PricePayload {
	payload := PricePayload{
		RemoteProductID: remoteProductID,
		Description:     priceDescription(s),
		Currency:        enums.CurrencyUSD,
		Amount:          MinorUnits(s.USD, enums.CurrencyUSD),
		Overrides: []PriceOverride{
			{CountryCode: CountryKR, Currency: enums.CurrencyKRW, Amount: MinorUnits(s.KRW, enums.CurrencyKRW)},
			{CountryCode: CountryJP, Currency: enums.CurrencyJPY, Amount: MinorUnits(s.JPY, enums.CurrencyJPY)},
		},
		CustomData: customData(s),
	}
	if s.Type == enums.ProductTypeSubscription {
		if interval, ok := s.BillingCycle.Interval(); ok {
			payload.Recurrence = &Recurrence{Interval: interval, Frequency: 1}
		}
	}
	return payload
}

// MinorUnits converts a decimal amount to the currency's smallest unit, rounding half away from zero.
func MinorUnits(amount decimal.Decimal, currency enums.Currency) int64 {
	return amount.Shift(currency.MinorUnitDigits()).Round(0).IntPart()
}

func priceDescription(s Snapshot) string {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = s.ProductCode
	}
	if s.Type == enums.ProductTypeSubscription {
		if interval, ok := s.BillingCycle.Interval(); ok {
			return name + " (" + string(interval) + "ly)"
		}
	}
	return name
}

func customData(s Snapshot) map[string]string {
	data := map[string]string{}
	if s.ProductID != uuid.Nil {
		data["gogo_product_id"] = s.ProductID.String()
	}
	if s.ProductCode != "" {
		data["product_code"] = s.ProductCode
	}
	return data
}
