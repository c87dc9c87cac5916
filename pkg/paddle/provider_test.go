package paddle

import (
	"context"
	"errors"
	"net/http"
	"testing"

	paddlesdk "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/PaddleHQ/paddle-go-sdk/v4/pkg/paddleerr"
	"github.com/shopspring/decimal"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
)

type fakeCatalogAPI struct {
	createdProduct *paddlesdk.CreateProductRequest
	updatedProduct *paddlesdk.UpdateProductRequest
	createdPrice   *paddlesdk.CreatePriceRequest
	updatedPrice   *paddlesdk.UpdatePriceRequest
	err            error
}

func (f *fakeCatalogAPI) CreateProduct(ctx context.Context, req *paddlesdk.CreateProductRequest) (*paddlesdk.Product, error) {
	f.createdProduct = req
	if f.err != nil {
		return nil, f.err
	}
	return &paddlesdk.Product{ID: "pro_new"}, nil
}

func (f *fakeCatalogAPI) UpdateProduct(ctx context.Context, req *paddlesdk.UpdateProductRequest) (*paddlesdk.Product, error) {
	f.updatedProduct = req
	if f.err != nil {
		return nil, f.err
	}
	return &paddlesdk.Product{ID: req.ProductID}, nil
}

func (f *fakeCatalogAPI) CreatePrice(ctx context.Context, req *paddlesdk.CreatePriceRequest) (*paddlesdk.Price, error) {
	f.createdPrice = req
	if f.err != nil {
		return nil, f.err
	}
	return &paddlesdk.Price{ID: "pri_new"}, nil
}

func (f *fakeCatalogAPI) UpdatePrice(ctx context.Context, req *paddlesdk.UpdatePriceRequest) (*paddlesdk.Price, error) {
	f.updatedPrice = req
	if f.err != nil {
		return nil, f.err
	}
	return &paddlesdk.Price{ID: req.PriceID}, nil
}

func monthlySnapshot() billing.Snapshot {
	return billing.Snapshot{
		ProductCode:  "PRO",
		Type:         enums.ProductTypeSubscription,
		BillingCycle: enums.BillingCycleMonthly,
		Name:         "Pro",
		USD:          decimal.RequireFromString("10.00"),
		KRW:          decimal.RequireFromString("13000"),
		JPY:          decimal.RequireFromString("1500"),
	}
}

func TestCreatePriceMapsOverrides(t *testing.T) {
	api := &fakeCatalogAPI{}
	provider := &Provider{api: api}

	id, err := provider.CreatePrice(context.Background(), billing.BuildPricePayload("pro_1", monthlySnapshot()))
	if err != nil {
		t.Fatalf("create price: %v", err)
	}
	if id != "pri_new" {
		t.Fatalf("unexpected price id %q", id)
	}

	req := api.createdPrice
	if req.ProductID != "pro_1" {
		t.Fatalf("unexpected product id %q", req.ProductID)
	}
	if req.UnitPrice.Amount != "1000" || req.UnitPrice.CurrencyCode != paddlesdk.CurrencyCodeUSD {
		t.Fatalf("unexpected unit price %+v", req.UnitPrice)
	}
	if len(req.UnitPriceOverrides) != 2 {
		t.Fatalf("expected two overrides, got %d", len(req.UnitPriceOverrides))
	}
	kr := req.UnitPriceOverrides[0]
	if kr.CountryCodes[0] != paddlesdk.CountryCodeKR || kr.UnitPrice.Amount != "13000" || kr.UnitPrice.CurrencyCode != paddlesdk.CurrencyCodeKRW {
		t.Fatalf("unexpected KR override %+v", kr)
	}
	jp := req.UnitPriceOverrides[1]
	if jp.CountryCodes[0] != paddlesdk.CountryCodeJP || jp.UnitPrice.Amount != "1500" || jp.UnitPrice.CurrencyCode != paddlesdk.CurrencyCodeJPY {
		t.Fatalf("unexpected JP override %+v", jp)
	}
	if req.BillingCycle == nil || req.BillingCycle.Interval != paddlesdk.IntervalMonth || req.BillingCycle.Frequency != 1 {
		t.Fatalf("unexpected billing cycle %+v", req.BillingCycle)
	}
}

func TestCreatePriceOneTimeHasNoCycle(t *testing.T) {
	api := &fakeCatalogAPI{}
	provider := &Provider{api: api}
	snapshot := monthlySnapshot()
	snapshot.Type = enums.ProductTypePurchase

	if _, err := provider.CreatePrice(context.Background(), billing.BuildPricePayload("pro_1", snapshot)); err != nil {
		t.Fatalf("create price: %v", err)
	}
	if api.createdPrice.BillingCycle != nil {
		t.Fatalf("expected no billing cycle, got %+v", api.createdPrice.BillingCycle)
	}
}

func TestUpdatePriceKeepsID(t *testing.T) {
	api := &fakeCatalogAPI{}
	provider := &Provider{api: api}

	id, err := provider.UpdatePrice(context.Background(), "pri_existing", billing.BuildPricePayload("pro_1", monthlySnapshot()))
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if id != "pri_existing" {
		t.Fatalf("expected in-place update, got %q", id)
	}
	if api.updatedPrice.PriceID != "pri_existing" {
		t.Fatalf("unexpected price id %q", api.updatedPrice.PriceID)
	}
}

func TestProductCalls(t *testing.T) {
	api := &fakeCatalogAPI{}
	provider := &Provider{api: api}
	payload := billing.ProductPayload{Name: "Pro", CustomData: map[string]string{"product_code": "PRO"}}

	id, err := provider.CreateProduct(context.Background(), payload)
	if err != nil || id != "pro_new" {
		t.Fatalf("create product: id=%q err=%v", id, err)
	}
	if api.createdProduct.TaxCategory != paddlesdk.TaxCategoryStandard {
		t.Fatalf("expected standard tax category, got %v", api.createdProduct.TaxCategory)
	}
	if api.createdProduct.Description != nil {
		t.Fatal("empty description should be omitted")
	}
	if api.createdProduct.CustomData["product_code"] != "PRO" {
		t.Fatalf("unexpected custom data %v", api.createdProduct.CustomData)
	}

	if err := provider.UpdateProduct(context.Background(), "pro_1", payload); err != nil {
		t.Fatalf("update product: %v", err)
	}
	if api.updatedProduct.ProductID != "pro_1" {
		t.Fatalf("unexpected product id %q", api.updatedProduct.ProductID)
	}
}

func TestProviderErrorsAreClassified(t *testing.T) {
	api := &fakeCatalogAPI{err: &paddleerr.Error{Status: http.StatusBadRequest, Code: "invalid_field"}}
	provider := &Provider{api: api}

	_, err := provider.CreateProduct(context.Background(), billing.ProductPayload{Name: "Pro"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}

	api.err = errors.New("connection reset")
	_, err = provider.CreatePrice(context.Background(), billing.PricePayload{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeProvider) || !pkgerrors.IsRetryable(err) {
		t.Fatalf("expected retryable provider error, got %v", err)
	}
}

func TestNormalizeEnv(t *testing.T) {
	if env, err := normalizeEnv(""); err != nil || env != sandboxEnv {
		t.Fatalf("expected sandbox default, got %q err=%v", env, err)
	}
	if _, err := normalizeEnv("staging"); err == nil {
		t.Fatal("expected invalid env error")
	}
	if _, err := NewClient(context.Background(), config.PaddleConfig{Env: "sandbox"}, nil); !errors.Is(err, errAPIKeyRequired) {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}
