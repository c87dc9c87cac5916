package product

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/db/dbtest"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
)

// fakeSyncer reports the stored version as synced unless readVersion pins
// the version it claims to have read.
type fakeSyncer struct {
	repo        *Repository
	calls       []uuid.UUID
	err         error
	readVersion int
}

func (f *fakeSyncer) Sync(ctx context.Context, productID uuid.UUID) (*billing.SyncResult, error) {
	f.calls = append(f.calls, productID)
	if f.err != nil {
		return nil, f.err
	}
	version := f.readVersion
	if version == 0 && f.repo != nil {
		stored, err := f.repo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		version = stored.Version
	}
	return &billing.SyncResult{
		ProductID:       productID,
		Provider:        enums.BillingProviderPaddle,
		RemoteProductID: "pro_" + productID.String()[:8],
		RemotePriceID:   "pri_" + productID.String()[:8],
		Version:         version,
		SyncedAt:        time.Now().UTC(),
	}, nil
}

type testEnv struct {
	db     *gorm.DB
	repo   *Repository
	svc    *service
	syncer *fakeSyncer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	client, conn := dbtest.Client(t)
	repo := NewRepository(conn)
	syncer := &fakeSyncer{repo: repo}
	logg := logger.New(logger.Options{ServiceName: "product-test", Output: io.Discard})
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	svc, err := NewService(repo, client, emitter, syncer, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testEnv{db: conn, repo: repo, svc: svc.(*service), syncer: syncer}
}

func boolPtr(v bool) *bool       { return &v }
func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }

func validInput(toolIDs ...uuid.UUID) ProductInput {
	input := ProductInput{
		Type:         enums.ProductTypeSubscription,
		Category:     stringPtr("membership"),
		BillingCycle: enums.BillingCycleMonthly,
		ProductCode:  "GOGO_PRO",
		IsActive:     boolPtr(true),
		I18n: []VariantInput{
			{LanguageCode: enums.LanguageKR, Name: "고고 프로", CurrencyCode: enums.CurrencyKRW, Price: "13000"},
			{LanguageCode: enums.LanguageEN, Name: "Gogo Pro", Description: stringPtr("All tools"), CurrencyCode: enums.CurrencyUSD, Price: "10.00"},
			{LanguageCode: enums.LanguageJP, Name: "ゴーゴープロ", CurrencyCode: enums.CurrencyJPY, Price: "1500"},
		},
	}
	for i, id := range toolIDs {
		input.Tools = append(input.Tools, ToolInput{ToolID: id.String(), QuotaAllocation: intPtr(100), SortOrder: i})
	}
	return input
}

func mustCreateTool(t *testing.T, db *gorm.DB, code string, names map[enums.LanguageCode]string) *models.Tool {
	t.Helper()
	tool := &models.Tool{ToolCode: code, IsActive: true}
	if err := db.Create(tool).Error; err != nil {
		t.Fatalf("create tool: %v", err)
	}
	for lang, name := range names {
		row := &models.ToolI18n{ToolID: tool.ID, LanguageCode: lang, Name: name}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("create tool i18n: %v", err)
		}
	}
	return tool
}

func mustCreate(t *testing.T, env *testEnv, input ProductInput) *MutationResult {
	t.Helper()
	result, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return result
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func pendingSyncEvents(t *testing.T, db *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()
	var count int64
	err := db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ? AND published_at IS NULL", productID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	return count
}

var errProviderDown = errors.New("provider unavailable")
