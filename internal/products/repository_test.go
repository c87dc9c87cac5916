package product

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

func englishOnlyInput(code, name string) ProductInput {
	input := validInput()
	input.ProductCode = code
	input.I18n = []VariantInput{
		{LanguageCode: enums.LanguageEN, Name: name, CurrencyCode: enums.CurrencyUSD, Price: "4.99"},
	}
	return input
}

func TestListEmptySearchReturnsEmptyPage(t *testing.T) {
	env := newTestEnv(t)
	mustCreate(t, env, validInput())

	page, err := env.svc.List(context.Background(), ListFilters{Search: "no-such-product", Page: 2})
	require.NoError(t, err)
	require.EqualValues(t, 0, page.Total)
	require.NotNil(t, page.Data)
	require.Empty(t, page.Data)
	require.Equal(t, 2, page.Page)
	require.Equal(t, pagination.PageSize, page.PageSize)
}

func TestListSearchMatchesAnyLanguage(t *testing.T) {
	env := newTestEnv(t)
	pro := mustCreate(t, env, validInput())
	mustCreate(t, env, englishOnlyInput("LITE", "Gogo Lite"))

	page, err := env.svc.List(context.Background(), ListFilters{Search: "ゴーゴー"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, pro.ProductID, page.Data[0].ID)

	page, err = env.svc.List(context.Background(), ListFilters{Search: "ALL TOOLS"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
}

func TestListResolvesFallbackNameAndPrices(t *testing.T) {
	env := newTestEnv(t)
	lite := mustCreate(t, env, englishOnlyInput("LITE", "Gogo Lite"))

	page, err := env.svc.List(context.Background(), ListFilters{Locale: enums.LanguageKR})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	row := page.Data[0]
	require.Equal(t, lite.ProductID, row.ID)
	require.NotNil(t, row.Name)
	require.Equal(t, "Gogo Lite", *row.Name)
	require.NotNil(t, row.USDPrice)
	require.Equal(t, "4.99", row.USDPrice.StringFixed(2))
	require.Nil(t, row.KRWPrice)
	require.Nil(t, row.JPYPrice)
}

func TestListStatusFilterSortAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < pagination.PageSize+3; i++ {
		result := mustCreate(t, env, englishOnlyInput(fmt.Sprintf("P%02d", i), fmt.Sprintf("Product %02d", i)))
		ids = append(ids, result.ProductID)
	}
	require.NoError(t, env.svc.SoftDelete(ctx, ids[0]))

	page, err := env.svc.List(ctx, ListFilters{Status: enums.ProductStatusInactive})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, ids[0], page.Data[0].ID)
	require.NotNil(t, page.Data[0].DeletedAt)

	page, err = env.svc.List(ctx, ListFilters{Status: enums.ProductStatusActive, SortBy: SortByName, SortOrder: pagination.SortAsc})
	require.NoError(t, err)
	require.EqualValues(t, pagination.PageSize+2, page.Total)
	require.Len(t, page.Data, pagination.PageSize)
	require.Equal(t, 2, page.TotalPages)
	require.Equal(t, "Product 01", *page.Data[0].Name)

	page, err = env.svc.List(ctx, ListFilters{Status: enums.ProductStatusAll, SortBy: SortByName, SortOrder: pagination.SortAsc, Page: 2})
	require.NoError(t, err)
	require.EqualValues(t, pagination.PageSize+3, page.Total)
	require.Len(t, page.Data, 3)
	require.Equal(t, "Product 22", *page.Data[2].Name)
}

func TestBundledToolNameFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	english := mustCreateTool(t, env.db, "image_gen", map[enums.LanguageCode]string{enums.LanguageEN: "Image Generator"})
	bare := mustCreateTool(t, env.db, "raw_tool", nil)
	japanese := mustCreateTool(t, env.db, "voice", map[enums.LanguageCode]string{
		enums.LanguageJP: "音声",
		enums.LanguageKR: "음성",
	})

	created := mustCreate(t, env, validInput(english.ID, bare.ID, japanese.ID))

	tools, err := env.repo.ListBundledTools(ctx, created.ProductID, enums.LanguageKR)
	require.NoError(t, err)
	require.Len(t, tools, 3)
	require.Equal(t, "Image Generator", tools[0].Name)
	require.Equal(t, "raw_tool", tools[1].Name)
	require.Equal(t, "음성", tools[2].Name)

	tools, err = env.repo.ListBundledTools(ctx, created.ProductID, enums.LanguageJP)
	require.NoError(t, err)
	require.Equal(t, "音声", tools[2].Name)
}

func TestSearchBundlableTools(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mustCreateTool(t, env.db, "web_search", map[enums.LanguageCode]string{enums.LanguageKR: "웹 검색", enums.LanguageEN: "Web Search"})
	mustCreateTool(t, env.db, "pdf_reader", map[enums.LanguageCode]string{enums.LanguageEN: "PDF Reader"})
	for i := 0; i < BundlableToolLimit+5; i++ {
		mustCreateTool(t, env.db, fmt.Sprintf("bulk_%02d", i), nil)
	}

	hits, err := env.svc.SearchBundlableTools(ctx, "SEARCH", enums.LanguageKR)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "웹 검색", hits[0].Name)

	hits, err = env.svc.SearchBundlableTools(ctx, "reader", enums.LanguageJP)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "PDF Reader", hits[0].Name)

	hits, err = env.svc.SearchBundlableTools(ctx, "", enums.LanguageKR)
	require.NoError(t, err)
	require.Len(t, hits, BundlableToolLimit)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mustCreateTool(t, env.db, "web_search", nil)
	mustCreateTool(t, env.db, "webxsearch", nil)

	hits, err := env.svc.SearchBundlableTools(ctx, "web_s", enums.LanguageEN)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "web_search", hits[0].ToolCode)

	hits, err = env.svc.SearchBundlableTools(ctx, "%", enums.LanguageEN)
	require.NoError(t, err)
	require.Empty(t, hits)

	mustCreate(t, env, englishOnlyInput("SALE", "Gogo 50% off"))
	mustCreate(t, env, englishOnlyInput("PLAIN", "Gogo 500 credits"))
	page, err := env.svc.List(ctx, ListFilters{Search: "50%"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
}

func TestMergeBillingMetadataPreservesKeysAndUpdatedAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := mustCreate(t, env, validInput())

	legacy := types.BillingMetadata{Extra: map[string]json.RawMessage{"legacyPlan": json.RawMessage(`"gold"`)}}
	require.NoError(t, env.db.Model(&models.Product{}).
		Where("id = ?", created.ProductID).
		UpdateColumn("billing_metadata", legacy).Error)

	before, err := env.repo.FindByID(ctx, created.ProductID)
	require.NoError(t, err)

	syncedAt := time.Now().UTC().Add(time.Minute)
	merged, err := env.repo.MergeBillingMetadata(ctx, created.ProductID, types.BillingMetadata{
		Provider:  string(enums.BillingProviderPaddle),
		ProductID: "pro_123",
		PriceID:   "pri_456",
		SyncedAt:  &syncedAt,
	})
	require.NoError(t, err)
	require.Equal(t, "pro_123", merged.ProductID)

	after, err := env.repo.FindByID(ctx, created.ProductID)
	require.NoError(t, err)
	require.Equal(t, "pri_456", after.BillingMetadata.PriceID)
	require.JSONEq(t, `"gold"`, string(after.BillingMetadata.Extra["legacyPlan"]))
	require.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	require.False(t, after.BillingMetadata.NeedsSync(after.Version, after.UpdatedAt))
}

func TestListSyncCandidatesSkipsInactiveAndDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	active := mustCreate(t, env, validInput())
	inactiveInput := validInput()
	inactiveInput.IsActive = boolPtr(false)
	mustCreate(t, env, inactiveInput)
	deleted := mustCreate(t, env, validInput())
	require.NoError(t, env.svc.SoftDelete(ctx, deleted.ProductID))

	rows, err := env.repo.ListSyncCandidates(ctx, uuid.Nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, active.ProductID, rows[0].ID)

	rows, err = env.repo.ListSyncCandidates(ctx, active.ProductID, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}
