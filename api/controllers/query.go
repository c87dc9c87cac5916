package controllers

import (
	"net/http"
	"strings"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/locale"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// catalogQuery holds the list parameters shared by the product and tool tables.
type catalogQuery struct {
	Search    string
	Status    enums.ProductStatusFilter
	SortBy    string
	SortOrder pagination.SortOrder
	Page      int
	Locale    enums.LanguageCode
}

func parseCatalogQuery(r *http.Request) catalogQuery {
	q := r.URL.Query()
	return catalogQuery{
		Search:    strings.TrimSpace(q.Get("search")),
		Status:    enums.ProductStatusFilter(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: pagination.ParseSortOrder(q.Get("sortOrder")),
		Page:      pagination.ParsePage(q.Get("page")),
		Locale:    requestLocale(r),
	}
}

// requestLocale reads ?locale= and falls back to Accept-Language.
func requestLocale(r *http.Request) enums.LanguageCode {
	raw := strings.TrimSpace(r.URL.Query().Get("locale"))
	if raw == "" {
		raw = r.Header.Get("Accept-Language")
		if idx := strings.IndexAny(raw, ",;"); idx >= 0 {
			raw = raw[:idx]
		}
	}
	return locale.FromUI(raw)
}
