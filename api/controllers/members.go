package controllers

import (
	"net/http"

	"github.com/vora-labs/gogo-admin/api/responses"
	"github.com/vora-labs/gogo-admin/api/validators"
	"github.com/vora-labs/gogo-admin/internal/members"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
)

func memberServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable")
}

func ListMembers(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, memberServiceUnavailable())
			return
		}

		q := parseCatalogQuery(r)
		page, err := svc.List(r.Context(), members.ListFilters{
			Search:    q.Search,
			SortBy:    q.SortBy,
			SortOrder: q.SortOrder,
			Page:      q.Page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func GetMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, memberServiceUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetDetail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
