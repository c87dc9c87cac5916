package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/api/responses"
	"github.com/vora-labs/gogo-admin/api/validators"
	"github.com/vora-labs/gogo-admin/internal/admins"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

func adminServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable")
}

// ListAdmins pages the operator table. ?role= narrows by role and ?status=
// by the active flag.
func ListAdmins(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, adminServiceUnavailable())
			return
		}

		q := parseCatalogQuery(r)
		page, err := svc.List(r.Context(), admins.ListFilters{
			Search:    q.Search,
			Role:      enums.AdminRole(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("role")))),
			Status:    q.Status,
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

func GetAdmin(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, adminServiceUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "adminId")
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

// ListAdminActivity pages the activity log, newest first. ?adminId= narrows
// it to one admin.
func ListAdminActivity(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, adminServiceUnavailable())
			return
		}

		filters := admins.ActivityFilters{Page: pagination.ParsePage(r.URL.Query().Get("page"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("adminId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "adminId must be a uuid"))
				return
			}
			filters.AdminID = &id
		}

		page, err := svc.ListActivity(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
