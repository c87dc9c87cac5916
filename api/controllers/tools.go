package controllers

import (
	"net/http"

	"github.com/vora-labs/gogo-admin/api/responses"
	"github.com/vora-labs/gogo-admin/api/validators"
	tool "github.com/vora-labs/gogo-admin/internal/tools"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
)

type toggleToolRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func toolServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "tool service unavailable")
}

func ListTools(svc tool.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, toolServiceUnavailable())
			return
		}

		q := parseCatalogQuery(r)
		page, err := svc.List(r.Context(), tool.ListFilters{
			Search:    q.Search,
			Status:    q.Status,
			SortBy:    q.SortBy,
			SortOrder: q.SortOrder,
			Page:      q.Page,
			Locale:    q.Locale,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func GetTool(svc tool.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, toolServiceUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "toolId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func CreateTool(svc tool.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, toolServiceUnavailable())
			return
		}

		var input tool.CreateInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateTool applies a partial update; omitted fields keep their stored value.
func UpdateTool(svc tool.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, toolServiceUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "toolId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input tool.UpdateInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func DeleteTool(svc tool.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, toolServiceUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "toolId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

func ToggleToolStatus(svc tool.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, toolServiceUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "toolId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body toggleToolRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ToggleStatus(r.Context(), id, *body.IsActive); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": id, "isActive": *body.IsActive})
	}
}
