package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/api/responses"
	"github.com/vora-labs/gogo-admin/api/validators"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
)

// SyncFailureLister reads dead-lettered sync events.
type SyncFailureLister interface {
	List(ctx context.Context, filter outbox.DLQFilter) ([]models.OutboxDLQ, error)
}

type syncFailureDTO struct {
	ID           uuid.UUID                  `json:"id"`
	EventID      uuid.UUID                  `json:"eventId"`
	EventType    enums.OutboxEventType      `json:"eventType"`
	ProductID    uuid.UUID                  `json:"productId"`
	ErrorReason  enums.OutboxDLQErrorReason `json:"errorReason"`
	ErrorMessage *string                    `json:"errorMessage"`
	AttemptCount int                        `json:"attemptCount"`
	FailedAt     time.Time                  `json:"failedAt"`
}

// ListSyncFailures returns the most recent dead-lettered billing syncs.
func ListSyncFailures(repo SyncFailureLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dlq repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseOptionalUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := outbox.DLQFilter{Limit: limit, AggregateID: productID}
		if productID != nil {
			filter.AggregateType = enums.AggregateProduct
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("aggregateType")); raw != "" {
			aggType, parseErr := enums.ParseOutboxAggregateType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid aggregateType"))
				return
			}
			filter.AggregateType = aggType
		}

		rows, err := repo.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sync failures"))
			return
		}

		out := make([]syncFailureDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, syncFailureDTO{
				ID:           row.ID,
				EventID:      row.EventID,
				EventType:    row.EventType,
				ProductID:    row.AggregateID,
				ErrorReason:  row.ErrorReason,
				ErrorMessage: row.ErrorMessage,
				AttemptCount: row.AttemptCount,
				FailedAt:     row.FailedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
