package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
	"github.com/vora-labs/gogo-admin/pkg/outbox/payloads"
)

const driftPageSize = 200

type syncCandidateLister interface {
	ListSyncCandidates(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pendingEmitter interface {
	EmitIfNotPending(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

type BillingDriftJobParams struct {
	Logger   *logger.Logger
	Products syncCandidateLister
	DB       txRunner
	Outbox   pendingEmitter
	PageSize int
}

// NewBillingDriftJob requeues active products whose local row changed after
// the last successful provider sync, or that were never linked.
func NewBillingDriftJob(params BillingDriftJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = driftPageSize
	}
	return &billingDriftJob{
		logg:     params.Logger,
		products: params.Products,
		db:       params.DB,
		outbox:   params.Outbox,
		pageSize: pageSize,
	}, nil
}

type billingDriftJob struct {
	logg     *logger.Logger
	products syncCandidateLister
	db       txRunner
	outbox   pendingEmitter
	pageSize int
}

func (j *billingDriftJob) Name() string { return "billing-drift-reconcile" }

func (j *billingDriftJob) Run(ctx context.Context) error {
	var scanned, drifted, queued int
	after := uuid.Nil
	for {
		page, err := j.products.ListSyncCandidates(ctx, after, j.pageSize)
		if err != nil {
			return fmt.Errorf("list sync candidates: %w", err)
		}
		for _, product := range page {
			scanned++
			if !product.BillingMetadata.NeedsSync(product.Version, product.UpdatedAt) {
				continue
			}
			drifted++
			written, err := j.enqueue(ctx, product)
			if err != nil {
				return fmt.Errorf("enqueue drift sync %s: %w", product.ID, err)
			}
			if written {
				queued++
			}
		}
		if len(page) < j.pageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"products_scanned": scanned,
		"products_drifted": drifted,
		"events_queued":    queued,
	})
	j.logg.Info(logCtx, "billing drift reconcile complete")
	return nil
}

func (j *billingDriftJob) enqueue(ctx context.Context, product models.Product) (bool, error) {
	var written bool
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		written, err = j.outbox.EmitIfNotPending(ctx, tx, outbox.DomainEvent{
			EventType:        enums.EventProductSyncRequested,
			AggregateType:    enums.AggregateProduct,
			AggregateID:      product.ID,
			AggregateVersion: product.Version,
			Data: payloads.ProductSyncRequestedEvent{
				ProductID: product.ID,
				Version:   product.Version,
				Reason:    payloads.SyncReasonDrift,
			},
		})
		return err
	})
	return written, err
}
