package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
	"github.com/vora-labs/gogo-admin/pkg/outbox/payloads"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
	"github.com/vora-labs/gogo-admin/pkg/types"
	"github.com/vora-labs/gogo-admin/pkg/validation"
)

// Service exposes admin catalog management operations.
type Service interface {
	Create(ctx context.Context, input ProductInput) (*MutationResult, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*MutationResult, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Resync(ctx context.Context, id uuid.UUID) (*MutationResult, error)
	GetByID(ctx context.Context, id uuid.UUID, lang enums.LanguageCode) (*ProductDTO, error)
	List(ctx context.Context, filters ListFilters) (pagination.Page[ListRow], error)
	SearchBundlableTools(ctx context.Context, query string, lang enums.LanguageCode) ([]BundlableToolDTO, error)
}

// Syncer pushes a committed product to the billing provider.
type Syncer interface {
	Sync(ctx context.Context, productID uuid.UUID) (*billing.SyncResult, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (uuid.UUID, error)
	Settle(ctx context.Context, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, syncedVersion int) (int64, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	outbox   eventEmitter
	syncer   Syncer
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the product service. A nil syncer disables the
// inline sync; queued events are then left to the billing sync worker.
func NewService(repo *Repository, dbClient *db.Client, emitter eventEmitter, syncer Syncer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		outbox:   emitter,
		syncer:   syncer,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create writes the aggregate and queues a sync in one transaction, then
// attempts the sync inline.
func (s *service) Create(ctx context.Context, input ProductInput) (*MutationResult, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:              uuid.New(),
		Type:            input.Type,
		Category:        input.Category,
		BillingCycle:    input.BillingCycle,
		ProductCode:     input.ProductCode,
		IconImageURL:    input.IconImageURL,
		IsActive:        input.IsActive == nil || *input.IsActive,
		BillingMetadata: types.BillingMetadata{},
		Version:         1,
	}
	variants, err := input.variantRows(product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant price")
	}
	bundle, err := input.toolRows(product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tool id")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateProduct(ctx, product); err != nil {
			return err
		}
		if err := txRepo.InsertVariants(ctx, variants); err != nil {
			return err
		}
		if err := txRepo.InsertTools(ctx, bundle); err != nil {
			return err
		}
		return s.emitSync(ctx, tx, product, payloads.SyncReasonCreated)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create product")
	}

	ctx = s.logg.WithProductID(ctx, product.ID.String())
	s.logg.Info(ctx, "product created")

	return &MutationResult{
		ProductID: product.ID,
		Version:   product.Version,
		Sync:      s.syncInline(ctx, product.ID),
	}, nil
}

// Update replaces the aggregate's base fields, variants and bundle, then
// attempts the sync inline.
func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*MutationResult, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	variants, err := input.variantRows(id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant price")
	}
	bundle, err := input.toolRows(id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tool id")
	}

	var version int
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}
		if product.DeletedAt != nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if input.ExpectedVersion != nil && *input.ExpectedVersion != product.Version {
			return versionConflict(*input.ExpectedVersion, product.Version)
		}

		applyInput(product, input)
		if err := txRepo.UpdateBase(ctx, product, product.Version, s.now()); err != nil {
			if errors.Is(err, errVersionConflict) {
				return versionConflict(product.Version, product.Version+1)
			}
			return err
		}
		if err := txRepo.ReplaceVariants(ctx, id, variants); err != nil {
			return err
		}
		if err := txRepo.ReplaceTools(ctx, id, bundle); err != nil {
			return err
		}
		version = product.Version
		return s.emitSync(ctx, tx, product, payloads.SyncReasonUpdated)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update product")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"product_id": id.String(), "version": version})
	s.logg.Info(ctx, "product updated")

	return &MutationResult{
		ProductID: id,
		Version:   version,
		Sync:      s.syncInline(ctx, id),
	}, nil
}

// SoftDelete deactivates the product. Variants, bundle rows and remote
// billing objects are left as they are.
func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.DeletedAt != nil {
		return nil
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete product")
	}
	s.logg.Info(s.logg.WithProductID(ctx, id.String()), "product soft deleted")
	return nil
}

// Resync queues and runs a sync for an existing product without changing it.
func (s *service) Resync(ctx context.Context, id uuid.UUID) (*MutationResult, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.emitSync(ctx, tx, product, payloads.SyncReasonManual)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to queue product sync")
	}
	ctx = s.logg.WithProductID(ctx, id.String())
	s.logg.Info(ctx, "product resync requested")

	return &MutationResult{
		ProductID: id,
		Version:   product.Version,
		Sync:      s.syncInline(ctx, id),
	}, nil
}

func (s *service) emitSync(ctx context.Context, tx *gorm.DB, product *models.Product, reason string) error {
	_, err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:        enums.EventProductSyncRequested,
		AggregateType:    enums.AggregateProduct,
		AggregateID:      product.ID,
		AggregateVersion: product.Version,
		Data: payloads.ProductSyncRequestedEvent{
			ProductID: product.ID,
			Version:   product.Version,
			Reason:    reason,
		},
	})
	return err
}

// syncInline runs the billing sync after commit. Its failure never undoes the
// catalog write; the queued event stays pending for the worker instead.
func (s *service) syncInline(ctx context.Context, productID uuid.UUID) SyncReport {
	if s.syncer == nil {
		return SyncReport{Status: enums.SyncStatusSkipped}
	}
	result, err := s.syncer.Sync(ctx, productID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inline billing sync failed; left for worker")
		return SyncReport{Status: enums.SyncStatusFailed, Error: pkgerrors.UserMessage(err)}
	}
	// Only events up to the version the sync read are covered; a concurrent
	// edit keeps its event pending for the worker.
	if _, err := s.outbox.Settle(ctx, enums.EventProductSyncRequested, enums.AggregateProduct, productID, result.Version); err != nil {
		s.logg.Error(ctx, "failed to settle sync events", err)
	}
	return SyncReport{
		Status:          enums.SyncStatusSynced,
		RemoteProductID: result.RemoteProductID,
		RemotePriceID:   result.RemotePriceID,
	}
}

func applyInput(product *models.Product, input ProductInput) {
	product.Type = input.Type
	product.Category = input.Category
	product.BillingCycle = input.BillingCycle
	product.ProductCode = input.ProductCode
	product.IconImageURL = input.IconImageURL
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}

func versionConflict(expected, actual int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "product was modified by another request").
		WithDetails(map[string]any{"expectedVersion": expected, "currentVersion": actual})
}
