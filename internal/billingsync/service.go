// Package billingsync pushes committed catalog products to the configured
// billing provider and records the remote linkage on the product.
package billingsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	product "github.com/vora-labs/gogo-admin/internal/products"
	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/metrics"
	"github.com/vora-labs/gogo-admin/pkg/redis"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

const (
	defaultLockTTL     = 2 * time.Minute
	defaultCallTimeout = 20 * time.Second
)

// LockFactory hands out the per-product sync lock.
type LockFactory interface {
	NewSyncLock(productID string, ttl time.Duration) (redis.Lock, error)
}

// ServiceParams groups dependencies for the sync service.
type ServiceParams struct {
	Repo        *product.Repository
	Provider    billing.Provider
	Locks       LockFactory
	Metrics     *metrics.BillingSyncMetrics
	Logger      *logger.Logger
	LockTTL     time.Duration
	CallTimeout time.Duration
}

// Service syncs one product at a time to the billing provider.
type Service struct {
	repo        *product.Repository
	provider    billing.Provider
	locks       LockFactory
	metrics     *metrics.BillingSyncMetrics
	logg        *logger.Logger
	lockTTL     time.Duration
	callTimeout time.Duration
	now         func() time.Time
}

// NewService builds a sync service. Locks may be nil when a single process
// owns every sync, as in tests.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("product repository is required")
	}
	if params.Provider == nil {
		return nil, errors.New("billing provider is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	lockTTL := params.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	callTimeout := params.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Service{
		repo:        params.Repo,
		provider:    params.Provider,
		locks:       params.Locks,
		metrics:     params.Metrics,
		logg:        params.Logger,
		lockTTL:     lockTTL,
		callTimeout: callTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Provider reports which billing provider the service talks to.
func (s *Service) Provider() enums.BillingProvider {
	return s.provider.Name()
}

// Sync pushes the current state of productID to the provider. It is safe to
// call repeatedly: stored remote ids turn creates into updates.
func (s *Service) Sync(ctx context.Context, productID uuid.UUID) (*billing.SyncResult, error) {
	started := time.Now()
	provider := s.provider.Name().String()
	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id": productID.String(),
		"provider":   provider,
	})

	if s.locks != nil {
		lock, err := s.locks.NewSyncLock(productID.String(), s.lockTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build sync lock")
		}
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			s.metrics.Observe(provider, metrics.OutcomeFailure, time.Since(started))
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire sync lock")
		}
		if !acquired {
			s.metrics.Observe(provider, metrics.OutcomeBusy, time.Since(started))
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sync already in progress")
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to release sync lock")
			}
		}()
	}

	result, err := s.sync(ctx, productID)
	if err != nil {
		s.metrics.Observe(provider, metrics.OutcomeFailure, time.Since(started))
		s.logg.Error(ctx, "billing sync failed", err)
		return nil, err
	}
	s.metrics.Observe(provider, metrics.OutcomeSuccess, time.Since(started))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"remote_product_id": result.RemoteProductID,
		"remote_price_id":   result.RemotePriceID,
	}), "billing sync complete")
	return result, nil
}

func (s *Service) sync(ctx context.Context, productID uuid.UUID) (*billing.SyncResult, error) {
	aggregate, err := product.LoadAggregate(ctx, s.repo, productID, enums.LanguageEN)
	if err != nil {
		return nil, err
	}
	snapshot := SnapshotOf(aggregate)
	if _, ok := aggregate.Variant(enums.LanguageEN); !ok {
		s.logg.Warn(ctx, "product has no EN variant; pushing empty name and zero USD price")
	}
	meta := aggregate.BillingMetadata
	providerName := s.provider.Name()

	remoteProductID := meta.ProductID
	productPayload := billing.BuildProductPayload(snapshot)
	if remoteProductID != "" && (meta.Provider == "" || meta.Provider == providerName.String()) {
		if err := s.call(ctx, func(callCtx context.Context) error {
			return s.provider.UpdateProduct(callCtx, remoteProductID, productPayload)
		}); err != nil {
			return nil, err
		}
	} else {
		err := s.call(ctx, func(callCtx context.Context) error {
			id, err := s.provider.CreateProduct(callCtx, productPayload)
			remoteProductID = id
			return err
		})
		if err != nil {
			return nil, err
		}
		// Record the new product before touching prices so a retry updates it
		// instead of creating a duplicate.
		if _, err := s.repo.MergeBillingMetadata(ctx, productID, types.BillingMetadata{
			Provider:  providerName.String(),
			ProductID: remoteProductID,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist remote product id")
		}
		meta.PriceID = ""
	}

	remotePriceID := meta.PriceID
	pricePayload := billing.BuildPricePayload(remoteProductID, snapshot)
	err = s.call(ctx, func(callCtx context.Context) error {
		var err error
		if remotePriceID != "" {
			remotePriceID, err = s.provider.UpdatePrice(callCtx, remotePriceID, pricePayload)
		} else {
			remotePriceID, err = s.provider.CreatePrice(callCtx, pricePayload)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	syncedAt := s.now()
	if _, err := s.repo.MergeBillingMetadata(ctx, productID, types.BillingMetadata{
		Provider:      providerName.String(),
		ProductID:     remoteProductID,
		PriceID:       remotePriceID,
		SyncedAt:      &syncedAt,
		SyncedVersion: aggregate.Version,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist billing metadata")
	}

	return &billing.SyncResult{
		ProductID:       productID,
		Provider:        providerName,
		RemoteProductID: remoteProductID,
		RemotePriceID:   remotePriceID,
		Version:         aggregate.Version,
		SyncedAt:        syncedAt,
	}, nil
}

// call bounds one provider request by the configured timeout.
func (s *Service) call(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return fn(callCtx)
}

// SnapshotOf reads the provider-facing state out of a loaded aggregate. Name
// and description come from the EN variant and stay empty without one; each
// currency takes its price from the variant of the matching language.
func SnapshotOf(p *product.ProductDTO) billing.Snapshot {
	snapshot := billing.Snapshot{
		ProductID:    p.ID,
		ProductCode:  p.ProductCode,
		Type:         p.Type,
		BillingCycle: p.BillingCycle,
		USD:          p.PriceFor(enums.LanguageEN),
		KRW:          p.PriceFor(enums.LanguageKR),
		JPY:          p.PriceFor(enums.LanguageJP),
	}
	if en, ok := p.Variant(enums.LanguageEN); ok {
		snapshot.Name = en.Name
		if en.Description != nil {
			snapshot.Description = *en.Description
		}
	}
	if p.IconImageURL != nil {
		snapshot.IconURL = *p.IconImageURL
	}
	return snapshot
}
