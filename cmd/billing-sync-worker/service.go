package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/metrics"
	"github.com/vora-labs/gogo-admin/pkg/outbox/payloads"
	"github.com/vora-labs/gogo-admin/pkg/outbox/registry"
)

const (
	consumerName       = "billing-sync-worker"
	defaultBatchSize   = 25
	defaultPollMs      = 1000
	defaultMaxAttempts = 8
	maxBackoff         = 10 * time.Second
	retryBase          = 5 * time.Second
	maxRetryDelay      = 30 * time.Minute
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int, createdBefore time.Time) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkAggregatePublishedTx(tx *gorm.DB, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, upToVersion int) (int64, error)
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error, nextAttemptAt time.Time) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type syncer interface {
	Sync(ctx context.Context, productID uuid.UUID) (*billing.SyncResult, error)
}

type idempotencyGuard interface {
	Guard(ctx context.Context, consumer string, eventID uuid.UUID, fn func(context.Context) error) (bool, error)
}

type ServiceParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            dbClient
	Repository    outboxRepository
	DLQRepository dlqRepository
	Registry      registryResolver
	Syncer        syncer
	Idempotency   idempotencyGuard
	Metrics       *metrics.OutboxMetrics
}

// Service drains product.sync_requested events into billing provider syncs.
type Service struct {
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	dlq          dlqRepository
	registry     registryResolver
	syncer       syncer
	idempotency  idempotencyGuard
	metrics      *metrics.OutboxMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
	grace        time.Duration
	now          func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.DLQRepository == nil {
		return nil, errors.New("dlq repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("event registry is required")
	}
	if params.Syncer == nil {
		return nil, errors.New("billing syncer is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	grace := params.Config.BillingSync.Grace
	if grace < 0 {
		grace = 0
	}

	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		dlq:          params.DLQRepository,
		registry:     params.Registry,
		syncer:       params.Syncer,
		idempotency:  params.Idempotency,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
		grace:        grace,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.db.Ping(ctx); err != nil {
		s.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}

	interval := s.pollInterval
	if interval <= 0 {
		interval = time.Duration(defaultPollMs) * time.Millisecond
	}
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "billing sync worker context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "billing sync batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// processBatch claims due events and syncs each product once. Events newer
// than the grace window are left for the inline sync that queued them.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts, s.now().Add(-s.grace))
		if err != nil {
			return err
		}
		s.metrics.ObserveBatch(len(events))
		if len(events) == 0 {
			return nil
		}

		processed = true
		synced := map[uuid.UUID]int{}
		for _, event := range events {
			fields := s.eventFields(event)

			resolved, err := s.registry.Resolve(event)
			if err != nil {
				if markErr := s.handleTerminal(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, fields); markErr != nil {
					return markErr
				}
				continue
			}
			payload, ok := resolved.Payload.(*payloads.ProductSyncRequestedEvent)
			if !ok {
				err := fmt.Errorf("unexpected payload %T", resolved.Payload)
				if markErr := s.handleTerminal(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, fields); markErr != nil {
					return markErr
				}
				continue
			}
			fields["reason"] = payload.Reason

			if version, done := synced[event.AggregateID]; done && event.AggregateVersion <= version {
				if markErr := s.repo.MarkPublishedTx(tx, event.ID); markErr != nil {
					return fmt.Errorf("mark published %s: %w", event.ID, markErr)
				}
				s.metrics.IncEvent(string(event.EventType), metrics.EventDuplicate)
				continue
			}

			version, err := s.handle(ctx, event, payload)
			if err != nil {
				if !pkgerrors.IsRetryable(err) {
					if markErr := s.handleTerminal(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, fields); markErr != nil {
						return markErr
					}
					continue
				}

				nextAttempt := event.AttemptCount + 1
				fields["attempt_count"] = nextAttempt

				if nextAttempt >= s.maxAttempts {
					fields["terminal_reason"] = "max_attempts"
					terminalErr := fmt.Errorf("max sync attempts reached: %w", err)
					if markErr := s.handleTerminal(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts, terminalErr, fields); markErr != nil {
						return markErr
					}
					continue
				}

				ctxWithFields := s.logg.WithFields(ctx, fields)
				ctxWithFields = s.logg.WithField(ctxWithFields, "error", err.Error())
				s.logg.Warn(ctxWithFields, "billing sync failed; will retry")
				if markErr := s.repo.MarkFailedTx(tx, event.ID, err, s.now().Add(retryDelay(nextAttempt))); markErr != nil {
					return fmt.Errorf("mark failure %s: %w", event.ID, markErr)
				}
				s.metrics.IncEvent(string(event.EventType), metrics.EventRetried)
				continue
			}

			synced[event.AggregateID] = version
			fields["synced_version"] = version
			if markErr := s.repo.MarkPublishedTx(tx, event.ID); markErr != nil {
				return fmt.Errorf("mark published %s: %w", event.ID, markErr)
			}
			if _, markErr := s.repo.MarkAggregatePublishedTx(tx, event.EventType, event.AggregateType, event.AggregateID, version); markErr != nil {
				return fmt.Errorf("settle aggregate %s: %w", event.AggregateID, markErr)
			}
			s.metrics.IncEvent(string(event.EventType), metrics.EventPublished)
			s.logg.Info(s.logg.WithFields(ctx, fields), "product synced from outbox")
		}
		return nil
	})
	return processed, err
}

// handle syncs the event's product and returns the aggregate version the
// sync pushed. An event already handled elsewhere only covers its own version.
func (s *Service) handle(ctx context.Context, event models.OutboxEvent, payload *payloads.ProductSyncRequestedEvent) (int, error) {
	productID := payload.ProductID
	if productID == uuid.Nil {
		productID = event.AggregateID
	}
	version := event.AggregateVersion
	sync := func(ctx context.Context) error {
		result, err := s.syncer.Sync(ctx, productID)
		if err != nil {
			return err
		}
		version = result.Version
		return nil
	}
	if s.idempotency == nil {
		return version, sync(ctx)
	}
	skipped, err := s.idempotency.Guard(ctx, consumerName, event.ID, sync)
	if skipped {
		s.metrics.IncEvent(string(event.EventType), metrics.EventDuplicate)
	}
	return version, err
}

func (s *Service) handleTerminal(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, err error, fields map[string]any) error {
	fields["error_reason"] = reason
	ctxWithFields := s.logg.WithFields(ctx, fields)
	ctxWithFields = s.logg.WithField(ctxWithFields, "error", err.Error())
	s.logg.Warn(ctxWithFields, "billing sync event will not be retried")

	message := err.Error()
	dlqEntry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &message,
		AttemptCount:  event.AttemptCount,
		FailedAt:      s.now(),
	}
	if dlqErr := s.dlq.InsertTx(tx, dlqEntry); dlqErr != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, dlqErr)
	}
	if markErr := s.repo.MarkTerminalTx(tx, event.ID, err, s.maxAttempts); markErr != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, markErr)
	}
	s.metrics.IncEvent(string(event.EventType), metrics.EventDeadLettered)
	return nil
}

func (s *Service) eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"batch_size":     s.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelay doubles from retryBase per attempt, capped at maxRetryDelay.
func retryDelay(attempt int) time.Duration {
	delay := retryBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}
