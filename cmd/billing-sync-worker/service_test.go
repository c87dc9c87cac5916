package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
	"github.com/vora-labs/gogo-admin/pkg/outbox/payloads"
	"github.com/vora-labs/gogo-admin/pkg/outbox/registry"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	events        []models.OutboxEvent
	fetchedBefore time.Time
	published     []uuid.UUID
	settled       []uuid.UUID
	settledUpTo   []int
	failed        []uuid.UUID
	nextAttempts  []time.Time
	terminal      []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(_ *gorm.DB, limit, _ int, createdBefore time.Time) ([]models.OutboxEvent, error) {
	f.fetchedBefore = createdBefore
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkAggregatePublishedTx(_ *gorm.DB, _ enums.OutboxEventType, _ enums.OutboxAggregateType, aggregateID uuid.UUID, upToVersion int) (int64, error) {
	f.settled = append(f.settled, aggregateID)
	f.settledUpTo = append(f.settledUpTo, upToVersion)
	return 1, nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error, nextAttemptAt time.Time) error {
	f.failed = append(f.failed, id)
	f.nextAttempts = append(f.nextAttempts, nextAttemptAt)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

// fakeSyncer reports reads[i] as the version read by call i, defaulting to 1.
type fakeSyncer struct {
	calls []uuid.UUID
	errs  map[uuid.UUID]error
	reads []int
}

func (f *fakeSyncer) Sync(_ context.Context, productID uuid.UUID) (*billing.SyncResult, error) {
	f.calls = append(f.calls, productID)
	if err := f.errs[productID]; err != nil {
		return nil, err
	}
	version := 1
	if n := len(f.calls) - 1; n < len(f.reads) {
		version = f.reads[n]
	}
	return &billing.SyncResult{ProductID: productID, RemoteProductID: "pro_1", RemotePriceID: "pri_1", Version: version}, nil
}

type fakeGuard struct {
	seen map[uuid.UUID]bool
}

func (f *fakeGuard) Guard(ctx context.Context, _ string, eventID uuid.UUID, fn func(context.Context) error) (bool, error) {
	if f.seen[eventID] {
		return true, nil
	}
	if err := fn(ctx); err != nil {
		return false, err
	}
	f.seen[eventID] = true
	return false, nil
}

func syncEvent(t *testing.T, productID uuid.UUID, createdAt time.Time) models.OutboxEvent {
	t.Helper()
	return syncEventVersion(t, productID, createdAt, 1)
}

func syncEventVersion(t *testing.T, productID uuid.UUID, createdAt time.Time, version int) models.OutboxEvent {
	t.Helper()
	data, err := json.Marshal(payloads.ProductSyncRequestedEvent{ProductID: productID, Version: version, Reason: payloads.SyncReasonUpdated})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: createdAt, Data: data})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:               uuid.New(),
		EventType:        enums.EventProductSyncRequested,
		AggregateType:    enums.AggregateProduct,
		AggregateID:      productID,
		AggregateVersion: version,
		Payload:          types.RawJSON(envelope),
		CreatedAt:        createdAt,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, dlq *fakeDLQRepo, syncer *fakeSyncer, guard idempotencyGuard) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.MaxAttempts = 3
	cfg.BillingSync.Grace = 30 * time.Second
	svc, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logger.New(logger.Options{ServiceName: "billing-sync-worker-test", Output: io.Discard}),
		DB:            fakeDB{},
		Repository:    repo,
		DLQRepository: dlq,
		Registry:      registry.NewEventRegistry(),
		Syncer:        syncer,
		Idempotency:   guard,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProcessBatchSyncsAndSettles(t *testing.T) {
	productID := uuid.New()
	created := time.Now().UTC().Add(-time.Minute)
	repo := &fakeRepo{events: []models.OutboxEvent{
		syncEvent(t, productID, created),
		syncEvent(t, productID, created.Add(time.Second)),
	}}
	syncer := &fakeSyncer{}
	svc := newTestService(t, repo, &fakeDLQRepo{}, syncer, nil)

	before := time.Now().UTC()
	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(syncer.calls) != 1 {
		t.Fatalf("expected one sync for duplicate events, got %d", len(syncer.calls))
	}
	if len(repo.published) != 2 {
		t.Fatalf("expected both events published, got %d", len(repo.published))
	}
	if len(repo.settled) != 1 || repo.settled[0] != productID {
		t.Fatalf("expected aggregate settled once, got %v", repo.settled)
	}
	if repo.settledUpTo[0] != 1 {
		t.Fatalf("expected settle up to version 1, got %d", repo.settledUpTo[0])
	}
	if repo.fetchedBefore.After(before.Add(-29 * time.Second)) {
		t.Fatalf("expected grace window applied, fetched before %v", repo.fetchedBefore)
	}
}

func TestProcessBatchResyncsEventsNewerThanTheReadVersion(t *testing.T) {
	productID := uuid.New()
	created := time.Now().UTC().Add(-time.Minute)
	repo := &fakeRepo{events: []models.OutboxEvent{
		syncEventVersion(t, productID, created, 1),
		syncEventVersion(t, productID, created.Add(time.Second), 2),
	}}
	// The first sync read version 1, before the second edit committed.
	syncer := &fakeSyncer{reads: []int{1, 2}}
	svc := newTestService(t, repo, &fakeDLQRepo{}, syncer, nil)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(syncer.calls) != 2 {
		t.Fatalf("expected the newer version synced again, got %d calls", len(syncer.calls))
	}
	if len(repo.settledUpTo) != 2 || repo.settledUpTo[0] != 1 || repo.settledUpTo[1] != 2 {
		t.Fatalf("expected settles up to versions [1 2], got %v", repo.settledUpTo)
	}
}

func TestProcessBatchRetriesTransientFailures(t *testing.T) {
	failing := uuid.New()
	healthy := uuid.New()
	created := time.Now().UTC().Add(-time.Minute)
	repo := &fakeRepo{events: []models.OutboxEvent{
		syncEvent(t, failing, created),
		syncEvent(t, healthy, created),
	}}
	syncer := &fakeSyncer{errs: map[uuid.UUID]error{
		failing: pkgerrors.Wrap(pkgerrors.CodeProvider, errors.New("502"), "paddle create product failed"),
	}}
	dlq := &fakeDLQRepo{}
	svc := newTestService(t, repo, dlq, syncer, nil)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(repo.failed) != 1 || repo.failed[0] != repo.events[0].ID {
		t.Fatalf("expected first event retried, got %v", repo.failed)
	}
	if !repo.nextAttempts[0].After(time.Now().UTC()) {
		t.Fatalf("expected next attempt in the future")
	}
	if len(repo.published) != 1 || repo.published[0] != repo.events[1].ID {
		t.Fatalf("expected second event published, got %v", repo.published)
	}
	if len(dlq.entries) != 0 {
		t.Fatalf("expected no dlq entries, got %d", len(dlq.entries))
	}
}

func TestProcessBatchDeadLettersRejectedAndExhausted(t *testing.T) {
	rejected := uuid.New()
	exhausted := uuid.New()
	created := time.Now().UTC().Add(-time.Minute)
	exhaustedEvent := syncEvent(t, exhausted, created)
	exhaustedEvent.AttemptCount = 2
	repo := &fakeRepo{events: []models.OutboxEvent{syncEvent(t, rejected, created), exhaustedEvent}}
	syncer := &fakeSyncer{errs: map[uuid.UUID]error{
		rejected:  pkgerrors.Wrap(pkgerrors.CodeRejected, errors.New("400"), "paddle create price failed"),
		exhausted: pkgerrors.New(pkgerrors.CodeConflict, "sync already in progress"),
	}}
	dlq := &fakeDLQRepo{}
	svc := newTestService(t, repo, dlq, syncer, nil)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(dlq.entries) != 2 {
		t.Fatalf("expected two dlq entries, got %d", len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("unexpected reason %s", dlq.entries[0].ErrorReason)
	}
	if dlq.entries[1].ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("unexpected reason %s", dlq.entries[1].ErrorReason)
	}
	if len(repo.terminal) != 2 {
		t.Fatalf("expected two terminal rows, got %d", len(repo.terminal))
	}
}

func TestProcessBatchDeadLettersUndecodableEvents(t *testing.T) {
	event := syncEvent(t, uuid.New(), time.Now().UTC())
	event.Payload = types.RawJSON(`{"version":1,"data":null}`)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	syncer := &fakeSyncer{}
	svc := newTestService(t, repo, dlq, syncer, nil)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(syncer.calls) != 0 {
		t.Fatalf("expected no sync calls")
	}
	if len(dlq.entries) != 1 || dlq.entries[0].EventID != event.ID {
		t.Fatalf("expected event dead-lettered, got %+v", dlq.entries)
	}
}

func TestProcessBatchSkipsAlreadyHandledEvents(t *testing.T) {
	event := syncEvent(t, uuid.New(), time.Now().UTC().Add(-time.Minute))
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	syncer := &fakeSyncer{}
	guard := &fakeGuard{seen: map[uuid.UUID]bool{event.ID: true}}
	svc := newTestService(t, repo, &fakeDLQRepo{}, syncer, guard)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(syncer.calls) != 0 {
		t.Fatalf("expected guarded event to skip sync")
	}
	if len(repo.published) != 1 {
		t.Fatalf("expected guarded event marked published")
	}
}

func TestRetryDelay(t *testing.T) {
	if got := retryDelay(1); got != retryBase {
		t.Fatalf("retryDelay(1) = %v", got)
	}
	if got := retryDelay(3); got != 4*retryBase {
		t.Fatalf("retryDelay(3) = %v", got)
	}
	if got := retryDelay(20); got != maxRetryDelay {
		t.Fatalf("retryDelay(20) = %v", got)
	}
}
