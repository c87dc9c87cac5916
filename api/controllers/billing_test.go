package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
)

type stubDLQLister struct {
	filter outbox.DLQFilter
	rows   []models.OutboxDLQ
	err    error
}

func (s *stubDLQLister) List(ctx context.Context, filter outbox.DLQFilter) ([]models.OutboxDLQ, error) {
	s.filter = filter
	return s.rows, s.err
}

func TestListSyncFailures(t *testing.T) {
	productID := uuid.New()
	msg := "paddle: 502 bad gateway"
	stub := &stubDLQLister{rows: []models.OutboxDLQ{{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     enums.EventProductSyncRequested,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &msg,
		AttemptCount:  10,
		FailedAt:      time.Now().UTC(),
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/billing/sync-failures?limit=5&productId="+productID.String(), nil)
	rec := httptest.NewRecorder()
	ListSyncFailures(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.filter.Limit != 5 || stub.filter.AggregateID == nil || *stub.filter.AggregateID != productID {
		t.Fatalf("unexpected filter %+v", stub.filter)
	}
	if stub.filter.AggregateType != enums.AggregateProduct {
		t.Fatalf("expected product aggregate filter")
	}

	var envelope struct {
		Data []struct {
			ProductID    string `json:"productId"`
			ErrorMessage string `json:"errorMessage"`
			AttemptCount int    `json:"attemptCount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ProductID != productID.String() || envelope.Data[0].AttemptCount != 10 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestListSyncFailuresRejectsBadLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	ListSyncFailures(&stubDLQLister{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?limit=1000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListSyncFailuresRepositoryError(t *testing.T) {
	rec := httptest.NewRecorder()
	ListSyncFailures(&stubDLQLister{err: errors.New("db down")}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
