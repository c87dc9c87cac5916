package payloads

import (
	"github.com/google/uuid"
)

// Reasons recorded on ProductSyncRequestedEvent.
const (
	SyncReasonCreated = "created"
	SyncReasonUpdated = "updated"
	SyncReasonManual  = "manual"
	SyncReasonDrift   = "drift"
)

// ProductSyncRequestedEvent asks the billing sync worker to push a product.
type ProductSyncRequestedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Version   int       `json:"version"`
	Reason    string    `json:"reason"`
}
