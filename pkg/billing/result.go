package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// SyncResult reports the remote objects linked to a product after a successful
// sync. Version is the product version that was read and pushed.
type SyncResult struct {
	ProductID       uuid.UUID             `json:"productId"`
	Provider        enums.BillingProvider `json:"provider"`
	RemoteProductID string                `json:"remoteProductId"`
	RemotePriceID   string                `json:"remotePriceId"`
	Version         int                   `json:"version"`
	SyncedAt        time.Time             `json:"syncedAt"`
}
