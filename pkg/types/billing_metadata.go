package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	metaKeyProvider  = "provider"
	metaKeyProductID = "productId"
	metaKeyPriceID   = "priceId"
	metaKeySyncedAt  = "syncedAt"
	metaKeyVersion   = "syncedVersion"
)

// BillingMetadata links a catalog product to its remote billing objects.
// SyncedVersion is the product version the last successful sync pushed.
// Keys it does not model are carried in Extra so writes never drop them.
type BillingMetadata struct {
	Provider      string
	ProductID     string
	PriceID       string
	SyncedAt      *time.Time
	SyncedVersion int
	Extra         map[string]json.RawMessage
}

// IsLinked reports whether a remote product has been created.
func (m BillingMetadata) IsLinked() bool {
	return m.ProductID != ""
}

// NeedsSync reports whether the local row changed after the last successful
// sync. Rows synced before versions were recorded fall back to timestamps.
func (m BillingMetadata) NeedsSync(version int, updatedAt time.Time) bool {
	if m.SyncedAt == nil || m.ProductID == "" || m.PriceID == "" {
		return true
	}
	if m.SyncedVersion > 0 {
		return version > m.SyncedVersion
	}
	return updatedAt.After(*m.SyncedAt)
}

// Merge overlays the populated fields of update onto m and returns the result.
func (m BillingMetadata) Merge(update BillingMetadata) BillingMetadata {
	out := m
	out.Extra = make(map[string]json.RawMessage, len(m.Extra)+len(update.Extra))
	for k, v := range m.Extra {
		out.Extra[k] = v
	}
	for k, v := range update.Extra {
		out.Extra[k] = v
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	if update.Provider != "" {
		out.Provider = update.Provider
	}
	if update.ProductID != "" {
		out.ProductID = update.ProductID
	}
	if update.PriceID != "" {
		out.PriceID = update.PriceID
	}
	if update.SyncedAt != nil {
		ts := update.SyncedAt.UTC()
		out.SyncedAt = &ts
	}
	if update.SyncedVersion > 0 {
		out.SyncedVersion = update.SyncedVersion
	}
	return out
}

// MarshalJSON flattens the known fields and extra keys into one object.
func (m BillingMetadata) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Extra)+5)
	for k, v := range m.Extra {
		obj[k] = v
	}
	if m.Provider != "" {
		obj[metaKeyProvider] = m.Provider
	}
	if m.ProductID != "" {
		obj[metaKeyProductID] = m.ProductID
	}
	if m.PriceID != "" {
		obj[metaKeyPriceID] = m.PriceID
	}
	if m.SyncedAt != nil {
		obj[metaKeySyncedAt] = m.SyncedAt.UTC().Format(time.RFC3339Nano)
	}
	if m.SyncedVersion > 0 {
		obj[metaKeyVersion] = m.SyncedVersion
	}
	return json.Marshal(obj)
}

// UnmarshalJSON splits known fields from the rest of the object.
func (m *BillingMetadata) UnmarshalJSON(data []byte) error {
	*m = BillingMetadata{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("billing metadata: %w", err)
	}
	for key, value := range raw {
		switch key {
		case metaKeyProvider:
			if err := unmarshalOptionalString(value, &m.Provider); err != nil {
				return fmt.Errorf("billing metadata %s: %w", key, err)
			}
		case metaKeyProductID:
			if err := unmarshalOptionalString(value, &m.ProductID); err != nil {
				return fmt.Errorf("billing metadata %s: %w", key, err)
			}
		case metaKeyPriceID:
			if err := unmarshalOptionalString(value, &m.PriceID); err != nil {
				return fmt.Errorf("billing metadata %s: %w", key, err)
			}
		case metaKeySyncedAt:
			var ts string
			if err := unmarshalOptionalString(value, &ts); err != nil {
				return fmt.Errorf("billing metadata %s: %w", key, err)
			}
			if ts == "" {
				continue
			}
			parsed, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				return fmt.Errorf("billing metadata %s: %w", key, err)
			}
			m.SyncedAt = &parsed
		case metaKeyVersion:
			if string(value) == "null" {
				continue
			}
			if err := json.Unmarshal(value, &m.SyncedVersion); err != nil {
				return fmt.Errorf("billing metadata %s: %w", key, err)
			}
		default:
			if m.Extra == nil {
				m.Extra = map[string]json.RawMessage{}
			}
			m.Extra[key] = value
		}
	}
	return nil
}

// Value implements driver.Valuer for the jsonb column.
func (m BillingMetadata) Value() (driver.Value, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan implements sql.Scanner for the jsonb column.
func (m *BillingMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = BillingMetadata{}
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("billing metadata: unsupported Scan type %T", value)
	}
}

func unmarshalOptionalString(raw json.RawMessage, dst *string) error {
	if string(raw) == "null" {
		*dst = ""
		return nil
	}
	return json.Unmarshal(raw, dst)
}
