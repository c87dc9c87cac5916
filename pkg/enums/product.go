package enums

import "fmt"

// ProductType distinguishes recurring subscriptions from one-time purchases.
type ProductType string

const (
	ProductTypeSubscription ProductType = "SUBSCRIPTION"
	ProductTypePurchase     ProductType = "PURCHASE"
)

var validProductTypes = []ProductType{
	ProductTypeSubscription,
	ProductTypePurchase,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value maps to product_type_enum.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}

// ProductStatusFilter narrows catalog listings by the active flag.
type ProductStatusFilter string

const (
	ProductStatusAll      ProductStatusFilter = "all"
	ProductStatusActive   ProductStatusFilter = "active"
	ProductStatusInactive ProductStatusFilter = "inactive"
)

// IsValid reports whether the status filter is recognized.
func (s ProductStatusFilter) IsValid() bool {
	switch s {
	case ProductStatusAll, ProductStatusActive, ProductStatusInactive:
		return true
	default:
		return false
	}
}
