package enums

import "fmt"

// OrderType separates basket checkouts from custom quote requests.
type OrderType string

const (
	OrderTypeRegular OrderType = "regular"
	OrderTypeCustom  OrderType = "custom"
)

var validOrderTypes = []OrderType{
	OrderTypeRegular,
	OrderTypeCustom,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderType.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	if t := OrderType(value); t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
