package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the fulfilment workflow of an order. Any status may be
// set from any other by an admin; the workflow order is advisory only.
type OrderStatus string

const (
	OrderStatusQuoteRequest OrderStatus = "Quote Request"
	OrderStatusUnderProcess OrderStatus = "Under Process"
	OrderStatusConfirmed    OrderStatus = "Confirmed"
	OrderStatusInProgress   OrderStatus = "In Progress"
	OrderStatusReady        OrderStatus = "Ready"
	OrderStatusDispatched   OrderStatus = "Dispatched"
	OrderStatusCompleted    OrderStatus = "Completed"
	OrderStatusDelivered    OrderStatus = "Delivered"
	OrderStatusCancelled    OrderStatus = "Cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusQuoteRequest,
	OrderStatusUnderProcess,
	OrderStatusConfirmed,
	OrderStatusInProgress,
	OrderStatusReady,
	OrderStatusDispatched,
	OrderStatusCompleted,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderStatuses lists every status in workflow order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// InitialOrderStatus is the status a freshly created order starts in.
func InitialOrderStatus(t OrderType) OrderStatus {
	if t == OrderTypeCustom {
		return OrderStatusQuoteRequest
	}
	return OrderStatusUnderProcess
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching ignores
// case and surrounding whitespace so "in progress" is accepted.
func ParseOrderStatus(value string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validOrderStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
