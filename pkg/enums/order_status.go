package enums

import "fmt"

// OrderFinancialStatus mirrors Shopify's order financial_status field.
type OrderFinancialStatus string

const (
	FinancialStatusPending           OrderFinancialStatus = "pending"
	FinancialStatusAuthorized        OrderFinancialStatus = "authorized"
	FinancialStatusPaid              OrderFinancialStatus = "paid"
	FinancialStatusPartiallyPaid     OrderFinancialStatus = "partially_paid"
	FinancialStatusRefunded          OrderFinancialStatus = "refunded"
	FinancialStatusPartiallyRefunded OrderFinancialStatus = "partially_refunded"
	FinancialStatusVoided            OrderFinancialStatus = "voided"
)

var validFinancialStatuses = []OrderFinancialStatus{
	FinancialStatusPending,
	FinancialStatusAuthorized,
	FinancialStatusPaid,
	FinancialStatusPartiallyPaid,
	FinancialStatusRefunded,
	FinancialStatusPartiallyRefunded,
	FinancialStatusVoided,
}

// IsValid reports whether the value matches a known financial status.
func (s OrderFinancialStatus) IsValid() bool {
	for _, candidate := range validFinancialStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderFinancialStatus converts raw payload input into OrderFinancialStatus.
// Empty input defaults to pending since Shopify omits the field on some topics.
func ParseOrderFinancialStatus(value string) (OrderFinancialStatus, error) {
	if value == "" {
		return FinancialStatusPending, nil
	}
	for _, candidate := range validFinancialStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid financial status %q", value)
}

// OrderFulfillmentStatus mirrors Shopify's order fulfillment_status field.
type OrderFulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled OrderFulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     OrderFulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   OrderFulfillmentStatus = "fulfilled"
	FulfillmentStatusRestocked   OrderFulfillmentStatus = "restocked"
)

var validFulfillmentStatuses = []OrderFulfillmentStatus{
	FulfillmentStatusUnfulfilled,
	FulfillmentStatusPartial,
	FulfillmentStatusFulfilled,
	FulfillmentStatusRestocked,
}

// IsValid reports whether the value matches a known fulfillment status.
func (s OrderFulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderFulfillmentStatus converts raw payload input, treating Shopify's
// null fulfillment_status as unfulfilled.
func ParseOrderFulfillmentStatus(value string) (OrderFulfillmentStatus, error) {
	if value == "" {
		return FulfillmentStatusUnfulfilled, nil
	}
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
