package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type_enum column in Postgres.
type OutboxAggregateType string

const (
	AggregateTicket      OutboxAggregateType = "ticket"
	AggregateOrder       OutboxAggregateType = "order"
	AggregateUserProfile OutboxAggregateType = "user_profile"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTicket,
	AggregateOrder,
	AggregateUserProfile,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type_enum column in Postgres.
type OutboxEventType string

const (
	EventTicketIssued    OutboxEventType = "ticket_issued"
	EventTicketCheckedIn OutboxEventType = "ticket_checked_in"
	EventPointsCredited  OutboxEventType = "points_credited"
	EventOrderFulfilled  OutboxEventType = "order_fulfilled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTicketIssued,
	EventTicketCheckedIn,
	EventPointsCredited,
	EventOrderFulfilled,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
