package enums

import "fmt"

// CheckInStatus is the two-state check-in machine for a ticket.
// NONE is initial, USED is terminal; there are no other states.
type CheckInStatus string

const (
	CheckInStatusNone CheckInStatus = "NONE"
	CheckInStatusUsed CheckInStatus = "USED"
)

var validCheckInStatuses = []CheckInStatus{
	CheckInStatusNone,
	CheckInStatusUsed,
}

// IsValid reports whether the value matches the canonical check-in enum.
func (s CheckInStatus) IsValid() bool {
	for _, candidate := range validCheckInStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCheckInStatus converts raw input into CheckInStatus.
func ParseCheckInStatus(value string) (CheckInStatus, error) {
	for _, candidate := range validCheckInStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid check-in status %q", value)
}
