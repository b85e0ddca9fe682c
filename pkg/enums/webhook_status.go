package enums

import "fmt"

// WebhookStatus tracks the processing state of a recorded webhook delivery.
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

var validWebhookStatuses = []WebhookStatus{
	WebhookStatusPending,
	WebhookStatusCompleted,
	WebhookStatusFailed,
}

// IsValid reports whether the value matches the canonical webhook status enum.
func (s WebhookStatus) IsValid() bool {
	for _, candidate := range validWebhookStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWebhookStatus converts raw input into WebhookStatus.
func ParseWebhookStatus(value string) (WebhookStatus, error) {
	for _, candidate := range validWebhookStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook status %q", value)
}
