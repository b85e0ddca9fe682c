package enums

import "fmt"

// WebhookTopic identifies the Shopify webhook topic carried in the
// X-Shopify-Topic header.
type WebhookTopic string

const (
	TopicOrdersCreate    WebhookTopic = "orders/create"
	TopicOrdersUpdated   WebhookTopic = "orders/updated"
	TopicCustomersCreate WebhookTopic = "customers/create"
	TopicCustomersUpdate WebhookTopic = "customers/update"
)

var validWebhookTopics = []WebhookTopic{
	TopicOrdersCreate,
	TopicOrdersUpdated,
	TopicCustomersCreate,
	TopicCustomersUpdate,
}

// IsOrderTopic reports whether the topic carries an order payload.
func (t WebhookTopic) IsOrderTopic() bool {
	return t == TopicOrdersCreate || t == TopicOrdersUpdated
}

// IsCustomerTopic reports whether the topic carries a customer payload.
func (t WebhookTopic) IsCustomerTopic() bool {
	return t == TopicCustomersCreate || t == TopicCustomersUpdate
}

// IsValid reports whether the value matches a supported webhook topic.
func (t WebhookTopic) IsValid() bool {
	for _, candidate := range validWebhookTopics {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWebhookTopic converts raw header input into WebhookTopic.
func ParseWebhookTopic(value string) (WebhookTopic, error) {
	for _, candidate := range validWebhookTopics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unsupported webhook topic %q", value)
}
