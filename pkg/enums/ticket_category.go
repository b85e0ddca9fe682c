package enums

import "fmt"

// TicketCategory buckets order line items into the ticket types the event
// app understands. Values match the category strings the mobile client renders.
type TicketCategory string

const (
	TicketCategoryAdmission TicketCategory = "ADMISSION TICKETS"
	TicketCategoryYokocho   TicketCategory = "YOKOCHO TICKETS"
	TicketCategoryGoodieBag TicketCategory = "GOODIE BAG"
)

var validTicketCategories = []TicketCategory{
	TicketCategoryAdmission,
	TicketCategoryYokocho,
	TicketCategoryGoodieBag,
}

// IsValid reports whether the value matches the canonical ticket category enum.
func (c TicketCategory) IsValid() bool {
	for _, candidate := range validTicketCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseTicketCategory converts raw input into TicketCategory.
func ParseTicketCategory(value string) (TicketCategory, error) {
	for _, candidate := range validTicketCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket category %q", value)
}
