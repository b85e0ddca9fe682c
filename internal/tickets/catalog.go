package tickets

import (
	"strings"

	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// Product allow-lists for the current event season. Line items whose product
// ID appears in none of these sets are not ticketed.
var (
	admissionProductIDs = map[int64]struct{}{
		8059502919855: {},
		8059503149231: {},
	}
	yokochoProductIDs = map[int64]struct{}{
		8061342859439: {},
		8061343088815: {},
	}
	goodieBagProductIDs = map[int64]struct{}{
		8062876352687: {},
	}
)

// validDatesByToken maps the date substring found in admission variant
// titles (e.g. "12/14 Saturday") to the canonical event date.
var validDatesByToken = map[string]string{
	"12/14": "2024-12-14",
	"12/15": "2024-12-15",
}

const earlyBirdToken = "early bird"

// CategoryForProduct returns the ticket category for a product ID and
// whether the product is ticketed at all.
func CategoryForProduct(productID int64) (enums.TicketCategory, bool) {
	if _, ok := admissionProductIDs[productID]; ok {
		return enums.TicketCategoryAdmission, true
	}
	if _, ok := yokochoProductIDs[productID]; ok {
		return enums.TicketCategoryYokocho, true
	}
	if _, ok := goodieBagProductIDs[productID]; ok {
		return enums.TicketCategoryGoodieBag, true
	}
	return "", false
}

// ValidDateForVariantTitle derives the admission date from the variant title.
// A title matching no known date returns ok=false; callers must keep the
// date null rather than guessing.
func ValidDateForVariantTitle(variantTitle string) (string, bool) {
	for token, date := range validDatesByToken {
		if strings.Contains(variantTitle, token) {
			return date, true
		}
	}
	return "", false
}

// IsEarlyBird reports whether the item title marks an early-bird purchase.
func IsEarlyBird(title string) bool {
	return strings.Contains(strings.ToLower(title), earlyBirdToken)
}
