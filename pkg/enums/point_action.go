package enums

import "fmt"

// PointAction tags a point-ledger entry with the business event that caused it.
type PointAction string

const (
	PointActionSignup  PointAction = "SIGNUP"
	PointActionOrder   PointAction = "ORDER"
	PointActionRedeem  PointAction = "REDEEM"
	PointActionLottery PointAction = "LOTTERY"
)

var validPointActions = []PointAction{
	PointActionSignup,
	PointActionOrder,
	PointActionRedeem,
	PointActionLottery,
}

// IsValid reports whether the value matches the canonical point action enum.
func (a PointAction) IsValid() bool {
	for _, candidate := range validPointActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParsePointAction converts raw input into PointAction.
func ParsePointAction(value string) (PointAction, error) {
	for _, candidate := range validPointActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point action %q", value)
}
