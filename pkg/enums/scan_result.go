package enums

// ScanResult is the three-way outcome of a ticket scan. The scanning client
// branches on this value rather than the HTTP status: an already-used ticket
// is a successful HTTP response carrying a Warning payload.
type ScanResult string

const (
	ScanResultSuccess ScanResult = "Success"
	ScanResultWarning ScanResult = "Warning"
	ScanResultError   ScanResult = "Error"
)

// IsValid reports whether the value matches the canonical scan result enum.
func (r ScanResult) IsValid() bool {
	switch r {
	case ScanResultSuccess, ScanResultWarning, ScanResultError:
		return true
	}
	return false
}
