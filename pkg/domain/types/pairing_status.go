package types

// PairingStatus represents the state of a chat identity in the pairing flow
type PairingStatus string

const (
	PairingStatusUnknown  PairingStatus = "UNKNOWN"
	PairingStatusPending  PairingStatus = "PENDING"
	PairingStatusApproved PairingStatus = "APPROVED"
	PairingStatusRejected PairingStatus = "REJECTED"
	PairingStatusExpired  PairingStatus = "EXPIRED"
)

// IsValid checks if the pairing status is valid
func (x PairingStatus) IsValid() bool {
	switch x {
	case PairingStatusUnknown,
		PairingStatusPending,
		PairingStatusApproved,
		PairingStatusRejected,
		PairingStatusExpired:
		return true
	default:
		return false
	}
}

// String returns the string representation of the pairing status
func (x PairingStatus) String() string {
	return string(x)
}
