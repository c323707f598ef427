package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Resource() ResourceRepository
	Pairing() PairingRepository

	Close() error
}
