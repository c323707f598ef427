package memory

import (
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
)

// Memory is an in-memory repository for development and tests
type Memory struct {
	resource *resourceRepository
	pairing  *pairingRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		resource: newResourceRepository(),
		pairing:  newPairingRepository(),
	}
}

func (m *Memory) Resource() interfaces.ResourceRepository {
	return m.resource
}

func (m *Memory) Pairing() interfaces.PairingRepository {
	return m.pairing
}

func (m *Memory) Close() error {
	return nil
}
