package repository

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
)

// Composite assembles a repository from independently chosen backends. The
// resource store and the pairing store scale differently (Postgres or Notion
// vs Firestore), so they are configured separately and joined here.
type Composite struct {
	resource interfaces.ResourceRepository
	pairing  interfaces.PairingRepository
	closers  []func() error
}

var _ interfaces.Repository = &Composite{}

// NewComposite joins a resource backend and a pairing backend. closers are
// called in order by Close.
func NewComposite(resource interfaces.ResourceRepository, pairing interfaces.PairingRepository, closers ...func() error) *Composite {
	return &Composite{
		resource: resource,
		pairing:  pairing,
		closers:  closers,
	}
}

func (x *Composite) Resource() interfaces.ResourceRepository {
	return x.resource
}

func (x *Composite) Pairing() interfaces.PairingRepository {
	return x.pairing
}

func (x *Composite) Close() error {
	var errs []error
	for _, close := range x.closers {
		if err := close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return goerr.New("failed to close repository backends", goerr.V("errors", errs))
	}
	return nil
}
