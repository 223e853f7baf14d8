// Package abstract holds the source-independent sync machinery: the
// incremental engine, the chunked record emitter and the driver contract.
package abstract

import (
	"context"

	"github.com/XAbade/tap-sherpaan/statestore"
	"github.com/XAbade/tap-sherpaan/types"
)

// AbstractDriver wraps a concrete source driver with the sync engine. It owns
// the bookmark store for the whole run; exactly one stream writes it at a
// time.
type AbstractDriver struct {
	driver DriverInterface
	state  *types.State
	store  statestore.Store
}

func NewAbstractDriver(driver DriverInterface) *AbstractDriver {
	return &AbstractDriver{driver: driver, state: types.NewState()}
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() map[string]any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	return a.driver.Setup(ctx)
}

func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	return a.driver.Discover(ctx)
}

// SetupState attaches the loaded bookmark store and its persistence backend.
func (a *AbstractDriver) SetupState(state *types.State, store statestore.Store) {
	a.state = state
	a.store = store
}

func (a *AbstractDriver) State() *types.State {
	return a.state
}
