package abstract

import (
	"context"

	"github.com/XAbade/tap-sherpaan/types"
)

type Config interface {
	Validate() error
}

// Paginator is a lazy, finite page sequence. Not restartable mid-sequence;
// resuming from a persisted cursor means constructing a fresh one.
type Paginator interface {
	Next(ctx context.Context) bool
	Page() *types.Page
	Err() error
}

// DriverInterface is what a source backend contributes: config handling,
// stream discovery and paginator construction. Chunking, watermark tracking
// and state persistence live in the engine.
type DriverInterface interface {
	GetConfigRef() Config
	Spec() map[string]any
	Type() string
	Setup(ctx context.Context) error
	ChunkSize() int
	Discover(ctx context.Context) ([]*types.Stream, error)
	InitialCursor(stream types.StreamInterface) int64
	NewPaginator(ctx context.Context, stream types.StreamInterface, startCursor int64) (Paginator, error)
}
