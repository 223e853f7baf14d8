package destination

import (
	"context"
	"errors"
	"fmt"

	"github.com/XAbade/tap-sherpaan/types"
)

// ErrRecordRejected marks a record the sink refused, e.g. one that misses a
// primary key the stream schema declares. Fatal to the current chunk; the
// bookmark is not advanced for it.
var ErrRecordRejected = errors.New("record rejected by sink")

// Writer is the output sink contract. The engine hands over one record at a
// time and calls Flush at every chunk boundary; only an acknowledged Flush
// lets the bookmark advance.
type Writer interface {
	Setup(ctx context.Context, stream types.StreamInterface) error
	Write(ctx context.Context, record types.RawRecord) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// validateRecord enforces the sink-side schema contract: all source defined
// primary keys must be present and non-nil.
func validateRecord(stream types.StreamInterface, record types.RawRecord) error {
	for _, key := range stream.GetStream().SourceDefinedPrimaryKey {
		value, found := record.Data[key]
		if !found || value == nil {
			return fmt.Errorf("%w: stream %s record misses primary key %q", ErrRecordRejected, stream.Name(), key)
		}
	}
	return nil
}
