package abstract

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/XAbade/tap-sherpaan/destination"
	"github.com/XAbade/tap-sherpaan/types"
	"github.com/XAbade/tap-sherpaan/utils"
	"github.com/XAbade/tap-sherpaan/utils/logger"
)

// Incremental syncs the given streams sequentially, one fully before the
// next. A stream failure aborts that stream only; sibling streams still run
// and the accumulated error is returned at the end.
func (a *AbstractDriver) Incremental(ctx context.Context, writer destination.Writer, streams ...types.StreamInterface) error {
	var syncErr error
	for _, stream := range streams {
		start := time.Now()
		logger.Infof("reading stream %s", stream.ID())

		if err := a.syncStream(ctx, writer, stream); err != nil {
			logger.Errorf("stream %s aborted: %s", stream.ID(), err)
			syncErr = multierror.Append(syncErr, fmt.Errorf("stream %s: %w", stream.ID(), err))
			continue
		}
		logger.Infof("finished reading stream %s in %s", stream.ID(), time.Since(start).String())
	}
	return syncErr
}

// syncStream runs one stream's full extraction loop: resolve the starting
// cursor, page, chunk, emit, and advance the bookmark after every
// acknowledged chunk. The bookmark only ever reflects fully committed chunks,
// which is what makes a restart after any failure at-least-once instead of
// lossy.
func (a *AbstractDriver) syncStream(ctx context.Context, writer destination.Writer, stream types.StreamInterface) error {
	cursorField := stream.Cursor()

	startCursor := a.driver.InitialCursor(stream)
	if bookmark, found := a.state.TokenCursor(stream.Self(), cursorField); found {
		startCursor = bookmark
	}
	logger.Infof("stream %s starting from cursor %d", stream.ID(), startCursor)

	paginator, err := a.driver.NewPaginator(ctx, stream, startCursor)
	if err != nil {
		return fmt.Errorf("failed to construct paginator: %w", err)
	}
	if err := writer.Setup(ctx, stream); err != nil {
		return fmt.Errorf("failed to set up sink: %w", err)
	}

	chunker := NewChunker(a.driver.ChunkSize())
	chunks := 0

	for paginator.Next(ctx) {
		page := paginator.Page()
		logger.Debugf("stream %s fetched %d records, cursor advanced to %d", stream.ID(), len(page.Records), page.NextToken)
		for _, record := range page.Records {
			chunk := chunker.Add(record)
			if chunk == nil {
				continue
			}
			if err := a.commitChunk(ctx, writer, stream, cursorField, chunk); err != nil {
				return err
			}
			chunks++
		}
	}
	if err := paginator.Err(); err != nil {
		return err
	}

	if chunk := chunker.Drain(); chunk != nil {
		if err := a.commitChunk(ctx, writer, stream, cursorField, chunk); err != nil {
			return err
		}
		chunks++
	}

	// final state flush, also for streams that yielded nothing
	if err := a.persistState(); err != nil {
		return err
	}
	logger.Infof("stream %s committed %d chunks", stream.ID(), chunks)
	return nil
}

// commitChunk hands the chunk to the sink record by record, waits for the
// sink to acknowledge via Flush, then advances and persists the watermark.
// State is never written mid-chunk.
func (a *AbstractDriver) commitChunk(ctx context.Context, writer destination.Writer, stream types.StreamInterface, cursorField string, chunk []types.Record) error {
	for _, record := range chunk {
		if err := writer.Write(ctx, types.CreateRawRecord(stream, record, time.Now().UnixMilli())); err != nil {
			return err
		}
	}
	if err := writer.Flush(ctx); err != nil {
		return fmt.Errorf("sink flush failed: %w", err)
	}

	if cursorField == "" {
		return nil
	}
	watermark := a.state.GetCursor(stream.Self(), cursorField)
	for _, record := range chunk {
		if value, found := record[cursorField]; found && utils.Compare(value, watermark) == 1 {
			watermark = value
		}
	}
	a.state.SetCursor(stream.Self(), cursorField, watermark)
	return a.persistState()
}

func (a *AbstractDriver) persistState() error {
	if a.store != nil {
		if err := a.store.Save(a.state); err != nil {
			return fmt.Errorf("failed to persist state: %w", err)
		}
	}
	types.LogState(a.state)
	return nil
}
