package destination

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/types"
)

// Stdout writes RECORD messages as line delimited JSON, one message per
// record, buffered until Flush. This is the tap's default collaborator
// transport; a downstream loader consumes the lines from stdout.
type Stdout struct {
	out     io.Writer
	buffer  *bufio.Writer
	stream  types.StreamInterface
	records atomic.Int64
}

func NewStdout() *Stdout {
	return NewStdoutTo(os.Stdout)
}

// NewStdoutTo exists so tests can capture the emitted lines.
func NewStdoutTo(out io.Writer) *Stdout {
	return &Stdout{out: out, buffer: bufio.NewWriter(out)}
}

func (s *Stdout) Setup(_ context.Context, stream types.StreamInterface) error {
	s.stream = stream
	return nil
}

func (s *Stdout) Write(_ context.Context, record types.RawRecord) error {
	if err := validateRecord(s.stream, record); err != nil {
		return err
	}

	// metadata columns so loaders need not parse the message envelope
	record.Data[constants.TapStream] = record.Stream
	record.Data[constants.TapSchemaVersion] = record.SchemaVersion
	record.Data[constants.TapExtractedAt] = record.EmittedAt

	message := types.Message{Type: types.RecordMessage, Record: &record}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal record message: %s", err)
	}
	if _, err := s.buffer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record message: %s", err)
	}
	s.records.Add(1)
	return nil
}

func (s *Stdout) Flush(_ context.Context) error {
	return s.buffer.Flush()
}

func (s *Stdout) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

func (s *Stdout) TotalRecords() int64 {
	return s.records.Load()
}
