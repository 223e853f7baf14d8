package abstract

import (
	"context"
	"fmt"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/types"
)

// MockConfig satisfies Config and never fails validation.
type MockConfig struct{}

func (c *MockConfig) Validate() error { return nil }

// mockPaginator replays predefined pages, failing after failAfter pages when
// failErr is set and reporting a stall when stallAt matches the page index.
type mockPaginator struct {
	pages   []*types.Page
	index   int
	failErr error
	failAt  int // page index that fails instead of yielding, -1 disables
	page    *types.Page
	err     error
}

func (m *mockPaginator) Next(_ context.Context) bool {
	if m.err != nil {
		return false
	}
	if m.failErr != nil && m.index == m.failAt {
		m.err = m.failErr
		return false
	}
	if m.index >= len(m.pages) {
		return false
	}
	m.page = m.pages[m.index]
	m.index++
	return true
}

func (m *mockPaginator) Page() *types.Page { return m.page }
func (m *mockPaginator) Err() error        { return m.err }

// MockDriver serves pages from a fixed set, recording the cursor each
// paginator was constructed with.
type MockDriver struct {
	config       *MockConfig
	chunkSize    int
	streams      []*types.Stream
	pages        map[string][]*types.Page
	failErr      error
	failAt       int
	startCursors []int64
}

func newMockDriver(chunkSize int) *MockDriver {
	return &MockDriver{
		config:    &MockConfig{},
		chunkSize: chunkSize,
		pages:     map[string][]*types.Page{},
		failAt:    -1,
	}
}

func (m *MockDriver) GetConfigRef() Config  { return m.config }
func (m *MockDriver) Spec() map[string]any  { return map[string]any{} }
func (m *MockDriver) Type() string          { return "mock" }
func (m *MockDriver) ChunkSize() int        { return m.chunkSize }
func (m *MockDriver) Setup(_ context.Context) error {
	return nil
}

func (m *MockDriver) Discover(_ context.Context) ([]*types.Stream, error) {
	return m.streams, nil
}

func (m *MockDriver) InitialCursor(_ types.StreamInterface) int64 {
	return constants.StartingToken
}

func (m *MockDriver) NewPaginator(_ context.Context, stream types.StreamInterface, startCursor int64) (Paginator, error) {
	m.startCursors = append(m.startCursors, startCursor)
	pages, found := m.pages[stream.Name()]
	if !found {
		return nil, fmt.Errorf("no pages for stream %s", stream.Name())
	}

	// honor the cursor the way the backend does: only records with tokens
	// past it are returned
	filtered := []*types.Page{}
	for _, page := range pages {
		records := []types.Record{}
		maxToken := startCursor
		for _, record := range page.Records {
			token := record[constants.TokenCursorField].(int64)
			if token > startCursor {
				records = append(records, record)
			}
			if token > maxToken {
				maxToken = token
			}
		}
		if len(records) > 0 {
			filtered = append(filtered, &types.Page{Records: records, NextToken: maxToken})
		}
	}
	return &mockPaginator{pages: filtered, failErr: m.failErr, failAt: m.failAt}, nil
}

// MemoryWriter collects emitted records; rejectAfter forces a sink error once
// that many records have been accepted.
type MemoryWriter struct {
	records     []types.RawRecord
	flushes     int
	rejectAfter int // record count after which Write fails, -1 disables
	writeCalls  int
}

func newMemoryWriter() *MemoryWriter {
	return &MemoryWriter{rejectAfter: -1}
}

func (w *MemoryWriter) Setup(_ context.Context, _ types.StreamInterface) error {
	return nil
}

func (w *MemoryWriter) Write(_ context.Context, record types.RawRecord) error {
	if w.rejectAfter >= 0 && w.writeCalls >= w.rejectAfter {
		return fmt.Errorf("record rejected by sink")
	}
	w.writeCalls++
	w.records = append(w.records, record)
	return nil
}

func (w *MemoryWriter) Flush(_ context.Context) error {
	w.flushes++
	return nil
}

func (w *MemoryWriter) Close(_ context.Context) error { return nil }

// MemoryStore is the in-memory state persistence fake.
type MemoryStore struct {
	saved []*types.State
}

func (s *MemoryStore) Load(_ *types.State) error { return nil }

func (s *MemoryStore) Save(state *types.State) error {
	s.saved = append(s.saved, state)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func tokenRecord(token int64, fields map[string]any) types.Record {
	record := types.Record{constants.TokenCursorField: token}
	for key, value := range fields {
		record[key] = value
	}
	return record
}

func testStream(name string) *types.Stream {
	stream := types.NewStream(name, "").
		WithPrimaryKeys("ItemCode").
		WithCursorField(constants.TokenCursorField)
	stream.Schema.AddTypes(constants.TokenCursorField, types.Int64)
	stream.Schema.AddTypes("ItemCode", types.String)
	return stream
}
