package types

import (
	"fmt"
)

type SyncMode string

const (
	INCREMENTAL SyncMode = "incremental"
	FULLREFRESH SyncMode = "full_refresh"
)

// Stream is the static per-entity descriptor: name, keys, cursor and schema.
// Built once during discovery and treated as immutable afterwards.
type Stream struct {
	Name                    string          `json:"name"`
	Namespace               string          `json:"namespace,omitempty"`
	Schema                  *TypeSchema     `json:"json_schema"`
	SchemaVersion           int             `json:"schema_version"`
	SupportedSyncModes      *Set[SyncMode]  `json:"supported_sync_modes,omitempty"`
	SourceDefinedPrimaryKey []string        `json:"source_defined_primary_key,omitempty"`
	AvailableCursorFields   *Set[string]    `json:"available_cursor_fields,omitempty"`
	SyncMode                SyncMode        `json:"sync_mode,omitempty"`
	CursorField             string          `json:"cursor_field,omitempty"`
}

func NewStream(name, namespace string) *Stream {
	return &Stream{
		Name:                  name,
		Namespace:             namespace,
		Schema:                NewTypeSchema(),
		SchemaVersion:         1,
		SupportedSyncModes:    NewSet(FULLREFRESH),
		AvailableCursorFields: NewSet[string](),
	}
}

func (s *Stream) ID() string {
	if s.Namespace == "" {
		return s.Name
	}
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

func (s *Stream) WithPrimaryKeys(keys ...string) *Stream {
	s.SourceDefinedPrimaryKey = append(s.SourceDefinedPrimaryKey, keys...)
	return s
}

func (s *Stream) WithCursorField(field string) *Stream {
	s.AvailableCursorFields.Insert(field)
	s.SupportedSyncModes.Insert(INCREMENTAL)
	s.SyncMode = INCREMENTAL
	s.CursorField = field
	return s
}

func (s *Stream) WithSchemaVersion(version int) *Stream {
	s.SchemaVersion = version
	return s
}

func (s *Stream) Wrap() *ConfiguredStream {
	return &ConfiguredStream{
		Stream:      s,
		CursorField: s.CursorField,
	}
}

// ConfiguredStream is a stream as selected for a sync run.
type ConfiguredStream struct {
	Stream *Stream `json:"stream,omitempty"`

	// Field being used as replication cursor; MUST NOT be mutated mid-sync
	CursorField string `json:"cursor_field,omitempty"`
}

func (c *ConfiguredStream) ID() string {
	return c.Stream.ID()
}

func (c *ConfiguredStream) Self() *ConfiguredStream {
	return c
}

func (c *ConfiguredStream) Name() string {
	return c.Stream.Name
}

func (c *ConfiguredStream) Namespace() string {
	return c.Stream.Namespace
}

func (c *ConfiguredStream) Schema() *TypeSchema {
	return c.Stream.Schema
}

func (c *ConfiguredStream) GetStream() *Stream {
	return c.Stream
}

func (c *ConfiguredStream) GetSyncMode() SyncMode {
	return c.Stream.SyncMode
}

func (c *ConfiguredStream) Cursor() string {
	return c.CursorField
}

// Validate checks a configured stream against its source definition.
func (c *ConfiguredStream) Validate(source *Stream) error {
	if !source.SupportedSyncModes.Exists(c.Stream.SyncMode) {
		return fmt.Errorf("invalid sync mode[%s]; valid are %v", c.Stream.SyncMode, source.SupportedSyncModes.Array())
	}
	if c.Stream.SyncMode == INCREMENTAL && !source.AvailableCursorFields.Exists(c.CursorField) {
		return fmt.Errorf("invalid cursor field [%s]; valid are %v", c.CursorField, source.AvailableCursorFields.Array())
	}
	return nil
}

// StreamInterface is what the sync engine needs from a stream.
type StreamInterface interface {
	ID() string
	Self() *ConfiguredStream
	Name() string
	Namespace() string
	Schema() *TypeSchema
	GetStream() *Stream
	GetSyncMode() SyncMode
	Cursor() string
	Validate(source *Stream) error
}

// Catalog is the discovery output: every stream the source exposes.
type Catalog struct {
	Streams []*ConfiguredStream `json:"streams,omitempty"`
}

func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{Streams: []*ConfiguredStream{}}
	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, stream.Wrap())
	}
	return catalog
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	output := make(map[string]*Stream)
	for _, stream := range streams {
		output[stream.ID()] = stream
	}
	return output
}

// Record is one business entity instance as returned by the backend.
type Record map[string]any

// RawRecord is a record tagged for the output sink.
type RawRecord struct {
	Stream        string `json:"stream"`
	SchemaVersion int    `json:"schema_version"`
	Data          Record `json:"record"`
	EmittedAt     int64  `json:"emitted_at,omitempty"`
}

func CreateRawRecord(stream StreamInterface, data Record, emittedAt int64) RawRecord {
	return RawRecord{
		Stream:        stream.Name(),
		SchemaVersion: stream.GetStream().SchemaVersion,
		Data:          data,
		EmittedAt:     emittedAt,
	}
}

// Page is one backend response worth of records plus the continuation token
// the next fetch should use.
type Page struct {
	Records   []Record
	NextToken int64
}
