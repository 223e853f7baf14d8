package types

import (
	"github.com/goccy/go-json"
)

type StateType string

const (
	StreamType StateType = "STREAM"
)

// State is the process-wide bookmark store: stream name to last synced
// replication cursor. Owned by the sync engine, persisted only at chunk
// boundaries so a crash never loses more than one in-flight chunk.
type State struct {
	Type    StateType      `json:"type"`
	Streams []*StreamState `json:"streams"`
}

type StreamState struct {
	Stream    string         `json:"stream"`
	Namespace string         `json:"namespace,omitempty"`
	Cursors   map[string]any `json:"cursors"`
}

func NewState() *State {
	return &State{Type: StreamType, Streams: []*StreamState{}}
}

func (s *State) IsZero() bool {
	return len(s.Streams) == 0
}

func (s *State) ResetStreams() {
	s.Streams = []*StreamState{}
}

func (s *State) findStream(stream *ConfiguredStream) *StreamState {
	for _, candidate := range s.Streams {
		if candidate.Stream == stream.Name() && candidate.Namespace == stream.Namespace() {
			return candidate
		}
	}
	return nil
}

func (s *State) GetCursor(stream *ConfiguredStream, key string) any {
	if key == "" {
		return nil
	}
	if streamState := s.findStream(stream); streamState != nil {
		return streamState.Cursors[key]
	}
	return nil
}

func (s *State) SetCursor(stream *ConfiguredStream, key string, value any) {
	if key == "" {
		return
	}
	streamState := s.findStream(stream)
	if streamState == nil {
		streamState = &StreamState{
			Stream:    stream.Name(),
			Namespace: stream.Namespace(),
			Cursors:   map[string]any{},
		}
		s.Streams = append(s.Streams, streamState)
	}
	streamState.Cursors[key] = value
}

// TokenCursor reads the stored cursor for a stream as an int64 token,
// tolerating the float64/string forms a JSON round trip produces.
func (s *State) TokenCursor(stream *ConfiguredStream, key string) (int64, bool) {
	value := s.GetCursor(stream, key)
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		parsed, err := v.Int64()
		return parsed, err == nil
	default:
		return 0, false
	}
}
