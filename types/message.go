package types

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/XAbade/tap-sherpaan/utils/logger"
)

type MessageType string

const (
	LogMessage              MessageType = "LOG"
	ConnectionStatusMessage MessageType = "CONNECTION_STATUS"
	StateMessage            MessageType = "STATE"
	RecordMessage           MessageType = "RECORD"
	CatalogMessage          MessageType = "CATALOG"
	SpecMessage             MessageType = "SPEC"
)

type ConnectionStatus string

const (
	ConnectionSucceed ConnectionStatus = "SUCCEEDED"
	ConnectionFailed  ConnectionStatus = "FAILED"
)

// Message is the dto for every protocol row written to stdout.
type Message struct {
	Type             MessageType    `json:"type"`
	ConnectionStatus *StatusRow     `json:"connectionStatus,omitempty"`
	State            *State         `json:"state,omitempty"`
	Catalog          *Catalog       `json:"catalog,omitempty"`
	Record           *RawRecord     `json:"record,omitempty"`
	Spec             map[string]any `json:"spec,omitempty"`
}

type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

func writeMessage(message Message) {
	encoder := json.NewEncoder(os.Stdout)
	if err := encoder.Encode(message); err != nil {
		logger.Fatalf("failed to encode %s message: %s", message.Type, err)
	}
}

// LogCatalog writes the discovered catalog as a CATALOG message.
func LogCatalog(streams []*Stream) {
	writeMessage(Message{Type: CatalogMessage, Catalog: GetWrappedCatalog(streams)})
	logger.Infof("found %d streams", len(streams))
}

// LogState writes a STATE message carrying the full bookmark store.
func LogState(state *State) {
	writeMessage(Message{Type: StateMessage, State: state})
}

// LogSpec writes the connector's config schema as a SPEC message.
func LogSpec(spec map[string]any) {
	writeMessage(Message{Type: SpecMessage, Spec: spec})
}

// LogConnectionStatus reports a check result.
func LogConnectionStatus(err error) {
	status := &StatusRow{Status: ConnectionSucceed}
	if err != nil {
		status.Status = ConnectionFailed
		status.Message = err.Error()
	}
	writeMessage(Message{Type: ConnectionStatusMessage, ConnectionStatus: status})
}
