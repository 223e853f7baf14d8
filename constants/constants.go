package constants

const (
	// viper keys shared across commands
	ConfigFolder = "CONFIG_FOLDER"
	StatePath    = "STATE_PATH"
	StreamsPath  = "STREAMS_PATH"

	// columns stamped on every emitted record
	TapStream        = "_tap_stream"
	TapExtractedAt   = "_tap_extracted_at"
	TapSchemaVersion = "_tap_schema_version"

	// Sherpa service wire constants
	SherpaNamespace   = "http://sherpa.sherpaan.nl/"
	SherpaServicePath = "Sherpa.asmx"

	// replication cursor used by every token paginated Sherpa stream
	TokenCursorField = "Token"

	// StartingToken is the token the Sherpa services expect on a fresh sync;
	// the backend only ever returns items with tokens strictly greater than
	// the requested one.
	StartingToken = int64(1)
)

const (
	DefaultBaseURL      = "https://sherpaservices-prd.sherpacloud.eu"
	DefaultChunkSize    = 200
	DefaultMaxRetries   = 3
	DefaultRetryWaitMin = 4.0
	DefaultRetryWaitMax = 10.0
)
