// Package sherpa implements the Sherpa e-commerce backend driver: an
// authenticated SOAP-over-HTTP client with retry policy, token paginators for
// every changed-entity service, and the static stream catalog.
package sherpa

import (
	"context"
	"fmt"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/drivers/abstract"
	"github.com/XAbade/tap-sherpaan/types"
	"github.com/XAbade/tap-sherpaan/utils/logger"
)

type Sherpa struct {
	config *Config
	client *Client
	opts   []ClientOption
}

func NewSherpa(opts ...ClientOption) *Sherpa {
	return &Sherpa{config: &Config{}, opts: opts}
}

func (s *Sherpa) GetConfigRef() abstract.Config {
	return s.config
}

func (s *Sherpa) Type() string {
	return "sherpa"
}

func (s *Sherpa) ChunkSize() int {
	return s.config.ChunkSize
}

// Spec describes the recognized configuration surface.
func (s *Sherpa) Spec() map[string]any {
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"base_url":       map[string]any{"type": "string", "description": "Base URL of the Sherpa SOAP service", "default": constants.DefaultBaseURL},
			"shop_id":        map[string]any{"type": "string", "description": "Shop ID of the Sherpa SOAP service"},
			"security_code":  map[string]any{"type": "string", "description": "Security code for authentication", "secret": true},
			"start_date":     map[string]any{"type": "string", "format": "date-time", "description": "Earliest record date to sync"},
			"chunk_size":     map[string]any{"type": "integer", "default": constants.DefaultChunkSize, "description": "Records per committed chunk"},
			"max_retries":    map[string]any{"type": "integer", "default": constants.DefaultMaxRetries, "description": "Retry attempts for failed requests"},
			"retry_wait_min": map[string]any{"type": "number", "default": constants.DefaultRetryWaitMin, "description": "Minimum seconds between retries"},
			"retry_wait_max": map[string]any{"type": "number", "default": constants.DefaultRetryWaitMax, "description": "Maximum seconds between retries"},
		},
		"required": []string{"shop_id", "security_code"},
	}
}

// Setup validates config and probes the backend with the cheapest available
// call so check fails before any stream starts.
func (s *Sherpa) Setup(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.client = NewClient(s.config, s.opts...)

	_, err := s.client.CallService(ctx, "ChangedSuppliers", []Param{
		{Name: "token", Value: "1"},
		{Name: "count", Value: "1"},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to reach shop %s: %s", s.config.ShopID, err)
	}
	logger.Infof("connected to shop %s", s.config.ShopID)
	return nil
}

// Discover returns the static stream catalog; the Sherpa service surface is
// fixed, so no runtime schema introspection happens here.
func (s *Sherpa) Discover(_ context.Context) ([]*types.Stream, error) {
	return streamDefinitions(), nil
}

// InitialCursor is the replication cursor used when no bookmark exists.
func (s *Sherpa) InitialCursor(_ types.StreamInterface) int64 {
	return constants.StartingToken
}

func (s *Sherpa) NewPaginator(_ context.Context, stream types.StreamInterface, startToken int64) (abstract.Paginator, error) {
	if s.client == nil {
		return nil, fmt.Errorf("driver not set up")
	}
	return newPaginator(s.client, stream, startToken, s.config.ChunkSize)
}
