package sherpa

import (
	"fmt"
	"time"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/utils"
)

// Config is the immutable input of a sync run.
type Config struct {
	BaseURL      string  `json:"base_url"`
	ShopID       string  `json:"shop_id" validate:"required"`
	SecurityCode string  `json:"security_code" validate:"required"`
	StartDate    string  `json:"start_date,omitempty"`
	ChunkSize    int     `json:"chunk_size"`
	MaxRetries   *int    `json:"max_retries,omitempty"` // pointer so an explicit 0 disables retries
	RetryWaitMin float64 `json:"retry_wait_min"`
	RetryWaitMax float64 `json:"retry_wait_max"`
}

// Retries returns the retry budget, defaulted.
func (c *Config) Retries() int {
	if c.MaxRetries == nil {
		return constants.DefaultMaxRetries
	}
	return *c.MaxRetries
}

// Validate applies defaults and fails fast on invalid input, before any
// network call is made.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = constants.DefaultChunkSize
	}
	if c.RetryWaitMin == 0 {
		c.RetryWaitMin = constants.DefaultRetryWaitMin
	}
	if c.RetryWaitMax == 0 {
		c.RetryWaitMax = constants.DefaultRetryWaitMax
	}

	if err := utils.Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %s", err)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.Retries() < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.Retries())
	}
	if c.RetryWaitMin <= 0 || c.RetryWaitMax <= 0 {
		return fmt.Errorf("retry waits must be positive, got min=%v max=%v", c.RetryWaitMin, c.RetryWaitMax)
	}
	if c.RetryWaitMin > c.RetryWaitMax {
		return fmt.Errorf("retry_wait_min %v exceeds retry_wait_max %v", c.RetryWaitMin, c.RetryWaitMax)
	}
	if c.StartDate != "" {
		if _, err := time.Parse(time.RFC3339, c.StartDate); err != nil {
			return fmt.Errorf("start_date is not an ISO-8601 timestamp: %s", err)
		}
	}
	return nil
}
