package harvestsync

import (
	"time"

	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/reconciler"
)

// Config is the immutable configuration of a Client.
type Config struct {
	// FallbackClientID is the Harvest client of projects without a customer.
	FallbackClientID int64
	// ExcludedCustomerID is a Rentman contact whose projects are never synced.
	// 0 disables the exclusion rather than matching customerless projects.
	ExcludedCustomerID int64
	// SymmetricActive lets Rentman reactivate Harvest projects, not only deactivate them.
	SymmetricActive bool
	// DryRun plans without writing.
	DryRun bool
	// Timeout bounds a single run; 0 means no timeout.
	Timeout time.Duration
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.planOptions(nil).Validate(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return errors.NewValidationError("timeout", c.Timeout, "must not be negative")
	}
	return nil
}

func (c *Config) planOptions(pending []int64) reconciler.Options {
	return reconciler.Options{
		FallbackClientID:   c.FallbackClientID,
		ExcludedCustomerID: c.ExcludedCustomerID,
		SymmetricActive:    c.SymmetricActive,
		PendingClients:     pending,
	}
}

func defaults() *Config {
	return &Config{Timeout: constants.SyncTimeout}
}

func (c *Config) apply(opts ...Option) (*Config, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Option is a function that configures a Client.
type Option func(*Config) error

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		*c = cfg
		return nil
	}
}

// WithFallbackClientID sets the Harvest client for projects without a customer.
func WithFallbackClientID(id int64) Option {
	return func(c *Config) error {
		c.FallbackClientID = id
		return nil
	}
}

// WithExcludedCustomerID sets the Rentman contact whose projects are skipped.
func WithExcludedCustomerID(id int64) Option {
	return func(c *Config) error {
		c.ExcludedCustomerID = id
		return nil
	}
}

// WithSymmetricActive configures whether inactive Harvest projects are reactivated.
func WithSymmetricActive(enabled bool) Option {
	return func(c *Config) error {
		c.SymmetricActive = enabled
		return nil
	}
}

// WithDryRun configures whether runs only plan.
func WithDryRun(enabled bool) Option {
	return func(c *Config) error {
		c.DryRun = enabled
		return nil
	}
}

// WithTimeout bounds each run.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return errors.NewValidationError("timeout", timeout, "must not be negative")
		}
		c.Timeout = timeout
		return nil
	}
}
