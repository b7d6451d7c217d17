// Package config reads the sync settings from viper: environment variables,
// .env files and the optional ~/.harvestsync.yaml file.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
)

// Keys, as environment variables. Config file keys are the lower-case form.
const (
	KeyHarvestToken       = "HARVEST_TOKEN"
	KeyHarvestAccountID   = "HARVEST_ACCOUNT_ID"
	KeyHarvestUserAgent   = "HARVEST_USER_AGENT"
	KeyHarvestBaseURL     = "HARVEST_BASE_URL"
	KeyRentmanToken       = "RENTMAN_TOKEN"
	KeyRentmanBaseURL     = "RENTMAN_BASE_URL"
	KeyFallbackClientID   = "FALLBACK_CLIENT_ID"
	KeyExcludedCustomerID = "EXCLUDED_CUSTOMER_ID"
	KeySymmetricActive    = "SYMMETRIC_ACTIVE"
	KeySyncInterval       = "SYNC_INTERVAL"
	KeyJournalPath        = "JOURNAL_PATH"
)

// Harvest holds the Harvest credentials.
type Harvest struct {
	Token     string
	AccountID string
	UserAgent string
	BaseURL   string
}

// Rentman holds the Rentman credentials.
type Rentman struct {
	Token   string
	BaseURL string
}

// Config is the complete sync configuration.
type Config struct {
	Harvest Harvest
	Rentman Rentman

	FallbackClientID int64
	// ExcludedCustomerID is 0 when EXCLUDED_CUSTOMER_ID is unset, which
	// disables the exclusion.
	ExcludedCustomerID int64
	SymmetricActive    bool
	Interval           time.Duration
	JournalPath        string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(key(KeyHarvestUserAgent), constants.DefaultUserAgent)
	v.SetDefault(key(KeyHarvestBaseURL), constants.HarvestBaseURL)
	v.SetDefault(key(KeyRentmanBaseURL), constants.RentmanBaseURL)
	v.SetDefault(key(KeySyncInterval), constants.DefaultSyncInterval)
	v.SetDefault(key(KeyJournalPath), constants.DefaultJournalPath)
}

// Load builds a Config from v. It fails on values that do not parse; missing
// values are reported by Validate.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Harvest: Harvest{
			Token:     v.GetString(key(KeyHarvestToken)),
			AccountID: v.GetString(key(KeyHarvestAccountID)),
			UserAgent: v.GetString(key(KeyHarvestUserAgent)),
			BaseURL:   v.GetString(key(KeyHarvestBaseURL)),
		},
		Rentman: Rentman{
			Token:   v.GetString(key(KeyRentmanToken)),
			BaseURL: v.GetString(key(KeyRentmanBaseURL)),
		},
		SymmetricActive: v.GetBool(key(KeySymmetricActive)),
		JournalPath:     v.GetString(key(KeyJournalPath)),
	}

	var err error
	if cfg.FallbackClientID, err = getID(v, KeyFallbackClientID); err != nil {
		return nil, err
	}
	if cfg.ExcludedCustomerID, err = getID(v, KeyExcludedCustomerID); err != nil {
		return nil, err
	}
	if cfg.Interval, err = getDuration(v, KeySyncInterval); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{KeyHarvestToken, c.Harvest.Token},
		{KeyHarvestAccountID, c.Harvest.AccountID},
		{KeyRentmanToken, c.Rentman.Token},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.NewConfigError(r.name, "is required", nil)
		}
	}
	if c.FallbackClientID <= 0 {
		return errors.NewConfigError(KeyFallbackClientID, "must be a Harvest client id", nil)
	}
	if c.Interval != 0 && c.Interval < constants.MinSyncInterval {
		return errors.NewConfigError(KeySyncInterval, "must be at least "+constants.MinSyncInterval.String(), nil)
	}
	return nil
}

// SyncOptions returns the client options for these settings.
func (c *Config) SyncOptions() []harvestsync.Option {
	return []harvestsync.Option{
		harvestsync.WithFallbackClientID(c.FallbackClientID),
		harvestsync.WithExcludedCustomerID(c.ExcludedCustomerID),
		harvestsync.WithSymmetricActive(c.SymmetricActive),
	}
}

func key(env string) string {
	return strings.ToLower(env)
}

func getID(v *viper.Viper, env string) (int64, error) {
	raw := strings.TrimSpace(v.GetString(key(env)))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errors.NewConfigError(env, "must be a non-negative integer, got "+strconv.Quote(raw), err)
	}
	return id, nil
}

func getDuration(v *viper.Viper, env string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key(env)))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, errors.NewConfigError(env, "must be a duration such as 30m, got "+strconv.Quote(raw), err)
	}
	return d, nil
}
