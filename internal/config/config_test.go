package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
)

func newViper(values map[string]string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(key(k), val)
	}
	return v
}

func validValues() map[string]string {
	return map[string]string{
		KeyHarvestToken:       "ht",
		KeyHarvestAccountID:   "123",
		KeyRentmanToken:       "rt",
		KeyFallbackClientID:   "500",
		KeyExcludedCustomerID: "666",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(validValues()))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, constants.HarvestBaseURL, cfg.Harvest.BaseURL)
	assert.Equal(t, constants.RentmanBaseURL, cfg.Rentman.BaseURL)
	assert.Equal(t, constants.DefaultUserAgent, cfg.Harvest.UserAgent)
	assert.Equal(t, constants.DefaultSyncInterval, cfg.Interval)
	assert.Equal(t, int64(500), cfg.FallbackClientID)
	assert.Equal(t, int64(666), cfg.ExcludedCustomerID)
	assert.False(t, cfg.SymmetricActive)
	assert.Len(t, cfg.SyncOptions(), 3)
}

func TestLoadUnsetExclusionIsDisabled(t *testing.T) {
	values := validValues()
	delete(values, KeyExcludedCustomerID)

	cfg, err := Load(newViper(values))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.ExcludedCustomerID)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(KeyHarvestToken, "env-token")
	t.Setenv(KeySymmetricActive, "true")
	t.Setenv(KeySyncInterval, "15m")

	v := viper.New()
	v.AutomaticEnv()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Harvest.Token)
	assert.True(t, cfg.SymmetricActive)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeyFallbackClientID, "abc"},
		{KeyExcludedCustomerID, "-4"},
		{KeySyncInterval, "often"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			values := validValues()
			values[tt.key] = tt.value
			_, err := Load(newViper(values))
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Component)
		})
	}
}

func TestValidate(t *testing.T) {
	for _, missing := range []string{KeyHarvestToken, KeyHarvestAccountID, KeyRentmanToken, KeyFallbackClientID} {
		t.Run(missing, func(t *testing.T) {
			values := validValues()
			delete(values, missing)
			cfg, err := Load(newViper(values))
			require.NoError(t, err)

			err = cfg.Validate()
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, missing, cfgErr.Component)
			assert.False(t, errors.IsRetryable(err))
		})
	}

	values := validValues()
	values[KeySyncInterval] = "10s"
	cfg, err := Load(newViper(values))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "interval below the minimum")
}
