package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{URL: "instance/wildsync.db"},
		Upload:   UploadConfig{MaxContentLength: 1 << 20, Workers: 2},
		Guest:    GuestConfig{Name: "Guest", Email: "guest@wildsync.local"},
		Geocode:  GeocodeConfig{Enabled: true, URL: "https://nominatim.openstreetmap.org/search"},
		LLM:      LLMConfig{APIKey: "sk-test", BaseURL: "https://api.openai.com/v1"},
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Guest.Email = "not-an-address"
	cfg.Upload.Workers = 0
	cfg.Geocode.URL = "ftp://example.org/search"
	cfg.LLM.BaseURL = "api.openai.com"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeConfig, appErr.Code)
	assert.Equal(t, "invalid configuration: GUEST_EMAIL, INGEST_WORKERS, GEOCODE_URL, OPENAI_BASE_URL", appErr.Message)
}

func TestConfig_ValidateSkipsDisabledServices(t *testing.T) {
	cfg := validConfig()
	cfg.Geocode = GeocodeConfig{URL: "not a url"}
	cfg.LLM = LLMConfig{BaseURL: "also not a url"}

	assert.NoError(t, cfg.Validate())
}

func TestValidator_Errors(t *testing.T) {
	v := NewValidator().
		Field("driver", "mysql", OneOf(DriverPostgres, DriverSQLite)).
		Field("name", "  ", Required).
		Field("count", 3, Positive)

	errs := v.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "driver", errs[0].Field)
	assert.Equal(t, "must be one of postgres, sqlite", errs[0].Message)
	assert.Equal(t, "name", errs[1].Field)
	assert.True(t, IsValidationError(v.Error()))

	assert.Nil(t, NewValidator().Field("driver", DriverSQLite, OneOf(DriverPostgres, DriverSQLite)).Error())
	assert.False(t, IsValidationError(ErrNotFound))
}
