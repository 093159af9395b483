package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot-go/internal/errors"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Crawl.Display = 100
	s.Crawl.FlushEvery = 200
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "data/lawglot.db"
	return s
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_DisplayBounds(t *testing.T) {
	s := validSettings()
	s.Crawl.Display = 0
	assert.Error(t, ValidateSettings(s))

	s.Crawl.Display = 101
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettings_NoBackend(t *testing.T) {
	s := validSettings()
	s.Output.SQLite.Enabled = false
	err := ValidateSettings(s)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRequireAPIKey(t *testing.T) {
	s := validSettings()
	err := RequireAPIKey(s)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Contains(t, err.Error(), "LAWGO_OC")

	s.LawAPI.OC = "testkey"
	assert.NoError(t, RequireAPIKey(s))
}

func TestAPIKeyFromEnv_Aliases(t *testing.T) {
	t.Setenv("LAWGO_OC", "")
	t.Setenv("LAWGO_ACCESS_KEY", "alias-key")
	t.Setenv("ACCESS_KEY", "")
	assert.Equal(t, "alias-key", apiKeyFromEnv())

	t.Setenv("LAWGO_OC", "primary")
	assert.Equal(t, "primary", apiKeyFromEnv())
}
