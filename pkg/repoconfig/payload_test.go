package repoconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunConfig(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "run_config.json"))
	require.NoError(t, err)

	cfg, err := ParseRunConfig(raw)
	require.NoError(t, err)

	assert.Equal(t, "2.0", cfg.APIVersion)
	require.Len(t, cfg.VCSConfig.ScannedFiles.Sections, 3)
	assert.Equal(t, []string{"tests/**", "docs"}, cfg.VCSConfig.ScannedFiles.Sections[0].Rule.ExcludePaths)
	require.Len(t, cfg.EnforcementRules.Rules, 3)
	assert.True(t, cfg.EnforcementRules.Rules[0].MainRule)
	assert.Equal(t, "MEDIUM", cfg.EnforcementRules.Rules[0].CodeCategories["IAC"].SoftFailThreshold)
}

func TestParseRunConfigToleratesTrailingCommas(t *testing.T) {
	raw := []byte(`{
		"vcsConfig": {"scannedFiles": {"sections": []}},
		"enforcementRules": {"rules": [
			{"name": "default", "mainRule": true, "repositories": [], "codeCategories": {}},
		]},
	}`)

	cfg, err := ParseRunConfig(raw)
	require.NoError(t, err)
	require.Len(t, cfg.EnforcementRules.Rules, 1)
}

func TestParseRunConfigRejectsInvalidJSON(t *testing.T) {
	_, err := ParseRunConfig([]byte(`{"vcsConfig": `))
	assert.Error(t, err)
}

func TestParseRunConfigRejectsWrongShape(t *testing.T) {
	// enforcementRules missing entirely
	_, err := ParseRunConfig([]byte(`{"vcsConfig": {}}`))
	assert.ErrorContains(t, err, "schema")

	// rule entry without the mainRule flag
	_, err = ParseRunConfig([]byte(`{
		"vcsConfig": {},
		"enforcementRules": {"rules": [{"name": "default"}]}
	}`))
	assert.ErrorContains(t, err, "schema")
}

func TestRunConfigEmpty(t *testing.T) {
	assert.True(t, (&RunConfig{}).Empty())
	assert.True(t, (*RunConfig)(nil).Empty())

	cfg := &RunConfig{}
	cfg.EnforcementRules.Rules = []EnforcementRule{{MainRule: true}}
	assert.False(t, cfg.Empty())
}
