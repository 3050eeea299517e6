// Package repoconfig resolves the per-repository scan settings fetched from
// the platform: path exclusions and enforcement-rule severity thresholds.
package repoconfig

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed runconfig.schema.json
var runConfigSchema []byte

// RunConfig is the run-configuration payload returned by the platform for a
// customer repository.
type RunConfig struct {
	APIVersion       string           `json:"apiVersion,omitempty"`
	VCSConfig        VCSConfig        `json:"vcsConfig"`
	EnforcementRules EnforcementRules `json:"enforcementRules"`
}

type VCSConfig struct {
	ScannedFiles ScannedFiles `json:"scannedFiles"`
}

type ScannedFiles struct {
	Sections []FileSection `json:"sections"`
}

// FileSection scopes a path-exclusion rule to a list of repositories.
type FileSection struct {
	Repos []string    `json:"repos"`
	Rule  ExcludeRule `json:"rule"`
}

type ExcludeRule struct {
	ExcludePaths []string `json:"excludePaths"`
}

type EnforcementRules struct {
	Rules []EnforcementRule `json:"rules"`
}

// EnforcementRule carries per-category severity thresholds. Exactly one rule
// in a payload is flagged as the main (default) rule.
type EnforcementRule struct {
	Name           string                        `json:"name"`
	MainRule       bool                          `json:"mainRule"`
	Repositories   []RuleRepository              `json:"repositories"`
	CodeCategories map[string]CategoryThresholds `json:"codeCategories"`
}

type RuleRepository struct {
	AccountName string `json:"accountName"`
}

type CategoryThresholds struct {
	SoftFailThreshold string `json:"softFailThreshold"`
	HardFailThreshold string `json:"hardFailThreshold"`
}

// Empty reports whether the payload carries no usable configuration.
func (c *RunConfig) Empty() bool {
	return c == nil ||
		(len(c.VCSConfig.ScannedFiles.Sections) == 0 && len(c.EnforcementRules.Rules) == 0)
}

// ParseRunConfig parses a raw run-configuration payload. The raw bytes are
// standardized first to tolerate trailing commas and comments, then checked
// against the payload schema before unmarshaling.
func ParseRunConfig(raw []byte) (*RunConfig, error) {
	stdRaw, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("run config is not valid JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(runConfigSchema)
	documentLoader := gojsonschema.NewBytesLoader(stdRaw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		desc := result.Errors()[0]
		return nil, fmt.Errorf("run config does not match the expected schema: %s: %s", desc.Field(), desc.Description())
	}

	var cfg RunConfig
	if err := json.Unmarshal(stdRaw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
