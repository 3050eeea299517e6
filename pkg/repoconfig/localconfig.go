package repoconfig

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/lif2/checkov/pkg/category"
	"github.com/lif2/checkov/pkg/logme"
	"github.com/lif2/checkov/pkg/severity"
)

// LocalConfig is the subset of the local config file this layer cares about:
// extra skip paths and per-category threshold overrides. It is merged on top
// of whatever the platform returned, and applies even when the platform
// fetch failed.
type LocalConfig struct {
	SkipPaths        []string                   `yaml:"skip-path"`
	EnforcementRules map[string]LocalThresholds `yaml:"enforcement-rules"`
}

// LocalThresholds overrides the thresholds of one code category.
type LocalThresholds struct {
	SoftFailThreshold string `yaml:"soft-fail-threshold"`
	HardFailThreshold string `yaml:"hard-fail-threshold"`
}

// LoadLocalConfig reads a local YAML config file.
func LoadLocalConfig(path string) (*LocalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg LocalConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse local config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyLocalConfig merges local overrides into the resolver. Skip paths are
// unioned; category thresholds replace any platform-resolved ones.
func (r *Resolver) ApplyLocalConfig(cfg *LocalConfig) error {
	if cfg == nil {
		return nil
	}

	for _, p := range cfg.SkipPaths {
		r.skipPaths[p] = struct{}{}
	}

	for name, thresholds := range cfg.EnforcementRules {
		cat := category.CodeCategory(name)
		if !slices.Contains(category.All, cat) {
			return fmt.Errorf("local config has unknown code category %q", name)
		}
		softFail := severity.Get(thresholds.SoftFailThreshold)
		hardFail := severity.Get(thresholds.HardFailThreshold)
		if softFail == nil || hardFail == nil {
			return fmt.Errorf("local config has invalid thresholds for category %s", name)
		}
		r.categoryConfigs[cat] = &CategoryConfig{
			Category:          cat,
			SoftFailThreshold: softFail,
			HardFailThreshold: hardFail,
		}
		logme.DebugFln("Local config overrides thresholds for category %s: soft=%s hard=%s", name, softFail, hardFail)
	}

	return nil
}
