// Package enrich generates remediation guidance for findings by asking an
// external chat-completion model, batched to respect provider rate limits.
package enrich

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/lif2/checkov/pkg/logme"
)

type Provider string

const (
	ProviderDefault Provider = "default"
	ProviderAzure   Provider = "azure"
)

const (
	defaultModel           = "gpt-3.5-turbo"
	defaultMaxFindings     = 5
	defaultMaxTokens       = 512
	defaultAzureAPIVersion = "2023-05-15"
)

// Config is the explicit enricher configuration. One Config is built per
// process (from flags plus environment) and passed to New; there is no
// ambient shared state.
type Config struct {
	APIKey   string
	Provider Provider
	Model    string

	// MaxFindings caps how many findings are enriched per Enhance call.
	// 0 means unlimited.
	MaxFindings int
	MaxTokens   int

	// Azure provider settings. Required when Provider is azure.
	AzureEndpoint   string
	AzureAPIVersion string
	AzureDeployment string
}

// ConfigFromEnv builds a Config from the CKV_OPENAI_* environment variables,
// reading a .env file first when one is present.
func ConfigFromEnv(apiKey string, provider Provider) Config {
	if err := godotenv.Load(); err == nil {
		logme.Debugln("Loaded enrichment settings from .env")
	}

	if provider == "" {
		provider = ProviderDefault
	}

	cfg := Config{
		APIKey:      apiKey,
		Provider:    provider,
		Model:       envString("CKV_OPENAI_MODEL", defaultModel),
		MaxFindings: envInt("CKV_OPENAI_MAX_FINDINGS", defaultMaxFindings),
		MaxTokens:   envInt("CKV_OPENAI_MAX_TOKENS", defaultMaxTokens),
	}

	if provider == ProviderAzure {
		cfg.AzureEndpoint = os.Getenv("CKV_AZURE_OPENAI_API_ENDPOINT")
		cfg.AzureAPIVersion = envString("CKV_AZURE_OPENAI_API_VERSION", defaultAzureAPIVersion)
		cfg.AzureDeployment = os.Getenv("CKV_AZURE_OPENAI_DEPLOYMENT_NAME")
	}

	return cfg
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logme.DebugFln("Ignoring non-numeric %s=%q", name, v)
		return fallback
	}
	return n
}
