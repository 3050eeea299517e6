package enrich

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lif2/checkov/pkg/checktype"
	"github.com/lif2/checkov/pkg/finding"
	"github.com/lif2/checkov/pkg/logme"
)

// Check types whose findings do not carry code worth explaining (or whose
// volume makes enrichment too expensive).
var denyList = map[checktype.CheckType]struct{}{
	checktype.Policy3D:   {},
	checktype.ScaImage:   {},
	checktype.ScaPackage: {},
	checktype.Secrets:    {},
}

const (
	// Free-tier completion APIs allow around 20 requests per minute, so
	// larger runs are split into batches of 10.
	batchSize           = 10
	batchSplitThreshold = 20
	secondsPerBatch     = 15
)

// Enricher asks the completion API for a short remediation explanation per
// finding and writes it into the finding's Details. Every failure mode
// degrades to "no guidance"; Enhance never fails the run.
type Enricher struct {
	client  *openai.Client
	cfg     Config
	enabled bool
}

// New builds an Enricher from an explicit Config. A missing API key or an
// incomplete azure configuration returns a disabled enricher; azure
// misconfiguration is also reported on the console so the user knows why
// guidance is missing.
func New(cfg Config) *Enricher {
	e := &Enricher{cfg: cfg}
	if cfg.APIKey == "" {
		return e
	}
	if e.cfg.Provider == "" {
		e.cfg.Provider = ProviderDefault
	}

	var clientCfg openai.ClientConfig
	switch e.cfg.Provider {
	case ProviderAzure:
		ok := true
		for _, setting := range []struct{ name, value string }{
			{"CKV_AZURE_OPENAI_API_ENDPOINT", cfg.AzureEndpoint},
			{"CKV_AZURE_OPENAI_API_VERSION", cfg.AzureAPIVersion},
			{"CKV_AZURE_OPENAI_DEPLOYMENT_NAME", cfg.AzureDeployment},
		} {
			if setting.value == "" {
				logme.ErrorRedFln(
					"ERROR: Configuration for Azure OpenAI is missing: please set the %s environment variable for provider %q.",
					setting.name, e.cfg.Provider,
				)
				ok = false
			}
		}
		if !ok {
			return e
		}
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		clientCfg.APIVersion = cfg.AzureAPIVersion
		deployment := cfg.AzureDeployment
		clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	default:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	}

	clientCfg.HTTPClient = http.DefaultClient
	e.client = openai.NewClientWithConfig(clientCfg)
	e.enabled = true
	return e
}

// Enabled reports whether Enhance will do anything at all.
func (e *Enricher) Enabled() bool {
	return e != nil && e.enabled
}

// Enhance requests guidance for a prioritized subset of the findings and
// writes it back onto them. Batches run one after another; requests within a
// batch run concurrently and the batch completes only when all of them have
// finished, successfully or not.
func (e *Enricher) Enhance(ctx context.Context, ct checktype.CheckType, findings []*finding.Finding) {
	if !e.Enabled() {
		return
	}
	if _, denied := denyList[ct]; denied {
		return
	}
	if len(findings) == 0 {
		return
	}

	selected := e.prioritize(findings)
	batches := splitBatches(selected)
	e.printWarning(len(findings), len(selected), len(batches))

	for _, batch := range batches {
		var wg sync.WaitGroup
		for _, f := range batch {
			if len(f.CodeBlock) == 0 {
				// nothing to explain without a code block
				continue
			}
			wg.Add(1)
			go func(f *finding.Finding) {
				defer wg.Done()
				e.complete(ctx, f)
			}(f)
		}
		wg.Wait()
	}
}

// prioritize caps the findings to MaxFindings. When capped, the findings are
// sorted by severity descending and the tail is kept: the least severe
// findings tend to have the smallest, cheapest explanations, which protects
// the user from excessive token usage. Preserve this policy as-is.
func (e *Enricher) prioritize(findings []*finding.Finding) []*finding.Finding {
	maxFindings := e.cfg.MaxFindings
	if maxFindings <= 0 || len(findings) <= maxFindings {
		return findings
	}

	sorted := make([]*finding.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SeverityLevel() > sorted[j].SeverityLevel()
	})

	return sorted[len(sorted)-maxFindings:]
}

func splitBatches(findings []*finding.Finding) [][]*finding.Finding {
	if len(findings) <= batchSplitThreshold {
		return [][]*finding.Finding{findings}
	}
	var batches [][]*finding.Finding
	for i := 0; i < len(findings); i += batchSize {
		end := min(i+batchSize, len(findings))
		batches = append(batches, findings[i:end])
	}
	return batches
}

func (e *Enricher) printWarning(foundCount, enhanceCount, batchCount int) {
	maxFindingsNote := ""
	if maxFindings := e.cfg.MaxFindings; maxFindings > 0 && foundCount > maxFindings {
		maxFindingsNote = fmt.Sprintf(
			"Found %d failed checks and will provide enhanced guidelines for %d. To add enhanced guidelines for more findings,\n"+
				"please adjust the env var CKV_OPENAI_MAX_FINDINGS accordingly or set 0 to enhance all.\n",
			foundCount, maxFindings,
		)
	}

	logme.WarnFln(
		"WARNING: About to request %d enhanced guidelines and it may take up to %ds.\n%s",
		enhanceCount, batchCount*secondsPerBatch, maxFindingsNote,
	)
}

// complete issues one chat-completion request for a finding. Errors are
// swallowed after a debug log; the finding is left untouched.
func (e *Enricher) complete(ctx context.Context, f *finding.Finding) {
	var code strings.Builder
	for _, line := range f.CodeBlock {
		code.WriteString(line.Line)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		Temperature: 0,
		MaxTokens:   e.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a security tool"},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(
					"fix following code, which violates policy '%s':\n%s",
					f.CheckName, code.String(),
				),
			},
			{Role: openai.ChatMessageRoleUser, Content: "Explain"},
		},
	})
	if err != nil {
		logme.Debugln("Something went wrong while querying the completion API:", err)
		return
	}

	logme.DebugFln("Completion request consumed %d tokens", resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return
	}
	details := parseCompletion(resp.Choices[0].Message.Content)
	if len(details) > 0 {
		f.Details = details
	}
}
