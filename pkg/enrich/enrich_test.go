package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lif2/checkov/pkg/checktype"
	"github.com/lif2/checkov/pkg/finding"
	"github.com/lif2/checkov/pkg/severity"
)

const completionsURL = "https://api.openai.com/v1/chat/completions"

func completionJSON(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "gpt-3.5-turbo",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
	}`, content)
}

func newTestFinding(id string, sev *severity.Severity) *finding.Finding {
	return &finding.Finding{
		CheckID:   id,
		CheckName: "Ensure encryption is enabled",
		Severity:  sev,
		CodeBlock: []finding.CodeLine{
			{Number: 1, Line: "resource \"aws_s3_bucket\" \"b\" {\n"},
			{Number: 2, Line: "}\n"},
		},
	}
}

func newTestEnricher(cfg Config) *Enricher {
	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test"
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return New(cfg)
}

func TestEnhanceWritesGuidanceDetails(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(
		http.MethodPost,
		completionsURL,
		httpmock.NewStringResponder(http.StatusOK, completionJSON("Enable encryption. It protects data")),
	)

	f := newTestFinding("CKV_AWS_1", severity.High)
	e := newTestEnricher(Config{MaxFindings: 5})

	e.Enhance(context.Background(), checktype.Terraform, []*finding.Finding{f})

	require.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, []string{
		disclaimer,
		"",
		"Enable encryption.",
		"It protects data.",
	}, f.Details)
}

func TestEnhanceSkipsDeniedCheckTypes(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(
		http.MethodPost,
		completionsURL,
		httpmock.NewStringResponder(http.StatusOK, completionJSON("irrelevant")),
	)

	e := newTestEnricher(Config{MaxFindings: 5})
	findings := []*finding.Finding{newTestFinding("CKV_SECRET_1", severity.High)}

	for _, ct := range []checktype.CheckType{
		checktype.Policy3D, checktype.ScaImage, checktype.ScaPackage, checktype.Secrets,
	} {
		e.Enhance(context.Background(), ct, findings)
	}

	assert.Equal(t, 0, httpmock.GetTotalCallCount())
	assert.Nil(t, findings[0].Details)
}

func TestEnhanceSkipsFindingsWithoutCodeBlock(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(
		http.MethodPost,
		completionsURL,
		httpmock.NewStringResponder(http.StatusOK, completionJSON("irrelevant")),
	)

	f := newTestFinding("CKV_AWS_1", severity.High)
	f.CodeBlock = nil
	e := newTestEnricher(Config{MaxFindings: 5})

	e.Enhance(context.Background(), checktype.Terraform, []*finding.Finding{f})

	assert.Equal(t, 0, httpmock.GetTotalCallCount())
	assert.Nil(t, f.Details)
}

func TestEnhanceRequestFailureLeavesFindingUntouched(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(
		http.MethodPost,
		completionsURL,
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if strings.Contains(string(body), "CKV_AWS_FAIL") {
				return httpmock.NewStringResponse(http.StatusInternalServerError, `{"error": {"message": "boom"}}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, completionJSON("All good")), nil
		},
	)

	failing := newTestFinding("CKV_AWS_FAIL", severity.High)
	failing.CheckName = "CKV_AWS_FAIL"
	siblings := []*finding.Finding{
		newTestFinding("CKV_AWS_1", severity.Low),
		failing,
		newTestFinding("CKV_AWS_2", severity.Medium),
	}
	e := newTestEnricher(Config{MaxFindings: 5})

	e.Enhance(context.Background(), checktype.Terraform, siblings)

	assert.Equal(t, 3, httpmock.GetTotalCallCount())
	assert.Nil(t, failing.Details)
	assert.NotNil(t, siblings[0].Details)
	assert.NotNil(t, siblings[2].Details)
}

func TestEnhanceUnlimitedEnrichesEverything(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(
		http.MethodPost,
		completionsURL,
		httpmock.NewStringResponder(http.StatusOK, completionJSON("Fix it")),
	)

	var findings []*finding.Finding
	for i := 0; i < 25; i++ {
		findings = append(findings, newTestFinding(fmt.Sprintf("CKV_AWS_%d", i), severity.Medium))
	}
	e := newTestEnricher(Config{MaxFindings: 0})

	e.Enhance(context.Background(), checktype.Terraform, findings)

	assert.Equal(t, 25, httpmock.GetTotalCallCount())
	for _, f := range findings {
		assert.NotNil(t, f.Details)
	}
}

func TestPrioritizeKeepsLeastSevereFindings(t *testing.T) {
	var findings []*finding.Finding
	severities := []*severity.Severity{
		severity.Critical, severity.High, severity.Medium, severity.Low, severity.None,
	}
	for i := 0; i < 25; i++ {
		findings = append(findings, newTestFinding(fmt.Sprintf("CKV_AWS_%d", i), severities[i%5]))
	}

	e := newTestEnricher(Config{MaxFindings: 5})
	selected := e.prioritize(findings)

	require.Len(t, selected, 5)
	for _, f := range selected {
		assert.Equal(t, severity.None, f.Severity)
	}
}

func TestPrioritizeDoesNotReorderUncappedFindings(t *testing.T) {
	findings := []*finding.Finding{
		newTestFinding("CKV_AWS_1", severity.Low),
		newTestFinding("CKV_AWS_2", severity.Critical),
	}

	e := newTestEnricher(Config{MaxFindings: 5})
	assert.Equal(t, findings, e.prioritize(findings))

	e = newTestEnricher(Config{MaxFindings: 0})
	assert.Equal(t, findings, e.prioritize(findings))
}

func TestSplitBatches(t *testing.T) {
	var findings []*finding.Finding
	for i := 0; i < 25; i++ {
		findings = append(findings, newTestFinding(fmt.Sprintf("CKV_AWS_%d", i), severity.Low))
	}

	batches := splitBatches(findings)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)

	// up to 20 findings stay in a single batch
	batches = splitBatches(findings[:20])
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 20)
}

func TestDisabledEnricherIsNoOp(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	e := New(Config{})
	assert.False(t, e.Enabled())

	f := newTestFinding("CKV_AWS_1", severity.High)
	e.Enhance(context.Background(), checktype.Terraform, []*finding.Finding{f})

	assert.Equal(t, 0, httpmock.GetTotalCallCount())
	assert.Nil(t, f.Details)
}
