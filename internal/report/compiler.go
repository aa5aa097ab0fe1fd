// Package report builds the readiness report text from a single text
// generation call and prepares it for layout.
package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taicc-readiness/internal/llm"
	"taicc-readiness/internal/model"
	"taicc-readiness/utilities"
)

// ErrGeneration wraps a failed text generation call.
var ErrGeneration = errors.New("report generation failed")

const promptTemplate = `
You are a senior AI consultant preparing a comprehensive AI readiness report for a corporate client.

Client Details:
- Name: %s
- Company: %s
- AI Readiness Score: %s (%s)

--- Report Requirements ---
1. Executive Summary
2. Current Maturity Level
3. Detailed Strengths and Weaknesses Analysis
4. Actionable Recommendations
5. Potential Business Impact
6. Conclusion and Call to Action

Use a formal business tone with bullet points, tables, and clear sections. Justify an investment price of ₹199.
`

// BuildPrompt renders the fixed report prompt for one client.
func BuildPrompt(profile model.UserProfile, score model.ScoreResult) string {
	return fmt.Sprintf(promptTemplate,
		profile.Name,
		profile.Company,
		strconv.FormatFloat(score.Average, 'f', -1, 64),
		score.Maturity,
	)
}

// Compiler turns a scored session into a CompiledReport.
type Compiler struct {
	client llm.LLMClient
}

// NewCompiler returns a Compiler. A nil client makes every Compile fail with
// llm.ErrTextGenerationUnavailable.
func NewCompiler(client llm.LLMClient) *Compiler {
	return &Compiler{client: client}
}

// Available reports whether a text generation client is configured.
func (c *Compiler) Available() bool {
	return c != nil && c.client != nil
}

// Compile makes exactly one generation call. Failures are returned as-is to
// the caller; nothing is retried.
func (c *Compiler) Compile(ctx context.Context, profile model.UserProfile, score model.ScoreResult) (model.CompiledReport, error) {
	if c.client == nil {
		return model.CompiledReport{}, llm.ErrTextGenerationUnavailable
	}

	generated, err := c.client.GenerateResponse(ctx, BuildPrompt(profile, score))
	if err != nil {
		utilities.Error("Report generation failed for %s: %v", profile.Email, err)
		return model.CompiledReport{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	full := header(profile) + strings.TrimSpace(generated)
	executive, detailed := Split(full)
	return model.CompiledReport{
		FullText:         full,
		ExecutiveSummary: Clean(executive),
		Detailed:         Clean(detailed),
	}, nil
}

func header(p model.UserProfile) string {
	return fmt.Sprintf("Client: %s\nCompany: %s\nEmail: %s\nPhone: %s\n\n", p.Name, p.Company, p.Email, p.Phone)
}
