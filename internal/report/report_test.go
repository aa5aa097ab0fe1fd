package report

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taicc-readiness/internal/llm"
	"taicc-readiness/internal/model"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateResponse(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

var profile = model.UserProfile{Name: "Asha Rao", Company: "Acme", Email: "asha@acme.test", Phone: "999"}

func TestCleanExample(t *testing.T) {
	got := Clean("**Bold** text\n\n\n1. First\n2. Second")
	assert.Equal(t, "Bold text\n\n1. First\n\n2. Second", got)
}

func TestCleanStripsMarkdown(t *testing.T) {
	in := "## Executive Summary\n\n**Acme** is *emerging*. See [docs](http://x).\n\n" +
		"- strong data-driven culture\n- weak talent\n\n---\n\n| a | b |\n|---|---|\n\n" +
		"1. Current Maturity Level\nScore 3.5 overall\n2. Recommendations"
	got := Clean(in)

	for _, marker := range []string{"#", "*", "[docs]", "http://x", "---", "- strong"} {
		assert.NotContains(t, got, marker)
	}
	assert.Contains(t, got, "data-driven")
	assert.Contains(t, got, "Score 3.5 overall")
	assert.Contains(t, got, "\n\n1. Current Maturity Level")
	assert.Contains(t, got, "\n\n2. Recommendations")
	assert.NotContains(t, got, "  ")
	assert.Equal(t, strings.TrimSpace(got), got)
}

func TestCleanBreaksAfterPunctuation(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Conclusion:1. Act now", "Conclusion:\n\n1. Act now"},
		{"Next steps (2. Pilot)", "Next steps (\n\n2. Pilot)"},
		{"Release 1.2.3 ships", "Release 1.2.3 ships"},
		{"Plan FY2024-25. Then grow", "Plan FY2024-25. Then grow"},
		{"Score of 3.5, up from 2.75", "Score of 3.5, up from 2.75"},
	}
	for _, tc := range cases {
		got := Clean(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, got, Clean(got), tc.in)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pieces := []string{
		"# ", "**", "_", "`", "> ", "~", "- ", "+ ", "---", "\n", "\n\n", "  ", "\t",
		"1.", "2. ", "3.5", "text", "[a](b)", "Executive Summary", "₹199", "|", "word-word",
	}
	for i := 0; i < 500; i++ {
		var b strings.Builder
		for j := rng.Intn(30); j >= 0; j-- {
			b.WriteString(pieces[rng.Intn(len(pieces))])
		}
		once := Clean(b.String())
		assert.Equal(t, once, Clean(once), "input %q", b.String())
	}
}

func TestSplitAtSummaryAndFirstNumber(t *testing.T) {
	full := "Client: A\n\nIntro\nExecutive Summary\nAcme is ready.\n1. Current Maturity Level\nDetails"
	exec, detail := Split(full)
	assert.Equal(t, "Executive Summary\nAcme is ready.", exec)
	assert.Equal(t, "1. Current Maturity Level\nDetails", detail)
}

func TestSplitWithoutNumberKeepsRestAsSummary(t *testing.T) {
	exec, detail := Split("Header\nExecutive Summary\nno numbered sections here")
	assert.Equal(t, "Executive Summary\nno numbered sections here", exec)
	assert.Empty(t, detail)
}

func TestSplitFallbackAt500Runes(t *testing.T) {
	full := strings.Repeat("é", 700)
	exec, detail := Split(full)
	assert.Equal(t, 500, len([]rune(exec)))
	assert.Equal(t, 200, len([]rune(detail)))

	exec, detail = Split("short")
	assert.Equal(t, "short", exec)
	assert.Empty(t, detail)
}

func TestSplitCoversTextFromSummary(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	words := []string{"alpha", "1.", "beta", "2.", "\n", "Executive Summary", "gamma"}
	for i := 0; i < 300; i++ {
		var b strings.Builder
		for j := rng.Intn(20); j >= 0; j-- {
			b.WriteString(words[rng.Intn(len(words))])
			b.WriteString(" ")
		}
		full := b.String()
		exec, detail := Split(full)
		start := strings.Index(full, summaryHeading)
		if start < 0 {
			assert.Equal(t, full, exec+detail)
			continue
		}
		assert.True(t, strings.HasPrefix(exec, summaryHeading))
		rest := strings.Join(strings.Fields(full[start:]), " ")
		joined := strings.Join(strings.Fields(exec+" "+detail), " ")
		assert.Equal(t, rest, joined)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(profile, model.ScoreResult{Average: 3.5, Maturity: model.Advanced})
	assert.Contains(t, prompt, "- Name: Asha Rao")
	assert.Contains(t, prompt, "- Company: Acme")
	assert.Contains(t, prompt, "- AI Readiness Score: 3.5 (Advanced)")
	assert.Contains(t, prompt, "6. Conclusion and Call to Action")
	assert.Contains(t, prompt, "₹199")
}

func TestCompile(t *testing.T) {
	fake := &fakeLLM{reply: "  ## Executive Summary\nAcme is **advanced**.\n1. Current Maturity Level\nStrong.  "}
	c := NewCompiler(fake)

	rep, err := c.Compile(context.Background(), profile, model.ScoreResult{Average: 3.5, Maturity: model.Advanced})
	require.NoError(t, err)
	require.Len(t, fake.prompts, 1)

	assert.True(t, strings.HasPrefix(rep.FullText,
		"Client: Asha Rao\nCompany: Acme\nEmail: asha@acme.test\nPhone: 999\n\n## Executive Summary"))
	assert.Equal(t, "Executive Summary\nAcme is advanced.", rep.ExecutiveSummary)
	assert.Equal(t, "1. Current Maturity Level\nStrong.", rep.Detailed)
}

func TestCompileFailures(t *testing.T) {
	_, err := NewCompiler(nil).Compile(context.Background(), profile, model.ScoreResult{})
	assert.ErrorIs(t, err, llm.ErrTextGenerationUnavailable)

	boom := errors.New("quota exceeded")
	fake := &fakeLLM{err: boom}
	_, err = NewCompiler(fake).Compile(context.Background(), profile, model.ScoreResult{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Len(t, fake.prompts, 1)
}
