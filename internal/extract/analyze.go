package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// ErrAnalyzerDisabled is returned when no LLM is configured.
var ErrAnalyzerDisabled = errors.New("analysis disabled: LLM_API_KEY not set")

// DefaultInstruction asks whether the comments back up what the video says.
const DefaultInstruction = `Analyze this YouTube video and tell me whether what is said in the video is confirmed by the users' comments.

Please give a short analysis answering:
1. What is the main topic of the video?
2. Do the users' comments confirm or contradict what is said in the video?
3. Are there significant discrepancies between the video content and the users' reactions?
4. What is the overall sentiment of the comments?

Keep the answer to 200-300 words.`

const analyzePrompt = `%s

---

%s`

// Analyzer sends an extraction artifact to an LLM.
type Analyzer struct {
	// Complete sends one prompt and returns the model's answer.
	Complete      func(ctx context.Context, prompt string) (string, error)
	MaxTranscript int
}

// NewAnalyzer returns an Analyzer over engine.Cfg.LLMClient, or nil when none is configured.
func NewAnalyzer() *Analyzer {
	client := engine.Cfg.LLMClient
	if client == nil {
		return nil
	}
	return &Analyzer{
		Complete: func(ctx context.Context, prompt string) (string, error) {
			return client.Complete(ctx, "", prompt, llm.WithChatTemperature(0.3))
		},
		MaxTranscript: engine.Cfg.MaxArtifactChars,
	}
}

// Analyze runs instruction (DefaultInstruction when empty) over the result's artifact.
func (a *Analyzer) Analyze(ctx context.Context, res *Result, instruction string) (string, error) {
	if a == nil || a.Complete == nil {
		return "", ErrAnalyzerDisabled
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	engine.IncrAnalyze()
	prompt := fmt.Sprintf(analyzePrompt, instruction, res.Artifact(a.MaxTranscript))
	out, err := a.Complete(ctx, prompt)
	if err != nil {
		engine.IncrAnalyzeError()
		return "", fmt.Errorf("llm: %w", err)
	}
	return strings.TrimSpace(out), nil
}
