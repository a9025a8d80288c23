package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/llm"
)

// Service generates question explanations with an LLM. It satisfies
// exam.Explainer.
type Service struct {
	provider llm.Provider
	cfg      Config
}

var _ exam.Explainer = (*Service)(nil)

// NewService creates an explanation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type explanationOutput struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

// Explain asks the provider for an explanation of q and returns it as text
// blocks: the summary first, then one block per step.
func (s *Service) Explain(ctx context.Context, q exam.Question) ([]exam.NarrationBlock, error) {
	ctx = llm.WithPurpose(ctx, "explain")
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(q),
		Schema:      ExplanationSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("explanation generation: %w", err)
	}

	var out explanationOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse explanation response: %w", err)
	}
	return toBlocks(out), nil
}

func toBlocks(out explanationOutput) []exam.NarrationBlock {
	var blocks []exam.NarrationBlock
	if s := strings.TrimSpace(out.Summary); s != "" {
		blocks = append(blocks, exam.NarrationBlock{Type: exam.BlockText, Value: s})
	}
	n := 0
	for _, step := range out.Steps {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		n++
		blocks = append(blocks, exam.NarrationBlock{
			Type:  exam.BlockText,
			Value: fmt.Sprintf("%d. %s", n, step),
		})
	}
	return blocks
}
