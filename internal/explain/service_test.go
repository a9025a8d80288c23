package explain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/llm"
)

func testQuestion() exam.Question {
	return exam.Question{
		ID:      "q1",
		Type:    exam.TypeMultipleChoice,
		Content: "What is $6 \\times 7$?",
		Options: []string{"36", "42", "48"},
		Answer:  "42",
	}
}

func TestService_Explain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"Six groups of seven make forty-two.","steps":["6 x 7 = 7+7+7+7+7+7"," ","Sum is 42"]}`),
	})
	svc := NewService(mock, DefaultConfig())

	blocks, err := svc.Explain(t.Context(), testQuestion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Value != "Six groups of seven make forty-two." {
		t.Errorf("summary block = %q", blocks[0].Value)
	}
	if blocks[2].Value != "2. Sum is 42" {
		t.Errorf("blank steps should be skipped and numbering kept dense, got %q", blocks[2].Value)
	}
	for _, b := range blocks {
		if b.Type != exam.BlockText {
			t.Errorf("block type = %s, want text", b.Type)
		}
	}
}

func TestService_RequestCarriesQuestion(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"s","steps":[]}`),
	})
	svc := NewService(mock, DefaultConfig())

	if _, err := svc.Explain(t.Context(), testQuestion()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	req := calls[0]
	if req.Schema != ExplanationSchema {
		t.Error("expected explanation schema on request")
	}
	for _, want := range []string{"$6 \\times 7$", "2. 42", "Correct answer: 42"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, req.Prompt)
		}
	}
}

func TestService_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.Explain(t.Context(), testQuestion())
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
}

func TestService_SchemaViolation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"summary":"s"}`)})
	svc := NewService(mock, DefaultConfig())

	if _, err := svc.Explain(t.Context(), testQuestion()); err == nil {
		t.Fatal("expected error for response missing steps")
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestService_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewService(slowProvider{}, cfg)

	_, err := svc.Explain(context.Background(), testQuestion())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}
