package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
)

// fakeLLM scripts Complete responses for tests.
type fakeLLM struct {
	out        string
	err        error
	lastSystem string
}

func (f *fakeLLM) Complete(ctx context.Context, system, prompt string, opts interfaces.CompletionOptions) (string, error) {
	f.lastSystem = system
	return f.out, f.err
}

func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func TestColloquializer_NilClientIsNoop(t *testing.T) {
	c := NewColloquializer(nil, interfaces.CompletionOptions{}, common.NewSilentLogger())
	if got := c.Rewrite(context.Background(), "formal text", ""); got != nil {
		t.Errorf("expected nil, got %q", *got)
	}
}

func TestColloquializer_FailureIsSilent(t *testing.T) {
	c := NewColloquializer(&fakeLLM{err: errors.New("quota exceeded")}, interfaces.CompletionOptions{}, common.NewSilentLogger())
	if got := c.Rewrite(context.Background(), "formal text", ""); got != nil {
		t.Errorf("expected nil on LLM failure, got %q", *got)
	}
}

func TestColloquializer_EmptyOutputIsNil(t *testing.T) {
	c := NewColloquializer(&fakeLLM{out: "   "}, interfaces.CompletionOptions{}, common.NewSilentLogger())
	if got := c.Rewrite(context.Background(), "formal text", ""); got != nil {
		t.Errorf("expected nil on empty output, got %q", *got)
	}
}

func TestColloquializer_Success(t *testing.T) {
	llm := &fakeLLM{out: "hey, AAPL is at $189.84!"}
	c := NewColloquializer(llm, interfaces.CompletionOptions{}, common.NewSilentLogger())
	got := c.Rewrite(context.Background(), "AAPL: $189.84", "")
	if got == nil || *got != "hey, AAPL is at $189.84!" {
		t.Errorf("unexpected rewrite: %v", got)
	}
	if llm.lastSystem != ColloquialSystemPrompt {
		t.Errorf("system prompt: got %q", llm.lastSystem)
	}
}

func TestColloquializer_LangOptionExtendsPrompt(t *testing.T) {
	llm := &fakeLLM{out: "嘿！AAPL 現在是 $189.84"}
	c := NewColloquializer(llm, interfaces.CompletionOptions{}, common.NewSilentLogger())
	if got := c.Rewrite(context.Background(), "AAPL: $189.84", "zh-TW"); got == nil {
		t.Fatal("expected a rewrite")
	}
	if !strings.Contains(llm.lastSystem, "Respond in zh-TW") {
		t.Errorf("system prompt missing language instruction: %q", llm.lastSystem)
	}
}
