package agent

import (
	"context"
	"testing"
	"time"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/models"
)

func newTestRegistry(t *testing.T, timeout time.Duration) *Registry {
	t.Helper()
	return NewRegistry(timeout, common.NewSilentLogger())
}

func TestRegistry_UnknownTool(t *testing.T) {
	r := newTestRegistry(t, time.Second)
	res := r.Invoke(context.Background(), models.ToolCall{Tool: "nope"})
	if res.OK {
		t.Fatal("expected failure for unknown tool")
	}
	if res.Error != models.ErrCodeUnknownTool {
		t.Errorf("code: got %q, want %q", res.Error, models.ErrCodeUnknownTool)
	}
}

func TestRegistry_MissingRequiredArgument(t *testing.T) {
	r := newTestRegistry(t, time.Second)
	r.Register(&ToolSpec{
		Name:     "echo",
		Source:   "TEST",
		Required: []string{"text"},
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			return models.NewToolResult("echo", "TEST", args["text"], "")
		},
	})

	res := r.Invoke(context.Background(), models.ToolCall{Tool: "echo", Args: map[string]any{}})
	if res.OK {
		t.Fatal("expected failure for missing argument")
	}
	if res.Error != models.ErrCodeInvalidArguments {
		t.Errorf("code: got %q, want %q", res.Error, models.ErrCodeInvalidArguments)
	}
}

func TestRegistry_PanicBecomesErrorResult(t *testing.T) {
	r := newTestRegistry(t, time.Second)
	r.Register(&ToolSpec{
		Name:   "boom",
		Source: "TEST",
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			panic("kaboom")
		},
	})

	res := r.Invoke(context.Background(), models.ToolCall{Tool: "boom"})
	if res == nil {
		t.Fatal("expected a result, got nil")
	}
	if res.OK {
		t.Fatal("expected failure for panicking tool")
	}
	if res.Error != models.ErrCodeToolPanic {
		t.Errorf("code: got %q, want %q", res.Error, models.ErrCodeToolPanic)
	}
}

func TestRegistry_TimeoutReachesTool(t *testing.T) {
	r := newTestRegistry(t, 20*time.Millisecond)
	r.Register(&ToolSpec{
		Name:   "slow",
		Source: "TEST",
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			<-ctx.Done()
			return providerToolError("slow", "TEST", ctx.Err())
		},
	})

	res := r.Invoke(context.Background(), models.ToolCall{Tool: "slow"})
	if res.OK {
		t.Fatal("expected timeout failure")
	}
	if res.Error != models.ErrCodeTimeout {
		t.Errorf("code: got %q, want %q", res.Error, models.ErrCodeTimeout)
	}
}

func TestRegistry_StampsToolAndSource(t *testing.T) {
	r := newTestRegistry(t, time.Second)
	r.Register(&ToolSpec{
		Name:   "bare",
		Source: "TEST",
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			return &models.ToolResult{OK: true, Data: "x"}
		},
	})

	res := r.Invoke(context.Background(), models.ToolCall{Tool: "bare"})
	if res.Tool != "bare" || res.Source != "TEST" {
		t.Errorf("expected stamped identity, got tool=%q source=%q", res.Tool, res.Source)
	}
}
