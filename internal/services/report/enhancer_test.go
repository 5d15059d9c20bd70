package report

import (
	"context"
	"errors"
	"testing"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

const validInsightsJSON = `{
	"market_analysis": "Stocks were mixed.",
	"fundamental_analysis": "Large caps dominate.",
	"news_impact": "Earnings chatter.",
	"investment_recommendation": "Hold.",
	"risk_assessment": "Concentration risk.",
	"key_insights": ["one", "two"]
}`

func newTestEnhancer(llm interfaces.LLMClient) *Enhancer {
	return NewEnhancer(llm, interfaces.CompletionOptions{}, common.NewSilentLogger())
}

func TestEnhance_ValidJSON(t *testing.T) {
	e := newTestEnhancer(&fakeLLM{out: validInsightsJSON})
	ins, err := e.Enhance(context.Background(), models.ReportRequest{Type: models.ReportTypeStock}, &models.SubjectData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Origin != models.InsightsOriginLLM {
		t.Errorf("origin: got %q", ins.Origin)
	}
	if ins.MarketAnalysis != "Stocks were mixed." {
		t.Errorf("market analysis: got %q", ins.MarketAnalysis)
	}
	if len(ins.KeyInsights) != 2 {
		t.Errorf("key insights: got %v", ins.KeyInsights)
	}
}

func TestEnhance_CodeFencedJSON(t *testing.T) {
	e := newTestEnhancer(&fakeLLM{out: "```json\n" + validInsightsJSON + "\n```"})
	ins, err := e.Enhance(context.Background(), models.ReportRequest{Type: models.ReportTypeStock}, &models.SubjectData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.RiskAssessment != "Concentration risk." {
		t.Errorf("risk assessment: got %q", ins.RiskAssessment)
	}
}

func TestEnhance_TransportFailure(t *testing.T) {
	e := newTestEnhancer(&fakeLLM{err: errors.New("connection reset")})
	if _, err := e.Enhance(context.Background(), models.ReportRequest{}, &models.SubjectData{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnhance_MalformedJSON(t *testing.T) {
	e := newTestEnhancer(&fakeLLM{out: "the market went up, generally speaking"})
	if _, err := e.Enhance(context.Background(), models.ReportRequest{}, &models.SubjectData{}); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}

func TestEnhance_MissingFieldsRejected(t *testing.T) {
	e := newTestEnhancer(&fakeLLM{out: `{"market_analysis": "only this"}`})
	if _, err := e.Enhance(context.Background(), models.ReportRequest{}, &models.SubjectData{}); err == nil {
		t.Fatal("expected error for incomplete schema")
	}
}

func TestEnhance_NilClient(t *testing.T) {
	e := newTestEnhancer(nil)
	if _, err := e.Enhance(context.Background(), models.ReportRequest{}, &models.SubjectData{}); err == nil {
		t.Fatal("expected error without a client")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
