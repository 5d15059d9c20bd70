package agent

import (
	"reflect"
	"testing"

	"github.com/lensquant/lensquant/internal/models"
)

func testConfig() Config {
	return Config{
		ExecuteTools:      true,
		ColloquialEnabled: false,
		MaxToolLoops:      3,
		NewsTopK:          3,
		MacroLastN:        6,
	}
}

func TestClassify_EmptyQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		_, perr := Classify(query, nil, testConfig())
		if perr == nil {
			t.Fatalf("query %q: expected planning error", query)
		}
		if perr.Code != models.ErrCodeEmptyQuery {
			t.Errorf("query %q: got code %q, want %q", query, perr.Code, models.ErrCodeEmptyQuery)
		}
	}
}

func TestClassify_UnknownCommand(t *testing.T) {
	cases := []string{"/export stock AAPL", "/report", "/report weekly", "/report stock"}
	for _, query := range cases {
		_, perr := Classify(query, nil, testConfig())
		if perr == nil {
			t.Fatalf("query %q: expected planning error", query)
		}
		if perr.Code != models.ErrCodeUnknownCommand {
			t.Errorf("query %q: got code %q, want %q", query, perr.Code, models.ErrCodeUnknownCommand)
		}
	}
}

func TestClassify_StockReportCommand(t *testing.T) {
	intent, perr := Classify("/report stock AAPL TSLA", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	cmd, ok := intent.(ReportCommand)
	if !ok {
		t.Fatalf("expected ReportCommand, got %T", intent)
	}
	if cmd.Req.Type != models.ReportTypeStock {
		t.Errorf("type: got %q", cmd.Req.Type)
	}
	if !reflect.DeepEqual(cmd.Req.Symbols, []string{"AAPL", "TSLA"}) {
		t.Errorf("symbols: got %v", cmd.Req.Symbols)
	}
}

func TestClassify_MacroReportCommandDefaults(t *testing.T) {
	intent, perr := Classify("/report macro", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	cmd := intent.(ReportCommand)
	if cmd.Req.Country != "US" {
		t.Errorf("country: got %q, want US", cmd.Req.Country)
	}
	if !reflect.DeepEqual(cmd.Req.Indicators, []string{"CPI", "GDP", "UNEMPLOYMENT", "FFR"}) {
		t.Errorf("indicators: got %v", cmd.Req.Indicators)
	}
}

func TestClassify_MacroReportCommandCountryAndIndicator(t *testing.T) {
	intent, perr := Classify("/report macro taiwan cpi", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	cmd := intent.(ReportCommand)
	if cmd.Req.Country != "TW" {
		t.Errorf("country: got %q, want TW", cmd.Req.Country)
	}
	if !reflect.DeepEqual(cmd.Req.Indicators, []string{"CPI"}) {
		t.Errorf("indicators: got %v", cmd.Req.Indicators)
	}
}

func TestClassify_ChineseQuoteQuery(t *testing.T) {
	intent, perr := Classify("AAPL股價多少？", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	q, ok := intent.(Question)
	if !ok {
		t.Fatalf("expected Question, got %T", intent)
	}
	if len(q.Calls) != 1 || q.Calls[0].Tool != "fmp_quote" {
		t.Fatalf("expected single fmp_quote call, got %+v", q.Calls)
	}
	symbols := q.Calls[0].Args["symbols"].([]string)
	if !reflect.DeepEqual(symbols, []string{"AAPL"}) {
		t.Errorf("symbols: got %v", symbols)
	}
}

func TestClassify_NewsQueryWithoutTicker(t *testing.T) {
	intent, perr := Classify("最近有什麼市場新聞？", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	q := intent.(Question)
	if len(q.Calls) != 1 || q.Calls[0].Tool != "fmp_news" {
		t.Fatalf("expected single fmp_news call, got %+v", q.Calls)
	}
	if _, hasSymbols := q.Calls[0].Args["symbols"]; hasSymbols {
		t.Error("news call should not carry symbols when none were found")
	}
	if q.Calls[0].Args["limit"] != 3 {
		t.Errorf("limit: got %v, want 3", q.Calls[0].Args["limit"])
	}
}

func TestClassify_MacroQuestionPlansPerIndicator(t *testing.T) {
	intent, perr := Classify("美國CPI走勢如何？", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	q := intent.(Question)
	if len(q.Calls) != 1 || q.Calls[0].Tool != "fmp_macro" {
		t.Fatalf("expected single fmp_macro call, got %+v", q.Calls)
	}
	if q.Calls[0].Args["indicator"] != "CPI" {
		t.Errorf("indicator: got %v", q.Calls[0].Args["indicator"])
	}
	if q.Calls[0].Args["country"] != "US" {
		t.Errorf("country: got %v", q.Calls[0].Args["country"])
	}
}

func TestClassify_MultiIndicatorQuestionOrderIsStable(t *testing.T) {
	var first []string
	for i := 0; i < 50; i++ {
		intent, perr := Classify("美國通膨和失業數據怎麼樣？", nil, testConfig())
		if perr != nil {
			t.Fatalf("unexpected error: %v", perr)
		}
		q := intent.(Question)
		var got []string
		for _, call := range q.Calls {
			if call.Tool != "fmp_macro" {
				t.Fatalf("expected only fmp_macro calls, got %+v", q.Calls)
			}
			got = append(got, call.Args["indicator"].(string))
		}
		if i == 0 {
			first = got
			continue
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d planned %v, run 0 planned %v", i, got, first)
		}
	}
	if !reflect.DeepEqual(first, []string{"CPI", "UNEMPLOYMENT"}) {
		t.Errorf("indicator order: got %v, want [CPI UNEMPLOYMENT]", first)
	}
}

func TestExtractCountry_FirstAliasWins(t *testing.T) {
	cases := []struct {
		lower string
		want  string
	}{
		{"美國和中國的cpi比較", "US"},
		{"china inflation trend", "CN"},
		{"taiwan cpi", "TW"},
		{"cpi lately", "US"},
	}
	for _, tc := range cases {
		if got := extractCountry(tc.lower); got != tc.want {
			t.Errorf("extractCountry(%q) = %q, want %q", tc.lower, got, tc.want)
		}
	}
}

func TestClassify_CasualQueryPlansNothing(t *testing.T) {
	intent, perr := Classify("hello there", nil, testConfig())
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	q := intent.(Question)
	if len(q.Calls) != 0 {
		t.Errorf("expected no calls, got %+v", q.Calls)
	}
}

func TestClassify_TopKOptionOverridesNewsLimit(t *testing.T) {
	intent, _ := Classify("any news on AAPL?", &models.AgentOptions{TopK: 7}, testConfig())
	q := intent.(Question)
	if len(q.Calls) != 1 {
		t.Fatalf("expected one call, got %+v", q.Calls)
	}
	if q.Calls[0].Args["limit"] != 7 {
		t.Errorf("limit: got %v, want 7", q.Calls[0].Args["limit"])
	}
}

func TestExtractTickers(t *testing.T) {
	cases := []struct {
		query string
		want  []string
	}{
		{"AAPL股價多少？", []string{"AAPL"}},
		{"compare TSLA and NVDA", []string{"TSLA", "NVDA"}},
		{"what is the price of apple", []string{"AAPL"}},
		{"特斯拉最近的新聞", []string{"TSLA"}},
		{"HI, is IT OK?", nil},
		{"how is the US economy", nil},
		{"lowercase aapl is ignored", nil},
	}
	for _, tc := range cases {
		got := ExtractTickers(tc.query)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractTickers(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}
