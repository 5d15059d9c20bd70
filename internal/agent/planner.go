package agent

import (
	"fmt"
	"strings"

	"github.com/lensquant/lensquant/internal/models"
)

// PlanError is a planning-stage failure. These are the only failures that
// produce an ok:false envelope; tool failures downstream stay ok:true.
type PlanError struct {
	Code    string
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Intent is the classified shape of a request: a free-form question or a
// structured report command.
type Intent interface {
	isIntent()
}

// Question carries the initial tool plan derived from a free-form query.
type Question struct {
	Calls []models.ToolCall
}

func (Question) isIntent() {}

// ReportCommand carries a parsed /report invocation.
type ReportCommand struct {
	Req models.ReportRequest
}

func (ReportCommand) isIntent() {}

// Keyword tables. Queries arrive in English, Traditional Chinese, or a mix,
// so every table carries both scripts.
var (
	quoteKeywords = []string{
		"股價", "報價", "收盤", "漲", "跌", "多少",
		"quote", "price", "trading at", "how much", "close",
	}
	newsKeywords = []string{
		"新聞", "消息", "頭條", "最新動態",
		"news", "headline", "headlines", "latest on", "announcement",
	}
	macroKeywords = []string{
		"cpi", "gdp", "失業", "利率", "ffr", "通膨", "通脹", "總經", "宏觀", "經濟數據",
		"inflation", "unemployment", "interest rate", "federal funds", "macro", "economy",
	}
	profileKeywords = []string{
		"基本面", "公司資料", "公司簡介", "市值", "產業",
		"profile", "fundamental", "fundamentals", "market cap", "industry", "sector",
	}
	kbKeywords = []string{
		"文件", "知識庫", "根據資料",
		"knowledge base", "the docs", "documentation", "according to the doc",
	}
)

// tickerStopwords are 1-5 letter uppercase tokens that look like symbols but
// are ordinary words or units.
var tickerStopwords = map[string]bool{
	"A": true, "I": true, "OK": true, "HI": true, "IT": true, "AM": true,
	"PM": true, "US": true, "USA": true, "UK": true, "EU": true, "CN": true,
	"TW": true, "JP": true, "CPI": true, "GDP": true, "FFR": true, "ETF": true,
	"AI": true, "CEO": true, "IPO": true, "Q": true, "YOY": true, "QOQ": true,
	"VS": true, "THE": true, "AND": true, "FOR": true, "NOT": true, "ARE": true,
	"WHAT": true, "HOW": true, "WHY": true, "WHO": true, "NEWS": true, "FED": true,
}

// aliasPair binds one surface form to its normalized value. Alias tables are
// ordered slices, not maps, so scans yield the same matches in the same order
// on every run.
type aliasPair struct {
	alias string
	value string
}

// companyNames maps well-known company names to their tickers so users do not
// have to type the symbol.
var companyNames = []aliasPair{
	{"apple", "AAPL"},
	{"tesla", "TSLA"},
	{"microsoft", "MSFT"},
	{"nvidia", "NVDA"},
	{"google", "GOOGL"},
	{"alphabet", "GOOGL"},
	{"amazon", "AMZN"},
	{"meta", "META"},
	{"蘋果", "AAPL"},
	{"特斯拉", "TSLA"},
	{"微軟", "MSFT"},
	{"輝達", "NVDA"},
	{"谷歌", "GOOGL"},
	{"亞馬遜", "AMZN"},
	{"台積電", "TSM"},
}

// countryAliases maps country mentions in either script to the provider's
// two-letter codes. Longer aliases come before substrings of themselves.
var countryAliases = []aliasPair{
	{"美國", "US"}, {"united states", "US"}, {"america", "US"}, {"usa", "US"}, {"us", "US"},
	{"中國", "CN"}, {"china", "CN"}, {"cn", "CN"},
	{"台灣", "TW"}, {"臺灣", "TW"}, {"taiwan", "TW"}, {"tw", "TW"},
	{"日本", "JP"}, {"japan", "JP"}, {"jp", "JP"},
	{"歐元區", "EU"}, {"歐洲", "EU"}, {"eurozone", "EU"}, {"europe", "EU"}, {"eu", "EU"},
}

// indicatorAliases normalizes macro indicator mentions to provider names,
// grouped in the default basket order.
var indicatorAliases = []aliasPair{
	{"cpi", "CPI"}, {"通膨", "CPI"}, {"通脹", "CPI"}, {"inflation", "CPI"},
	{"gdp", "GDP"}, {"經濟成長", "GDP"},
	{"失業", "UNEMPLOYMENT"}, {"unemployment", "UNEMPLOYMENT"},
	{"利率", "FFR"}, {"ffr", "FFR"}, {"federal funds", "FFR"}, {"interest rate", "FFR"},
}

// lookupAlias resolves one exact token against an alias table.
func lookupAlias(table []aliasPair, token string) (string, bool) {
	for _, p := range table {
		if p.alias == token {
			return p.value, true
		}
	}
	return "", false
}

// defaultMacroIndicators is the basket planned when a macro query names no
// specific indicator.
var defaultMacroIndicators = []string{"CPI", "GDP", "UNEMPLOYMENT", "FFR"}

// Planner classifies queries and decides follow-up rounds.
type Planner struct {
	registry *Registry
}

// NewPlanner creates a planner over the given registry.
func NewPlanner(registry *Registry) *Planner {
	return &Planner{registry: registry}
}

// Classify turns a raw query into an Intent. Empty queries and malformed
// slash commands are the two planning failures.
func Classify(query string, opts *models.AgentOptions, cfg Config) (Intent, *PlanError) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, &PlanError{Code: models.ErrCodeEmptyQuery, Message: "query is empty"}
	}

	if strings.HasPrefix(trimmed, "/") {
		return classifyCommand(trimmed, opts)
	}

	return classifyQuestion(trimmed, opts, cfg), nil
}

func classifyCommand(query string, opts *models.AgentOptions) (Intent, *PlanError) {
	fields := strings.Fields(query)
	if fields[0] != "/report" {
		return nil, &PlanError{
			Code:    models.ErrCodeUnknownCommand,
			Message: fmt.Sprintf("unknown command %q; supported: /report stock <SYMBOLS>, /report macro [COUNTRY] [INDICATORS]", fields[0]),
		}
	}
	if len(fields) < 2 {
		return nil, &PlanError{
			Code:    models.ErrCodeUnknownCommand,
			Message: "usage: /report stock <SYMBOLS> | /report macro [COUNTRY] [INDICATORS]",
		}
	}

	req := models.ReportRequest{}
	if opts != nil && opts.Format != "" {
		req.Formats = []string{strings.ToLower(opts.Format)}
	}

	switch strings.ToLower(fields[1]) {
	case "stock":
		req.Type = models.ReportTypeStock
		for _, arg := range fields[2:] {
			sym := strings.ToUpper(strings.Trim(arg, ",;"))
			if sym != "" {
				req.Symbols = append(req.Symbols, sym)
			}
		}
		if len(req.Symbols) == 0 {
			return nil, &PlanError{
				Code:    models.ErrCodeUnknownCommand,
				Message: "usage: /report stock <SYMBOLS>",
			}
		}
	case "macro":
		req.Type = models.ReportTypeMacro
		req.Country = "US"
		for _, arg := range fields[2:] {
			token := strings.ToLower(strings.Trim(arg, ",;"))
			if code, ok := lookupAlias(countryAliases, token); ok {
				req.Country = code
				continue
			}
			if ind, ok := lookupAlias(indicatorAliases, token); ok {
				req.Indicators = append(req.Indicators, ind)
			}
		}
		if len(req.Indicators) == 0 {
			req.Indicators = append(req.Indicators, defaultMacroIndicators...)
		}
	default:
		return nil, &PlanError{
			Code:    models.ErrCodeUnknownCommand,
			Message: fmt.Sprintf("unknown report type %q; supported: stock, macro", fields[1]),
		}
	}

	return ReportCommand{Req: req}, nil
}

func classifyQuestion(query string, opts *models.AgentOptions, cfg Config) Question {
	lower := strings.ToLower(query)
	symbols := ExtractTickers(query)

	topK := cfg.NewsTopK
	if opts != nil && opts.TopK > 0 {
		topK = opts.TopK
	}

	var calls []models.ToolCall

	if containsAny(lower, quoteKeywords) && len(symbols) > 0 {
		calls = append(calls, models.ToolCall{
			Tool:      "fmp_quote",
			Args:      map[string]any{"symbols": symbols},
			Rationale: "query asks for current prices",
		})
	}

	if containsAny(lower, profileKeywords) && len(symbols) > 0 {
		calls = append(calls, models.ToolCall{
			Tool:      "fmp_profile",
			Args:      map[string]any{"symbols": symbols},
			Rationale: "query asks about company fundamentals",
		})
	}

	if containsAny(lower, newsKeywords) {
		args := map[string]any{"limit": topK}
		if len(symbols) > 0 {
			args["symbols"] = symbols
		} else {
			args["query"] = query
		}
		calls = append(calls, models.ToolCall{
			Tool:      "fmp_news",
			Args:      args,
			Rationale: "query asks for recent news",
		})
	}

	if containsAny(lower, macroKeywords) {
		country := extractCountry(lower)
		indicators := extractIndicators(lower)
		if len(indicators) == 0 {
			indicators = defaultMacroIndicators
		}
		for _, indicator := range indicators {
			calls = append(calls, models.ToolCall{
				Tool:      "fmp_macro",
				Args:      map[string]any{"indicator": indicator, "country": country},
				Rationale: "query asks about macroeconomic data",
			})
		}
	}

	if containsAny(lower, kbKeywords) {
		calls = append(calls, models.ToolCall{
			Tool:      "kb_query",
			Args:      map[string]any{"question": query, "top_k": topK},
			Rationale: "query references ingested documents",
		})
	}

	return Question{Calls: calls}
}

// Plan decides the calls for the next round. Round zero uses the classified
// intent; later rounds derive follow-ups from the previous round's results
// via each tool's Followup hook.
func (p *Planner) Plan(st *State) []models.ToolCall {
	if st.LoopCount == 0 {
		switch intent := st.Intent.(type) {
		case Question:
			return intent.Calls
		case ReportCommand:
			return []models.ToolCall{{
				Tool: "report_generate",
				Args: map[string]any{
					"report_type": intent.Req.Type,
					"symbols":     intent.Req.Symbols,
					"indicators":  intent.Req.Indicators,
					"country":     intent.Req.Country,
					"formats":     intent.Req.Formats,
				},
				Rationale: "explicit report command",
			}}
		default:
			return nil
		}
	}

	var calls []models.ToolCall
	last := st.LastRound()
	for i := range last {
		res := &last[i]
		spec := p.registry.Spec(res.Tool)
		if spec == nil || spec.Followup == nil {
			continue
		}
		if next := spec.Followup(res); next != nil {
			calls = append(calls, *next)
		}
	}
	return calls
}

// ExtractTickers pulls candidate stock symbols from a query: uppercase runs
// of 1-5 ASCII letters that survive the stopword list, plus any known company
// names in either script.
func ExtractTickers(query string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(sym string) {
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}

	var run []rune
	flush := func() {
		if len(run) == 0 {
			return
		}
		token := string(run)
		run = run[:0]
		if len(token) > 5 || token != strings.ToUpper(token) {
			return
		}
		if tickerStopwords[token] {
			return
		}
		add(token)
	}
	for _, r := range query {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()

	lower := strings.ToLower(query)
	for _, p := range companyNames {
		if strings.Contains(lower, p.alias) {
			add(p.value)
		}
	}
	return out
}

// extractCountry returns the first country mentioned, in alias-table order,
// defaulting to US.
func extractCountry(lower string) string {
	for _, p := range countryAliases {
		if strings.Contains(lower, p.alias) {
			return p.value
		}
	}
	return "US"
}

// extractIndicators returns the mentioned indicators in alias-table order, so
// the planned fmp_macro calls come out the same for identical queries.
func extractIndicators(lower string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range indicatorAliases {
		if strings.Contains(lower, p.alias) && !seen[p.value] {
			seen[p.value] = true
			out = append(out, p.value)
		}
	}
	return out
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
