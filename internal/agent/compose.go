package agent

import (
	"fmt"
	"strings"

	"github.com/lensquant/lensquant/internal/models"
)

// Compose builds the deterministic narrative answer from the run state. It
// never calls an LLM and always returns non-empty text: every result, success
// or failure, contributes a fragment, and runs with no results fall back to a
// usage hint.
func Compose(st *State) string {
	var fragments []string

	for i := range st.Results {
		if frag := composeResult(&st.Results[i], st.Cfg); frag != "" {
			fragments = append(fragments, frag)
		}
	}

	if len(fragments) == 0 {
		if len(st.PlannedUnexecuted) > 0 {
			names := make([]string, 0, len(st.PlannedUnexecuted))
			for _, call := range st.PlannedUnexecuted {
				names = append(names, call.Tool)
			}
			return fmt.Sprintf("I planned %d tool call(s) for this request (%s), but tool execution is currently disabled, so no data was fetched.",
				len(names), strings.Join(names, ", "))
		}
		return "I can help with stock quotes, company news, macro indicators, and reports. " +
			"Try asking about a ticker (e.g. \"AAPL股價多少？\") or run /report stock AAPL."
	}

	return strings.Join(fragments, "\n\n")
}

func composeResult(res *models.ToolResult, cfg Config) string {
	if !res.OK {
		return composeFailure(res)
	}

	switch data := res.Data.(type) {
	case []models.Quote:
		return composeQuotes(data)
	case []models.CompanyProfile:
		return composeProfiles(data)
	case []models.NewsItem:
		return composeNews(data, cfg.NewsTopK)
	case []models.MacroPoint:
		return composeMacro(data, cfg.MacroLastN)
	case []models.KBChunk:
		return composeKB(data)
	case *models.ReportPayload:
		return data.Message
	default:
		return fmt.Sprintf("%s returned data I do not know how to summarize.", res.Tool)
	}
}

func composeQuotes(quotes []models.Quote) string {
	if len(quotes) == 0 {
		return "No quotes were returned for the requested symbols."
	}
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, fmt.Sprintf("%s: $%.2f (%+.2f, %+.2f%%)", q.Symbol, q.Price, q.Change, q.ChangePct))
	}
	return strings.Join(lines, "\n")
}

func composeProfiles(profiles []models.CompanyProfile) string {
	if len(profiles) == 0 {
		return "No company profiles were returned for the requested symbols."
	}
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		lines = append(lines, fmt.Sprintf("%s (%s): %s / %s, market cap $%.1fB",
			p.Symbol, p.CompanyName, p.Sector, p.Industry, p.MarketCap/1e9))
	}
	return strings.Join(lines, "\n")
}

func composeNews(items []models.NewsItem, topK int) string {
	if len(items) == 0 {
		return "No recent news matched the request."
	}
	if topK <= 0 {
		topK = 3
	}
	if len(items) > topK {
		items = items[:topK]
	}
	lines := []string{fmt.Sprintf("Latest %d headline(s):", len(items))}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)", item.Title, item.Site, item.PublishedDate))
	}
	return strings.Join(lines, "\n")
}

func composeMacro(points []models.MacroPoint, lastN int) string {
	if len(points) == 0 {
		return "No macro data points were returned."
	}
	if lastN <= 0 {
		lastN = 6
	}
	// Provider series arrive newest first.
	if len(points) > lastN {
		points = points[:lastN]
	}
	name := points[0].Name
	parts := make([]string, 0, len(points))
	for _, pt := range points {
		parts = append(parts, fmt.Sprintf("%s=%.2f", pt.Date, pt.Value))
	}
	return fmt.Sprintf("%s (latest %d readings): %s", name, len(points), strings.Join(parts, ", "))
}

func composeKB(chunks []models.KBChunk) string {
	if len(chunks) == 0 {
		return "The knowledge base had no relevant passages for that question."
	}
	lines := []string{"From the knowledge base:"}
	for _, c := range chunks {
		text := c.Text
		// Truncate on rune boundaries; passages are often Chinese.
		if runes := []rune(text); len(runes) > 300 {
			text = string(runes[:300]) + "…"
		}
		lines = append(lines, fmt.Sprintf("- %s", text))
	}
	return strings.Join(lines, "\n")
}

func composeFailure(res *models.ToolResult) string {
	switch res.Error {
	case models.ErrCodeMissingAPIKey:
		return fmt.Sprintf("Sorry, I could not complete the %s lookup because the %s API key is not configured. Set the credential and try again.",
			res.Tool, res.Source)
	case models.ErrCodeTimeout:
		return fmt.Sprintf("Sorry, the %s lookup timed out before %s responded. Please try again shortly.", res.Tool, res.Source)
	case models.ErrCodeInvalidArguments:
		return fmt.Sprintf("I could not run %s: %s.", res.Tool, res.Logs)
	default:
		return fmt.Sprintf("Sorry, the %s lookup failed upstream at %s, so that part of the answer is missing.", res.Tool, res.Source)
	}
}
