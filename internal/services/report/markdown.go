package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/lensquant/lensquant/internal/models"
)

// buildMarkdown assembles the report document. The same input always produces
// the same document apart from the generation timestamp line.
func buildMarkdown(req models.ReportRequest, data *models.SubjectData, insights *models.Insights, footer, slug string) string {
	var b strings.Builder

	if req.Type == models.ReportTypeMacro {
		fmt.Fprintf(&b, "# Macro Report: %s\n\n", data.Country)
	} else {
		fmt.Fprintf(&b, "# Stock Report: %s\n\n", strings.Join(req.Symbols, ", "))
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	if len(data.Quotes) > 0 {
		b.WriteString("## Quotes\n\n")
		b.WriteString("| Symbol | Price | Change | Change % | Volume |\n")
		b.WriteString("|--------|-------|--------|----------|--------|\n")
		for _, q := range data.Quotes {
			fmt.Fprintf(&b, "| %s | %.2f | %+.2f | %+.2f%% | %d |\n",
				q.Symbol, q.Price, q.Change, q.ChangePct, q.Volume)
		}
		fmt.Fprintf(&b, "\n![Daily change](%s.png)\n\n", slug)
	}

	if len(data.Profiles) > 0 {
		b.WriteString("## Companies\n\n")
		for _, p := range data.Profiles {
			fmt.Fprintf(&b, "### %s (%s)\n\n", p.CompanyName, p.Symbol)
			fmt.Fprintf(&b, "- Sector: %s\n- Industry: %s\n- Market cap: $%.1fB\n\n",
				p.Sector, p.Industry, p.MarketCap/1e9)
		}
	}

	if len(data.Macro) > 0 {
		b.WriteString("## Indicators\n\n")
		for _, indicator := range orderedIndicators(req, data) {
			points := data.Macro[indicator]
			if len(points) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", indicator)
			b.WriteString("| Date | Value |\n|------|-------|\n")
			for _, pt := range points {
				fmt.Fprintf(&b, "| %s | %.2f |\n", pt.Date, pt.Value)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Analysis\n\n")
	fmt.Fprintf(&b, "**Market:** %s\n\n", insights.MarketAnalysis)
	fmt.Fprintf(&b, "**Fundamentals:** %s\n\n", insights.FundamentalAnalysis)
	fmt.Fprintf(&b, "**News impact:** %s\n\n", insights.NewsImpact)
	fmt.Fprintf(&b, "**Recommendation:** %s\n\n", insights.InvestmentRecommendation)
	fmt.Fprintf(&b, "**Risk:** %s\n\n", insights.RiskAssessment)
	if len(insights.KeyInsights) > 0 {
		b.WriteString("**Key insights:**\n\n")
		for _, ki := range insights.KeyInsights {
			fmt.Fprintf(&b, "- %s\n", ki)
		}
		b.WriteString("\n")
	}

	if len(data.News) > 0 {
		b.WriteString("## Headlines\n\n")
		for _, item := range data.News {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", item.Title, item.Site, item.PublishedDate)
		}
		b.WriteString("\n")
	}

	b.WriteString(footer)
	return b.String()
}

// orderedIndicators yields the macro series keys in request order so the
// document layout is stable across runs.
func orderedIndicators(req models.ReportRequest, data *models.SubjectData) []string {
	out := make([]string, 0, len(data.Macro))
	seen := make(map[string]bool)
	for _, indicator := range req.Indicators {
		if _, ok := data.Macro[indicator]; ok && !seen[indicator] {
			seen[indicator] = true
			out = append(out, indicator)
		}
	}
	for indicator := range data.Macro {
		if !seen[indicator] {
			out = append(out, indicator)
		}
	}
	return out
}
