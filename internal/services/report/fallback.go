package report

import (
	"fmt"
	"strings"

	"github.com/lensquant/lensquant/internal/models"
)

// FallbackInsights derives the analysis schema from the collected data with
// fixed rules. It is the guaranteed path: pure, deterministic, and never
// fails, so a report is always produced even with no LLM configured.
func FallbackInsights(req models.ReportRequest, data *models.SubjectData) *models.Insights {
	if req.Type == models.ReportTypeMacro {
		return fallbackMacro(req.Indicators, data)
	}
	return fallbackStock(data)
}

func fallbackStock(data *models.SubjectData) *models.Insights {
	ins := &models.Insights{Origin: models.InsightsOriginFallback}

	up := 0
	var sumPct, maxAbsPct float64
	for _, q := range data.Quotes {
		if q.Change > 0 {
			up++
		}
		sumPct += q.ChangePct
		if abs := absFloat(q.ChangePct); abs > maxAbsPct {
			maxAbsPct = abs
		}
	}
	total := len(data.Quotes)

	if total > 0 {
		avg := sumPct / float64(total)
		ins.MarketAnalysis = fmt.Sprintf(
			"%d of %d tracked stocks closed higher; the average move was %+.2f%%.", up, total, avg)
		switch {
		case avg > 1:
			ins.KeyInsights = append(ins.KeyInsights,
				fmt.Sprintf("Broad strength across the group (average %+.2f%%).", avg))
		case avg < -1:
			ins.KeyInsights = append(ins.KeyInsights,
				fmt.Sprintf("Broad weakness across the group (average %+.2f%%).", avg))
		}
	} else {
		ins.MarketAnalysis = "No quote data was available for the requested symbols."
	}

	largeCaps := make([]string, 0, len(data.Profiles))
	sectors := make(map[string]bool)
	for _, p := range data.Profiles {
		if p.MarketCap > 1e11 {
			largeCaps = append(largeCaps, p.Symbol)
		}
		if p.Sector != "" {
			sectors[p.Sector] = true
		}
	}
	if len(largeCaps) > 0 {
		ins.FundamentalAnalysis = fmt.Sprintf(
			"Large-cap names in scope: %s (market cap above $100B each).", strings.Join(largeCaps, ", "))
	} else if len(data.Profiles) > 0 {
		ins.FundamentalAnalysis = "No large-cap names (market cap above $100B) in the requested set."
	} else {
		ins.FundamentalAnalysis = "No company profile data was available."
	}

	if len(data.News) > 0 {
		ins.NewsImpact = fmt.Sprintf("%d recent articles collected; see the headlines section for details.", len(data.News))
	} else {
		ins.NewsImpact = "No recent news was found for the requested symbols."
	}

	var risks []string
	if maxAbsPct > 3 {
		risks = append(risks, fmt.Sprintf("elevated single-day volatility (largest move %.2f%%)", maxAbsPct))
	}
	if len(sectors) == 1 && len(data.Profiles) > 1 {
		for sector := range sectors {
			risks = append(risks, fmt.Sprintf("all holdings concentrate in the %s sector", sector))
		}
	}
	if len(risks) > 0 {
		ins.RiskAssessment = "Risk flags: " + strings.Join(risks, "; ") + "."
	} else {
		ins.RiskAssessment = "No rule-based risk flags were triggered for this set."
	}

	ins.InvestmentRecommendation = "Automated rule-based summary only; not investment advice. " +
		"Review the underlying data before acting."

	if len(ins.KeyInsights) == 0 {
		ins.KeyInsights = append(ins.KeyInsights, "No standout rule-based signals in this batch.")
	}
	return ins
}

func fallbackMacro(indicators []string, data *models.SubjectData) *models.Insights {
	ins := &models.Insights{Origin: models.InsightsOriginFallback}

	// Walk indicators in request order so the sentence order is stable across
	// renders of the same batch.
	var moves []string
	for _, indicator := range indicators {
		points, ok := data.Macro[indicator]
		if !ok {
			continue
		}
		// Series arrive newest first.
		if len(points) >= 2 {
			latest, prev := points[0], points[1]
			direction := "held steady"
			if latest.Value > prev.Value {
				direction = "rose"
			} else if latest.Value < prev.Value {
				direction = "fell"
			}
			moves = append(moves, fmt.Sprintf("%s %s to %.2f (%s) from %.2f", indicator, direction, latest.Value, latest.Date, prev.Value))
		} else if len(points) == 1 {
			moves = append(moves, fmt.Sprintf("%s latest reading %.2f (%s)", indicator, points[0].Value, points[0].Date))
		}
	}

	if len(moves) > 0 {
		ins.MarketAnalysis = strings.Join(moves, ". ") + "."
	} else {
		ins.MarketAnalysis = "No macro data points were available for the requested indicators."
	}

	ins.FundamentalAnalysis = fmt.Sprintf("Macro snapshot for %s across %d indicator(s).", data.Country, len(data.Macro))
	if len(data.News) > 0 {
		ins.NewsImpact = fmt.Sprintf("%d recent macro-related articles collected.", len(data.News))
	} else {
		ins.NewsImpact = "No recent macro-related news was found."
	}
	ins.RiskAssessment = "Single-country snapshot; revisions to preliminary figures are common."
	ins.InvestmentRecommendation = "Automated rule-based summary only; not investment advice."
	ins.KeyInsights = append(ins.KeyInsights, fmt.Sprintf("Derived from %d indicator series.", len(data.Macro)))
	return ins
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
