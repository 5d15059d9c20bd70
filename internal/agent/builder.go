package agent

import (
	"time"

	"github.com/lensquant/lensquant/internal/models"
)

// BuildEnvelope assembles the final response from the run state. Tool
// failures, warnings, and partial data all land here as an ok:true envelope;
// only planning failures go through BuildErrorEnvelope.
func BuildEnvelope(st *State, raw string, colloquial *string) *models.ResponseEnvelope {
	response := raw
	if colloquial != nil && *colloquial != "" {
		response = *colloquial
	}

	warnings := append([]string(nil), st.Warnings...)
	var artifacts []models.ReportArtifact
	for i := range st.Results {
		res := &st.Results[i]
		if payload, ok := res.Data.(*models.ReportPayload); ok && payload != nil {
			artifacts = append(artifacts, payload.Files...)
			for _, w := range payload.Warnings {
				warnings = appendUnique(warnings, w)
			}
		}
	}

	nlg := &models.NLG{Raw: raw, Colloquial: colloquial}
	if st.Cfg.ColloquialEnabled {
		lang := ""
		if st.Opts != nil {
			lang = st.Opts.Lang
		}
		nlg.SystemPrompt = colloquialSystemPrompt(lang)
	}

	var sources []models.Source
	if includeSources(st.Opts) {
		sources = collectSources(st.Results)
	}

	return &models.ResponseEnvelope{
		OK:          true,
		Response:    response,
		InputType:   st.InputType,
		ToolResults: st.Results,
		Sources:     sources,
		Warnings:    warnings,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		TraceID:     st.TraceID,
		SessionID:   st.SessionID,
		NLG:         nlg,
		OutputFiles: artifacts,
	}
}

// BuildErrorEnvelope assembles the ok:false envelope for planning failures.
// No partial state exists at that point, so sources and results are empty.
func BuildErrorEnvelope(input models.AgentInput, code, message, traceID string) *models.ResponseEnvelope {
	return &models.ResponseEnvelope{
		OK:        false,
		Response:  message,
		InputType: input.InputType,
		Error:     code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   traceID,
		SessionID: input.SessionID,
	}
}

// includeSources reports whether the envelope should carry the provenance
// block. Absent options or an absent flag default to include.
func includeSources(opts *models.AgentOptions) bool {
	if opts == nil || opts.IncludeSources == nil {
		return true
	}
	return *opts.IncludeSources
}

// collectSources builds the deduplicated provenance list from successful
// results, keyed by (source, tool) and keeping the first timestamp seen.
func collectSources(results []models.ToolResult) []models.Source {
	type key struct{ source, tool string }
	seen := make(map[key]bool)
	var sources []models.Source
	for i := range results {
		res := &results[i]
		if !res.OK {
			continue
		}
		k := key{source: res.Source, tool: res.Tool}
		if seen[k] {
			continue
		}
		seen[k] = true
		sources = append(sources, models.Source{
			Source:    res.Source,
			Tool:      res.Tool,
			Timestamp: res.Timestamp,
		})
	}
	return sources
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
