// Package export builds the renderer-agnostic projection of a
// completed analysis session and turns it into report artifacts.
package export

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/browsium/roundtable-mcp/internal/model/persona"
	"github.com/browsium/roundtable-mcp/internal/model/session"
)

// dimensionOrder fixes the evaluation framework's six dimensions in
// report order. The order is part of the export contract: identical
// sessions must render byte-identical text output.
var dimensionOrder = []struct {
	Key   string
	Label string
}{
	{"relevance", "Relevance"},
	{"technical_credibility", "Technical credibility"},
	{"differentiation", "Differentiation"},
	{"actionability", "Actionability"},
	{"trust_signals", "Trust signals"},
	{"language_fit", "Language fit"},
}

// Stats aggregates session-level counts and the mean overall score of
// completed analyses.
type Stats struct {
	PersonaCount int     `json:"persona_count"`
	Completed    int     `json:"completed"`
	Failed       int     `json:"failed"`
	AverageScore float64 `json:"average_score"`
}

// DimensionAverage is the catalog-wide mean for one dimension.
type DimensionAverage struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Dimension is one persona's score on one dimension.
type Dimension struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Commentary string  `json:"commentary,omitempty"`
}

// PersonaAnalysis is the normalized per-persona entry. Personas absent
// from the catalog keep their ID with empty name/role rather than
// failing the export.
type PersonaAnalysis struct {
	PersonaID          string          `json:"persona_id"`
	PersonaName        string          `json:"persona_name,omitempty"`
	PersonaRole        string          `json:"persona_role,omitempty"`
	Status             string          `json:"status"`
	OverallScore       float64         `json:"overall_score,omitempty"`
	Dimensions         []Dimension     `json:"dimensions,omitempty"`
	TopIssues          []session.Issue `json:"top_issues,omitempty"`
	WhatWorksWell      []string        `json:"what_works_well,omitempty"`
	Verdict            string          `json:"verdict,omitempty"`
	HeadlineSuggestion string          `json:"headline_suggestion,omitempty"`
	ErrorMessage       string          `json:"error_message,omitempty"`
}

// Model is the derived, read-only projection of an analysis session.
// It is rebuilt on every export and never persisted.
type Model struct {
	SessionID         string             `json:"session_id"`
	FileName          string             `json:"file_name"`
	FileVersion       string             `json:"file_version,omitempty"`
	Status            string             `json:"status"`
	Backend           string             `json:"backend"`
	Stats             Stats              `json:"stats"`
	DimensionAverages []DimensionAverage `json:"dimension_averages"`
	CommonThemes      []string           `json:"common_themes,omitempty"`
	Strengths         []string           `json:"strengths,omitempty"`
	Recommendations   []string           `json:"recommendations,omitempty"`
	Analyses          []PersonaAnalysis  `json:"analyses"`
}

var versionPattern = regexp.MustCompile(`[vV](\d+)|_(\d+\.\d+)`)

// fileVersion extracts a version tag from a filename stem, e.g.
// "launch-v3.pdf" -> "3" or "brief_1.5.md" -> "1.5".
func fileVersion(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	match := versionPattern.FindStringSubmatch(stem)
	if match == nil {
		return ""
	}
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}

// BuildModel projects a session and a persona catalog into an export
// model. It is pure and deterministic: identical inputs always yield
// an identical model, and neither argument is mutated.
func BuildModel(sess session.Session, catalog persona.Catalog) Model {
	model := Model{
		SessionID:   sess.ID,
		FileName:    sess.FileName,
		FileVersion: fileVersion(sess.FileName),
		Status:      string(sess.Status),
		Backend:     backendDescriptor(sess),
	}

	dimTotals := make(map[string]float64, len(dimensionOrder))
	dimCounts := make(map[string]int, len(dimensionOrder))
	var overallTotal float64
	var themes, strengths, recommendations dedupeList

	for _, a := range sess.Analyses {
		entry := PersonaAnalysis{
			PersonaID:    a.PersonaID,
			PersonaName:  a.PersonaName,
			Status:       a.Status,
			TopIssues:    a.TopIssues,
			ErrorMessage: a.ErrorMessage,
		}
		if p, ok := catalog[a.PersonaID]; ok {
			entry.PersonaName = p.Name
			entry.PersonaRole = p.Role
		}
		if a.Suggestions != nil {
			entry.WhatWorksWell = a.Suggestions.WhatWorksWell
			entry.Verdict = a.Suggestions.OverallVerdict
			entry.HeadlineSuggestion = a.Suggestions.RewrittenHeadline
		}

		var personaTotal float64
		var personaCount int
		for _, dim := range dimensionOrder {
			score, ok := a.Scores[dim.Key]
			if !ok {
				continue
			}
			entry.Dimensions = append(entry.Dimensions, Dimension{
				Key:        dim.Key,
				Label:      dim.Label,
				Score:      score.Score,
				Commentary: score.Commentary,
			})
			personaTotal += score.Score
			personaCount++
		}
		if personaCount > 0 {
			entry.OverallScore = round1(personaTotal / float64(personaCount))
		}

		model.Stats.PersonaCount++
		switch a.Status {
		case "completed":
			model.Stats.Completed++
			overallTotal += entry.OverallScore
			for _, d := range entry.Dimensions {
				dimTotals[d.Key] += d.Score
				dimCounts[d.Key]++
			}
			for _, issue := range a.TopIssues {
				themes.add(issue.Issue)
				recommendations.add(issue.SuggestedRewrite)
			}
			if a.Suggestions != nil {
				for _, s := range a.Suggestions.WhatWorksWell {
					strengths.add(s)
				}
				recommendations.add(a.Suggestions.RewrittenHeadline)
			}
		case "failed":
			model.Stats.Failed++
		}

		model.Analyses = append(model.Analyses, entry)
	}

	if model.Stats.Completed > 0 {
		model.Stats.AverageScore = round1(overallTotal / float64(model.Stats.Completed))
	}
	for _, dim := range dimensionOrder {
		count := dimCounts[dim.Key]
		if count == 0 {
			continue
		}
		model.DimensionAverages = append(model.DimensionAverages, DimensionAverage{
			Key:     dim.Key,
			Label:   dim.Label,
			Average: round1(dimTotals[dim.Key] / float64(count)),
			Count:   count,
		})
	}
	model.CommonThemes = themes.items
	model.Strengths = strengths.items
	model.Recommendations = recommendations.items
	return model
}

func backendDescriptor(sess session.Session) string {
	if sess.AnalysisProvider == "" {
		return "default"
	}
	if sess.AnalysisModel == "" {
		return sess.AnalysisProvider
	}
	return sess.AnalysisProvider + "/" + sess.AnalysisModel
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// dedupeList keeps first-seen order with case-insensitive dedupe so
// repeated themes across personas collapse deterministically.
type dedupeList struct {
	items []string
	seen  map[string]bool
}

func (d *dedupeList) add(item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	key := strings.ToLower(item)
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[key] {
		return
	}
	d.seen[key] = true
	d.items = append(d.items, item)
}
