package session

import "time"

// Status is the remote analysis session lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusPartial    Status = "partial"
)

// IsTerminal reports whether the remote service will not change the
// session further.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial:
		return true
	}
	return false
}

// DimensionScore is one scored evaluation dimension with commentary.
type DimensionScore struct {
	Score      float64 `json:"score"`
	Commentary string  `json:"commentary,omitempty"`
}

// Issue is a single critique item raised by a persona.
type Issue struct {
	Issue            string `json:"issue"`
	SpecificExample  string `json:"specific_example_from_content,omitempty"`
	SuggestedRewrite string `json:"suggested_rewrite,omitempty"`
}

// Suggestions carries the free-form remainder of a persona's verdict.
type Suggestions struct {
	WhatWorksWell     []string `json:"what_works_well,omitempty"`
	OverallVerdict    string   `json:"overall_verdict,omitempty"`
	RewrittenHeadline string   `json:"rewritten_headline,omitempty"`
}

// Analysis is one persona's raw result inside a session.
type Analysis struct {
	PersonaID    string                    `json:"persona_id"`
	PersonaName  string                    `json:"persona_name,omitempty"`
	Status       string                    `json:"status"`
	Scores       map[string]DimensionScore `json:"score_json,omitempty"`
	TopIssues    []Issue                   `json:"top_issues_json,omitempty"`
	Suggestions  *Suggestions              `json:"rewritten_suggestions_json,omitempty"`
	ErrorMessage string                    `json:"error_message,omitempty"`
}

// Session is the remote service's record of one focus-group run. It is
// created through the workflow, mutated only by the remote service and
// observed here via polling.
type Session struct {
	ID                 string     `json:"id"`
	FileName           string     `json:"file_name"`
	FileSizeBytes      int64      `json:"file_size_bytes,omitempty"`
	FileExtension      string     `json:"file_extension,omitempty"`
	SelectedPersonaIDs []string   `json:"selected_persona_ids"`
	Status             Status     `json:"status"`
	AnalysisProvider   string     `json:"analysis_provider,omitempty"`
	AnalysisModel      string     `json:"analysis_model,omitempty"`
	Analyses           []Analysis `json:"analyses,omitempty"`
	CreatedAt          time.Time  `json:"created_at,omitzero"`
	UpdatedAt          time.Time  `json:"updated_at,omitzero"`
}

// CreateRequest is the body for creating a remote analysis session.
type CreateRequest struct {
	FileName           string   `json:"file_name"`
	FileSizeBytes      int64    `json:"file_size_bytes"`
	FileExtension      string   `json:"file_extension"`
	SelectedPersonaIDs []string `json:"selected_persona_ids"`
	AnalysisProvider   string   `json:"analysis_provider,omitempty"`
	AnalysisModel      string   `json:"analysis_model,omitempty"`
}
