// Package backend models the optional analysis backend override sent
// with a session: a provider plus model pair, valid only together.
package backend

import "errors"

// ErrPartialOverride is returned when only one half of the
// provider/model pair is supplied.
var ErrPartialOverride = errors.New("analysis backend override requires both provider and model")

// Ref names an analysis backend as provider + model.
type Ref struct {
	Provider string
	Model    string
}

// IsZero reports whether no override was requested.
func (r Ref) IsZero() bool {
	return r.Provider == "" && r.Model == ""
}

// legacyAliases maps retired provider/model pairs to their canonical
// equivalents. The table is exhaustive on purpose: alias handling is a
// compatibility contract, not a fuzzy match.
var legacyAliases = map[Ref]Ref{
	{Provider: "claude-code", Model: "default"}: {Provider: "claude", Model: "sonnet"},
	{Provider: "claude-code", Model: "sonnet"}:  {Provider: "claude", Model: "sonnet"},
	{Provider: "claude-code", Model: "opus"}:    {Provider: "claude", Model: "opus"},
	{Provider: "openai", Model: "codex"}:        {Provider: "codex", Model: "gpt-5-codex"},
	{Provider: "open-code", Model: "default"}:   {Provider: "opencode", Model: "default"},
}

// Normalize validates the override pair and coerces legacy aliases to
// their canonical form. A zero Ref passes through untouched (no
// override requested).
func Normalize(provider, model string) (Ref, error) {
	ref := Ref{Provider: provider, Model: model}
	if ref.IsZero() {
		return Ref{}, nil
	}
	if ref.Provider == "" || ref.Model == "" {
		return Ref{}, ErrPartialOverride
	}
	if canonical, ok := legacyAliases[ref]; ok {
		return canonical, nil
	}
	return ref, nil
}
