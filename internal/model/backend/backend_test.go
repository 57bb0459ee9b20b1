package backend

import (
	"errors"
	"testing"
)

func TestNormalizeNoOverride(t *testing.T) {
	ref, err := Normalize("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ref.IsZero() {
		t.Fatalf("expected zero ref, got %+v", ref)
	}
}

func TestNormalizePartialOverride(t *testing.T) {
	cases := [][2]string{
		{"claude", ""},
		{"", "sonnet"},
	}
	for _, c := range cases {
		if _, err := Normalize(c[0], c[1]); !errors.Is(err, ErrPartialOverride) {
			t.Fatalf("Normalize(%q, %q): expected ErrPartialOverride, got %v", c[0], c[1], err)
		}
	}
}

func TestNormalizeLegacyAlias(t *testing.T) {
	ref, err := Normalize("claude-code", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Provider != "claude" || ref.Model != "sonnet" {
		t.Fatalf("expected canonical claude/sonnet, got %+v", ref)
	}
}

func TestNormalizePassthrough(t *testing.T) {
	ref, err := Normalize("claude", "opus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Provider != "claude" || ref.Model != "opus" {
		t.Fatalf("expected passthrough, got %+v", ref)
	}
}
