package export

import (
	"fmt"
	"strings"
)

func renderMarkdown(m Model) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Focus Group Report: %s\n\n", m.FileName)
	fmt.Fprintf(&b, "- Session: %s\n", m.SessionID)
	if m.FileVersion != "" {
		fmt.Fprintf(&b, "- Document version: %s\n", m.FileVersion)
	}
	fmt.Fprintf(&b, "- Status: %s\n", m.Status)
	fmt.Fprintf(&b, "- Analysis backend: %s\n", m.Backend)
	fmt.Fprintf(&b, "- Personas: %d (%d completed, %d failed)\n", m.Stats.PersonaCount, m.Stats.Completed, m.Stats.Failed)
	if m.Stats.Completed > 0 {
		fmt.Fprintf(&b, "- Average score: %.1f/10\n", m.Stats.AverageScore)
	}
	b.WriteString("\n")

	if len(m.DimensionAverages) > 0 {
		b.WriteString("## Dimension Averages\n\n")
		b.WriteString("| Dimension | Average | Personas |\n")
		b.WriteString("|---|---|---|\n")
		for _, d := range m.DimensionAverages {
			fmt.Fprintf(&b, "| %s | %.1f | %d |\n", d.Label, d.Average, d.Count)
		}
		b.WriteString("\n")
	}

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	writeList("Common Themes", m.CommonThemes)
	writeList("What Works Well", m.Strengths)
	writeList("Recommendations", m.Recommendations)

	if len(m.Analyses) > 0 {
		b.WriteString("## Persona Analyses\n\n")
	}
	for _, a := range m.Analyses {
		name := a.PersonaName
		if name == "" {
			name = a.PersonaID
		}
		if a.PersonaRole != "" {
			fmt.Fprintf(&b, "### %s (%s)\n\n", name, a.PersonaRole)
		} else {
			fmt.Fprintf(&b, "### %s\n\n", name)
		}
		fmt.Fprintf(&b, "Status: %s", a.Status)
		if a.Status == "completed" {
			fmt.Fprintf(&b, " (overall %.1f/10)", a.OverallScore)
		}
		b.WriteString("\n\n")
		if a.ErrorMessage != "" {
			fmt.Fprintf(&b, "Error: %s\n\n", a.ErrorMessage)
			continue
		}
		for _, d := range a.Dimensions {
			fmt.Fprintf(&b, "- **%s** %.1f/10", d.Label, d.Score)
			if d.Commentary != "" {
				fmt.Fprintf(&b, " - %s", d.Commentary)
			}
			b.WriteString("\n")
		}
		if len(a.Dimensions) > 0 {
			b.WriteString("\n")
		}
		for i, issue := range a.TopIssues {
			fmt.Fprintf(&b, "%d. %s", i+1, issue.Issue)
			if issue.SuggestedRewrite != "" {
				fmt.Fprintf(&b, " (suggested: %s)", issue.SuggestedRewrite)
			}
			b.WriteString("\n")
		}
		if len(a.TopIssues) > 0 {
			b.WriteString("\n")
		}
		if a.Verdict != "" {
			fmt.Fprintf(&b, "> %s\n\n", a.Verdict)
		}
		if a.HeadlineSuggestion != "" {
			fmt.Fprintf(&b, "Suggested headline: %s\n\n", a.HeadlineSuggestion)
		}
	}

	return []byte(b.String())
}
