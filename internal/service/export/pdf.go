package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

func renderPDF(m Model) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Focus Group Report: "+m.FileName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, "Focus Group Report: "+m.FileName, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range summaryLines(m) {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(4)

	if len(m.DimensionAverages) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Dimension Averages", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, d := range m.DimensionAverages {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %.1f/10 (%d personas)", d.Label, d.Average, d.Count), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, item := range items {
			pdf.MultiCell(0, 5, "- "+item, "", "L", false)
		}
		pdf.Ln(3)
	}
	section("Common Themes", m.CommonThemes)
	section("What Works Well", m.Strengths)
	section("Recommendations", m.Recommendations)

	for _, a := range m.Analyses {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, personaHeading(a), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		if a.ErrorMessage != "" {
			pdf.MultiCell(0, 5, "Error: "+a.ErrorMessage, "", "L", false)
			pdf.Ln(2)
			continue
		}
		for _, d := range a.Dimensions {
			line := fmt.Sprintf("%s: %.1f/10", d.Label, d.Score)
			if d.Commentary != "" {
				line += " - " + d.Commentary
			}
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
		for i, issue := range a.TopIssues {
			pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, issue.Issue), "", "L", false)
		}
		if a.Verdict != "" {
			pdf.MultiCell(0, 5, "Verdict: "+a.Verdict, "", "L", false)
		}
		if a.HeadlineSuggestion != "" {
			pdf.MultiCell(0, 5, "Suggested headline: "+a.HeadlineSuggestion, "", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryLines(m Model) []string {
	lines := []string{
		"Session: " + m.SessionID,
		"Status: " + m.Status,
		"Analysis backend: " + m.Backend,
		fmt.Sprintf("Personas: %d (%d completed, %d failed)", m.Stats.PersonaCount, m.Stats.Completed, m.Stats.Failed),
	}
	if m.FileVersion != "" {
		lines = append(lines, "Document version: "+m.FileVersion)
	}
	if m.Stats.Completed > 0 {
		lines = append(lines, fmt.Sprintf("Average score: %.1f/10", m.Stats.AverageScore))
	}
	return lines
}

func personaHeading(a PersonaAnalysis) string {
	name := a.PersonaName
	if name == "" {
		name = a.PersonaID
	}
	heading := name
	if a.PersonaRole != "" {
		heading += " (" + a.PersonaRole + ")"
	}
	heading += " - " + a.Status
	if a.Status == "completed" {
		heading += fmt.Sprintf(", overall %.1f/10", a.OverallScore)
	}
	return heading
}
