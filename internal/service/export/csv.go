package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

func renderCSV(m Model) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"session_id", "file_name", "status", "backend", "personas", "completed", "failed", "average_score"})
	w.Write([]string{
		m.SessionID,
		m.FileName,
		m.Status,
		m.Backend,
		strconv.Itoa(m.Stats.PersonaCount),
		strconv.Itoa(m.Stats.Completed),
		strconv.Itoa(m.Stats.Failed),
		formatScore(m.Stats.AverageScore),
	})
	w.Write(nil)

	header := []string{"persona_id", "persona_name", "persona_role", "status", "overall_score"}
	for _, dim := range dimensionOrder {
		header = append(header, dim.Key)
	}
	header = append(header, "verdict", "error")
	w.Write(header)

	for _, a := range m.Analyses {
		row := []string{a.PersonaID, a.PersonaName, a.PersonaRole, a.Status, formatScore(a.OverallScore)}
		scores := make(map[string]string, len(a.Dimensions))
		for _, d := range a.Dimensions {
			scores[d.Key] = formatScore(d.Score)
		}
		for _, dim := range dimensionOrder {
			row = append(row, scores[dim.Key])
		}
		row = append(row, a.Verdict, a.ErrorMessage)
		w.Write(row)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatScore(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
