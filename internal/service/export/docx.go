package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// A .docx file is a zip archive with a fixed minimal layout. Only three
// members are required for a document made of plain paragraphs.
const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

type docxParagraph struct {
	text string
	bold bool
	size int // half-points, 0 means default
}

func renderDOCX(m Model) ([]byte, error) {
	var paras []docxParagraph
	heading := func(text string, size int) {
		paras = append(paras, docxParagraph{text: text, bold: true, size: size})
	}
	line := func(text string) {
		paras = append(paras, docxParagraph{text: text})
	}

	heading("Focus Group Report: "+m.FileName, 32)
	for _, l := range summaryLines(m) {
		line(l)
	}
	line("")

	if len(m.DimensionAverages) > 0 {
		heading("Dimension Averages", 26)
		for _, d := range m.DimensionAverages {
			line(fmt.Sprintf("%s: %.1f/10 (%d personas)", d.Label, d.Average, d.Count))
		}
		line("")
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		heading(title, 26)
		for _, item := range items {
			line("- " + item)
		}
		line("")
	}
	section("Common Themes", m.CommonThemes)
	section("What Works Well", m.Strengths)
	section("Recommendations", m.Recommendations)

	for _, a := range m.Analyses {
		heading(personaHeading(a), 26)
		if a.ErrorMessage != "" {
			line("Error: " + a.ErrorMessage)
			line("")
			continue
		}
		for _, d := range a.Dimensions {
			text := fmt.Sprintf("%s: %.1f/10", d.Label, d.Score)
			if d.Commentary != "" {
				text += " - " + d.Commentary
			}
			line(text)
		}
		for i, issue := range a.TopIssues {
			line(fmt.Sprintf("%d. %s", i+1, issue.Issue))
		}
		if a.Verdict != "" {
			line("Verdict: " + a.Verdict)
		}
		if a.HeadlineSuggestion != "" {
			line("Suggested headline: " + a.HeadlineSuggestion)
		}
		line("")
	}

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paras {
		writeDocxParagraph(&doc, p)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	members := []struct {
		name, body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", doc.String()},
	}
	for _, member := range members {
		f, err := zw.Create(member.name)
		if err != nil {
			return nil, fmt.Errorf("render docx: %w", err)
		}
		if _, err := f.Write([]byte(member.body)); err != nil {
			return nil, fmt.Errorf("render docx: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDocxParagraph(b *strings.Builder, p docxParagraph) {
	b.WriteString("<w:p><w:r>")
	if p.bold || p.size > 0 {
		b.WriteString("<w:rPr>")
		if p.bold {
			b.WriteString("<w:b/>")
		}
		if p.size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, p.size)
		}
		b.WriteString("</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	xml.EscapeText(b, []byte(p.text))
	b.WriteString("</w:t></w:r></w:p>")
}
