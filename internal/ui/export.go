// internal/ui/export.go
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/hvmai/mongolens/internal/db"
)

// exportDocuments writes the currently displayed document set to path as
// an indented extended-JSON array.
func (m Model) exportDocuments(path string) Model {
	if len(m.docs) == 0 {
		m.status = "nothing to export"
		return m
	}

	var b strings.Builder
	b.WriteString("[\n")
	for i, doc := range m.docs {
		out, err := db.FormatDocumentJSON(doc)
		if err != nil {
			m.status = "export failed: " + err.Error()
			return m
		}
		b.WriteString(indentLines(out, "  "))
		if i < len(m.docs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n")

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		m.status = "export failed: " + err.Error()
		return m
	}
	m.status = fmt.Sprintf("exported %d documents to %s", len(m.docs), path)
	return m
}

func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
