// internal/ui/components/doctable/doctable.go
// Tabular rendering of a document page. Columns come from the page
// itself; the highlighted row is owned by the caller.
package doctable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	bbtable "github.com/evertras/bubble-table/table"
	"go.mongodb.org/mongo-driver/bson"
)

// Nord colors.
const (
	colorForeground = "#D8DEE9"
	colorTeal       = "#8FBCBB"
	colorGreen      = "#A3BE8C"
	colorYellow     = "#EBCB8B"
	colorPurple     = "#B48EAD"
	colorFaint      = "#4C566A"
)

const (
	maxColumns  = 8
	maxColWidth = 32
)

// New builds a table model for one page of documents with the given row
// highlighted.
func New(docs []bson.M, selected, width int) bbtable.Model {
	keys := columnKeys(docs)

	var cols []bbtable.Column
	for _, k := range keys {
		w := columnWidth(k, docs)
		cols = append(cols, bbtable.NewColumn(k, k, w))
	}

	var rows []bbtable.Row
	for _, doc := range docs {
		data := bbtable.RowData{}
		for _, k := range keys {
			v, ok := doc[k]
			if !ok {
				data[k] = bbtable.NewStyledCell("", lipgloss.NewStyle().Foreground(lipgloss.Color(colorFaint)))
				continue
			}
			data[k] = bbtable.NewStyledCell(cellText(v), valueStyle(v))
		}
		rows = append(rows, bbtable.NewRow(data))
	}

	t := bbtable.New(cols).
		WithRows(rows).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorForeground))).
		HeaderStyle(lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorTeal)).
			Bold(true)).
		HighlightStyle(lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGreen)).
			Bold(true)).
		Focused(true).
		BorderRounded().
		WithPageSize(len(docs)).
		WithHighlightedRow(selected)
	if width > 0 {
		t = t.WithTargetWidth(width)
	}
	return t
}

// columnKeys derives the column set from the page: _id first, then the
// remaining keys of the first document alphabetically, capped so wide
// documents stay readable.
func columnKeys(docs []bson.M) []string {
	if len(docs) == 0 {
		return []string{"_id"}
	}
	seen := map[string]bool{"_id": true}
	var keys []string
	for k := range docs[0] {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	keys = append([]string{"_id"}, keys...)
	if len(keys) > maxColumns {
		keys = keys[:maxColumns]
	}
	return keys
}

func columnWidth(key string, docs []bson.M) int {
	w := len(key)
	for _, doc := range docs {
		if v, ok := doc[key]; ok {
			if n := len(cellText(v)); n > w {
				w = n
			}
		}
	}
	if w > maxColWidth {
		w = maxColWidth
	}
	if w < 4 {
		w = 4
	}
	return w
}

// cellText renders a field value compactly for a table cell.
func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bson.M:
		return fmt.Sprintf("{%d fields}", len(val))
	case bson.D:
		return fmt.Sprintf("{%d fields}", len(val))
	case bson.A:
		return fmt.Sprintf("[%d items]", len(val))
	default:
		s := fmt.Sprintf("%v", val)
		if strings.ContainsAny(s, "\n\r") {
			s = strings.NewReplacer("\n", " ", "\r", "").Replace(s)
		}
		return s
	}
}

func valueStyle(v interface{}) lipgloss.Style {
	switch v.(type) {
	case nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorFaint)).Italic(true)
	case string:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))
	case bool:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))
	case int32, int64, float64:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorForeground))
	}
}
