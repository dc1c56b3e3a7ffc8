// internal/ui/render.go
// View: title line, screen body, status bar, plus modal compositing for
// overlays and the help popup.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	modal "github.com/rmhubbert/bubbletea-overlay"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/ui/components/doctable"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	main := b.String()

	if m.showHelp {
		return m.renderHelpPopup(main)
	}
	if m.overlay != nil {
		return m.renderOverlay(main)
	}
	return main
}

// renderTitle is the breadcrumb line: connection ▸ database ▸ collection
// plus a provenance tag when an applied result set is shown.
func (m Model) renderTitle() string {
	crumbs := []string{"mongolens"}
	if m.conn != nil {
		crumbs = append(crumbs, m.conn.Name())
	}
	if m.curDB != "" {
		crumbs = append(crumbs, m.curDB)
	}
	if m.curColl != "" {
		crumbs = append(crumbs, m.curColl)
	}
	title := TitleStyle.Render(crumbs[0]) + BreadcrumbStyle.Render(strings.Join(crumbs[1:], " > "))

	if m.screen == ScreenDocuments && m.source.applied() {
		tag := m.source.describe()
		if m.sourceID != "" {
			tag += " " + m.sourceID
		}
		title += "  " + SourceTagStyle.Render("["+tag+"]")
	}
	return title
}

func (s resultSource) describe() string {
	switch s {
	case sourceSavedQuery:
		return "query"
	case sourceSavedAggregation:
		return "aggregation"
	case sourceInlineQuery:
		return "inline query"
	case sourceInlineAggregation:
		return "inline aggregation"
	default:
		return ""
	}
}

func (m Model) renderBody() string {
	switch m.screen {
	case ScreenConnections:
		var items []string
		for _, c := range m.snapshot.Config.Connections {
			items = append(items, c.Name+"  "+FaintStyle.Render(config.Redact(c.URI)))
		}
		return m.renderList(fmt.Sprintf("connections (%d)", len(items)), items, m.sel[ScreenConnections],
			"no connections configured; press n to add one")

	case ScreenDatabases:
		if body, done := m.renderLoadPlaceholder(loadDatabases); done {
			return body
		}
		return m.renderList(fmt.Sprintf("databases (%d)", len(m.databases)), m.databases, m.sel[ScreenDatabases],
			"no databases")

	case ScreenCollections:
		if body, done := m.renderLoadPlaceholder(loadCollections); done {
			return body
		}
		return m.renderList(fmt.Sprintf("collections in %s (%d)", m.curDB, len(m.collections)), m.collections, m.sel[ScreenCollections],
			"no collections")

	case ScreenDocuments:
		return m.renderDocuments()

	case ScreenDocumentView:
		return m.docView.View()

	case ScreenSavedQueries:
		var items []string
		for _, q := range m.snapshot.Queries {
			items = append(items, q.ID+"  "+FaintStyle.Render(q.Scope.String()))
		}
		list := m.renderList("saved queries", items, m.sel[ScreenSavedQueries], "no saved queries")
		// Execution outcome stays visible here without hiding the list,
		// so another entry can be picked straight after a failure.
		if banner, done := m.renderLoadPlaceholder(loadSavedQueryExec); done {
			return banner + "\n" + list
		}
		return list

	case ScreenSavedAggregations:
		var items []string
		for _, a := range m.snapshot.Aggregations {
			items = append(items, a.ID+"  "+FaintStyle.Render(a.Scope.String()))
		}
		list := m.renderList("saved aggregations", items, m.sel[ScreenSavedAggregations], "no saved aggregations")
		if banner, done := m.renderLoadPlaceholder(loadSavedAggregationExec); done {
			return banner + "\n" + list
		}
		return list

	case ScreenSaveQueryScope:
		return m.renderList("save query as", m.scopeOptions(), m.sel[ScreenSaveQueryScope], "")

	case ScreenSaveAggregationScope:
		return m.renderList("save aggregation as", m.scopeOptions(), m.sel[ScreenSaveAggregationScope], "")

	case ScreenAddConnectionScope:
		items := []string{
			"project config (" + config.ProjectConfigName + ")",
			"global config",
		}
		return m.renderList("add connection to", items, m.sel[ScreenAddConnectionScope], "")
	}
	return ""
}

func (m Model) scopeOptions() []string {
	return []string{
		"shared (runs against the current collection)",
		fmt.Sprintf("collection %s.%s", m.curDB, m.curColl),
	}
}

func (m Model) renderDocuments() string {
	relevant := loadDocuments
	for _, kind := range []loadKind{loadSavedQueryExec, loadSavedAggregationExec, loadInlineQueryExec, loadInlineAggregationExec} {
		if m.loads[kind].state != loadIdle {
			relevant = kind
		}
	}
	if body, done := m.renderLoadPlaceholder(relevant); done {
		return body
	}
	if len(m.docs) == 0 {
		return FaintStyle.Render("  no documents")
	}

	header := FaintStyle.Render(fmt.Sprintf("  page %d  (%d total)", m.page+1, m.total))
	if m.source.applied() {
		header = FaintStyle.Render(fmt.Sprintf("  %d documents", len(m.docs)))
	}
	t := doctable.New(m.docs, m.sel[ScreenDocuments], m.width)
	return header + "\n" + t.View()
}

// renderLoadPlaceholder covers the Loading and Failed states of a kind.
func (m Model) renderLoadPlaceholder(kind loadKind) (string, bool) {
	switch m.loads[kind].state {
	case loadLoading:
		return FaintStyle.Render("  loading " + kind.String() + "..."), true
	case loadFailed:
		return ErrorStyle.Render("  " + m.loads[kind].err), true
	}
	return "", false
}

func (m Model) renderList(header string, items []string, selected int, emptyText string) string {
	var b strings.Builder
	b.WriteString(FaintStyle.Render("  " + header))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(FaintStyle.Render("  " + emptyText))
		return b.String()
	}
	for i, item := range items {
		if i == selected {
			b.WriteString(SelectedItemStyle.Render("> " + item))
		} else {
			b.WriteString(ItemStyle.Render(item))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatusBar() string {
	if warn, ok := m.snapshot.PeekWarning(); ok {
		return WarningStyle.Render("warning: " + warn + " (press any key)")
	}
	if m.status != "" {
		return StatusInfoStyle.Render(m.status)
	}

	hints := "j/k:move  l/enter:open  h:back  ?:help  q:quit"
	switch m.screen {
	case ScreenConnections:
		hints = "j/k:move  enter:connect  n:add  ?:help  q:quit"
	case ScreenDocuments:
		hints = "i:insert  e:edit  d:delete  /:query  p:aggregate  r/a:saved  Q/A:save  E:export  ?:help"
	case ScreenDocumentView:
		hints = "j/k:scroll  gg/G:top/bottom  h:back"
	}
	mode := ""
	if m.conn != nil && m.conn.ReadOnly() {
		mode = WarningStyle.Render(" read-only ") + " "
	}
	return mode + StatusBarStyle.Render(hints)
}

func (m Model) renderOverlay(main string) string {
	var content string
	switch ov := m.overlay.(type) {
	case confirmOverlay:
		var b strings.Builder
		b.WriteString(PromptStyle.Render(ov.prompt))
		b.WriteString("\n\n")
		if ov.phrase == "" {
			b.WriteString(FaintStyle.Render("y to confirm, n to cancel"))
		} else {
			b.WriteString(fmt.Sprintf("type %q to confirm: %s", ov.phrase, InputStyle.Render(ov.input+"█")))
			if ov.errMsg != "" {
				b.WriteString("\n")
				b.WriteString(ErrorStyle.Render(ov.errMsg))
			}
		}
		content = b.String()
	case editorPromptOverlay:
		content = PromptStyle.Render("no editor found ($VISUAL/$EDITOR unset)") +
			"\n\neditor command: " + InputStyle.Render(ov.input+"█")
	case textPromptOverlay:
		content = PromptStyle.Render(ov.prompt) + ": " + InputStyle.Render(ov.input+"█")
	}
	box := PopupStyle.Render(content)
	return modal.Composite(box, main, modal.Center, modal.Center, 0, 0)
}

func (m Model) renderHelpPopup(main string) string {
	var b strings.Builder
	b.WriteString(PromptStyle.Render("keyboard shortcuts"))
	b.WriteString("\n\n")

	section := func(name string, bindings [][2]string) {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render(name))
		b.WriteString("\n")
		for _, bind := range bindings {
			key := lipgloss.NewStyle().Foreground(successColor).Width(12).Render(bind[0])
			b.WriteString("  " + key + bind[1] + "\n")
		}
		b.WriteString("\n")
	}

	section("navigation", [][2]string{
		{"j/k", "move"},
		{"l/enter", "open / descend"},
		{"h", "back"},
		{"gg / G", "top / bottom"},
		{"pgup/pgdn", "page documents"},
	})
	section("documents", [][2]string{
		{"i", "insert document"},
		{"e", "edit document"},
		{"d", "delete document"},
		{"/", "inline query"},
		{"p", "inline aggregation"},
		{"c", "clear applied results"},
		{"E", "export page"},
	})
	section("saved specs", [][2]string{
		{"r", "run saved query"},
		{"a", "run saved aggregation"},
		{"Q", "save query"},
		{"A", "save aggregation"},
	})
	section("other", [][2]string{
		{"n", "add connection"},
		{"?", "toggle help"},
		{"q", "quit"},
	})
	b.WriteString(FaintStyle.Render("press esc or ? to close"))

	box := PopupStyle.Width(44).Render(b.String())
	return modal.Composite(box, main, modal.Center, modal.Center, 0, 0)
}
