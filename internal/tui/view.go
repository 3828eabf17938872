package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/state"
)

// View implements tea.Model.
func (m Model) View() string {
	folderWidth := max(m.width/3, constants.NameColumnMinWidth+6)
	fileWidth := max(m.width-folderWidth-4, constants.NameColumnMinWidth+6)
	bodyHeight := max(m.height-6, 3)

	left := panelStyle.Width(folderWidth).Height(bodyHeight).Render(m.renderFolders(bodyHeight))
	rightStyle := panelStyle
	if m.view.HasSelection {
		rightStyle = selectedPanel
	}
	right := rightStyle.Width(fileWidth).Height(bodyHeight).Render(m.renderFiles(fileWidth-2, bodyHeight))

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keyMap))
	return b.String()
}

func (m Model) renderHeader() string {
	mode := titleStyle.Render("Public")
	if m.view.Mode == models.Private {
		mode = privateStyle.Render("Private")
	}
	p := m.view.Projection
	sort := "none"
	if p.SortKey != state.SortNone {
		sort = fmt.Sprintf("%s %s", p.SortKey, p.Direction)
	}
	return fmt.Sprintf("%s %s  %s",
		titleStyle.Render("Rescale Browse"),
		mode,
		dimStyle.Render(fmt.Sprintf("filter: %s  sort: %s", p.FilterType, sort)))
}

func (m Model) renderFolders(height int) string {
	v := m.view
	switch {
	case v.FolderLoadState.IsIdle():
		return dimStyle.Render("No folders loaded")
	case v.FolderLoadState.IsLoading():
		return m.spinner.View() + " Loading folders..."
	case v.FolderLoadState.IsFailed():
		return errorStyle.Render(v.FolderLoadState.Message)
	}
	if len(v.Folders) == 0 {
		return dimStyle.Render("No folders")
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(v.Folders))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		f := v.Folders[i]
		marker := "▸ "
		if v.HasSelection && f.ID == v.SelectedID {
			marker = "▾ "
		}
		line := marker + f.Name
		switch {
		case i == m.cursor:
			line = cursorStyle.Render(line)
		case v.HasSelection && f.ID == v.SelectedID:
			line = openStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFiles(width, height int) string {
	v := m.view
	switch {
	case !v.HasSelection:
		return dimStyle.Render("Select a folder to see its files")
	case v.FileLoadState.IsLoading():
		return m.spinner.View() + " Loading files..."
	case v.FileLoadState.IsFailed():
		return errorStyle.Render(v.FileLoadState.Message)
	}
	if len(v.DisplayedFiles) == 0 {
		return dimStyle.Render("No files")
	}
	return FormatFileTable(v.DisplayedFiles, width, height)
}

// FormatFileTable renders files as aligned columns, truncating long names to
// fit width and showing at most height-1 rows below the header. Timestamp
// columns are dropped when width cannot hold them.
func FormatFileTable(files []models.FileEntry, width, height int) string {
	tw := constants.TimestampColumnWidth
	typeWidth := 10
	showTimes := width >= constants.NameColumnMinWidth+typeWidth+2*tw+3

	nameWidth := width - typeWidth - 1
	if showTimes {
		nameWidth -= 2*tw + 2
	}
	nameWidth = max(nameWidth, constants.NameColumnMinWidth)

	row := func(name, typ, created, updated string) string {
		line := fmt.Sprintf("%-*s %-*s", nameWidth, truncate(name, nameWidth), typeWidth, truncate(typ, typeWidth))
		if showTimes {
			line += fmt.Sprintf(" %-*s %-*s", tw, truncate(created, tw), tw, truncate(updated, tw))
		}
		return line
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(row("NAME", "TYPE", "CREATED", "UPDATED")))

	rows := len(files)
	if height > 1 && rows > height-1 {
		rows = height - 1
	}
	for _, f := range files[:rows] {
		b.WriteString("\n")
		b.WriteString(row(f.Name, f.Type, f.Created.Raw, f.Updated.Raw))
	}
	if rows < len(files) {
		fmt.Fprintf(&b, "\n%s", dimStyle.Render(fmt.Sprintf("… %d more", len(files)-rows)))
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
