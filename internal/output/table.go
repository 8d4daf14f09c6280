package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/validate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusStyles = map[string]lipgloss.Style{
		"ready":       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"in-progress": lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"blocked":     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"done":        lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		"dropped":     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		"planned":     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"active":      lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"on-hold":     lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		"archived":    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}

	severityStyles = map[string]lipgloss.Style{
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	}

	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	severityStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*entity.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	fileW, statusW, titleW, projW, tagsW, dueW := 6, 8, 7, 9, 6, 12
	for _, t := range tasks {
		fileW = max(fileW, len(filepath.Base(t.Location))+pad)
		statusW = max(statusW, len(t.Status)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
		projW = max(projW, len(t.Project.Target())+pad)
		tagsW = max(tagsW, min(len(strings.Join(t.Tags, ","))+pad, 30)) //nolint:mnd // max tags column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s",
		fileW, "FILE", statusW, "STATUS", titleW, "TITLE",
		projW, "PROJECT", tagsW, "TAGS", dueW, "DUE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		project := t.Project.Target()
		if project == "" {
			project = dimStyle.Render("--")
		}
		tags := strings.Join(t.Tags, ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}
		due := "--"
		if !t.Due.IsZero() {
			due = t.Due.String()
		} else {
			due = dimStyle.Render(due)
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %s",
			fileW, filepath.Base(t.Location),
			padRight(styledValue(string(t.Status), statusStyles), statusW),
			padRight(title, titleW),
			padRight(project, projW),
			padRight(tags, tagsW),
			due)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *entity.Task, archived bool) {
	titleLine := "Task: " + t.Title
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "File", filepath.Base(t.Location))
	printField(w, "Status", styledValue(string(t.Status), statusStyles))
	if archived {
		printField(w, "Archived", "yes")
	}
	printField(w, "Project", refOrDash(t.Project.String()))
	printField(w, "Area", refOrDash(t.Area.String()))
	if len(t.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(t.Tags, ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if !t.Due.IsZero() {
		printField(w, "Due", t.Due.String())
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	if !t.Created.IsZero() {
		printField(w, "Created", t.Created.String())
	}
	if !t.Updated.IsZero() {
		printField(w, "Updated", t.Updated.String())
	}
	if !t.Completed.IsZero() {
		printField(w, "Completed", t.Completed.String())
	}

	if t.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(t.Body, "\n"))
	}
}

// ProjectTable renders a list of projects as a formatted table.
func ProjectTable(w io.Writer, projects []*entity.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(os.Stderr, "No projects found.")
		return
	}

	const pad = 2
	fileW, statusW, titleW, areaW, dueW := 6, 8, 7, 6, 12
	for _, p := range projects {
		fileW = max(fileW, len(filepath.Base(p.Location))+pad)
		statusW = max(statusW, len(p.Status)+pad)
		titleW = max(titleW, min(len(p.Title)+pad, 50)) //nolint:mnd // max title column width
		areaW = max(areaW, len(p.Area.Target())+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		fileW, "FILE", statusW, "STATUS", titleW, "TITLE", areaW, "AREA", dueW, "DUE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, p := range projects {
		area := p.Area.Target()
		if area == "" {
			area = dimStyle.Render("--")
		}
		due := "--"
		if !p.Due.IsZero() {
			due = p.Due.String()
		} else {
			due = dimStyle.Render(due)
		}

		row := fmt.Sprintf("%-*s %s %s %s %s",
			fileW, filepath.Base(p.Location),
			padRight(styledValue(string(p.Status), statusStyles), statusW),
			padRight(p.Title, titleW),
			padRight(area, areaW),
			due)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// ProjectDetail renders a single project with full detail.
func ProjectDetail(w io.Writer, p *entity.Project) {
	titleLine := "Project: " + p.Title
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "File", filepath.Base(p.Location))
	printField(w, "Status", styledValue(string(p.Status), statusStyles))
	printField(w, "Area", refOrDash(p.Area.String()))
	if len(p.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(p.Tags, ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if !p.Due.IsZero() {
		printField(w, "Due", p.Due.String())
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	if !p.Created.IsZero() {
		printField(w, "Created", p.Created.String())
	}
	if !p.Updated.IsZero() {
		printField(w, "Updated", p.Updated.String())
	}
	if !p.Completed.IsZero() {
		printField(w, "Completed", p.Completed.String())
	}

	if p.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(p.Body, "\n"))
	}
}

// AreaTable renders a list of areas as a formatted table.
func AreaTable(w io.Writer, areas []*entity.Area) {
	if len(areas) == 0 {
		fmt.Fprintln(os.Stderr, "No areas found.")
		return
	}

	const pad = 2
	fileW, statusW, titleW := 6, 8, 7
	for _, a := range areas {
		fileW = max(fileW, len(filepath.Base(a.Location))+pad)
		statusW = max(statusW, len(a.Status)+pad)
		titleW = max(titleW, min(len(a.Title)+pad, 50)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %s",
		fileW, "FILE", statusW, "STATUS", titleW, "TITLE", "TAGS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, a := range areas {
		tags := strings.Join(a.Tags, ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}

		row := fmt.Sprintf("%-*s %s %s %s",
			fileW, filepath.Base(a.Location),
			padRight(styledValue(string(a.Status), statusStyles), statusW),
			padRight(a.Title, titleW),
			tags)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// AreaDetail renders a single area with full detail.
func AreaDetail(w io.Writer, a *entity.Area) {
	titleLine := "Area: " + a.Title
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "File", filepath.Base(a.Location))
	printField(w, "Status", styledValue(string(a.Status), statusStyles))
	if len(a.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(a.Tags, ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if !a.Created.IsZero() {
		printField(w, "Created", a.Created.String())
	}
	if !a.Updated.IsZero() {
		printField(w, "Updated", a.Updated.String())
	}

	if a.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(a.Body, "\n"))
	}
}

// IssueTable renders validation issues as a formatted table.
func IssueTable(w io.Writer, issues []validate.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}

	const pad = 2
	locW, sevW, codeW := 6, 10, 6
	for _, i := range issues {
		locW = max(locW, len(i.Location)+pad)
		codeW = max(codeW, len(i.Code)+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %s", locW, "FILE", sevW, "SEVERITY", codeW, "CODE", "MESSAGE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, i := range issues {
		row := fmt.Sprintf("%-*s %s %-*s %s",
			locW, i.Location,
			padRight(styledValue(string(i.Severity), severityStyles), sevW),
			codeW, i.Code,
			i.Message)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func refOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
