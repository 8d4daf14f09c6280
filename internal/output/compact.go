package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/events"
	"github.com/fernwood-software/tend/internal/validate"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*entity.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *entity.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	// Timestamps line.
	var ts []string
	if !t.Created.IsZero() {
		ts = append(ts, "created:"+t.Created.String())
	}
	if !t.Updated.IsZero() {
		ts = append(ts, "updated:"+t.Updated.String())
	}
	if !t.Completed.IsZero() {
		ts = append(ts, "completed:"+t.Completed.String())
	}
	if len(ts) > 0 {
		fmt.Fprintln(w, "  "+strings.Join(ts, " "))
	}

	if t.Body != "" {
		for _, bodyLine := range strings.Split(strings.TrimRight(t.Body, "\n"), "\n") {
			fmt.Fprintln(w, "  "+bodyLine)
		}
	}
}

// ProjectCompact renders a list of projects in compact format.
func ProjectCompact(w io.Writer, projects []*entity.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(os.Stderr, "No projects found.")
		return
	}

	for _, p := range projects {
		line := filepath.Base(p.Location) + " [" + string(p.Status) + "] " + p.Title
		if !p.Area.IsZero() {
			line += " area:" + p.Area.Target()
		}
		if !p.Due.IsZero() {
			line += " due:" + p.Due.String()
		}
		if len(p.Tags) > 0 {
			line += " (" + strings.Join(p.Tags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// AreaCompact renders a list of areas in compact format.
func AreaCompact(w io.Writer, areas []*entity.Area) {
	if len(areas) == 0 {
		fmt.Fprintln(os.Stderr, "No areas found.")
		return
	}

	for _, a := range areas {
		line := filepath.Base(a.Location) + " [" + string(a.Status) + "] " + a.Title
		if len(a.Tags) > 0 {
			line += " (" + strings.Join(a.Tags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// IssueCompact renders validation issues in compact format.
func IssueCompact(w io.Writer, issues []validate.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}

	for _, i := range issues {
		fmt.Fprintf(w, "%s: %s: %s %s\n", i.Location, i.Severity, i.Code, i.Message)
	}
}

// EventCompact renders a single watch event as one line.
func EventCompact(w io.Writer, ev *events.Event) {
	fmt.Fprintf(w, "%s %s %s\n", ev.Change, ev.Kind, ev.Location)
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *entity.Task) string {
	line := filepath.Base(t.Location) + " [" + string(t.Status) + "] " + t.Title

	if !t.Project.IsZero() {
		line += " project:" + t.Project.Target()
	}
	if !t.Area.IsZero() {
		line += " area:" + t.Area.Target()
	}
	if len(t.Tags) > 0 {
		line += " (" + strings.Join(t.Tags, ", ") + ")"
	}
	if !t.Due.IsZero() {
		line += " due:" + t.Due.String()
	}

	return line
}
