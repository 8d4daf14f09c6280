package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/output"
	"github.com/fernwood-software/tend/internal/query"
	"github.com/fernwood-software/tend/internal/vault"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering and output format control.`,
	RunE:    runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskCreateCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"add"},
	Short:   "Create a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskCreate,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task]",
	Short: "Edit a task, or every task matching the filter flags",
	Long: `Edits the named task's fields. Without a task argument, the --filter-*
flags select tasks and the edit is applied to each; individual failures do
not abort the batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaskEdit,
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <task>",
	Aliases: []string{"rm"},
	Short:   "Delete a task file",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskDelete,
}

var taskArchiveCmd = &cobra.Command{
	Use:   "archive <task>...",
	Short: "Move tasks into the archive directory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskArchive,
}

var taskUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <task>...",
	Short: "Move tasks back out of the archive directory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskUnarchive,
}

func init() {
	taskListCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	taskListCmd.Flags().StringSlice("tag", nil, "filter by tag (comma-separated, any match)")
	taskListCmd.Flags().String("project", "", "filter by project reference target")
	taskListCmd.Flags().String("area", "", "filter by area reference target")
	taskListCmd.Flags().Bool("with-project", false, "show only tasks assigned to a project")
	taskListCmd.Flags().Bool("no-project", false, "show only tasks without a project")
	taskListCmd.Flags().Bool("with-due", false, "show only tasks with a due date")
	taskListCmd.Flags().Bool("no-due", false, "show only tasks without a due date")
	taskListCmd.Flags().String("due-before", "", "show only tasks due strictly before this date")
	taskListCmd.Flags().String("due-after", "", "show only tasks due strictly after this date")
	taskListCmd.Flags().StringP("search", "s", "", "search tasks by title, body, or tags (case-insensitive)")
	taskListCmd.Flags().Bool("archived", false, "include archived tasks")

	taskCreateCmd.Flags().SetNormalizeFunc(normalizeFieldFlags)
	taskCreateCmd.Flags().String("status", "", "initial status (default: ready)")
	taskCreateCmd.Flags().String("project", "", "project reference")
	taskCreateCmd.Flags().String("area", "", "area reference")
	taskCreateCmd.Flags().String("due", "", "due date (YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	taskCreateCmd.Flags().StringSlice("tag", nil, "tags (comma-separated)")
	taskCreateCmd.Flags().String("body", "", "markdown body")
	taskCreateCmd.Flags().String("filename", "", "explicit filename instead of the title slug")

	addTaskEditFlags(taskEditCmd)
	taskEditCmd.Flags().StringSlice("filter-status", nil, "batch: select tasks by status")
	taskEditCmd.Flags().StringSlice("filter-tag", nil, "batch: select tasks by tag")
	taskEditCmd.Flags().String("filter-project", "", "batch: select tasks by project reference target")
	taskEditCmd.Flags().String("filter-area", "", "batch: select tasks by area reference target")
	taskEditCmd.Flags().String("filter-search", "", "batch: select tasks by search")

	taskCmd.AddCommand(taskListCmd, taskShowCmd, taskCreateCmd, taskEditCmd, taskDeleteCmd,
		taskArchiveCmd, taskUnarchiveCmd)
	addTaskTransitions()
	rootCmd.AddCommand(taskCmd)
}

// normalizeFieldFlags accepts common aliases for the field flags.
func normalizeFieldFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "tags":
		name = "tag"
	case "description":
		name = "body"
	}
	return pflag.NormalizedName(name)
}

func addTaskEditFlags(cmd *cobra.Command) {
	cmd.Flags().SetNormalizeFunc(normalizeFieldFlags)
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("status", "", "new status")
	cmd.Flags().String("project", "", "new project reference")
	cmd.Flags().Bool("clear-project", false, "remove the project reference")
	cmd.Flags().String("area", "", "new area reference")
	cmd.Flags().Bool("clear-area", false, "remove the area reference")
	cmd.Flags().String("due", "", "new due date")
	cmd.Flags().Bool("clear-due", false, "remove the due date")
	cmd.Flags().StringSlice("tag", nil, "replace the tag list")
	cmd.Flags().Bool("clear-tags", false, "remove all tags")
	cmd.Flags().String("body", "", "replace the markdown body")
}

func addTaskTransitions() {
	transitions := []struct {
		use, short string
		fn         func(*vault.Vault, string) (*entity.Task, error)
	}{
		{"start", "Move tasks to in-progress", (*vault.Vault).StartTask},
		{"block", "Move tasks to blocked", (*vault.Vault).BlockTask},
		{"complete", "Move tasks to done", (*vault.Vault).CompleteTask},
		{"drop", "Move tasks to dropped", (*vault.Vault).DropTask},
		{"reopen", "Move terminal tasks back to ready", (*vault.Vault).ReopenTask},
	}
	for _, tr := range transitions {
		fn := tr.fn
		taskCmd.AddCommand(&cobra.Command{
			Use:   tr.use + " <task>...",
			Short: tr.short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return runTaskBatch(args, func(v *vault.Vault, loc string) error {
					_, err := fn(v, loc)
					return err
				})
			},
		})
	}
}

func runTaskList(cmd *cobra.Command, _ []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	f, err := taskFilterFromFlags(cmd)
	if err != nil {
		return err
	}

	tasks, err := v.ListTasks(f)
	if err != nil {
		return err
	}
	return outputTaskList(v, tasks)
}

func taskFilterFromFlags(cmd *cobra.Command) (query.TaskFilter, error) {
	statuses, _ := cmd.Flags().GetStringSlice("status")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	project, _ := cmd.Flags().GetString("project")
	area, _ := cmd.Flags().GetString("area")
	withProject, _ := cmd.Flags().GetBool("with-project")
	noProject, _ := cmd.Flags().GetBool("no-project")
	withDue, _ := cmd.Flags().GetBool("with-due")
	noDue, _ := cmd.Flags().GetBool("no-due")
	dueBefore, _ := cmd.Flags().GetString("due-before")
	dueAfter, _ := cmd.Flags().GetString("due-after")
	search, _ := cmd.Flags().GetString("search")
	archived, _ := cmd.Flags().GetBool("archived")

	f := query.TaskFilter{
		Project:         project,
		Area:            area,
		Search:          search,
		Tags:            tags,
		IncludeArchived: archived,
	}
	for _, s := range statuses {
		parsed, err := entity.ParseTaskStatus(s)
		if err != nil {
			return query.TaskFilter{}, err
		}
		f.Statuses = append(f.Statuses, parsed)
	}
	if withProject {
		t := true
		f.HasProject = &t
	} else if noProject {
		t := false
		f.HasProject = &t
	}
	if withDue {
		t := true
		f.HasDue = &t
	} else if noDue {
		t := false
		f.HasDue = &t
	}
	if dueBefore != "" {
		d, err := dateval.Parse(dueBefore)
		if err != nil {
			return query.TaskFilter{}, err
		}
		f.DueBefore = &d
	}
	if dueAfter != "" {
		d, err := dateval.Parse(dueAfter)
		if err != nil {
			return query.TaskFilter{}, err
		}
		f.DueAfter = &d
	}
	return f, nil
}

func runTaskShow(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveTaskArg(v, args[0])
	if err != nil {
		return err
	}
	t, err := v.GetTask(loc)
	if err != nil {
		return err
	}
	return outputTask(v, t)
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	project, _ := cmd.Flags().GetString("project")
	area, _ := cmd.Flags().GetString("area")
	due, _ := cmd.Flags().GetString("due")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	body, _ := cmd.Flags().GetString("body")
	filename, _ := cmd.Flags().GetString("filename")

	t := &entity.Task{
		Title:  args[0],
		Status: entity.TaskStatus(status),
		Tags:   tags,
		Body:   body,
	}
	if project != "" {
		r, err := parseArgRef(project)
		if err != nil {
			return err
		}
		t.Project = r
	}
	if area != "" {
		r, err := parseArgRef(area)
		if err != nil {
			return err
		}
		t.Area = r
	}
	if due != "" {
		d, err := dateval.Parse(due)
		if err != nil {
			return err
		}
		t.Due = d
	}

	created, err := v.CreateTask(t, vault.CreateOptions{Filename: filename})
	if err != nil {
		return err
	}
	return outputTask(v, created)
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	patch, err := taskPatchFromFlags(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		loc, err := resolveTaskArg(v, args[0])
		if err != nil {
			return err
		}
		t, err := v.UpdateTask(loc, patch)
		if err != nil {
			return err
		}
		return outputTask(v, t)
	}

	filterSet := false
	for _, name := range []string{"filter-status", "filter-tag", "filter-project", "filter-area", "filter-search"} {
		if cmd.Flags().Changed(name) {
			filterSet = true
			break
		}
	}
	if !filterSet {
		return clierr.New(clierr.InvalidInput,
			"batch edit requires at least one --filter-* flag")
	}

	f, err := batchFilterFromFlags(cmd)
	if err != nil {
		return err
	}
	outcomes, err := v.UpdateTasksWhere(f, patch)
	if err != nil {
		return err
	}
	return reportBatch(v, outcomes)
}

func taskPatchFromFlags(cmd *cobra.Command) (*entity.TaskPatch, error) {
	patch := entity.NewTaskPatch()

	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		patch.SetTitle(title)
	}
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		parsed, err := entity.ParseTaskStatus(status)
		if err != nil {
			return nil, err
		}
		patch.SetStatus(parsed)
	}
	if clear, _ := cmd.Flags().GetBool("clear-project"); clear {
		patch.ClearProject()
	} else if cmd.Flags().Changed("project") {
		project, _ := cmd.Flags().GetString("project")
		r, err := parseArgRef(project)
		if err != nil {
			return nil, err
		}
		patch.SetProject(r)
	}
	if clear, _ := cmd.Flags().GetBool("clear-area"); clear {
		patch.ClearArea()
	} else if cmd.Flags().Changed("area") {
		area, _ := cmd.Flags().GetString("area")
		r, err := parseArgRef(area)
		if err != nil {
			return nil, err
		}
		patch.SetArea(r)
	}
	if clear, _ := cmd.Flags().GetBool("clear-due"); clear {
		patch.ClearDue()
	} else if cmd.Flags().Changed("due") {
		due, _ := cmd.Flags().GetString("due")
		d, err := dateval.Parse(due)
		if err != nil {
			return nil, err
		}
		patch.SetDue(d)
	}
	if clear, _ := cmd.Flags().GetBool("clear-tags"); clear {
		patch.ClearTags()
	} else if cmd.Flags().Changed("tag") {
		tags, _ := cmd.Flags().GetStringSlice("tag")
		patch.SetTags(tags)
	}
	if cmd.Flags().Changed("body") {
		body, _ := cmd.Flags().GetString("body")
		patch.SetBody(body)
	}

	return patch, nil
}

func batchFilterFromFlags(cmd *cobra.Command) (query.TaskFilter, error) {
	statuses, _ := cmd.Flags().GetStringSlice("filter-status")
	tags, _ := cmd.Flags().GetStringSlice("filter-tag")
	project, _ := cmd.Flags().GetString("filter-project")
	area, _ := cmd.Flags().GetString("filter-area")
	search, _ := cmd.Flags().GetString("filter-search")

	f := query.TaskFilter{Tags: tags, Project: project, Area: area, Search: search}
	for _, s := range statuses {
		parsed, err := entity.ParseTaskStatus(s)
		if err != nil {
			return query.TaskFilter{}, err
		}
		f.Statuses = append(f.Statuses, parsed)
	}
	return f, nil
}

func runTaskDelete(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveTaskArg(v, args[0])
	if err != nil {
		return err
	}
	if err := v.DeleteTask(loc); err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]bool{"deleted": true})
	}
	output.Messagef(os.Stdout, "Deleted %s", args[0])
	return nil
}

func runTaskArchive(_ *cobra.Command, args []string) error {
	return runTaskBatch(args, func(v *vault.Vault, loc string) error {
		_, err := v.ArchiveTask(loc)
		return err
	})
}

func runTaskUnarchive(_ *cobra.Command, args []string) error {
	return runTaskBatch(args, func(v *vault.Vault, loc string) error {
		_, err := v.UnarchiveTask(loc)
		return err
	})
}

// runTaskBatch resolves each argument and applies fn, collecting per-task
// outcomes instead of aborting on the first failure.
func runTaskBatch(args []string, fn func(*vault.Vault, string) error) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	outcomes := make([]vault.BatchOutcome, 0, len(args))
	for _, arg := range args {
		loc, err := resolveTaskArg(v, arg)
		if err != nil {
			outcomes = append(outcomes, vault.BatchOutcome{Location: arg, Err: err})
			continue
		}
		outcomes = append(outcomes, vault.BatchOutcome{Location: loc, Err: fn(v, loc)})
	}
	return reportBatch(v, outcomes)
}

func resolveTaskArg(v *vault.Vault, arg string) (string, error) {
	r, err := parseArgRef(arg)
	if err != nil {
		return "", err
	}
	return v.Resolve(entity.KindTask, r)
}

// taskView is the JSON shape for a single task, adding the location-derived
// archived flag.
type taskView struct {
	*entity.Task
	Archived bool `json:"archived"`
}

func outputTask(v *vault.Vault, t *entity.Task) error {
	archived := v.IsArchivedLocation(t.Location)
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, taskView{Task: t, Archived: archived})
	}
	if format == output.FormatCompact {
		output.TaskDetailCompact(os.Stdout, t)
		return nil
	}
	output.TaskDetail(os.Stdout, t, archived)
	return nil
}

func outputTaskList(v *vault.Vault, tasks []*entity.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		views := make([]taskView, 0, len(tasks))
		for _, t := range tasks {
			views = append(views, taskView{Task: t, Archived: v.IsArchivedLocation(t.Location)})
		}
		return output.JSON(os.Stdout, views)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}
