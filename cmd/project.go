package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/output"
	"github.com/fernwood-software/tend/internal/query"
	"github.com/fernwood-software/tend/internal/vault"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE:    runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectCreateCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"add"},
	Short:   "Create a project",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectCreate,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Edit a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectEdit,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete <project>",
	Aliases: []string{"rm"},
	Short:   "Delete a project file",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectDelete,
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <project>",
	Short: "Set a project's status to archived",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runProjectTransition(args[0], (*vault.Vault).ArchiveProject)
	},
}

var projectUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <project>",
	Short: "Return an archived project to planned",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runProjectTransition(args[0], (*vault.Vault).UnarchiveProject)
	},
}

func init() {
	projectListCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	projectListCmd.Flags().StringSlice("tag", nil, "filter by tag (comma-separated, any match)")
	projectListCmd.Flags().String("area", "", "filter by area reference target")
	projectListCmd.Flags().Bool("with-due", false, "show only projects with a due date")
	projectListCmd.Flags().Bool("no-due", false, "show only projects without a due date")
	projectListCmd.Flags().String("due-before", "", "show only projects due strictly before this date")
	projectListCmd.Flags().String("due-after", "", "show only projects due strictly after this date")
	projectListCmd.Flags().StringP("search", "s", "", "search projects by title, body, or tags")

	projectCreateCmd.Flags().SetNormalizeFunc(normalizeFieldFlags)
	projectCreateCmd.Flags().String("status", "", "initial status (default: planned)")
	projectCreateCmd.Flags().String("area", "", "area reference")
	projectCreateCmd.Flags().String("due", "", "due date (YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	projectCreateCmd.Flags().StringSlice("tag", nil, "tags (comma-separated)")
	projectCreateCmd.Flags().String("body", "", "markdown body")
	projectCreateCmd.Flags().String("filename", "", "explicit filename instead of the title slug")

	projectEditCmd.Flags().SetNormalizeFunc(normalizeFieldFlags)
	projectEditCmd.Flags().String("title", "", "new title")
	projectEditCmd.Flags().String("status", "", "new status")
	projectEditCmd.Flags().String("area", "", "new area reference")
	projectEditCmd.Flags().Bool("clear-area", false, "remove the area reference")
	projectEditCmd.Flags().String("due", "", "new due date")
	projectEditCmd.Flags().Bool("clear-due", false, "remove the due date")
	projectEditCmd.Flags().StringSlice("tag", nil, "replace the tag list")
	projectEditCmd.Flags().Bool("clear-tags", false, "remove all tags")
	projectEditCmd.Flags().String("body", "", "replace the markdown body")

	projectCmd.AddCommand(projectListCmd, projectShowCmd, projectCreateCmd, projectEditCmd,
		projectDeleteCmd, projectArchiveCmd, projectUnarchiveCmd)
	addProjectTransitions()
	rootCmd.AddCommand(projectCmd)
}

func addProjectTransitions() {
	transitions := []struct {
		use, short string
		fn         func(*vault.Vault, string) (*entity.Project, error)
	}{
		{"activate", "Move a project to active", (*vault.Vault).ActivateProject},
		{"hold", "Move a project to on-hold", (*vault.Vault).HoldProject},
		{"complete", "Move a project to done", (*vault.Vault).CompleteProject},
		{"drop", "Move a project to dropped", (*vault.Vault).DropProject},
		{"reopen", "Move a terminal project back to planned", (*vault.Vault).ReopenProject},
	}
	for _, tr := range transitions {
		fn := tr.fn
		projectCmd.AddCommand(&cobra.Command{
			Use:   tr.use + " <project>",
			Short: tr.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return runProjectTransition(args[0], fn)
			},
		})
	}
}

func runProjectTransition(arg string, fn func(*vault.Vault, string) (*entity.Project, error)) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveProjectArg(v, arg)
	if err != nil {
		return err
	}
	p, err := fn(v, loc)
	if err != nil {
		return err
	}
	return outputProject(p)
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	statuses, _ := cmd.Flags().GetStringSlice("status")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	area, _ := cmd.Flags().GetString("area")
	withDue, _ := cmd.Flags().GetBool("with-due")
	noDue, _ := cmd.Flags().GetBool("no-due")
	dueBefore, _ := cmd.Flags().GetString("due-before")
	dueAfter, _ := cmd.Flags().GetString("due-after")
	search, _ := cmd.Flags().GetString("search")

	f := query.ProjectFilter{Tags: tags, Area: area, Search: search}
	for _, s := range statuses {
		parsed, err := entity.ParseProjectStatus(s)
		if err != nil {
			return err
		}
		f.Statuses = append(f.Statuses, parsed)
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
			return err
		}
		f.DueBefore = &d
	}
	if dueAfter != "" {
		d, err := dateval.Parse(dueAfter)
		if err != nil {
			return err
		}
		f.DueAfter = &d
	}

	projects, err := v.ListProjects(f)
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		if projects == nil {
			projects = []*entity.Project{}
		}
		return output.JSON(os.Stdout, projects)
	}
	if format == output.FormatCompact {
		output.ProjectCompact(os.Stdout, projects)
		return nil
	}
	output.ProjectTable(os.Stdout, projects)
	return nil
}

func runProjectShow(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveProjectArg(v, args[0])
	if err != nil {
		return err
	}
	p, err := v.GetProject(loc)
	if err != nil {
		return err
	}
	return outputProject(p)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	area, _ := cmd.Flags().GetString("area")
	due, _ := cmd.Flags().GetString("due")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	body, _ := cmd.Flags().GetString("body")
	filename, _ := cmd.Flags().GetString("filename")

	p := &entity.Project{
		Title:  args[0],
		Status: entity.ProjectStatus(status),
		Tags:   tags,
		Body:   body,
	}
	if area != "" {
		r, err := parseArgRef(area)
		if err != nil {
			return err
		}
		p.Area = r
	}
	if due != "" {
		d, err := dateval.Parse(due)
		if err != nil {
			return err
		}
		p.Due = d
	}

	created, err := v.CreateProject(p, vault.CreateOptions{Filename: filename})
	if err != nil {
		return err
	}
	return outputProject(created)
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveProjectArg(v, args[0])
	if err != nil {
		return err
	}

	patch := entity.NewProjectPatch()
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		patch.SetTitle(title)
	}
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		parsed, err := entity.ParseProjectStatus(status)
		if err != nil {
			return err
		}
		patch.SetStatus(parsed)
	}
	if clear, _ := cmd.Flags().GetBool("clear-area"); clear {
		patch.ClearArea()
	} else if cmd.Flags().Changed("area") {
		area, _ := cmd.Flags().GetString("area")
		r, err := parseArgRef(area)
		if err != nil {
			return err
		}
		patch.SetArea(r)
	}
	if clear, _ := cmd.Flags().GetBool("clear-due"); clear {
		patch.ClearDue()
	} else if cmd.Flags().Changed("due") {
		due, _ := cmd.Flags().GetString("due")
		d, err := dateval.Parse(due)
		if err != nil {
			return err
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

	p, err := v.UpdateProject(loc, patch)
	if err != nil {
		return err
	}
	return outputProject(p)
}

func runProjectDelete(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveProjectArg(v, args[0])
	if err != nil {
		return err
	}
	if err := v.DeleteProject(loc); err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]bool{"deleted": true})
	}
	output.Messagef(os.Stdout, "Deleted %s", args[0])
	return nil
}

func resolveProjectArg(v *vault.Vault, arg string) (string, error) {
	r, err := parseArgRef(arg)
	if err != nil {
		return "", err
	}
	return v.Resolve(entity.KindProject, r)
}

func outputProject(p *entity.Project) error {
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, p)
	}
	if format == output.FormatCompact {
		output.ProjectCompact(os.Stdout, []*entity.Project{p})
		return nil
	}
	output.ProjectDetail(os.Stdout, p)
	return nil
}
