package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/output"
	"github.com/fernwood-software/tend/internal/query"
	"github.com/fernwood-software/tend/internal/vault"
)

var areaCmd = &cobra.Command{
	Use:     "area",
	Aliases: []string{"a"},
	Short:   "Manage areas",
}

var areaListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List areas",
	RunE:    runAreaList,
}

var areaShowCmd = &cobra.Command{
	Use:   "show <area>",
	Short: "Show an area",
	Args:  cobra.ExactArgs(1),
	RunE:  runAreaShow,
}

var areaCreateCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"add"},
	Short:   "Create an area",
	Args:    cobra.ExactArgs(1),
	RunE:    runAreaCreate,
}

var areaEditCmd = &cobra.Command{
	Use:   "edit <area>",
	Short: "Edit an area",
	Args:  cobra.ExactArgs(1),
	RunE:  runAreaEdit,
}

var areaDeleteCmd = &cobra.Command{
	Use:     "delete <area>",
	Aliases: []string{"rm"},
	Short:   "Delete an area file",
	Args:    cobra.ExactArgs(1),
	RunE:    runAreaDelete,
}

var areaArchiveCmd = &cobra.Command{
	Use:   "archive <area>",
	Short: "Set an area's status to archived",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAreaTransition(args[0], (*vault.Vault).ArchiveArea)
	},
}

var areaUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <area>",
	Short: "Return an archived area to active",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAreaTransition(args[0], (*vault.Vault).UnarchiveArea)
	},
}

func init() {
	areaListCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	areaListCmd.Flags().StringSlice("tag", nil, "filter by tag (comma-separated, any match)")
	areaListCmd.Flags().StringP("search", "s", "", "search areas by title, body, or tags")

	areaCreateCmd.Flags().SetNormalizeFunc(normalizeFieldFlags)
	areaCreateCmd.Flags().StringSlice("tag", nil, "tags (comma-separated)")
	areaCreateCmd.Flags().String("body", "", "markdown body")
	areaCreateCmd.Flags().String("filename", "", "explicit filename instead of the title slug")

	areaEditCmd.Flags().SetNormalizeFunc(normalizeFieldFlags)
	areaEditCmd.Flags().String("title", "", "new title")
	areaEditCmd.Flags().String("status", "", "new status")
	areaEditCmd.Flags().StringSlice("tag", nil, "replace the tag list")
	areaEditCmd.Flags().Bool("clear-tags", false, "remove all tags")
	areaEditCmd.Flags().String("body", "", "replace the markdown body")

	areaCmd.AddCommand(areaListCmd, areaShowCmd, areaCreateCmd, areaEditCmd, areaDeleteCmd,
		areaArchiveCmd, areaUnarchiveCmd)
	rootCmd.AddCommand(areaCmd)
}

func runAreaTransition(arg string, fn func(*vault.Vault, string) (*entity.Area, error)) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveAreaArg(v, arg)
	if err != nil {
		return err
	}
	a, err := fn(v, loc)
	if err != nil {
		return err
	}
	return outputArea(a)
}

func runAreaList(cmd *cobra.Command, _ []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	statuses, _ := cmd.Flags().GetStringSlice("status")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	search, _ := cmd.Flags().GetString("search")

	f := query.AreaFilter{Tags: tags, Search: search}
	for _, s := range statuses {
		parsed, err := entity.ParseAreaStatus(s)
		if err != nil {
			return err
		}
		f.Statuses = append(f.Statuses, parsed)
	}

	areas, err := v.ListAreas(f)
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		if areas == nil {
			areas = []*entity.Area{}
		}
		return output.JSON(os.Stdout, areas)
	}
	if format == output.FormatCompact {
		output.AreaCompact(os.Stdout, areas)
		return nil
	}
	output.AreaTable(os.Stdout, areas)
	return nil
}

func runAreaShow(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveAreaArg(v, args[0])
	if err != nil {
		return err
	}
	a, err := v.GetArea(loc)
	if err != nil {
		return err
	}
	return outputArea(a)
}

func runAreaCreate(cmd *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	tags, _ := cmd.Flags().GetStringSlice("tag")
	body, _ := cmd.Flags().GetString("body")
	filename, _ := cmd.Flags().GetString("filename")

	a := &entity.Area{
		Title: args[0],
		Tags:  tags,
		Body:  body,
	}
	created, err := v.CreateArea(a, vault.CreateOptions{Filename: filename})
	if err != nil {
		return err
	}
	return outputArea(created)
}

func runAreaEdit(cmd *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveAreaArg(v, args[0])
	if err != nil {
		return err
	}

	patch := entity.NewAreaPatch()
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		patch.SetTitle(title)
	}
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		parsed, err := entity.ParseAreaStatus(status)
		if err != nil {
			return err
		}
		patch.SetStatus(parsed)
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

	a, err := v.UpdateArea(loc, patch)
	if err != nil {
		return err
	}
	return outputArea(a)
}

func runAreaDelete(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}
	loc, err := resolveAreaArg(v, args[0])
	if err != nil {
		return err
	}
	if err := v.DeleteArea(loc); err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]bool{"deleted": true})
	}
	output.Messagef(os.Stdout, "Deleted %s", args[0])
	return nil
}

func resolveAreaArg(v *vault.Vault, arg string) (string, error) {
	r, err := parseArgRef(arg)
	if err != nil {
		return "", err
	}
	return v.ResolveArea(r)
}

func outputArea(a *entity.Area) error {
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, a)
	}
	if format == output.FormatCompact {
		output.AreaCompact(os.Stdout, []*entity.Area{a})
		return nil
	}
	output.AreaDetail(os.Stdout, a)
	return nil
}
