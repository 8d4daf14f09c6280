package vault_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/query"
	"github.com/fernwood-software/tend/internal/ref"
	"github.com/fernwood-software/tend/internal/vault"
)

func newTestVault(t *testing.T, opts vault.Options) *vault.Vault {
	t.Helper()

	root := t.TempDir()
	paths := vault.DefaultPaths(root)
	for _, dir := range []string{paths.TasksArchive, paths.Projects, paths.Areas} {
		require.NoError(t, os.MkdirAll(dir, 0o750))
	}
	return vault.New(paths, opts)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func Test_CreateTask_WritesFileWithDefaults(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	task, err := v.CreateTask(&entity.Task{Title: "Fix the Gutter!"}, vault.CreateOptions{})
	require.NoError(t, err)

	require.Equal(t, entity.TaskReady, task.Status)
	require.False(t, task.Created.IsZero())
	require.False(t, task.Updated.IsZero())
	require.True(t, task.Completed.IsZero())
	require.Equal(t, "fix-the-gutter.md", filepath.Base(task.Location))
	require.Equal(t, v.Paths().Tasks, filepath.Dir(task.Location))
}

func Test_CreateTask_Fails_When_LocationCollides(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	_, err := v.CreateTask(&entity.Task{Title: "Same Name"}, vault.CreateOptions{})
	require.NoError(t, err)

	_, err = v.CreateTask(&entity.Task{Title: "Same Name"}, vault.CreateOptions{})
	requireCode(t, err, clierr.LocationCollision)

	// An explicit filename sidesteps the slug collision.
	task, err := v.CreateTask(&entity.Task{Title: "Same Name"}, vault.CreateOptions{Filename: "same-name-2"})
	require.NoError(t, err)
	require.Equal(t, "same-name-2.md", filepath.Base(task.Location))
}

func Test_CreateTask_Fails_When_StatusOrTitleInvalid(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})

	_, err := v.CreateTask(&entity.Task{Status: entity.TaskReady}, vault.CreateOptions{})
	requireCode(t, err, clierr.MissingField)

	_, err = v.CreateTask(&entity.Task{Title: "A", Status: "doing"}, vault.CreateOptions{})
	requireCode(t, err, clierr.InvalidStatus)

	_, err = v.CreateTask(&entity.Task{Title: "!!!"}, vault.CreateOptions{})
	requireCode(t, err, clierr.InvalidInput)
}

func Test_UpdateTask_PreservesUnknownFieldsAndComments(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "gutter.md")
	writeFile(t, loc, strings.Join([]string{
		"---",
		"# weekly chores",
		"title: Fix the gutter",
		"status: ready",
		"x_energy: low   # custom field",
		"x_review:",
		"  last: 2026-07-01",
		"---",
		"",
		"Ladder is in the shed.",
		"",
	}, "\n"))

	_, err := v.UpdateTask(loc, entity.NewTaskPatch().SetStatus(entity.TaskInProgress))
	require.NoError(t, err)

	got := readFile(t, loc)
	require.Contains(t, got, "# weekly chores")
	require.Contains(t, got, "title: Fix the gutter")
	require.Contains(t, got, "status: in-progress")
	require.Contains(t, got, "x_energy: low   # custom field")
	require.Contains(t, got, "x_review:\n  last: 2026-07-01")
	require.Contains(t, got, "Ladder is in the shed.")
	require.Contains(t, got, "updated:")
	require.NotContains(t, got, "status: ready")
}

func Test_UpdateTask_EmptyPatchLeavesBytesUntouched(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "note.md")
	original := "---\ntitle: A\nstatus: ready\nupdated: 2026-01-01\n---\nbody\n"
	writeFile(t, loc, original)

	task, err := v.UpdateTask(loc, entity.NewTaskPatch())
	require.NoError(t, err)
	require.Equal(t, "A", task.Title)
	require.Equal(t, original, readFile(t, loc))
	require.Equal(t, "2026-01-01", task.Updated.String())
}

func Test_UpdateTask_ClearRemovesKey(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\ndue: 2026-09-01\ntags: [x]\n---\n")

	task, err := v.UpdateTask(loc, entity.NewTaskPatch().ClearDue().ClearTags())
	require.NoError(t, err)
	require.True(t, task.Due.IsZero())
	require.Empty(t, task.Tags)

	got := readFile(t, loc)
	require.NotContains(t, got, "due:")
	require.NotContains(t, got, "tags:")
}

func Test_UpdateTask_PreservesReferenceAndDateVariants(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\nproject: \"[[House Move]]\"\ndue: 2026-09-01\n---\n")

	// Touching an unrelated field leaves project and due lines verbatim.
	_, err := v.UpdateTask(loc, entity.NewTaskPatch().SetTitle("B"))
	require.NoError(t, err)

	got := readFile(t, loc)
	require.Contains(t, got, "project: \"[[House Move]]\"")
	require.Contains(t, got, "due: 2026-09-01")

	task, err := v.GetTask(loc)
	require.NoError(t, err)
	require.Equal(t, ref.StyleTitle, task.Project.Style())
	require.False(t, task.Due.HasTime())
}

func Test_CompleteTask_StampsCompletedOnce(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{ClearCompletedOnReopen: true})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\n---\n")

	task, err := v.CompleteTask(loc)
	require.NoError(t, err)
	require.Equal(t, entity.TaskDone, task.Status)
	require.False(t, task.Completed.IsZero())
	first := task.Completed

	// Moving between terminal statuses keeps the original stamp.
	task, err = v.DropTask(loc)
	require.NoError(t, err)
	require.Equal(t, first, task.Completed)
}

func Test_ReopenTask_ClearsCompleted_When_Configured(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{ClearCompletedOnReopen: true})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: done\ncompleted: 2026-08-01T12:00\n---\n")

	task, err := v.ReopenTask(loc)
	require.NoError(t, err)
	require.Equal(t, entity.TaskReady, task.Status)
	require.True(t, task.Completed.IsZero())
	require.NotContains(t, readFile(t, loc), "completed:")
}

func Test_ReopenTask_KeepsCompleted_When_NotConfigured(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{ClearCompletedOnReopen: false})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: done\ncompleted: 2026-08-01T12:00\n---\n")

	task, err := v.ReopenTask(loc)
	require.NoError(t, err)
	require.Equal(t, "2026-08-01T12:00", task.Completed.String())
}

func Test_ArchiveTask_MovesFileWithoutRewriting(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	content := "---\ntitle: A\nstatus: done\nx_keep: yes\n---\nbody\n"
	writeFile(t, loc, content)

	task, err := v.ArchiveTask(loc)
	require.NoError(t, err)
	require.True(t, v.IsArchivedLocation(task.Location))
	require.Equal(t, content, readFile(t, task.Location))
	require.NoFileExists(t, loc)

	_, err = v.ArchiveTask(task.Location)
	requireCode(t, err, clierr.AlreadyArchived)

	back, err := v.UnarchiveTask(task.Location)
	require.NoError(t, err)
	require.Equal(t, loc, back.Location)

	_, err = v.UnarchiveTask(loc)
	requireCode(t, err, clierr.NotArchived)
}

func Test_ArchiveTask_Fails_When_ArchiveHasSameFilename(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: done\n---\n")
	writeFile(t, filepath.Join(v.Paths().TasksArchive, "a.md"), "---\ntitle: Older A\nstatus: done\n---\n")

	_, err := v.ArchiveTask(loc)
	requireCode(t, err, clierr.LocationCollision)
	require.FileExists(t, loc)
}

func Test_ListTasks_ExcludesArchived_Unless_Opted(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Tasks, "active.md"), "---\ntitle: Active\nstatus: ready\n---\n")
	writeFile(t, filepath.Join(v.Paths().TasksArchive, "old.md"), "---\ntitle: Old\nstatus: done\n---\n")

	tasks, err := v.ListTasks(query.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Active", tasks[0].Title)

	tasks, err = v.ListTasks(query.TaskFilter{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func Test_ArchiveProject_FlipsStatusInPlace(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Projects, "move.md")
	writeFile(t, loc, "---\ntitle: House Move\nstatus: done\n---\n")

	p, err := v.ArchiveProject(loc)
	require.NoError(t, err)
	require.Equal(t, entity.ProjectArchived, p.Status)
	require.Equal(t, loc, p.Location)

	_, err = v.ArchiveProject(loc)
	requireCode(t, err, clierr.AlreadyArchived)

	p, err = v.UnarchiveProject(loc)
	require.NoError(t, err)
	require.Equal(t, entity.ProjectPlanned, p.Status)
}

func Test_ArchiveArea_FlipsStatusInPlace(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Areas, "health.md")
	writeFile(t, loc, "---\ntitle: Health\nstatus: active\n---\n")

	a, err := v.ArchiveArea(loc)
	require.NoError(t, err)
	require.Equal(t, entity.AreaArchived, a.Status)

	_, err = v.UnarchiveArea(loc)
	require.NoError(t, err)

	_, err = v.UnarchiveArea(loc)
	requireCode(t, err, clierr.NotArchived)
}

func Test_ListTasks_SkipsMalformedFiles(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Tasks, "good.md"), "---\ntitle: Good\nstatus: ready\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "bad.md"), "---\ntitle: Bad\nstatus: bogus\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "notes.txt"), "not markdown")

	tasks, err := v.ListTasks(query.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Good", tasks[0].Title)
}

func Test_ListTasksStrict_SurfacesEveryOutcome(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Tasks, "good.md"), "---\ntitle: Good\nstatus: ready\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "bad.md"), "---\ntitle: Bad\n---\n")

	outcomes, err := v.ListTasksStrict(query.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byBase := map[string]vault.Outcome[*entity.Task]{}
	for _, o := range outcomes {
		byBase[filepath.Base(o.Location)] = o
	}
	require.NoError(t, byBase["good.md"].Err)
	requireCode(t, byBase["bad.md"].Err, clierr.MissingField)
}

func Test_ListTasks_DiscriminatorOptsInPerDirectory(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Tasks, "real.md"), "---\nkind: task\ntitle: Real\nstatus: ready\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "note.md"), "---\ntitle: Just a note\nstatus: ready\n---\n")

	tasks, err := v.ListTasks(query.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Real", tasks[0].Title)
}

func Test_ListTasks_NoDiscriminatorKeepsEverything(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Tasks, "a.md"), "---\ntitle: A\nstatus: ready\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "b.md"), "---\ntitle: B\nstatus: done\n---\n")

	tasks, err := v.ListTasks(query.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func Test_Resolve_ByTitle_MatchesCaseInsensitively(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Projects, "move.md")
	writeFile(t, loc, "---\ntitle: House Move\nstatus: active\n---\n")

	got, err := v.ResolveProject(ref.ByTitle("house move"))
	require.NoError(t, err)
	require.Equal(t, loc, got)
}

func Test_Resolve_Fails_When_BrokenOrAmbiguous(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Projects, "a.md"), "---\ntitle: Twin\nstatus: active\n---\n")
	writeFile(t, filepath.Join(v.Paths().Projects, "b.md"), "---\ntitle: Twin\nstatus: planned\n---\n")

	_, err := v.ResolveProject(ref.ByTitle("Nobody"))
	requireCode(t, err, clierr.BrokenReference)

	_, err = v.ResolveProject(ref.ByTitle("Twin"))
	requireCode(t, err, clierr.AmbiguousReference)
}

func Test_Resolve_PathAndFilenameStyles(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Projects, "move.md")
	writeFile(t, loc, "---\ntitle: House Move\nstatus: active\n---\n")

	got, err := v.Resolve(entity.KindProject, ref.ByPath("projects/move.md"))
	require.NoError(t, err)
	require.Equal(t, loc, got)

	got, err = v.Resolve(entity.KindProject, ref.ByFilename("move.md"))
	require.NoError(t, err)
	require.Equal(t, loc, got)

	_, err = v.Resolve(entity.KindProject, ref.ByFilename("missing.md"))
	requireCode(t, err, clierr.BrokenReference)
}

func Test_Resolve_FindsArchivedTasksByFilename(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().TasksArchive, "old.md")
	writeFile(t, loc, "---\ntitle: Old\nstatus: done\n---\n")

	got, err := v.Resolve(entity.KindTask, ref.ByFilename("old.md"))
	require.NoError(t, err)
	require.Equal(t, loc, got)

	got, err = v.Resolve(entity.KindTask, ref.ByTitle("Old"))
	require.NoError(t, err)
	require.Equal(t, loc, got)
}

func Test_UpdateTask_VerifiesReferences_When_Enabled(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{ReferentialChecks: true})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\n---\n")

	_, err := v.UpdateTask(loc, entity.NewTaskPatch().SetProject(ref.ByTitle("Nope")))
	requireCode(t, err, clierr.BrokenReference)

	writeFile(t, filepath.Join(v.Paths().Projects, "move.md"), "---\ntitle: Move\nstatus: active\n---\n")
	task, err := v.UpdateTask(loc, entity.NewTaskPatch().SetProject(ref.ByTitle("Move")))
	require.NoError(t, err)
	require.Equal(t, "Move", task.Project.Target())
}

func Test_UpdateTasksWhere_AppliesPatchToMatches(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Tasks, "a.md"), "---\ntitle: A\nstatus: ready\ntags: [x]\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "b.md"), "---\ntitle: B\nstatus: ready\ntags: [x]\n---\n")
	writeFile(t, filepath.Join(v.Paths().Tasks, "c.md"), "---\ntitle: C\nstatus: ready\n---\n")

	outcomes, err := v.UpdateTasksWhere(
		query.TaskFilter{Tags: []string{"x"}},
		entity.NewTaskPatch().SetStatus(entity.TaskBlocked),
	)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
	}

	blocked, err := v.CountTasks(query.TaskFilter{Statuses: []entity.TaskStatus{entity.TaskBlocked}})
	require.NoError(t, err)
	require.Equal(t, 2, blocked)

	c, err := v.GetTask(filepath.Join(v.Paths().Tasks, "c.md"))
	require.NoError(t, err)
	require.Equal(t, entity.TaskReady, c.Status)
}

func Test_DeleteTask_RemovesFile(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\n---\n")

	require.NoError(t, v.DeleteTask(loc))
	require.NoFileExists(t, loc)

	err := v.DeleteTask(loc)
	requireCode(t, err, clierr.NotFound)
}

func Test_KindOf_ClassifiesManagedPaths(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	paths := v.Paths()

	kind, ok := v.KindOf(filepath.Join(paths.Tasks, "a.md"))
	require.True(t, ok)
	require.Equal(t, entity.KindTask, kind)

	kind, ok = v.KindOf(filepath.Join(paths.TasksArchive, "a.md"))
	require.True(t, ok)
	require.Equal(t, entity.KindTask, kind)

	kind, ok = v.KindOf(filepath.Join(paths.Projects, "p.md"))
	require.True(t, ok)
	require.Equal(t, entity.KindProject, kind)

	_, ok = v.KindOf(filepath.Join(paths.Root, "stray.md"))
	require.False(t, ok)

	_, ok = v.KindOf(filepath.Join(paths.Tasks, "notes.txt"))
	require.False(t, ok)
}

func Test_Slug_NormalizesTitles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, out string
	}{
		{"Fix the Gutter!", "fix-the-gutter"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"Ünïcode is stripped", "n-code-is-stripped"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.out, vault.Slug(tc.in), "input %q", tc.in)
	}
}

func Test_GetTask_RoundTripsCreatedFields(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, vault.Options{})
	writeFile(t, filepath.Join(v.Paths().Projects, "move.md"), "---\ntitle: House Move\nstatus: active\n---\n")

	created, err := v.CreateTask(&entity.Task{
		Title:   "Pack the kitchen",
		Status:  entity.TaskInProgress,
		Project: ref.ByTitle("House Move"),
		Due:     dateval.Date(2026, 9, 1),
		Tags:    []string{"packing", "weekend"},
		Body:    "Label every box.",
	}, vault.CreateOptions{})
	require.NoError(t, err)

	got, err := v.GetTask(created.Location)
	require.NoError(t, err)

	byString := cmp.Comparer(func(a, b fmt.Stringer) bool { return a.String() == b.String() })
	if diff := cmp.Diff(created, got,
		cmpopts.IgnoreFields(entity.Task{}, "Extras"),
		cmp.FilterValues(func(a, b any) bool {
			_, aok := a.(fmt.Stringer)
			_, bok := b.(fmt.Stringer)
			return aok && bok
		}, byString),
	); diff != "" {
		t.Fatalf("re-read task differs (-created +got):\n%s", diff)
	}
	require.Equal(t, "\nLabel every box.\n", got.Body)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	cliErr := &clierr.Error{}
	require.ErrorAs(t, err, &cliErr)
	require.Equal(t, code, cliErr.Code)
}
