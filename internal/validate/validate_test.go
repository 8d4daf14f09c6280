package validate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/validate"
	"github.com/fernwood-software/tend/internal/vault"
)

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()

	root := t.TempDir()
	paths := vault.DefaultPaths(root)
	for _, dir := range []string{paths.TasksArchive, paths.Projects, paths.Areas} {
		require.NoError(t, os.MkdirAll(dir, 0o750))
	}
	return vault.New(paths, vault.Options{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func Test_File_ReportsNoIssues_When_FileWellFormed(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	writeFile(t, filepath.Join(v.Paths().Projects, "move.md"), "---\ntitle: Move\nstatus: active\n---\n")
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\nproject: \"[[Move]]\"\ndue: 2099-01-01\n---\n")

	issues, err := validate.New(v).File(loc)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func Test_File_ReportsEveryFieldProblem(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	loc := filepath.Join(v.Paths().Tasks, "broken.md")
	writeFile(t, loc, "---\nstatus: doing\ndue: someday\n---\n")

	issues, err := validate.New(v).File(loc)
	require.NoError(t, err)

	codes := issueCodes(issues)
	require.Contains(t, codes, clierr.MissingField)
	require.Contains(t, codes, clierr.InvalidStatus)
	require.Contains(t, codes, clierr.InvalidDate)
}

func Test_File_ReportsParseError_When_FrontmatterBroken(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	loc := filepath.Join(v.Paths().Tasks, "broken.md")
	writeFile(t, loc, "---\ntitle: never closed\n")

	issues, err := validate.New(v).File(loc)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, clierr.ParseError, issues[0].Code)
	require.Equal(t, validate.SeverityError, issues[0].Severity)
}

func Test_File_ReportsBrokenAndAmbiguousReferences(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	writeFile(t, filepath.Join(v.Paths().Projects, "a.md"), "---\ntitle: Twin\nstatus: active\n---\n")
	writeFile(t, filepath.Join(v.Paths().Projects, "b.md"), "---\ntitle: Twin\nstatus: active\n---\n")

	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\ntitle: A\nstatus: ready\nproject: \"[[Nobody]]\"\narea: \"[[Twin]]\"\n---\n")

	issues, err := validate.New(v).File(loc)
	require.NoError(t, err)

	codes := issueCodes(issues)
	require.Contains(t, codes, clierr.BrokenReference)
	// The area reference points at two projects named Twin, but no area.
	require.Len(t, issues, 2)
}

func Test_File_WarnsOnPastDue_OnlyForOpenWork(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	open := filepath.Join(v.Paths().Tasks, "open.md")
	writeFile(t, open, "---\ntitle: Open\nstatus: ready\ndue: 2020-01-01\n---\n")
	done := filepath.Join(v.Paths().Tasks, "done.md")
	writeFile(t, done, "---\ntitle: Done\nstatus: done\ndue: 2020-01-01\n---\n")

	val := validate.New(v)

	issues, err := val.File(open)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, validate.CodePastDue, issues[0].Code)
	require.Equal(t, validate.SeverityWarning, issues[0].Severity)

	issues, err = val.File(done)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func Test_File_WarnsOnKindMismatch(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	writeFile(t, loc, "---\nkind: project\ntitle: A\nstatus: ready\n---\n")

	issues, err := validate.New(v).File(loc)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, validate.CodeKindMismatch, issues[0].Code)
	require.Equal(t, validate.SeverityWarning, issues[0].Severity)
}

func Test_File_Fails_When_PathNotManaged(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	_, err := validate.New(v).File(filepath.Join(v.Paths().Root, "stray.md"))
	require.Error(t, err)
}

func Test_All_WalksEveryManagedDirectory(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	writeFile(t, filepath.Join(v.Paths().Tasks, "ok.md"), "---\ntitle: OK\nstatus: ready\n---\n")
	writeFile(t, filepath.Join(v.Paths().TasksArchive, "bad.md"), "---\ntitle: Bad\nstatus: bogus\n---\n")
	writeFile(t, filepath.Join(v.Paths().Projects, "p.md"), "---\ntitle: P\nstatus: paused\n---\n")
	writeFile(t, filepath.Join(v.Paths().Areas, "a.md"), "---\nstatus: active\n---\n")

	issues, err := validate.New(v).All()
	require.NoError(t, err)

	codes := issueCodes(issues)
	require.Len(t, issues, 3)
	require.Contains(t, codes, clierr.InvalidStatus)
	require.Contains(t, codes, clierr.MissingField)
}

func issueCodes(issues []validate.Issue) []string {
	codes := make([]string, len(issues))
	for i, issue := range issues {
		codes[i] = issue.Code
	}
	return codes
}
