package events_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/events"
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

func Test_Classify_ReadsEntity_When_FileChanged(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	loc := filepath.Join(v.Paths().Tasks, "a.md")
	require.NoError(t, os.WriteFile(loc, []byte("---\ntitle: A\nstatus: ready\n---\n"), 0o600))

	c := events.NewClassifier(v)

	ev, err := c.Classify(loc, events.ChangeModified)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, events.ChangeModified, ev.Change)
	require.Equal(t, entity.KindTask, ev.Kind)
	require.NotNil(t, ev.Task)
	require.Equal(t, "A", ev.Task.Title)
	require.Nil(t, ev.Project)
}

func Test_Classify_ClassifiesByDirectory(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	ploc := filepath.Join(v.Paths().Projects, "p.md")
	require.NoError(t, os.WriteFile(ploc, []byte("---\ntitle: P\nstatus: active\n---\n"), 0o600))
	aloc := filepath.Join(v.Paths().Areas, "a.md")
	require.NoError(t, os.WriteFile(aloc, []byte("---\ntitle: Area\nstatus: active\n---\n"), 0o600))

	c := events.NewClassifier(v)

	ev, err := c.Classify(ploc, events.ChangeCreated)
	require.NoError(t, err)
	require.Equal(t, entity.KindProject, ev.Kind)
	require.NotNil(t, ev.Project)

	ev, err = c.Classify(aloc, events.ChangeCreated)
	require.NoError(t, err)
	require.Equal(t, entity.KindArea, ev.Kind)
	require.NotNil(t, ev.Area)
}

func Test_Classify_DeletionsCarryNoEntity(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	loc := filepath.Join(v.Paths().Tasks, "gone.md")

	ev, err := events.NewClassifier(v).Classify(loc, events.ChangeDeleted)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, events.ChangeDeleted, ev.Change)
	require.Equal(t, entity.KindTask, ev.Kind)
	require.Nil(t, ev.Task)
}

func Test_Classify_IgnoresUnmanagedPaths(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	c := events.NewClassifier(v)

	for _, path := range []string{
		filepath.Join(v.Paths().Root, "stray.md"),
		filepath.Join(v.Paths().Tasks, "notes.txt"),
		filepath.Join(v.Paths().Root, "tend.yml"),
	} {
		ev, err := c.Classify(path, events.ChangeModified)
		require.NoError(t, err, "path %s", path)
		require.Nil(t, ev, "path %s", path)
	}
}

func Test_Classify_SurfacesParseError(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	loc := filepath.Join(v.Paths().Tasks, "bad.md")
	require.NoError(t, os.WriteFile(loc, []byte("---\nstatus: ready\n---\n"), 0o600))

	_, err := events.NewClassifier(v).Classify(loc, events.ChangeModified)
	require.Error(t, err)
}
