package entity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/entity"
)

func Test_ParseTask_MapsFrontmatterFields(t *testing.T) {
	t.Parallel()

	input := `---
title: Fix the gutter
status: ready
project: "[[House Move]]"
area: home.md
due: 2026-09-01
tags: [maintenance, outdoor]
created: 2026-08-01T09:00
updated: 2026-08-02T10:30
x_energy: low
---

Clean out leaves first.
`

	task, err := entity.ParseTask([]byte(input))
	require.NoError(t, err)

	require.Equal(t, "Fix the gutter", task.Title)
	require.Equal(t, entity.TaskReady, task.Status)
	require.Equal(t, "House Move", task.Project.Target())
	require.Equal(t, "home.md", task.Area.Target())
	require.Equal(t, "2026-09-01", task.Due.String())
	require.Equal(t, []string{"maintenance", "outdoor"}, task.Tags)
	require.Equal(t, "2026-08-01T09:00", task.Created.String())
	require.True(t, task.Completed.IsZero())
	require.Contains(t, task.Body, "Clean out leaves first.")

	require.Len(t, task.Extras, 1)
	require.Equal(t, "x_energy", task.Extras[0].Key)
}

func Test_ParseTask_Fails_When_RequiredFieldMissing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		code  string
	}{
		{"no title", "---\nstatus: ready\n---\n", clierr.MissingField},
		{"no status", "---\ntitle: A\n---\n", clierr.MissingField},
		{"no frontmatter", "just text\n", clierr.MissingField},
		{"bad status", "---\ntitle: A\nstatus: doing\n---\n", clierr.InvalidStatus},
		{"bad date", "---\ntitle: A\nstatus: ready\ndue: someday\n---\n", clierr.ParseError},
		{"unclosed block", "---\ntitle: A\n", clierr.ParseError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := entity.ParseTask([]byte(tc.input))
			require.Error(t, err)
			var cliErr *clierr.Error
			require.True(t, errors.As(err, &cliErr))
			require.Equal(t, tc.code, cliErr.Code)
		})
	}
}

func Test_ParseProject_ReadsArchivedStatus(t *testing.T) {
	t.Parallel()

	p, err := entity.ParseProject([]byte("---\ntitle: Old Plan\nstatus: archived\n---\n"))
	require.NoError(t, err)
	require.True(t, p.Archived())

	p, err = entity.ParseProject([]byte("---\ntitle: New Plan\nstatus: active\n---\n"))
	require.NoError(t, err)
	require.False(t, p.Archived())
}

func Test_ParseArea_ReadsStatus(t *testing.T) {
	t.Parallel()

	a, err := entity.ParseArea([]byte("---\ntitle: Health\nstatus: active\ntags: [self]\n---\nnotes\n"))
	require.NoError(t, err)
	require.Equal(t, "Health", a.Title)
	require.Equal(t, entity.AreaActive, a.Status)
	require.False(t, a.Archived())
}

func Test_StatusEnums_RejectUnknownValues(t *testing.T) {
	t.Parallel()

	_, err := entity.ParseTaskStatus("archived")
	require.Error(t, err)

	_, err = entity.ParseProjectStatus("ready")
	require.Error(t, err)

	_, err = entity.ParseAreaStatus("done")
	require.Error(t, err)

	s, err := entity.ParseProjectStatus("archived")
	require.NoError(t, err)
	require.Equal(t, entity.ProjectArchived, s)
}

func Test_Terminal_CoversDoneAndDropped(t *testing.T) {
	t.Parallel()

	require.True(t, entity.TaskDone.Terminal())
	require.True(t, entity.TaskDropped.Terminal())
	require.False(t, entity.TaskReady.Terminal())
	require.False(t, entity.TaskBlocked.Terminal())

	require.True(t, entity.ProjectDone.Terminal())
	require.True(t, entity.ProjectDropped.Terminal())
	require.False(t, entity.ProjectArchived.Terminal())
}

func Test_ParseTask_ReadsDiscriminator(t *testing.T) {
	t.Parallel()

	task, err := entity.ParseTask([]byte("---\nkind: task\ntitle: A\nstatus: ready\n---\n"))
	require.NoError(t, err)
	require.Equal(t, "task", task.Discriminator)

	task, err = entity.ParseTask([]byte("---\ntitle: A\nstatus: ready\n---\n"))
	require.NoError(t, err)
	require.Equal(t, "", task.Discriminator)
}
