package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/query"
	"github.com/fernwood-software/tend/internal/ref"
)

func sampleTask() *entity.Task {
	return &entity.Task{
		Title:   "Pack the kitchen",
		Status:  entity.TaskReady,
		Project: ref.ByTitle("House Move"),
		Area:    ref.ByFilename("home.md"),
		Due:     dateval.Date(2026, time.September, 1),
		Tags:    []string{"packing", "weekend"},
		Body:    "Label every box.",
	}
}

func Test_TaskFilter_EmptyFilterMatchesEverything(t *testing.T) {
	t.Parallel()

	require.True(t, query.TaskFilter{}.Match(sampleTask()))
	require.True(t, query.TaskFilter{}.Match(&entity.Task{Title: "Bare", Status: entity.TaskDone}))
}

func Test_TaskFilter_FieldsCombineWithAnd(t *testing.T) {
	t.Parallel()

	task := sampleTask()

	match := query.TaskFilter{
		Statuses: []entity.TaskStatus{entity.TaskReady},
		Tags:     []string{"weekend"},
		Project:  "House Move",
	}
	require.True(t, match.Match(task))

	// One failing constraint excludes the record.
	miss := match
	miss.Project = "Garden"
	require.False(t, miss.Match(task))
}

func Test_TaskFilter_StatusSetCombinesWithOr(t *testing.T) {
	t.Parallel()

	task := sampleTask()
	f := query.TaskFilter{Statuses: []entity.TaskStatus{entity.TaskDone, entity.TaskReady}}
	require.True(t, f.Match(task))

	f.Statuses = []entity.TaskStatus{entity.TaskDone, entity.TaskDropped}
	require.False(t, f.Match(task))
}

func Test_TaskFilter_TagsMatchCaseInsensitively(t *testing.T) {
	t.Parallel()

	task := sampleTask()
	require.True(t, query.TaskFilter{Tags: []string{"WEEKEND"}}.Match(task))
	require.True(t, query.TaskFilter{Project: "house move"}.Match(task))
}

func Test_TaskFilter_HasProjectDistinguishesPresence(t *testing.T) {
	t.Parallel()

	with := sampleTask()
	without := &entity.Task{Title: "Loose end", Status: entity.TaskReady}

	yes, no := true, false
	require.True(t, query.TaskFilter{HasProject: &yes}.Match(with))
	require.False(t, query.TaskFilter{HasProject: &yes}.Match(without))
	require.True(t, query.TaskFilter{HasProject: &no}.Match(without))
	require.False(t, query.TaskFilter{HasProject: &no}.Match(with))
}

func Test_TaskFilter_DueBoundsAreStrict_AndDateOnly(t *testing.T) {
	t.Parallel()

	task := sampleTask() // due 2026-09-01

	sameDay := dateval.Date(2026, time.September, 1)
	after := dateval.Date(2026, time.September, 2)
	before := dateval.Date(2026, time.August, 31)

	require.False(t, query.TaskFilter{DueBefore: &sameDay}.Match(task))
	require.True(t, query.TaskFilter{DueBefore: &after}.Match(task))
	require.False(t, query.TaskFilter{DueAfter: &sameDay}.Match(task))
	require.True(t, query.TaskFilter{DueAfter: &before}.Match(task))

	// A datetime bound on the same day compares equal by date component.
	sameDayEvening, err := dateval.Parse("2026-09-01T23:00")
	require.NoError(t, err)
	require.False(t, query.TaskFilter{DueBefore: &sameDayEvening}.Match(task))

	// Absent due date fails any set bound.
	noDue := &entity.Task{Title: "X", Status: entity.TaskReady}
	require.False(t, query.TaskFilter{DueBefore: &after}.Match(noDue))
	require.False(t, query.TaskFilter{DueAfter: &before}.Match(noDue))
}

func Test_TaskFilter_SearchCoversTitleBodyTags(t *testing.T) {
	t.Parallel()

	task := sampleTask()
	require.True(t, query.TaskFilter{Search: "kitchen"}.Match(task))
	require.True(t, query.TaskFilter{Search: "LABEL"}.Match(task))
	require.True(t, query.TaskFilter{Search: "weekend"}.Match(task))
	require.False(t, query.TaskFilter{Search: "garage"}.Match(task))
}

func Test_ProjectFilter_MatchesStatusAreaAndDue(t *testing.T) {
	t.Parallel()

	p := &entity.Project{
		Title:  "House Move",
		Status: entity.ProjectActive,
		Area:   ref.ByTitle("Home"),
		Due:    dateval.Date(2026, time.October, 1),
		Tags:   []string{"big"},
	}

	require.True(t, query.ProjectFilter{
		Statuses: []entity.ProjectStatus{entity.ProjectActive},
		Area:     "home",
	}.Match(p))
	require.False(t, query.ProjectFilter{
		Statuses: []entity.ProjectStatus{entity.ProjectOnHold},
	}.Match(p))
}

func Test_AreaFilter_MatchesStatusTagsSearch(t *testing.T) {
	t.Parallel()

	a := &entity.Area{Title: "Health", Status: entity.AreaArchived, Tags: []string{"self"}}

	require.True(t, query.AreaFilter{Statuses: []entity.AreaStatus{entity.AreaArchived}}.Match(a))
	require.False(t, query.AreaFilter{Statuses: []entity.AreaStatus{entity.AreaActive}}.Match(a))
	require.True(t, query.AreaFilter{Search: "health"}.Match(a))
	require.True(t, query.AreaFilter{Tags: []string{"self"}}.Match(a))
}
