package vault

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/query"
)

// Outcome is one file's result from a strict listing: either a parsed
// entity or the specific error that kept it out.
type Outcome[T any] struct {
	Location string
	Entity   T
	Err      error
}

// ListTasks enumerates, parses, and filters tasks. Lenient: unparseable
// files are skipped. Archived tasks are excluded unless the filter opts in.
func (v *Vault) ListTasks(f query.TaskFilter) ([]*entity.Task, error) {
	outcomes, err := v.scanTasks(f.IncludeArchived)
	if err != nil {
		return nil, err
	}
	var tasks []*entity.Task
	for _, o := range applyDiscriminator(outcomes, entity.KindTask) {
		if o.Err != nil {
			continue
		}
		if f.Match(o.Entity) {
			tasks = append(tasks, o.Entity)
		}
	}
	return tasks, nil
}

// ListTasksStrict is like ListTasks but returns every file's outcome:
// entities that pass the filter plus one entry per failed file.
func (v *Vault) ListTasksStrict(f query.TaskFilter) ([]Outcome[*entity.Task], error) {
	outcomes, err := v.scanTasks(f.IncludeArchived)
	if err != nil {
		return nil, err
	}
	var out []Outcome[*entity.Task]
	for _, o := range applyDiscriminator(outcomes, entity.KindTask) {
		if o.Err != nil || f.Match(o.Entity) {
			out = append(out, o)
		}
	}
	return out, nil
}

// CountTasks returns the number of tasks matching the filter.
func (v *Vault) CountTasks(f query.TaskFilter) (int, error) {
	tasks, err := v.ListTasks(f)
	return len(tasks), err
}

// ListProjects enumerates, parses, and filters projects. Lenient.
func (v *Vault) ListProjects(f query.ProjectFilter) ([]*entity.Project, error) {
	outcomes, err := v.scanProjects()
	if err != nil {
		return nil, err
	}
	var projects []*entity.Project
	for _, o := range applyDiscriminator(outcomes, entity.KindProject) {
		if o.Err != nil {
			continue
		}
		if f.Match(o.Entity) {
			projects = append(projects, o.Entity)
		}
	}
	return projects, nil
}

// ListProjectsStrict returns every project file's outcome.
func (v *Vault) ListProjectsStrict(f query.ProjectFilter) ([]Outcome[*entity.Project], error) {
	outcomes, err := v.scanProjects()
	if err != nil {
		return nil, err
	}
	var out []Outcome[*entity.Project]
	for _, o := range applyDiscriminator(outcomes, entity.KindProject) {
		if o.Err != nil || f.Match(o.Entity) {
			out = append(out, o)
		}
	}
	return out, nil
}

// CountProjects returns the number of projects matching the filter.
func (v *Vault) CountProjects(f query.ProjectFilter) (int, error) {
	projects, err := v.ListProjects(f)
	return len(projects), err
}

// ListAreas enumerates, parses, and filters areas. Lenient.
func (v *Vault) ListAreas(f query.AreaFilter) ([]*entity.Area, error) {
	outcomes, err := v.scanAreas()
	if err != nil {
		return nil, err
	}
	var areas []*entity.Area
	for _, o := range applyDiscriminator(outcomes, entity.KindArea) {
		if o.Err != nil {
			continue
		}
		if f.Match(o.Entity) {
			areas = append(areas, o.Entity)
		}
	}
	return areas, nil
}

// ListAreasStrict returns every area file's outcome.
func (v *Vault) ListAreasStrict(f query.AreaFilter) ([]Outcome[*entity.Area], error) {
	outcomes, err := v.scanAreas()
	if err != nil {
		return nil, err
	}
	var out []Outcome[*entity.Area]
	for _, o := range applyDiscriminator(outcomes, entity.KindArea) {
		if o.Err != nil || f.Match(o.Entity) {
			out = append(out, o)
		}
	}
	return out, nil
}

// CountAreas returns the number of areas matching the filter.
func (v *Vault) CountAreas(f query.AreaFilter) (int, error) {
	areas, err := v.ListAreas(f)
	return len(areas), err
}

func (v *Vault) scanTasks(includeArchived bool) ([]Outcome[*entity.Task], error) {
	dirs := []string{v.paths.Tasks}
	if includeArchived {
		dirs = append(dirs, v.paths.TasksArchive)
	}
	paths, err := listMarkdownFiles(dirs)
	if err != nil {
		return nil, err
	}
	return parseAll(paths, v.workers(len(paths)), func(path string) (*entity.Task, error) {
		data, err := v.readFile(path)
		if err != nil {
			return nil, err
		}
		t, err := entity.ParseTask(data)
		if err != nil {
			return nil, err
		}
		t.Location = path
		return t, nil
	}), nil
}

func (v *Vault) scanProjects() ([]Outcome[*entity.Project], error) {
	paths, err := listMarkdownFiles([]string{v.paths.Projects})
	if err != nil {
		return nil, err
	}
	return parseAll(paths, v.workers(len(paths)), func(path string) (*entity.Project, error) {
		data, err := v.readFile(path)
		if err != nil {
			return nil, err
		}
		p, err := entity.ParseProject(data)
		if err != nil {
			return nil, err
		}
		p.Location = path
		return p, nil
	}), nil
}

func (v *Vault) scanAreas() ([]Outcome[*entity.Area], error) {
	paths, err := listMarkdownFiles([]string{v.paths.Areas})
	if err != nil {
		return nil, err
	}
	return parseAll(paths, v.workers(len(paths)), func(path string) (*entity.Area, error) {
		data, err := v.readFile(path)
		if err != nil {
			return nil, err
		}
		a, err := entity.ParseArea(data)
		if err != nil {
			return nil, err
		}
		a.Location = path
		return a, nil
	}), nil
}

// listMarkdownFiles enumerates .md files directly inside each directory.
// Missing directories contribute nothing. Results are sorted for
// deterministic listings.
func listMarkdownFiles(dirs []string) ([]string, error) {
	var paths []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// parseAll fans file parsing out across a bounded worker pool. Each file is
// parsed independently into its own slot, so no locking is needed.
func parseAll[T any](paths []string, workers int, parse func(string) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(paths))
	if len(paths) == 0 {
		return outcomes
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				e, err := parse(paths[i])
				outcomes[i] = Outcome[T]{Location: paths[i], Entity: e, Err: err}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (v *Vault) workers(jobs int) int {
	workers := v.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	if jobs > 0 && workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// hasDiscriminator is satisfied by the three entity kinds.
type hasDiscriminator interface {
	*entity.Task | *entity.Project | *entity.Area
}

// applyDiscriminator implements the opt-in listing rule: if any well-formed
// file in the scan carries the type-discriminator key, only files carrying
// it for the wanted kind remain; otherwise every file is kept. Failed
// outcomes always pass through so strict mode can surface them.
func applyDiscriminator[T hasDiscriminator](outcomes []Outcome[T], kind entity.Kind) []Outcome[T] {
	optIn := false
	for _, o := range outcomes {
		if o.Err == nil && discriminatorOf(o.Entity) != "" {
			optIn = true
			break
		}
	}
	if !optIn {
		return outcomes
	}

	var kept []Outcome[T]
	for _, o := range outcomes {
		if o.Err != nil || discriminatorOf(o.Entity) == string(kind) {
			kept = append(kept, o)
		}
	}
	return kept
}

func discriminatorOf[T hasDiscriminator](e T) string {
	switch typed := any(e).(type) {
	case *entity.Task:
		return typed.Discriminator
	case *entity.Project:
		return typed.Discriminator
	case *entity.Area:
		return typed.Discriminator
	}
	return ""
}
