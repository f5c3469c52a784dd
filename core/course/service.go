package course

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

type (
	Repository interface {
		crud.Backend[Course, *Draft]
	}

	ReferenceRepository interface {
		ListLecturers(ctx context.Context) ([]Lecturer, error)
		ListDepartments(ctx context.Context) ([]Department, error)
	}

	Editor = crud.Editor[Course, *Draft]

	Service struct {
		repo   Repository
		refs   ReferenceRepository
		levels []string
	}
)

func NewService(repo Repository, refs ReferenceRepository, levels []string) *Service {
	return &Service{repo: repo, refs: refs, levels: levels}
}

// NewEditor returns a fresh course editor. Call Mount before use.
func (svc *Service) NewEditor(deps crud.Deps) *Editor {
	return crud.NewEditor(crud.Options[Course, *Draft]{
		Noun:     "course",
		Backend:  svc.repo,
		ToDraft:  ToDraft,
		NewDraft: NewDraft,
		Deps:     deps,
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.List(ctx)
}

// FormOptions loads the lecturers and departments concurrently.
func (svc *Service) FormOptions(ctx context.Context) (FormOptions, error) {
	opts := FormOptions{Levels: svc.levels, Semesters: Semesters}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lecturers, err := svc.refs.ListLecturers(ctx)
		if err != nil {
			return errors.Wrap(err, "loading lecturers")
		}
		opts.Lecturers = lecturers
		return nil
	})
	g.Go(func() error {
		departments, err := svc.refs.ListDepartments(ctx)
		if err != nil {
			return errors.Wrap(err, "loading departments")
		}
		opts.Departments = departments
		return nil
	})
	if err := g.Wait(); err != nil {
		return FormOptions{Levels: svc.levels, Semesters: Semesters}, err
	}

	sort.SliceStable(opts.Lecturers, func(i, j int) bool { return opts.Lecturers[i].Name < opts.Lecturers[j].Name })
	sort.SliceStable(opts.Departments, func(i, j int) bool { return opts.Departments[i].Name < opts.Departments[j].Name })
	return opts, nil
}

// Filter applies the AND of filter fields to courses, keeping their order.
// Search does a case-insensitive match on Title or Code.
func Filter(courses []Course, filter QueryFilter) []Course {
	search := core.CleanString(filter.Search, true /* lower */)
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if filter.Level != "" && c.Level.ID() != filter.Level {
			continue
		}
		if filter.Department != "" && c.Department.ID() != filter.Department {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Title), search) &&
			!strings.Contains(strings.ToLower(c.Code), search) {
			continue
		}
		out = append(out, c)
	}
	return out
}
