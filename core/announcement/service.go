package announcement

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/masomo-dashboard/core/crud"
)

type (
	// Repository mutations require a logged in user.
	Repository interface {
		crud.Backend[Announcement, *Draft]
	}

	Editor = crud.Editor[Announcement, *Draft]

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewEditor returns a fresh announcement editor. Call Mount before use.
func (svc *Service) NewEditor(deps crud.Deps) *Editor {
	return crud.NewEditor(crud.Options[Announcement, *Draft]{
		Noun:     "announcement",
		Backend:  svc.repo,
		ToDraft:  ToDraft,
		NewDraft: NewDraft,
		Deps:     deps,
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Announcement, error) {
	return svc.repo.List(ctx)
}

// Visible keeps the announcements audience may see at now, in their original order.
func Visible(anns []Announcement, audience string, now time.Time) []Announcement {
	out := make([]Announcement, 0, len(anns))
	for _, a := range anns {
		if a.VisibleTo(audience) && !a.Expired(now) {
			out = append(out, a)
		}
	}
	return out
}

// Recent returns at most n announcements, newest first.
func Recent(anns []Announcement, n int) []Announcement {
	out := make([]Announcement, len(anns))
	copy(out, anns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
