// Package summary assembles the read-only dashboard pages.
package summary

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

// RecentLimit is the number of announcements shown on the admin summary.
const RecentLimit = 5

type Stats struct {
	TotalUsers         int `json:"totalUsers" yaml:"totalUsers"`
	TotalDepartments   int `json:"totalDepartments" yaml:"totalDepartments"`
	TotalCourses       int `json:"totalCourses" yaml:"totalCourses"`
	TotalAnnouncements int `json:"totalAnnouncements" yaml:"totalAnnouncements"`
}

type (
	StatsRepository interface {
		GetStats(ctx context.Context) (Stats, error)
	}

	DepartmentLister interface {
		ListDepartments(ctx context.Context) ([]course.Department, error)
	}
)

type (
	Admin struct {
		Stats  Stats
		Recent []announcement.Announcement
	}

	Student struct {
		Filter        course.QueryFilter
		Courses       []course.Course
		Announcements []announcement.Announcement
		Departments   []course.Department
		Levels        []string
	}
)

type Service struct {
	stats         StatsRepository
	courses       crud.Lister[course.Course]
	announcements crud.Lister[announcement.Announcement]
	departments   DepartmentLister
	levels        []string
	now           func() time.Time
}

func NewService(
	stats StatsRepository,
	courses crud.Lister[course.Course],
	announcements crud.Lister[announcement.Announcement],
	departments DepartmentLister,
	levels []string,
) *Service {
	return &Service{
		stats:         stats,
		courses:       courses,
		announcements: announcements,
		departments:   departments,
		levels:        levels,
		now:           time.Now,
	}
}

// Admin loads the stats and the most recent announcements concurrently.
func (svc *Service) Admin(ctx context.Context) (Admin, error) {
	var res Admin

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := svc.stats.GetStats(ctx)
		if err != nil {
			return errors.Wrap(err, "loading stats")
		}
		res.Stats = stats
		return nil
	})
	g.Go(func() error {
		anns, err := svc.announcements.List(ctx)
		if err != nil {
			return errors.Wrap(err, "loading announcements")
		}
		res.Recent = announcement.Recent(anns, RecentLimit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Admin{}, err
	}
	return res, nil
}

// Student loads the courses matching filter, the departments and the announcements addressed
// to students that have not expired.
func (svc *Service) Student(ctx context.Context, filter course.QueryFilter) (Student, error) {
	res := Student{Filter: filter, Levels: svc.levels}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		courses, err := svc.courses.List(ctx)
		if err != nil {
			return errors.Wrap(err, "loading courses")
		}
		res.Courses = course.Filter(courses, filter)
		return nil
	})
	g.Go(func() error {
		anns, err := svc.announcements.List(ctx)
		if err != nil {
			return errors.Wrap(err, "loading announcements")
		}
		res.Announcements = announcement.Visible(anns, announcement.AudienceStudents, svc.now())
		return nil
	})
	g.Go(func() error {
		departments, err := svc.departments.ListDepartments(ctx)
		if err != nil {
			return errors.Wrap(err, "loading departments")
		}
		res.Departments = departments
		return nil
	})
	if err := g.Wait(); err != nil {
		return Student{}, err
	}
	return res, nil
}
