package restapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo-dashboard/core/course"
)

type CourseRepository struct {
	c *Client
}

var (
	_ course.Repository          = (*CourseRepository)(nil)
	_ course.ReferenceRepository = (*CourseRepository)(nil)
)

// NewCourseRepository returns the course repository, which also serves the lecturer and
// department reference lists.
func NewCourseRepository(c *Client) *CourseRepository {
	return &CourseRepository{c: c}
}

func (r *CourseRepository) List(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := r.c.do(ctx, request{method: http.MethodGet, route: "/courses", path: "/courses"}, &courses)
	return courses, err
}

func (r *CourseRepository) Create(ctx context.Context, draft *course.Draft) (course.Course, error) {
	var crs course.Course
	payload, err := draft.Payload()
	if err != nil {
		return crs, err
	}
	err = r.c.do(ctx, request{
		method: http.MethodPost,
		route:  "/courses",
		path:   "/courses",
		body:   payload,
	}, &crs)
	return crs, err
}

func (r *CourseRepository) Update(ctx context.Context, id string, draft *course.Draft) (course.Course, error) {
	var crs course.Course
	payload, err := draft.Payload()
	if err != nil {
		return crs, err
	}
	err = r.c.do(ctx, request{
		method: http.MethodPut,
		route:  "/courses/:id",
		path:   "/courses/" + url.PathEscape(id),
		body:   payload,
	}, &crs)
	return crs, err
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/courses/:id",
		path:   "/courses/" + url.PathEscape(id),
	}, nil)
}

func (r *CourseRepository) ListLecturers(ctx context.Context) ([]course.Lecturer, error) {
	lecturers := make([]course.Lecturer, 0)
	err := r.c.do(ctx, request{method: http.MethodGet, route: "/lecturers", path: "/lecturers"}, &lecturers)
	return lecturers, err
}

func (r *CourseRepository) ListDepartments(ctx context.Context) ([]course.Department, error) {
	departments := make([]course.Department, 0)
	err := r.c.do(ctx, request{method: http.MethodGet, route: "/departments", path: "/departments"}, &departments)
	return departments, err
}
