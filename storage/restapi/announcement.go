package restapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo-dashboard/core/announcement"
)

// AnnouncementRepository attaches the bearer token to mutations only.
type AnnouncementRepository struct {
	c *Client
}

var _ announcement.Repository = (*AnnouncementRepository)(nil)

func NewAnnouncementRepository(c *Client) *AnnouncementRepository {
	return &AnnouncementRepository{c: c}
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]announcement.Announcement, error) {
	anns := make([]announcement.Announcement, 0)
	err := r.c.do(ctx, request{method: http.MethodGet, route: "/announcements", path: "/announcements"}, &anns)
	return anns, err
}

func (r *AnnouncementRepository) Create(ctx context.Context, draft *announcement.Draft) (announcement.Announcement, error) {
	var ann announcement.Announcement
	err := r.c.do(ctx, request{
		method: http.MethodPost,
		route:  "/announcements",
		path:   "/announcements",
		auth:   true,
		body:   draft.Payload(),
	}, &ann)
	return ann, err
}

func (r *AnnouncementRepository) Update(ctx context.Context, id string, draft *announcement.Draft) (announcement.Announcement, error) {
	var ann announcement.Announcement
	err := r.c.do(ctx, request{
		method: http.MethodPut,
		route:  "/announcements/:id",
		path:   "/announcements/" + url.PathEscape(id),
		auth:   true,
		body:   draft.Payload(),
	}, &ann)
	return ann, err
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/announcements/:id",
		path:   "/announcements/" + url.PathEscape(id),
		auth:   true,
	}, nil)
}
