package restapi

import (
	"context"
	"net/http"

	"github.com/trezcool/masomo-dashboard/core/summary"
)

type StatsRepository struct {
	c *Client
}

var _ summary.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(c *Client) *StatsRepository {
	return &StatsRepository{c: c}
}

func (r *StatsRepository) GetStats(ctx context.Context) (summary.Stats, error) {
	var stats summary.Stats
	err := r.c.do(ctx, request{method: http.MethodGet, route: "/admin/stats", path: "/admin/stats"}, &stats)
	return stats, err
}
