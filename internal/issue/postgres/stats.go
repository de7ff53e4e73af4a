package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/campus-fixit/internal/category"
	"github.com/frahmantamala/campus-fixit/internal/issue"
)

// StatsRepository answers the admin summary with plain SQL.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type bucket struct {
	Name  string `db:"name"`
	Count int64  `db:"n"`
}

const (
	countByStatusQuery   = `SELECT status AS name, COUNT(*) AS n FROM issues GROUP BY status`
	countByCategoryQuery = `SELECT category AS name, COUNT(*) AS n FROM issues GROUP BY category`
)

func (r *StatsRepository) Stats(ctx context.Context) (*issue.StatsV1, error) {
	out := &issue.StatsV1{
		ByStatus:   make(map[string]int64, len(issue.Statuses)),
		ByCategory: make(map[string]int64, len(category.All)),
	}
	for _, s := range issue.Statuses {
		out.ByStatus[string(s)] = 0
	}
	for _, c := range category.All {
		out.ByCategory[string(c)] = 0
	}

	var byStatus []bucket
	if err := r.db.SelectContext(ctx, &byStatus, countByStatusQuery); err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		out.ByStatus[b.Name] = b.Count
		out.Total += b.Count
	}

	var byCategory []bucket
	if err := r.db.SelectContext(ctx, &byCategory, countByCategoryQuery); err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		out.ByCategory[b.Name] = b.Count
	}

	return out, nil
}
