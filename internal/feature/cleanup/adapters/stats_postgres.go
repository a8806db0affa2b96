package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"expense_tracker/internal/feature/cleanup/usecase"
)

type statsPostgres struct {
	db     *gorm.DB
	tables map[string]any
}

var _ usecase.StatsRepository = (*statsPostgres)(nil)

// NewStatsPostgres counts rows of each model in tables, reported under its key.
func NewStatsPostgres(db *gorm.DB, tables map[string]any) *statsPostgres {
	return &statsPostgres{db: db, tables: tables}
}

func (r *statsPostgres) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(r.tables))
	for name, model := range r.tables {
		var n int64
		if err := r.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}
