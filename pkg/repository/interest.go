package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/regwatch/regwatch/pkg/domain"
)

// InterestRepository handles interest-signal database operations
type InterestRepository struct {
	db *sqlx.DB
}

// interestSQL represents an interest signal for SQL operations
type interestSQL struct {
	Keyword    string    `db:"keyword"`
	Weight     float64   `db:"weight"`
	LastActive time.Time `db:"last_active"`
	Origin     string    `db:"origin"`
}

// NewInterestRepository creates a new interest repository
func NewInterestRepository(database *sqlx.DB) *InterestRepository {
	return &InterestRepository{db: database}
}

// UpsertInterest accumulates weight onto a keyword, refreshing its activity
// timestamp. The origin of the most recent signal wins.
func (r *InterestRepository) UpsertInterest(ctx context.Context, keyword string, weight float64, origin domain.InterestOrigin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interests (keyword, weight, last_active, origin)
		VALUES (?, ?, datetime('now'), ?)
		ON CONFLICT(keyword) DO UPDATE SET
			weight = weight + excluded.weight,
			last_active = excluded.last_active,
			origin = excluded.origin
	`, keyword, weight, string(origin))
	if err != nil {
		return fmt.Errorf("upsert interest %q: %w", keyword, err)
	}
	return nil
}

// TopInterests returns the n heaviest interest signals, heaviest first
func (r *InterestRepository) TopInterests(ctx context.Context, n int) ([]domain.InterestSignal, error) {
	if n <= 0 {
		n = 5
	}

	var sqlInterests []interestSQL
	err := r.db.SelectContext(ctx, &sqlInterests,
		"SELECT * FROM interests ORDER BY weight DESC, last_active DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("top interests: %w", err)
	}

	interests := make([]domain.InterestSignal, len(sqlInterests))
	for i, s := range sqlInterests {
		interests[i] = domain.InterestSignal{
			Keyword:    s.Keyword,
			Weight:     s.Weight,
			LastActive: s.LastActive,
			Origin:     domain.InterestOrigin(s.Origin),
		}
	}
	return interests, nil
}
