package dedup

import (
	"context"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/regwatch/regwatch/pkg/domain"
)

// DefaultThreshold is the title similarity ratio above which two stories
// are considered the same event
const DefaultThreshold = 0.65

// Store is the persistence surface the merge engine writes through
type Store interface {
	CreateRecord(ctx context.Context, rec *domain.Record) error
	// UpdateImpactAuto changes the impact of a record unless it is manually
	// managed; reports whether a row was actually updated
	UpdateImpactAuto(ctx context.Context, id int64, impact domain.Impact) (bool, error)
	// AppendRelatedSource adds a duplicate report to a record unless its URL
	// already appears there or matches the record's primary URL
	AppendRelatedSource(ctx context.Context, id int64, src domain.RelatedSource) (bool, error)
}

// Engine consolidates multiple sources reporting the same event into one
// canonical record. Processing is strictly sequential: the kept list grows
// as records are accepted and later items compare against earlier ones.
type Engine struct {
	store     Store
	threshold float64
}

// NewEngine creates a merge engine; threshold <= 0 uses the default
func NewEngine(store Store, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{store: store, threshold: threshold}
}

// BatchResult summarizes one merge pass
type BatchResult struct {
	Added   int
	Merged  int
	Updated int
}

// ProcessBatch runs the merge decision for each classified item in order.
// The existing slice must be ordered by publication time descending: the
// first record above the similarity threshold wins, which makes iteration
// order part of the contract. Cancellation is honored between items,
// returning the counts committed so far.
func (e *Engine) ProcessBatch(ctx context.Context, items []domain.ClassifiedItem, existing []*domain.Record) (BatchResult, error) {
	res := BatchResult{}

	kept := make([]*domain.Record, len(existing))
	copy(kept, existing)

	byURL := make(map[string]*domain.Record, len(existing))
	for _, rec := range existing {
		byURL[rec.URL] = rec
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		// exact URL match means the same story seen again
		if rec, ok := byURL[item.URL]; ok {
			if rec.Impact != item.Impact && !rec.IsManual {
				updated, err := e.store.UpdateImpactAuto(ctx, rec.ID, item.Impact)
				if err != nil {
					return res, err
				}
				if updated {
					rec.Impact = item.Impact
					res.Updated++
				}
			}
			continue
		}

		if target := e.findSimilar(item.Title, kept); target != nil {
			appended, err := e.store.AppendRelatedSource(ctx, target.ID, domain.RelatedSource{
				Source:    item.Source,
				URL:       item.URL,
				Published: item.Published,
			})
			if err != nil {
				return res, err
			}
			if appended {
				target.RelatedSources = append(target.RelatedSources, domain.RelatedSource{
					Source:    item.Source,
					URL:       item.URL,
					Published: item.Published,
				})
				res.Merged++
			}
			// the item is absorbed either way, never persisted on its own
			continue
		}

		rec := domain.NewRecord(item)
		if err := e.store.CreateRecord(ctx, rec); err != nil {
			return res, err
		}
		kept = append(kept, rec)
		byURL[rec.URL] = rec
		res.Added++
	}

	return res, nil
}

// findSimilar returns the first kept record whose lowercased title exceeds
// the similarity threshold, or nil
func (e *Engine) findSimilar(title string, kept []*domain.Record) *domain.Record {
	needle := strings.ToLower(title)
	for _, rec := range kept {
		ratio := Ratio(needle, strings.ToLower(rec.Title))
		if ratio > e.threshold {
			lgr.Printf("[DEBUG] fuzzy match %.2f: %q ~ %q", ratio, title, rec.Title)
			return rec
		}
	}
	return nil
}
