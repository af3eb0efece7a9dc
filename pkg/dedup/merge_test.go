package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regwatch/regwatch/pkg/domain"
)

// fakeStore records merge engine writes in memory
type fakeStore struct {
	nextID  int64
	created []*domain.Record
	updated map[int64]domain.Impact
	related map[int64][]domain.RelatedSource
	manual  map[int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		updated: map[int64]domain.Impact{},
		related: map[int64][]domain.RelatedSource{},
		manual:  map[int64]bool{},
	}
}

func (f *fakeStore) CreateRecord(_ context.Context, rec *domain.Record) error {
	f.nextID++
	rec.ID = f.nextID
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeStore) UpdateImpactAuto(_ context.Context, id int64, impact domain.Impact) (bool, error) {
	if f.manual[id] {
		return false, nil
	}
	f.updated[id] = impact
	return true, nil
}

func (f *fakeStore) AppendRelatedSource(_ context.Context, id int64, src domain.RelatedSource) (bool, error) {
	for _, existing := range f.related[id] {
		if existing.URL == src.URL {
			return false, nil
		}
	}
	f.related[id] = append(f.related[id], src)
	return true, nil
}

func item(title, url, source string) domain.ClassifiedItem {
	return domain.ClassifiedItem{
		Candidate: domain.Candidate{
			Title:     title,
			URL:       url,
			Source:    source,
			Published: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		Agency: "MAS",
		Sector: "Financial Services",
		Impact: domain.ImpactMedium,
	}
}

func TestProcessBatchAddsNewRecords(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, 0)

	items := []domain.ClassifiedItem{
		item("MAS launches new digital bank licences", "https://example.com/a", "CNA"),
		item("NEA issues dengue alert for eastern Singapore", "https://example.com/b", "ST"),
	}

	res, err := engine.ProcessBatch(context.Background(), items, nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Added: 2}, res)
	require.Len(t, store.created, 2)
	assert.NotZero(t, store.created[0].ID)
}

func TestProcessBatchExactURL(t *testing.T) {
	t.Run("impact refreshed on auto-managed record", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, 0)

		existing := &domain.Record{ID: 7, Title: "GST hike confirmed", URL: "https://example.com/gst", Impact: domain.ImpactMedium}

		it := item("GST hike confirmed", "https://example.com/gst", "CNA")
		it.Impact = domain.ImpactHigh

		res, err := engine.ProcessBatch(context.Background(), []domain.ClassifiedItem{it}, []*domain.Record{existing})
		require.NoError(t, err)
		assert.Equal(t, BatchResult{Updated: 1}, res)
		assert.Equal(t, domain.ImpactHigh, store.updated[7])
		assert.Equal(t, domain.ImpactHigh, existing.Impact)
		assert.Empty(t, store.created)
	})

	t.Run("manual record left alone", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, 0)

		existing := &domain.Record{ID: 7, Title: "GST hike confirmed", URL: "https://example.com/gst",
			Impact: domain.ImpactMedium, IsManual: true}

		it := item("GST hike confirmed", "https://example.com/gst", "CNA")
		it.Impact = domain.ImpactHigh

		res, err := engine.ProcessBatch(context.Background(), []domain.ClassifiedItem{it}, []*domain.Record{existing})
		require.NoError(t, err)
		assert.Equal(t, BatchResult{}, res)
		assert.Empty(t, store.updated)
	})

	t.Run("same impact is a no-op", func(t *testing.T) {
		store := newFakeStore()
		engine := NewEngine(store, 0)

		existing := &domain.Record{ID: 7, Title: "GST hike confirmed", URL: "https://example.com/gst", Impact: domain.ImpactMedium}
		it := item("GST hike confirmed", "https://example.com/gst", "CNA")

		res, err := engine.ProcessBatch(context.Background(), []domain.ClassifiedItem{it}, []*domain.Record{existing})
		require.NoError(t, err)
		assert.Equal(t, BatchResult{}, res)
	})
}

func TestProcessBatchMergesSimilarTitles(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, 0)

	existing := &domain.Record{
		ID:    3,
		Title: "Singapore to raise GST to 9% from January",
		URL:   "https://example.com/primary",
	}

	it := item("Singapore to raise GST to 9 per cent from January", "https://example.com/dup", "Business Times")

	res, err := engine.ProcessBatch(context.Background(), []domain.ClassifiedItem{it}, []*domain.Record{existing})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Merged: 1}, res)
	require.Len(t, store.related[3], 1)
	assert.Equal(t, "https://example.com/dup", store.related[3][0].URL)
	assert.Empty(t, store.created, "merged item must not be persisted on its own")

	// the in-memory copy tracks the merge
	require.Len(t, existing.RelatedSources, 1)
	assert.Equal(t, "Business Times", existing.RelatedSources[0].Source)
}

func TestProcessBatchMergeIdempotent(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, 0)

	existing := &domain.Record{ID: 3, Title: "Singapore to raise GST to 9% from January", URL: "https://example.com/primary"}
	it := item("Singapore to raise GST to 9 per cent from January", "https://example.com/dup", "Business Times")

	// same duplicate seen in two consecutive batches
	_, err := engine.ProcessBatch(context.Background(), []domain.ClassifiedItem{it}, []*domain.Record{existing})
	require.NoError(t, err)
	res, err := engine.ProcessBatch(context.Background(), []domain.ClassifiedItem{it}, []*domain.Record{existing})
	require.NoError(t, err)

	assert.Equal(t, BatchResult{}, res)
	assert.Len(t, store.related[3], 1)
}

func TestProcessBatchMergesWithinBatch(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, 0)

	items := []domain.ClassifiedItem{
		item("Singapore to raise GST to 9% from January", "https://example.com/a", "CNA"),
		item("Singapore to raise GST to 9 per cent from January", "https://example.com/b", "ST"),
	}

	res, err := engine.ProcessBatch(context.Background(), items, nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Added: 1, Merged: 1}, res)
	require.Len(t, store.created, 1)
	assert.Len(t, store.related[store.created[0].ID], 1)
}

func TestProcessBatchCancellation(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.ProcessBatch(ctx, []domain.ClassifiedItem{
		item("MAS launches new digital bank licences", "https://example.com/a", "CNA"),
	}, nil)
	assert.Error(t, err)
	assert.Equal(t, BatchResult{}, res)
	assert.Empty(t, store.created)
}
