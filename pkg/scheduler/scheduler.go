package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/regwatch/regwatch/pkg/dedup"
	"github.com/regwatch/regwatch/pkg/domain"
	"github.com/regwatch/regwatch/pkg/search"
)

// Scheduler runs the periodic scan: pull candidates from feeds, personalized
// interest queries and backfill queries, classify them, then merge the batch
// into the record store through the dedup engine.
type Scheduler struct {
	fetcher      FeedFetcher
	provider     SearchProvider
	expander     *search.Expander
	classifier   Classifier
	deduper      Deduper
	records      RecordStore
	interests    InterestStore
	scanInterval time.Duration
	topInterests int
	backfill     []string
	dedupWindow  time.Duration

	trigger chan struct{}
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// FeedFetcher pulls candidates from the configured feed sources
type FeedFetcher interface {
	Fetch(ctx context.Context) []domain.Candidate
}

// SearchProvider runs one query against the external search feed
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}

// Classifier filters and classifies candidates
type Classifier interface {
	Relevant(c domain.Candidate) bool
	Classify(c domain.Candidate) domain.ClassifiedItem
}

// Deduper merges a classified batch into the store
type Deduper interface {
	ProcessBatch(ctx context.Context, items []domain.ClassifiedItem, existing []*domain.Record) (dedup.BatchResult, error)
}

// RecordStore provides the recent records each batch is compared against
type RecordStore interface {
	RecentRecords(ctx context.Context, window time.Duration) ([]*domain.Record, error)
}

// InterestStore provides accumulated user interest signals
type InterestStore interface {
	TopInterests(ctx context.Context, n int) ([]domain.InterestSignal, error)
}

// Config holds scheduler configuration
type Config struct {
	ScanInterval time.Duration
	TopInterests int      // interest keywords queried per scan
	Backfill     []string // extra queries run on every scan
	DedupWindow  time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(fetcher FeedFetcher, provider SearchProvider, expander *search.Expander,
	classifier Classifier, deduper Deduper, records RecordStore, interests InterestStore, cfg Config) *Scheduler {
	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = 30 * time.Minute
	}
	if cfg.TopInterests == 0 {
		cfg.TopInterests = 5
	}
	if cfg.DedupWindow == 0 {
		cfg.DedupWindow = 45 * 24 * time.Hour
	}

	return &Scheduler{
		fetcher:      fetcher,
		provider:     provider,
		expander:     expander,
		classifier:   classifier,
		deduper:      deduper,
		records:      records,
		interests:    interests,
		scanInterval: cfg.ScanInterval,
		topInterests: cfg.TopInterests,
		backfill:     cfg.Backfill,
		dedupWindow:  cfg.DedupWindow,
		trigger:      make(chan struct{}, 1),
	}
}

// Start begins the periodic scan worker
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.scanWorker(ctx)

	lgr.Printf("[INFO] scheduler started with scan interval %v, dedup window %v", s.scanInterval, s.dedupWindow)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// TriggerScan requests an immediate scan without waiting for the ticker.
// Non-blocking; a scan already pending absorbs the request.
func (s *Scheduler) TriggerScan() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// scanWorker runs scans on the ticker and on demand
func (s *Scheduler) scanWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	// run immediately on start
	s.runScan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runScan(ctx)
		case <-s.trigger:
			s.runScan(ctx)
		}
	}
}

// runScan executes one full scan pass and logs the outcome
func (s *Scheduler) runScan(ctx context.Context) {
	result, err := s.Scan(ctx)
	if err != nil {
		lgr.Printf("[ERROR] scan failed: %v", err)
		return
	}
	lgr.Printf("[INFO] scan completed: %d added, %d merged, %d updated", result.Added, result.Merged, result.Updated)
}

// Scan collects, classifies and merges one batch of candidates
func (s *Scheduler) Scan(ctx context.Context) (dedup.BatchResult, error) {
	var items []domain.ClassifiedItem

	// configured feeds go through the full relevance gate
	for _, c := range s.fetcher.Fetch(ctx) {
		if !s.classifier.Relevant(c) {
			continue
		}
		items = append(items, s.classifier.Classify(c))
	}

	items = append(items, s.personalized(ctx)...)

	for _, query := range s.backfill {
		exp := s.expander.Expand(query)
		candidates, err := s.provider.Search(ctx, exp.Restricted, 10)
		if err != nil {
			lgr.Printf("[WARN] backfill query %q failed: %v", query, err)
			continue
		}
		for _, c := range candidates {
			if !s.classifier.Relevant(c) {
				continue
			}
			items = append(items, s.classifier.Classify(c))
		}
	}

	if len(items) == 0 {
		return dedup.BatchResult{}, nil
	}

	existing, err := s.records.RecentRecords(ctx, s.dedupWindow)
	if err != nil {
		return dedup.BatchResult{}, err
	}

	return s.deduper.ProcessBatch(ctx, items, existing)
}

// junk topics that leak in through broad interest keywords
var interestJunkWords = []string{"lottery", "4d", "toto", "horoscope"}

// personalized fetches candidates for the user's heaviest interest keywords.
// Interest hits skip the relevance gate, the user explicitly asked for the
// topic, but obvious junk is still dropped.
func (s *Scheduler) personalized(ctx context.Context) []domain.ClassifiedItem {
	signals, err := s.interests.TopInterests(ctx, s.topInterests)
	if err != nil {
		lgr.Printf("[WARN] load interests failed: %v", err)
		return nil
	}

	var items []domain.ClassifiedItem
	for _, sig := range signals {
		exp := s.expander.Expand(sig.Keyword)
		candidates, err := s.provider.Search(ctx, exp.Restricted, 5)
		if err != nil {
			lgr.Printf("[WARN] interest query %q failed: %v", sig.Keyword, err)
			continue
		}
		for _, c := range candidates {
			if isInterestJunk(c.Title) {
				continue
			}
			items = append(items, s.classifier.Classify(c))
		}
	}
	return items
}

func isInterestJunk(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range interestJunkWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
