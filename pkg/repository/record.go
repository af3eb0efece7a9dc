package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/regwatch/regwatch/pkg/classify"
	"github.com/regwatch/regwatch/pkg/domain"
)

// RecordRepository handles record-related database operations
type RecordRepository struct {
	db *sqlx.DB
}

// recordSQL represents a record for SQL operations
type recordSQL struct {
	ID             int64             `db:"id"`
	Title          string            `db:"title"`
	Summary        string            `db:"summary"`
	URL            string            `db:"url"`
	Source         string            `db:"source"`
	Sector         string            `db:"sector"`
	Agency         string            `db:"agency"`
	Impact         string            `db:"impact"`
	IsCircular     bool              `db:"is_circular"`
	IsManual       bool              `db:"is_manual"`
	IsHidden       bool              `db:"is_hidden"`
	IsSaved        bool              `db:"is_saved"`
	RelatedSources relatedSourcesSQL `db:"related_sources"`
	Published      time.Time         `db:"published"`
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at"`
}

// relatedSourcesSQL is a JSON array of merged source references for SQL operations
type relatedSourcesSQL []domain.RelatedSource

// Value implements driver.Valuer for database storage
func (s relatedSourcesSQL) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *relatedSourcesSQL) Scan(value interface{}) error {
	if value == nil {
		*s = relatedSourcesSQL{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return json.Unmarshal([]byte("[]"), s)
	}

	return json.Unmarshal(data, s)
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(database *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: database}
}

// CreateRecord inserts a new record and sets its ID. Retries on SQLite lock
// contention since feed scans and API writes share the database.
func (r *RecordRepository) CreateRecord(ctx context.Context, rec *domain.Record) error {
	sqlRec := toSQLRecord(rec)

	query := `
		INSERT INTO records (
			title, summary, url, source, sector, agency, impact,
			is_circular, is_manual, is_hidden, is_saved, related_sources, published
		) VALUES (
			:title, :summary, :url, :source, :sector, :agency, :impact,
			:is_circular, :is_manual, :is_hidden, :is_saved, :related_sources, :published
		)
	`

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		result, err := r.db.NamedExecContext(ctx, query, sqlRec)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("create record: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get insert id: %w", err)}
		}
		rec.ID = id
		return nil
	})
}

// GetRecord retrieves a record by ID
func (r *RecordRepository) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	var sqlRec recordSQL
	err := r.db.GetContext(ctx, &sqlRec, "SELECT * FROM records WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return toDomainRecord(&sqlRec), nil
}

// GetByURL retrieves a record by its canonical URL, nil without error when absent
func (r *RecordRepository) GetByURL(ctx context.Context, url string) (*domain.Record, error) {
	var sqlRec recordSQL
	err := r.db.GetContext(ctx, &sqlRec, "SELECT * FROM records WHERE url = ?", url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by url: %w", err)
	}
	return toDomainRecord(&sqlRec), nil
}

// ListRequest filters and pages the record listing
type ListRequest struct {
	Sector        string
	Agency        string // matched as substring of the comma-joined agency field
	Impact        string
	SavedOnly     bool
	IncludeHidden bool
	Limit         int
	Offset        int
}

// ListRecords retrieves records newest first with optional filters
func (r *RecordRepository) ListRecords(ctx context.Context, req ListRequest) ([]*domain.Record, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	builder := sq.Select("*").From("records").
		OrderBy("published DESC").
		Limit(uint64(req.Limit)).
		Offset(uint64(req.Offset))

	if !req.IncludeHidden {
		builder = builder.Where(sq.Eq{"is_hidden": false})
	}
	if req.SavedOnly {
		builder = builder.Where(sq.Eq{"is_saved": true})
	}
	if req.Sector != "" {
		builder = builder.Where(sq.Eq{"sector": req.Sector})
	}
	if req.Impact != "" {
		builder = builder.Where(sq.Eq{"impact": req.Impact})
	}
	if req.Agency != "" {
		builder = builder.Where(sq.Like{"agency": "%" + req.Agency + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var sqlRecs []recordSQL
	if err := r.db.SelectContext(ctx, &sqlRecs, query, args...); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]*domain.Record, len(sqlRecs))
	for i := range sqlRecs {
		records[i] = toDomainRecord(&sqlRecs[i])
	}
	return records, nil
}

// RecentRecords retrieves all records published within the window, newest
// first. Hidden records are included so duplicates keep merging into them.
func (r *RecordRepository) RecentRecords(ctx context.Context, window time.Duration) ([]*domain.Record, error) {
	cutoff := time.Now().Add(-window)

	var sqlRecs []recordSQL
	err := r.db.SelectContext(ctx, &sqlRecs,
		"SELECT * FROM records WHERE published >= ? ORDER BY published DESC", cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}

	records := make([]*domain.Record, len(sqlRecs))
	for i := range sqlRecs {
		records[i] = toDomainRecord(&sqlRecs[i])
	}
	return records, nil
}

// UpdateImpactAuto rewrites the impact of a record unless a human has taken
// it over. Reports whether a row changed.
func (r *RecordRepository) UpdateImpactAuto(ctx context.Context, id int64, impact domain.Impact) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET impact = ?, updated_at = datetime('now')
		WHERE id = ? AND is_manual = 0
	`, string(impact), id)
	if err != nil {
		return false, fmt.Errorf("update record impact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// AppendRelatedSource adds a merged source reference to a record. The append
// is skipped when the URL already appears, either as the canonical URL or in
// the existing references. Reports whether the list grew.
func (r *RecordRepository) AppendRelatedSource(ctx context.Context, id int64, src domain.RelatedSource) (bool, error) {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	var added bool
	err := retrier.Do(ctx, func() error {
		added = false

		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("begin tx: %w", err)}
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		var current struct {
			URL            string            `db:"url"`
			RelatedSources relatedSourcesSQL `db:"related_sources"`
		}
		if err := tx.GetContext(ctx, &current,
			"SELECT url, related_sources FROM records WHERE id = ?", id); err != nil {
			return &criticalError{err: fmt.Errorf("load record %d: %w", id, err)}
		}

		if src.URL == current.URL {
			return nil
		}
		for _, existing := range current.RelatedSources {
			if existing.URL == src.URL {
				return nil
			}
		}

		updated := append(current.RelatedSources, src)
		if _, err := tx.ExecContext(ctx, `
			UPDATE records
			SET related_sources = ?, updated_at = datetime('now')
			WHERE id = ?
		`, updated, id); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("append related source: %w", err)}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("commit: %w", err)}
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// ApplyUpdate applies a manual correction and marks the record as manually
// managed so later scans stop rewriting it
func (r *RecordRepository) ApplyUpdate(ctx context.Context, id int64, upd domain.RecordUpdate) (*domain.Record, error) {
	if upd.Empty() {
		return r.GetRecord(ctx, id)
	}
	if upd.Impact != nil && !upd.Impact.Valid() {
		return nil, fmt.Errorf("invalid impact %q", *upd.Impact)
	}

	builder := sq.Update("records").
		Set("is_manual", true).
		Set("updated_at", sq.Expr("datetime('now')")).
		Where(sq.Eq{"id": id})

	if upd.Sector != nil {
		builder = builder.Set("sector", *upd.Sector)
	}
	if upd.Agency != nil {
		builder = builder.Set("agency", *upd.Agency)
	}
	if upd.Impact != nil {
		builder = builder.Set("impact", string(*upd.Impact))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("apply update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("record %d not found", id)
	}

	return r.GetRecord(ctx, id)
}

// SetHidden soft-deletes or restores a record
func (r *RecordRepository) SetHidden(ctx context.Context, id int64, hidden bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET is_hidden = ?, updated_at = datetime('now')
		WHERE id = ?
	`, hidden, id)
	if err != nil {
		return fmt.Errorf("set hidden: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}

// ToggleSaved flips the saved flag and returns the new state
func (r *RecordRepository) ToggleSaved(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET is_saved = NOT is_saved, updated_at = datetime('now')
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("toggle saved: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return false, fmt.Errorf("record %d not found", id)
	}

	var saved bool
	if err := r.db.GetContext(ctx, &saved, "SELECT is_saved FROM records WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("read saved flag: %w", err)
	}
	return saved, nil
}

// Stats aggregates record counts for the stats endpoint
type Stats struct {
	Total    int            `json:"total"`
	Saved    int            `json:"saved"`
	Hidden   int            `json:"hidden"`
	BySector map[string]int `json:"by_sector"`
	ByAgency map[string]int `json:"by_agency"`
	ByImpact map[string]int `json:"by_impact"`
}

// Stats computes aggregate counts over visible records; sector, agency and
// impact breakdowns exclude hidden records. A record tagged with several
// agency codes counts once per code.
func (r *RecordRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		BySector: make(map[string]int),
		ByAgency: make(map[string]int),
		ByImpact: make(map[string]int),
	}

	err := r.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM records")
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	err = r.db.GetContext(ctx, &stats.Saved, "SELECT COUNT(*) FROM records WHERE is_saved = 1")
	if err != nil {
		return nil, fmt.Errorf("count saved: %w", err)
	}
	err = r.db.GetContext(ctx, &stats.Hidden, "SELECT COUNT(*) FROM records WHERE is_hidden = 1")
	if err != nil {
		return nil, fmt.Errorf("count hidden: %w", err)
	}

	type bucket struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}

	var sectors []bucket
	err = r.db.SelectContext(ctx, &sectors,
		"SELECT sector AS key, COUNT(*) AS count FROM records WHERE is_hidden = 0 GROUP BY sector")
	if err != nil {
		return nil, fmt.Errorf("count by sector: %w", err)
	}
	for _, b := range sectors {
		stats.BySector[b.Key] = b.Count
	}

	var agencies []bucket
	err = r.db.SelectContext(ctx, &agencies,
		"SELECT agency AS key, COUNT(*) AS count FROM records WHERE is_hidden = 0 GROUP BY agency")
	if err != nil {
		return nil, fmt.Errorf("count by agency: %w", err)
	}
	for _, b := range agencies {
		codes := classify.SplitAgencies(b.Key)
		if len(codes) == 0 {
			stats.ByAgency[domain.AgencyUnknown] += b.Count
			continue
		}
		for _, code := range codes {
			stats.ByAgency[code] += b.Count
		}
	}

	var impacts []bucket
	err = r.db.SelectContext(ctx, &impacts,
		"SELECT impact AS key, COUNT(*) AS count FROM records WHERE is_hidden = 0 GROUP BY impact")
	if err != nil {
		return nil, fmt.Errorf("count by impact: %w", err)
	}
	for _, b := range impacts {
		stats.ByImpact[b.Key] = b.Count
	}

	return stats, nil
}

// toSQLRecord converts domain.Record to its SQL representation
func toSQLRecord(rec *domain.Record) *recordSQL {
	return &recordSQL{
		ID:             rec.ID,
		Title:          rec.Title,
		Summary:        rec.Summary,
		URL:            rec.URL,
		Source:         rec.Source,
		Sector:         rec.Sector,
		Agency:         rec.Agency,
		Impact:         string(rec.Impact),
		IsCircular:     rec.IsCircular,
		IsManual:       rec.IsManual,
		IsHidden:       rec.IsHidden,
		IsSaved:        rec.IsSaved,
		RelatedSources: rec.RelatedSources,
		Published:      rec.Published,
	}
}

// toDomainRecord converts the SQL representation to domain.Record
func toDomainRecord(sqlRec *recordSQL) *domain.Record {
	return &domain.Record{
		ID:             sqlRec.ID,
		Title:          sqlRec.Title,
		Summary:        sqlRec.Summary,
		URL:            sqlRec.URL,
		Source:         sqlRec.Source,
		Sector:         sqlRec.Sector,
		Agency:         sqlRec.Agency,
		Impact:         domain.Impact(sqlRec.Impact),
		IsCircular:     sqlRec.IsCircular,
		IsManual:       sqlRec.IsManual,
		IsHidden:       sqlRec.IsHidden,
		IsSaved:        sqlRec.IsSaved,
		RelatedSources: sqlRec.RelatedSources,
		Published:      sqlRec.Published,
		CreatedAt:      sqlRec.CreatedAt,
	}
}
