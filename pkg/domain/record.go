package domain

import "time"

// Impact represents the regulatory consequence severity of a story
type Impact string

// impact tiers, ordered by severity
const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Valid reports whether the impact is one of the known tiers
func (i Impact) Valid() bool {
	return i == ImpactHigh || i == ImpactMedium || i == ImpactLow
}

// AgencyUnknown is the sentinel returned when no agency matched
const AgencyUnknown = "Unknown"

// SectorGeneral is the catch-all sector label
const SectorGeneral = "General"

// Candidate represents a raw entry pulled from a feed or search provider,
// before classification. Discarded if it fails the relevance filter.
type Candidate struct {
	Title     string
	Summary   string
	URL       string
	Source    string
	Published time.Time
	GovSource bool // entry obtained directly from a government domain
}

// ClassifiedItem is a candidate with derived classification attributes
type ClassifiedItem struct {
	Candidate
	Agency     string // comma-joined sorted agency codes, or AgencyUnknown
	Sector     string
	Impact     Impact
	IsCircular bool
}

// RelatedSource records one duplicate report merged into a canonical record
type RelatedSource struct {
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
}

// Record is the single persisted representation of a news story, possibly
// absorbing multiple source reports. RelatedSources only ever grows.
type Record struct {
	ID             int64
	Title          string
	Summary        string
	URL            string
	Source         string
	Sector         string
	Agency         string
	Impact         Impact
	IsCircular     bool
	IsManual       bool // a human overrode classification, freeze against auto rewrite
	IsHidden       bool // soft delete
	IsSaved        bool
	RelatedSources []RelatedSource
	Published      time.Time
	CreatedAt      time.Time
}

// NewRecord promotes a classified item to a canonical record
func NewRecord(item ClassifiedItem) *Record {
	return &Record{
		Title:      item.Title,
		Summary:    item.Summary,
		URL:        item.URL,
		Source:     item.Source,
		Sector:     item.Sector,
		Agency:     item.Agency,
		Impact:     item.Impact,
		IsCircular: item.IsCircular,
		Published:  item.Published,
	}
}

// RecordUpdate is an explicit allow-listed patch for a record. Only the
// fields listed here can be changed by a correction; applying any of them
// marks the record as manually managed.
type RecordUpdate struct {
	Sector *string `json:"sector,omitempty"`
	Agency *string `json:"agency,omitempty"`
	Impact *Impact `json:"impact,omitempty"`
}

// Empty reports whether the update carries no changes
func (u RecordUpdate) Empty() bool {
	return u.Sector == nil && u.Agency == nil && u.Impact == nil
}
