package domain

import "time"

// InterestOrigin tags where an interest signal came from
type InterestOrigin string

// known interest origins
const (
	InterestFromSearch InterestOrigin = "search"
	InterestFromSaved  InterestOrigin = "saved_item"
	InterestFromAdded  InterestOrigin = "added_item"
)

// InterestSignal accumulates weight for a keyword the user has shown
// interest in. Used to bias the personalized fetch path.
type InterestSignal struct {
	Keyword    string
	Weight     float64
	LastActive time.Time
	Origin     InterestOrigin
}
