package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.InDelta(t, 1.0, Ratio("thomson view en bloc", "thomson view en bloc"), 1e-9)
	})

	t.Run("both empty", func(t *testing.T) {
		assert.InDelta(t, 1.0, Ratio("", ""), 1e-9)
	})

	t.Run("one empty", func(t *testing.T) {
		assert.InDelta(t, 0.0, Ratio("abc", ""), 1e-9)
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)
	})

	t.Run("partial overlap", func(t *testing.T) {
		// longest block "bcd" (3 runes), 2*3/(4+4)
		assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := "singapore to raise gst to 9% from january"
		b := "singapore to raise gst to 9 per cent from january"
		assert.InDelta(t, Ratio(a, b), Ratio(b, a), 1e-9)
	})

	t.Run("same story different phrasing exceeds threshold", func(t *testing.T) {
		a := "singapore to raise gst to 9% from january"
		b := "singapore to raise gst to 9 per cent from january"
		assert.Greater(t, Ratio(a, b), DefaultThreshold)
	})

	t.Run("reordered clauses score by character sequence", func(t *testing.T) {
		// the matcher is order sensitive: heavily reshuffled phrasing of the
		// same story scores low even with near-identical vocabulary
		a := "collective sales en bloc regime under review by minlaw"
		b := "minlaw reviews en bloc collective sale regime"
		assert.InDelta(t, 0.4444, Ratio(a, b), 1e-4)
		assert.Less(t, Ratio(a, b), DefaultThreshold)
	})

	t.Run("different stories stay below threshold", func(t *testing.T) {
		a := "mas launches new digital bank licences"
		b := "nea issues dengue alert for eastern singapore"
		assert.Less(t, Ratio(a, b), DefaultThreshold)
	})
}
