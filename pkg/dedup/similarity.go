package dedup

// Ratio computes a normalized similarity between two strings as
// 2*M/(len(a)+len(b)), where M is the total length of matching blocks found
// by recursively locating the longest common substring. Symmetric and
// deterministic; a string compared with itself yields 1.0.
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingRunes(ar, br)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:ai], b[:bi]) + matchingRunes(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest common substring, preferring the earliest
// occurrence in a, then in b, so results are stable across calls
func longestMatch(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b))
	cur := make([]int, len(b))
	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				cur[j] = 0
				continue
			}
			run := 1
			if j > 0 {
				run = prev[j-1] + 1
			}
			cur[j] = run
			if run > size {
				size = run
				ai = i - run + 1
				bi = j - run + 1
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
