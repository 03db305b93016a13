package annotation

import "sort"

// intervalTree provides O(log n + k) overlap queries using a sorted-slice
// approach. Entries are loaded once and never modified after build.
type intervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[0..i]
}

type interval struct {
	start  int64
	end    int64
	gene   *Gene
	exonID string // set for exon-level entries, empty for gene spans
}

// buildIntervalTree creates an interval tree from a slice of entries.
func buildIntervalTree(entries []interval) *intervalTree {
	if len(entries) == 0 {
		return &intervalTree{}
	}

	intervals := make([]interval, len(entries))
	copy(intervals, entries)

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[0..i]
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &intervalTree{intervals: intervals, maxEnd: maxEnd}
}

// findOverlaps returns all entries whose [start, end] range contains pos.
func (t *intervalTree) findOverlaps(pos int64) []interval {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []interval

	// Binary search: find rightmost interval with start <= pos.
	// All candidates must have start <= pos, so we only need to scan
	// from index 0 to that boundary.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > pos
	})
	// hi is the first index with start > pos; candidates are [0, hi).

	for i := hi - 1; i >= 0; i-- {
		// Prune: maxEnd[i] is the max end for intervals[0..i].
		// If maxEnd[i] < pos, no interval at or below i can contain pos.
		if t.maxEnd[i] < pos {
			break
		}
		if t.intervals[i].end >= pos {
			result = append(result, t.intervals[i])
		}
	}

	return result
}
