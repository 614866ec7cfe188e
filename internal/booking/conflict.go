package booking

import "sort"

// Occurrence is the conflict resolver's view of a stored reservation. The
// application layer maps persistence models into this shape before asking
// for conflicts.
type Occurrence struct {
	ID      string
	RoomID  string
	GroupID string
	Title   string
	Status  Status
	Interval
}

// FindConflicts returns the existing occurrences whose interval overlaps at
// least one candidate and whose status is in the blocking set. The
// occurrence identified by excludeID is skipped (self-conflict guard during
// edits), as is every member of excludeGroup when it is non-empty (group
// approval re-checks). The result is deduplicated and ordered by date, then
// start time, then id. The function performs no mutation.
func FindConflicts(existing []Occurrence, candidates []Interval, excludeID, excludeGroup string, blocking StatusSet) []Occurrence {
	if len(existing) == 0 || len(candidates) == 0 {
		return nil
	}

	conflicts := make([]Occurrence, 0)
	seen := make(map[string]struct{})

	for _, occ := range existing {
		if occ.ID != "" && occ.ID == excludeID {
			continue
		}
		if excludeGroup != "" && occ.GroupID == excludeGroup {
			continue
		}
		if !blocking.Contains(occ.Status) {
			continue
		}
		if _, ok := seen[occ.ID]; ok {
			continue
		}
		for _, candidate := range candidates {
			if Overlaps(occ.Interval, candidate) {
				seen[occ.ID] = struct{}{}
				conflicts = append(conflicts, occ)
				break
			}
		}
	}

	if len(conflicts) == 0 {
		return nil
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})

	return conflicts
}
