package rotate

import "sort"

// Selection is the result of partitioning a filesystem's snapshots for one
// group into the entries to keep and the entries to destroy. Both slices are
// ordered newest first; Keep[0] has rank 1.
type Selection struct {
	Keep    []Name
	Destroy []Name
}

// Select partitions identifiers for one group under a retention count.
// Identifiers that do not parse as rotation-managed names, or that belong to
// a different group, are ignored entirely: they are neither counted nor
// destroyed. The keep count must be >= 1; callers validate before selecting.
//
// Candidates are ordered by their embedded timestamp, newest first, rather
// than by trusting the caller's ordering. Identifiers with equal timestamps
// (possible only across filesystems) fall back to descending name order so
// the selection stays deterministic.
func Select(identifiers []string, group string, keep int) Selection {
	var candidates []Name
	for _, id := range identifiers {
		name, ok := ParseName(id)
		if !ok || name.Group != group {
			continue
		}
		candidates = append(candidates, name)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].Timestamp.Equal(candidates[j].Timestamp) {
			return candidates[i].Timestamp.After(candidates[j].Timestamp)
		}
		return candidates[i].String() > candidates[j].String()
	})

	if len(candidates) <= keep {
		return Selection{Keep: candidates}
	}
	return Selection{
		Keep:    candidates[:keep],
		Destroy: candidates[keep:],
	}
}
