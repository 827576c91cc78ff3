package services

// mergeSnapshots builds the displayed list for a resource: placeholders
// first, then confirmed records, deduplicated by server id. Inputs are
// already sorted newest first by their sources (queue and cache queries).
func mergeSnapshots[T any](placeholders []T, confirmed []T, id func(T) int64) []T {
	out := make([]T, 0, len(placeholders)+len(confirmed))
	out = append(out, placeholders...)

	seen := make(map[int64]struct{}, len(confirmed))
	for _, c := range confirmed {
		if _, dup := seen[id(c)]; dup {
			continue
		}
		seen[id(c)] = struct{}{}
		out = append(out, c)
	}
	return out
}
