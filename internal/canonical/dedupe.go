package canonical

import "sort"

// KeepPolicy selects the representative URL within a group of URLs that
// share a canonical key.
type KeepPolicy string

// Supported dedupe policies. KeepFirst and KeepLast select by order of
// appearance; KeepMaxID selects the highest extracted listing id, ties
// favoring the earlier occurrence.
const (
	KeepFirst KeepPolicy = "first"
	KeepLast  KeepPolicy = "last"
	KeepMaxID KeepPolicy = "max_id"
)

type candidate struct {
	firstIdx int
	url      string
	id       int64
	hasID    bool
}

// Dedupe groups urls by canonical key and keeps one representative per
// group according to policy. The result preserves the first-occurrence
// order of surviving keys. An unknown policy behaves like KeepFirst.
func Dedupe(urls []string, policy KeepPolicy) []string {
	selected := make(map[Key]candidate, len(urls))

	for idx, u := range urls {
		key, id, hasID := KeyAndID(u)
		prev, seen := selected[key]
		if !seen {
			selected[key] = candidate{firstIdx: idx, url: u, id: id, hasID: hasID}
			continue
		}
		switch policy {
		case KeepLast:
			prev.url = u
			prev.id = id
			prev.hasID = hasID
			selected[key] = prev
		case KeepMaxID:
			if effectiveID(prev.id, prev.hasID) < effectiveID(id, hasID) {
				prev.url = u
				prev.id = id
				prev.hasID = hasID
				selected[key] = prev
			}
		}
	}

	survivors := make([]candidate, 0, len(selected))
	for _, c := range selected {
		survivors = append(survivors, c)
	}
	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].firstIdx < survivors[j].firstIdx
	})

	out := make([]string, len(survivors))
	for i, c := range survivors {
		out[i] = c.url
	}
	return out
}

// effectiveID orders URLs without an extracted id below every URL that
// has one.
func effectiveID(id int64, ok bool) int64 {
	if !ok {
		return -1
	}
	return id
}
