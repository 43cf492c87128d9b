package store

import "strings"

// Search filters the most recent snapshot client-side: case-insensitive
// substring match against jobTitle, company and location. The empty term
// matches everything. Search never triggers a store read — it only ever
// looks at the snapshot it is handed.
//
// Result order is whatever order the snapshot carries; membership is the
// only contract.
func Search(snap Snapshot, term string) []StoredRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return snap.Records
	}

	matched := make([]StoredRecord, 0, len(snap.Records))
	for _, rec := range snap.Records {
		if containsFold(rec.Record.JobTitle, term) ||
			containsFold(rec.Record.Company, term) ||
			containsFold(rec.Record.Location, term) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func containsFold(haystack, lowered string) bool {
	return strings.Contains(strings.ToLower(haystack), lowered)
}
