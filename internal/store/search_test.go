package store_test

import (
	"testing"

	"github.com/Malek720-420/InternExtract/internal/schema"
	"github.com/Malek720-420/InternExtract/internal/store"
)

func snapshot() store.Snapshot {
	return store.Snapshot{
		OwnerID: "owner-1",
		Records: []store.StoredRecord{
			{DocumentID: "a", Record: schema.JobOfferRecord{
				JobTitle: "Backend Engineer", Company: "ACME Corp", Location: "Berlin",
			}},
			{DocumentID: "b", Record: schema.JobOfferRecord{
				JobTitle: "Acme Evangelist", Company: "Globex", Location: "Remote",
			}},
			{DocumentID: "c", Record: schema.JobOfferRecord{
				JobTitle: "Data Analyst", Company: "Initech", Location: "acmeville",
			}},
			{DocumentID: "d", Record: schema.JobOfferRecord{
				JobTitle: "Designer", Company: "Globex", Location: "Paris",
				// Matches in a non-searched field must not count.
				Requirements: []string{"acme toolchain"},
			}},
		},
	}
}

// ── Term matching ──────────────────────────────────────────────────────────

func TestSearch_CaseInsensitiveAcrossThreeFields(t *testing.T) {
	got := store.Search(snapshot(), "acme")

	ids := make(map[string]bool)
	for _, r := range got {
		ids[r.DocumentID] = true
	}

	if len(got) != 3 || !ids["a"] || !ids["b"] || !ids["c"] {
		t.Errorf("Search(acme) matched %v, want exactly {a b c} (company, jobTitle, location)", ids)
	}
	if ids["d"] {
		t.Error("Search must not match against requirements")
	}
}

func TestSearch_TermIsTrimmedAndFolded(t *testing.T) {
	if got := store.Search(snapshot(), "  GLOBEX  "); len(got) != 2 {
		t.Errorf("Search(  GLOBEX  ) matched %d records, want 2", len(got))
	}
}

func TestSearch_NoMatches(t *testing.T) {
	if got := store.Search(snapshot(), "umbrella"); len(got) != 0 {
		t.Errorf("Search(umbrella) matched %d records, want 0", len(got))
	}
}

// ── Empty term ─────────────────────────────────────────────────────────────

func TestSearch_EmptyTermReturnsFullMembership(t *testing.T) {
	snap := snapshot()
	got := store.Search(snap, "")
	if len(got) != len(snap.Records) {
		t.Fatalf("Search(\"\") returned %d records, want %d", len(got), len(snap.Records))
	}

	seen := make(map[string]bool)
	for _, r := range got {
		seen[r.DocumentID] = true
	}
	for _, r := range snap.Records {
		if !seen[r.DocumentID] {
			t.Errorf("Search(\"\") dropped document %s", r.DocumentID)
		}
	}
}
