package reconcile_test

import (
	"strings"
	"testing"

	"github.com/Malek720-420/InternExtract/internal/reconcile"
	"github.com/Malek720-420/InternExtract/internal/schema"
)

func validRecord() schema.JobOfferRecord {
	return schema.JobOfferRecord{
		JobTitle:            "Backend Engineer",
		Company:             "Acme",
		Location:            "Berlin",
		JobType:             schema.NotSpecified,
		Responsibilities:    []string{"Build APIs", "Review code"},
		Requirements:        []string{"Go", "PostgreSQL"},
		Benefits:            []string{},
		ApplicationDeadline: "2026-01-31",
	}
}

// ── Round-trip property ────────────────────────────────────────────────────

func TestRoundTrip_ValidRecord(t *testing.T) {
	r := validRecord()
	back, err := reconcile.FromEditable(reconcile.ToEditable(r))
	if err != nil {
		t.Fatalf("FromEditable returned unexpected error: %v", err)
	}
	if !schema.Equal(back, r) {
		t.Errorf("round trip changed the record:\n got  %#v\n want %#v", back, r)
	}
}

func TestRoundTrip_SentinelSurvives(t *testing.T) {
	r := schema.Normalize(map[string]any{})
	back, err := reconcile.FromEditable(reconcile.ToEditable(r))
	if err != nil {
		t.Fatalf("FromEditable returned unexpected error: %v", err)
	}
	if back.JobTitle != schema.NotSpecified {
		t.Errorf("sentinel scalar = %q after round trip, want unchanged", back.JobTitle)
	}
	if len(back.Responsibilities) != 0 {
		t.Errorf("empty list = %#v after round trip, want empty", back.Responsibilities)
	}
}

// A whitespace-only list element is indistinguishable from a blank line in
// the form encoding and is dropped. Documented limitation, not a defect.
func TestRoundTrip_WhitespaceElementIsDropped(t *testing.T) {
	r := validRecord()
	r.Benefits = []string{"Gym", "   ", "Insurance"}

	back, err := reconcile.FromEditable(reconcile.ToEditable(r))
	if err != nil {
		t.Fatalf("FromEditable returned unexpected error: %v", err)
	}

	want := []string{"Gym", "Insurance"}
	if len(back.Benefits) != len(want) || back.Benefits[0] != want[0] || back.Benefits[1] != want[1] {
		t.Errorf("benefits = %#v, want %#v (whitespace element dropped)", back.Benefits, want)
	}
}

// ── ToEditable ─────────────────────────────────────────────────────────────

func TestToEditable_ContractOrderAndKinds(t *testing.T) {
	form := reconcile.ToEditable(validRecord())

	if len(form.Fields) != len(schema.Contract) {
		t.Fatalf("form has %d fields, want %d", len(form.Fields), len(schema.Contract))
	}
	for i, f := range schema.Contract {
		got := form.Fields[i]
		if got.Name != f.Name {
			t.Errorf("field %d = %q, want %q (contract order)", i, got.Name, f.Name)
		}
		if got.Multiline != (f.Kind == schema.KindList) {
			t.Errorf("field %q multiline = %v, want %v", got.Name, got.Multiline, f.Kind == schema.KindList)
		}
	}
}

func TestToEditable_ListJoinedWithNewlines(t *testing.T) {
	form := reconcile.ToEditable(validRecord())
	for _, f := range form.Fields {
		if f.Name == "responsibilities" {
			want := "Build APIs\nReview code"
			if f.Value != want {
				t.Errorf("responsibilities widget = %q, want %q", f.Value, want)
			}
			return
		}
	}
	t.Fatal("responsibilities field missing from form")
}

// ── FromEditable ───────────────────────────────────────────────────────────

func TestFromEditable_SplitsTrimsAndDropsEmptyLines(t *testing.T) {
	form := reconcile.EditableForm{Fields: []reconcile.EditableField{
		{Name: "requirements", Multiline: true, Value: "  Go \n\n  SQL\n   \nDocker"},
	}}

	r, err := reconcile.FromEditable(form)
	if err != nil {
		t.Fatalf("FromEditable returned unexpected error: %v", err)
	}

	want := []string{"Go", "SQL", "Docker"}
	if len(r.Requirements) != len(want) {
		t.Fatalf("requirements = %#v, want %#v", r.Requirements, want)
	}
	for i := range want {
		if r.Requirements[i] != want[i] {
			t.Errorf("requirements[%d] = %q, want %q", i, r.Requirements[i], want[i])
		}
	}
}

func TestFromEditable_OmittedFieldsFallBack(t *testing.T) {
	form := reconcile.EditableForm{Fields: []reconcile.EditableField{
		{Name: "company", Value: "Acme"},
	}}

	r, err := reconcile.FromEditable(form)
	if err != nil {
		t.Fatalf("FromEditable returned unexpected error: %v", err)
	}
	if r.JobTitle != schema.NotSpecified {
		t.Errorf("omitted scalar = %q, want sentinel", r.JobTitle)
	}
	if r.Benefits == nil || len(r.Benefits) != 0 {
		t.Errorf("omitted list = %#v, want empty slice", r.Benefits)
	}
}

func TestFromEditable_RejectsMalformedForms(t *testing.T) {
	cases := []struct {
		name string
		form reconcile.EditableForm
	}{
		{"unknown field", reconcile.EditableForm{Fields: []reconcile.EditableField{
			{Name: "salary", Value: "1"},
		}}},
		{"duplicate field", reconcile.EditableForm{Fields: []reconcile.EditableField{
			{Name: "company", Value: "A"},
			{Name: "company", Value: "B"},
		}}},
		{"multiline scalar", reconcile.EditableForm{Fields: []reconcile.EditableField{
			{Name: "company", Multiline: true, Value: "A"},
		}}},
		{"single-line list", reconcile.EditableForm{Fields: []reconcile.EditableField{
			{Name: "benefits", Value: "Gym"},
		}}},
	}

	for _, c := range cases {
		if _, err := reconcile.FromEditable(c.form); err == nil {
			t.Errorf("%s: expected error, got nil", c.name)
		}
	}
}

// ── Restriction boundary ───────────────────────────────────────────────────

// An element containing an embedded newline is outside the round-trip
// contract: it splits into two elements on the way back.
func TestRoundTrip_EmbeddedNewlineSplits(t *testing.T) {
	r := validRecord()
	r.Requirements = []string{"Go\nSQL"}

	back, err := reconcile.FromEditable(reconcile.ToEditable(r))
	if err != nil {
		t.Fatalf("FromEditable returned unexpected error: %v", err)
	}
	if len(back.Requirements) != 2 || strings.Contains(back.Requirements[0], "\n") {
		t.Errorf("embedded newline should split the element, got %#v", back.Requirements)
	}
}
