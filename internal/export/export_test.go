package export_test

import (
	"strings"
	"testing"

	"github.com/Malek720-420/InternExtract/internal/export"
	"github.com/Malek720-420/InternExtract/internal/schema"
)

func sampleRecord() schema.JobOfferRecord {
	return schema.JobOfferRecord{
		JobTitle:            "Backend Engineer",
		Company:             "ACME Corp",
		Location:            "Berlin",
		JobType:             "Full-time",
		Responsibilities:    []string{"Design APIs", "Review code"},
		Requirements:        []string{"Go"},
		Benefits:            nil,
		ApplicationDeadline: schema.NotSpecified,
	}
}

// ── Layout ─────────────────────────────────────────────────────────────────

func TestRender_FieldsAppearInContractOrder(t *testing.T) {
	text := export.Render(sampleRecord()).Text()

	pos := -1
	for _, f := range schema.Contract {
		label := export.FieldLabel(f.Name) + ":"
		at := strings.Index(text, label)
		if at < 0 {
			t.Fatalf("label %q missing from rendered document", label)
		}
		if at < pos {
			t.Errorf("label %q appears out of contract order", label)
		}
		pos = at
	}
}

func TestRender_EmptyListRendersSentinelLine(t *testing.T) {
	text := export.Render(sampleRecord()).Text()

	want := "Benefits:\n" + schema.NotSpecified
	if !strings.Contains(text, want) {
		t.Errorf("empty benefits section not rendered as sentinel:\n%s", text)
	}
}

func TestRender_ListItemsBecomeBullets(t *testing.T) {
	text := export.Render(sampleRecord()).Text()

	for _, want := range []string{"- Design APIs", "- Review code", "- Go"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing bullet %q", want)
		}
	}
}

func TestRender_TitleLeadsTheDocument(t *testing.T) {
	doc := export.Render(sampleRecord())
	if len(doc.Pages) == 0 || len(doc.Pages[0]) == 0 {
		t.Fatal("rendered document is empty")
	}
	if got := doc.Pages[0][0]; got != "Extracted Job Offer Details" {
		t.Errorf("first line = %q, want the document title", got)
	}
}

// ── Wrapping and pagination ────────────────────────────────────────────────

func TestRender_LongScalarWrapsAt80(t *testing.T) {
	rec := sampleRecord()
	rec.SetScalar("jobTitle", strings.Repeat("senior ", 30)+"engineer")

	doc := export.Render(rec)
	for _, page := range doc.Pages {
		for _, line := range page {
			if len(line) > 80 && !strings.Contains(line, " ") {
				continue // single overlong word is allowed through
			}
			if len(line) > 80 {
				t.Errorf("line exceeds width: %q (%d chars)", line, len(line))
			}
		}
	}
}

func TestRender_LongBulletIndentsContinuation(t *testing.T) {
	rec := sampleRecord()
	rec.SetList("requirements", []string{strings.Repeat("distributed systems ", 8) + "experience"})

	text := export.Render(rec).Text()
	if !strings.Contains(text, "\n  distributed") && !strings.Contains(text, "\n  experience") {
		t.Errorf("wrapped bullet has no indented continuation line:\n%s", text)
	}
}

func TestRender_ManyItemsSpillOntoSecondPage(t *testing.T) {
	rec := sampleRecord()
	items := make([]string, 60)
	for i := range items {
		items[i] = "duty"
	}
	rec.SetList("responsibilities", items)

	doc := export.Render(rec)
	if len(doc.Pages) < 2 {
		t.Fatalf("got %d pages, want at least 2", len(doc.Pages))
	}
	for i, page := range doc.Pages[:len(doc.Pages)-1] {
		if len(page) != 48 {
			t.Errorf("page %d has %d lines, want exactly 48", i, len(page))
		}
	}
	if !strings.Contains(doc.Text(), "\f") {
		t.Error("Text() output has no form-feed between pages")
	}
}

// ── Labels ─────────────────────────────────────────────────────────────────

func TestFieldLabel(t *testing.T) {
	cases := map[string]string{
		"jobTitle":            "Job Title",
		"company":             "Company",
		"applicationDeadline": "Application Deadline",
	}
	for in, want := range cases {
		if got := export.FieldLabel(in); got != want {
			t.Errorf("FieldLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
