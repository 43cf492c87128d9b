// Package export renders a reconciled record as a paginated plain-text
// document. The one contract it must honor: fields appear in exact
// SchemaContract order.
package export

import (
	"strings"
	"unicode"

	"github.com/Malek720-420/InternExtract/internal/schema"
)

const (
	title        = "Extracted Job Offer Details"
	lineWidth    = 80
	linesPerPage = 48
)

// Document is a rendered record, split into fixed-height pages.
type Document struct {
	Pages [][]string
}

// Text joins the pages with form-feed separators.
func (d Document) Text() string {
	pages := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		pages = append(pages, strings.Join(p, "\n"))
	}
	return strings.Join(pages, "\n\f\n")
}

// Render lays out the record field by field in contract order: scalars as a
// wrapped paragraph, lists as "- " bullets, an empty list as the sentinel
// line (mirrors how the original export filled empty sections).
func Render(r schema.JobOfferRecord) Document {
	var lines []string
	lines = append(lines, title, "")

	for _, f := range schema.Contract {
		lines = append(lines, FieldLabel(f.Name)+":")
		switch f.Kind {
		case schema.KindScalar:
			v, _ := r.Scalar(f.Name)
			lines = append(lines, wrap(v, lineWidth)...)
		case schema.KindList:
			items, _ := r.List(f.Name)
			if len(items) == 0 {
				lines = append(lines, schema.NotSpecified)
				break
			}
			for _, item := range items {
				lines = append(lines, bullet(item, lineWidth)...)
			}
		}
		lines = append(lines, "")
	}

	return paginate(lines)
}

// FieldLabel expands a camelCase contract name into a display label:
// "jobTitle" → "Job Title".
func FieldLabel(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func paginate(lines []string) Document {
	var doc Document
	for len(lines) > 0 {
		n := linesPerPage
		if n > len(lines) {
			n = len(lines)
		}
		doc.Pages = append(doc.Pages, lines[:n])
		lines = lines[n:]
	}
	return doc
}

// bullet renders one list item as "- ", continuation lines indented.
func bullet(item string, width int) []string {
	wrapped := wrap(item, width-2)
	out := make([]string, 0, len(wrapped))
	for i, line := range wrapped {
		if i == 0 {
			out = append(out, "- "+line)
		} else {
			out = append(out, "  "+line)
		}
	}
	return out
}

// wrap splits text into lines of at most width characters, breaking on
// spaces. A single word longer than width gets its own overlong line.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines []string
		cur   strings.Builder
	)
	for _, w := range words {
		if cur.Len() == 0 {
			cur.WriteString(w)
			continue
		}
		if cur.Len()+1+len(w) > width {
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(w)
			continue
		}
		cur.WriteByte(' ')
		cur.WriteString(w)
	}
	lines = append(lines, cur.String())
	return lines
}
