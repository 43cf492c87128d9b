// Package reconcile converts extracted records into editable forms and user
// edits back into the canonical record shape. It is pure data transformation:
// no store, no network.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/Malek720-420/InternExtract/internal/schema"
)

// EditableField is one edit widget: a single-line input for scalar fields or
// a multi-line area (one list element per line) for list fields.
type EditableField struct {
	Name      string `json:"name"`
	Multiline bool   `json:"multiline"`
	Value     string `json:"value"`
}

// EditableForm is the editable working copy of a record, fields in contract
// order.
type EditableForm struct {
	Fields []EditableField `json:"fields"`
}

// ToEditable maps a record onto an editable form. Scalar values are copied
// verbatim (including the NotSpecified sentinel); list values are joined
// with newlines, one element per line.
func ToEditable(r schema.JobOfferRecord) EditableForm {
	form := EditableForm{Fields: make([]EditableField, 0, len(schema.Contract))}
	for _, f := range schema.Contract {
		switch f.Kind {
		case schema.KindScalar:
			v, _ := r.Scalar(f.Name)
			form.Fields = append(form.Fields, EditableField{Name: f.Name, Value: v})
		case schema.KindList:
			l, _ := r.List(f.Name)
			form.Fields = append(form.Fields, EditableField{
				Name:      f.Name,
				Multiline: true,
				Value:     strings.Join(l, "\n"),
			})
		}
	}
	return form
}

// FromEditable maps an edited form back to a record. Single-line values are
// taken verbatim; multi-line values are split on newlines, each line trimmed,
// empty lines discarded. Fields absent from the form fall back to the
// sentinel (scalar) or the empty list.
//
// Round-trip: FromEditable(ToEditable(r)) == r whenever no list element of r
// contains a newline and none is blank or whitespace-only. A whitespace-only
// element is indistinguishable from a blank line and is dropped — a
// documented limitation of the form encoding, not something this layer tries
// to repair.
func FromEditable(form EditableForm) (schema.JobOfferRecord, error) {
	var r schema.JobOfferRecord
	seen := make(map[string]bool, len(form.Fields))

	for _, ef := range form.Fields {
		kind, ok := contractKind(ef.Name)
		if !ok {
			return schema.JobOfferRecord{}, fmt.Errorf("unknown field %q", ef.Name)
		}
		if seen[ef.Name] {
			return schema.JobOfferRecord{}, fmt.Errorf("duplicate field %q", ef.Name)
		}
		seen[ef.Name] = true

		switch kind {
		case schema.KindScalar:
			if ef.Multiline {
				return schema.JobOfferRecord{}, fmt.Errorf("field %q is scalar, got multiline", ef.Name)
			}
			r.SetScalar(ef.Name, ef.Value)
		case schema.KindList:
			if !ef.Multiline {
				return schema.JobOfferRecord{}, fmt.Errorf("field %q is a list, got single-line", ef.Name)
			}
			r.SetList(ef.Name, splitLines(ef.Value))
		}
	}

	// Fill fields the form omitted so the key set stays exactly the contract.
	for _, f := range schema.Contract {
		if seen[f.Name] {
			continue
		}
		switch f.Kind {
		case schema.KindScalar:
			r.SetScalar(f.Name, schema.NotSpecified)
		case schema.KindList:
			r.SetList(f.Name, []string{})
		}
	}

	return r, nil
}

func contractKind(name string) (schema.Kind, bool) {
	for _, f := range schema.Contract {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return 0, false
}

// splitLines turns a multi-line widget value into list elements: split on
// newline, trim each line, discard empties.
func splitLines(v string) []string {
	out := []string{}
	for _, line := range strings.Split(v, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
