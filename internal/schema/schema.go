// Package schema defines the fixed extraction contract: the eight job-offer
// fields, their kinds, and the record shape every other component works with.
//
// The field order is part of the contract — it drives the extraction request,
// the editable-form layout and the export rendering order.
package schema

import "strings"

// NotSpecified is the placeholder stored in a scalar field the extraction
// could not resolve. List fields use an empty slice instead, never this value.
const NotSpecified = "Not specified"

// Kind distinguishes single-value fields from ordered string lists.
type Kind int

const (
	KindScalar Kind = iota
	KindList
)

// Field is one entry of the extraction contract.
type Field struct {
	Name string
	Kind Kind
}

// Contract lists the eight contract fields in canonical order.
var Contract = []Field{
	{Name: "jobTitle", Kind: KindScalar},
	{Name: "company", Kind: KindScalar},
	{Name: "location", Kind: KindScalar},
	{Name: "jobType", Kind: KindScalar},
	{Name: "responsibilities", Kind: KindList},
	{Name: "requirements", Kind: KindList},
	{Name: "benefits", Kind: KindList},
	{Name: "applicationDeadline", Kind: KindScalar},
}

// JobOfferRecord is one structured job offer. Its key set is always exactly
// the contract's field set — absent scalars carry NotSpecified, absent lists
// are empty slices.
type JobOfferRecord struct {
	JobTitle            string   `json:"jobTitle"`
	Company             string   `json:"company"`
	Location            string   `json:"location"`
	JobType             string   `json:"jobType"`
	Responsibilities    []string `json:"responsibilities"`
	Requirements        []string `json:"requirements"`
	Benefits            []string `json:"benefits"`
	ApplicationDeadline string   `json:"applicationDeadline"`
}

// Scalar returns the value of the named scalar field.
// The second return is false for unknown names or list fields.
func (r *JobOfferRecord) Scalar(name string) (string, bool) {
	p := r.scalarRef(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

// List returns the value of the named list field.
// The second return is false for unknown names or scalar fields.
func (r *JobOfferRecord) List(name string) ([]string, bool) {
	p := r.listRef(name)
	if p == nil {
		return nil, false
	}
	return *p, true
}

// SetScalar assigns a scalar field by name. Unknown names are ignored.
func (r *JobOfferRecord) SetScalar(name, value string) {
	if p := r.scalarRef(name); p != nil {
		*p = value
	}
}

// SetList assigns a list field by name. Unknown names are ignored.
func (r *JobOfferRecord) SetList(name string, value []string) {
	if p := r.listRef(name); p != nil {
		*p = value
	}
}

func (r *JobOfferRecord) scalarRef(name string) *string {
	switch name {
	case "jobTitle":
		return &r.JobTitle
	case "company":
		return &r.Company
	case "location":
		return &r.Location
	case "jobType":
		return &r.JobType
	case "applicationDeadline":
		return &r.ApplicationDeadline
	}
	return nil
}

func (r *JobOfferRecord) listRef(name string) *[]string {
	switch name {
	case "responsibilities":
		return &r.Responsibilities
	case "requirements":
		return &r.Requirements
	case "benefits":
		return &r.Benefits
	}
	return nil
}

// Normalize coerces an arbitrary decoded JSON object into a well-formed
// record. The inference service is trusted to parse as JSON but not to
// honor the contract: missing or mistyped scalars become NotSpecified,
// missing or mistyped lists become empty, non-string list members are
// dropped. The result's key set always equals the contract field set.
func Normalize(raw map[string]any) JobOfferRecord {
	var r JobOfferRecord
	for _, f := range Contract {
		switch f.Kind {
		case KindScalar:
			r.SetScalar(f.Name, coerceScalar(raw[f.Name]))
		case KindList:
			r.SetList(f.Name, coerceList(raw[f.Name]))
		}
	}
	return r
}

func coerceScalar(v any) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return NotSpecified
}

func coerceList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasData reports whether the record carries at least one resolved field:
// any scalar that is neither empty nor NotSpecified, or any non-empty list.
func HasData(r JobOfferRecord) bool {
	for _, f := range Contract {
		switch f.Kind {
		case KindScalar:
			if s, _ := r.Scalar(f.Name); s != "" && s != NotSpecified {
				return true
			}
		case KindList:
			if l, _ := r.List(f.Name); len(l) > 0 {
				return true
			}
		}
	}
	return false
}

// Equal compares two records field by field. Nil and empty lists compare equal.
func Equal(a, b JobOfferRecord) bool {
	for _, f := range Contract {
		switch f.Kind {
		case KindScalar:
			av, _ := a.Scalar(f.Name)
			bv, _ := b.Scalar(f.Name)
			if av != bv {
				return false
			}
		case KindList:
			al, _ := a.List(f.Name)
			bl, _ := b.List(f.Name)
			if len(al) != len(bl) {
				return false
			}
			for i := range al {
				if al[i] != bl[i] {
					return false
				}
			}
		}
	}
	return true
}
