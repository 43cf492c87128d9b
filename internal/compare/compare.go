// Package compare aggregates persisted records into normalized metrics and
// asks the inference service for a chart-ready comparison artifact.
//
// Only derived counters and job titles ever leave the process — never the
// full record text. Unlike extraction there is no retry loop: any failure is
// reported once.
package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Malek720-420/InternExtract/internal/schema"
)

// ErrInsufficientData — fewer than two records is a rejected precondition,
// checked before any network call.
var ErrInsufficientData = errors.New("comparison requires at least two records")

// metrics are the three axes of the comparison chart, in render order.
var metrics = []string{"responsibilities", "requirements", "benefits"}

// Generator is the slice of the inference client the engine needs.
type Generator interface {
	GenerateOnce(ctx context.Context, prompt string, responseSchema map[string]any) (map[string]any, error)
}

// Series carries one chart axis: the metric name and one value per compared
// record, scaled to the fixed 0–10 range.
type Series struct {
	Metric string    `json:"metric"`
	Values []float64 `json:"values"`
}

// Result is directly renderable by a radar/spider chart: one axis per
// metric, one overlay per record. Narrative is free text, rendered verbatim.
type Result struct {
	Labels    []string `json:"labels"`
	Series    []Series `json:"series"`
	Narrative string   `json:"narrative"`
}

// Engine turns ≥2 records into a comparison Result.
type Engine struct {
	gen Generator
}

// NewEngine returns an Engine backed by the given inference generator.
func NewEngine(gen Generator) *Engine {
	return &Engine{gen: gen}
}

// Compare derives the per-record counters, requests the structured
// comparison artifact, and returns it with every series value clamped to
// 0–10. The caller replaces any previously rendered result with this one.
func (e *Engine) Compare(ctx context.Context, records []schema.JobOfferRecord) (*Result, error) {
	if len(records) < 2 {
		return nil, ErrInsufficientData
	}

	raw, err := e.gen.GenerateOnce(ctx, comparisonPrompt(records), responseSchema())
	if err != nil {
		return nil, fmt.Errorf("comparison request: %w", err)
	}

	result, err := decodeResult(raw, records)
	if err != nil {
		return nil, fmt.Errorf("comparison payload: %w", err)
	}
	return result, nil
}

// comparisonPrompt embeds only the derived counters and job titles.
func comparisonPrompt(records []schema.JobOfferRecord) string {
	var b strings.Builder
	b.WriteString("Compare the following job offers. For each offer you are given the job title and ")
	b.WriteString("three counters: the number of listed responsibilities, requirements and benefits.\n")
	b.WriteString("Return a JSON object with: labels (one label per offer, based on its job title), ")
	b.WriteString("series (one entry per metric — responsibilities, requirements, benefits — each with ")
	b.WriteString("a values array holding one number per offer scaled to a 0-10 range), and narrative ")
	b.WriteString("(a short comparison text).\n\n")

	for i, r := range records {
		fmt.Fprintf(&b, "Offer %d: jobTitle=%q responsibilities=%d requirements=%d benefits=%d\n",
			i+1, r.JobTitle, len(r.Responsibilities), len(r.Requirements), len(r.Benefits))
	}
	return b.String()
}

// responseSchema describes the comparison artifact shape for the
// structured-output request.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"labels": map[string]any{
				"type":  "ARRAY",
				"items": map[string]any{"type": "STRING"},
			},
			"series": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"metric": map[string]any{"type": "STRING"},
						"values": map[string]any{
							"type":  "ARRAY",
							"items": map[string]any{"type": "NUMBER"},
						},
					},
					"propertyOrdering": []string{"metric", "values"},
				},
			},
			"narrative": map[string]any{"type": "STRING"},
		},
		"propertyOrdering": []string{"labels", "series", "narrative"},
	}
}

// decodeResult coerces the decoded JSON object into a Result. The service is
// trusted to return JSON, not to honor the shape: labels fall back to the
// records' job titles, missing value arrays are zero-padded, every value is
// clamped to 0–10. A payload with no usable series at all is an error.
func decodeResult(raw map[string]any, records []schema.JobOfferRecord) (*Result, error) {
	result := &Result{
		Labels:    decodeLabels(raw["labels"], records),
		Narrative: stringOr(raw["narrative"], ""),
	}

	bySeries := make(map[string][]float64)
	if items, ok := raw["series"].([]any); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			metric := strings.ToLower(stringOr(obj["metric"], ""))
			bySeries[metric] = decodeValues(obj["values"])
		}
	}
	if len(bySeries) == 0 {
		return nil, errors.New("no series in response")
	}

	for _, m := range metrics {
		values := bySeries[m]
		// One value per record, whatever the service actually sent.
		padded := make([]float64, len(records))
		for i := range padded {
			if i < len(values) {
				padded[i] = clamp(values[i])
			}
		}
		result.Series = append(result.Series, Series{Metric: m, Values: padded})
	}

	return result, nil
}

func decodeLabels(v any, records []schema.JobOfferRecord) []string {
	labels := make([]string, len(records))
	items, _ := v.([]any)
	for i := range labels {
		if i < len(items) {
			if s, ok := items[i].(string); ok && s != "" {
				labels[i] = s
				continue
			}
		}
		labels[i] = records[i].JobTitle
	}
	return labels
}

func decodeValues(v any) []float64 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if f, ok := item.(float64); ok {
			out = append(out, f)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	}
	return v
}
