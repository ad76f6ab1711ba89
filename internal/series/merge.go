package series

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"covidtracker.io/internal/logging"
)

// DiagnosticKind classifies a non-fatal problem found while merging.
type DiagnosticKind string

const (
	DiagnosticMissingSeries  DiagnosticKind = "missing_series"
	DiagnosticLengthMismatch DiagnosticKind = "length_mismatch"
	DiagnosticKeyCollision   DiagnosticKind = "key_collision"
)

// Diagnostic reports an input problem that Merge tolerated.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Label  string         `json:"label"`
	Key    string         `json:"key"`
	Series SeriesKind     `json:"series,omitempty"`
	Detail string         `json:"detail"`
}

// Result is the output of Merge.
type Result struct {
	Rows        []MergedRow
	Diagnostics []Diagnostic
}

type mergeOptions struct {
	strict bool
	logger *slog.Logger
}

// Option configures Merge.
type Option func(*mergeOptions)

// WithStrict makes Merge fail on length mismatches and key collisions instead of
// skipping or overwriting. Missing series are never an error.
func WithStrict() Option {
	return func(o *mergeOptions) {
		o.strict = true
	}
}

// WithLogger makes Merge log a warning for every diagnostic it records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *mergeOptions) {
		o.logger = logger
	}
}

// column is one accepted half of an entity, indexed by date.
type column struct {
	key   string
	cases []float64
	index map[string]int
	kind  SeriesKind
}

// Merge combines the series of all entities into one row per distinct date,
// sorted ascending. Entity order decides which value wins when two labels share
// a key: the later entity overwrites the earlier one field by field.
func Merge(entities []EntityResult, opts ...Option) (Result, error) {
	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var result Result
	record := func(d Diagnostic) {
		result.Diagnostics = append(result.Diagnostics, d)
		if o.logger != nil {
			o.logger.Warn("series merge diagnostic",
				slog.String("kind", string(d.Kind)),
				slog.String("label", d.Label),
				slog.String("key", d.Key),
				slog.String("series", string(d.Series)),
				slog.String("component", "series_merger"))
		}
	}

	owners := make(map[string]string, len(entities))
	columns := make([]column, 0, 2*len(entities))

	for _, entity := range entities {
		key := EntityKey(entity.Label)

		if owner, seen := owners[key]; seen {
			if o.strict {
				return Result{}, fmt.Errorf("%w: %q and %q both normalize to %q", ErrKeyCollision, owner, entity.Label, key)
			}
			record(Diagnostic{
				Kind:   DiagnosticKeyCollision,
				Label:  entity.Label,
				Key:    key,
				Detail: fmt.Sprintf("overwrites values of %q", owner),
			})
		}
		owners[key] = entity.Label

		halves := []struct {
			kind  SeriesKind
			dates []string
			cases []float64
		}{
			{kind: KindHistorical},
			{kind: KindPredicted},
		}
		if h := entity.Historical; h != nil {
			halves[0].dates, halves[0].cases = h.Dates, h.Cases
		}
		if p := entity.Predicted; p != nil {
			halves[1].dates, halves[1].cases = p.Dates, p.Cases
		}

		for _, half := range halves {
			if half.dates == nil || half.cases == nil {
				record(Diagnostic{
					Kind:   DiagnosticMissingSeries,
					Label:  entity.Label,
					Key:    key,
					Series: half.kind,
					Detail: "no dates or cases array",
				})
				continue
			}

			if len(half.dates) != len(half.cases) {
				if o.strict {
					return Result{}, &SeriesError{Label: entity.Label, Series: half.kind, Err: ErrLengthMismatch}
				}
				record(Diagnostic{
					Kind:   DiagnosticLengthMismatch,
					Label:  entity.Label,
					Key:    key,
					Series: half.kind,
					Detail: fmt.Sprintf("%d dates, %d cases", len(half.dates), len(half.cases)),
				})
				continue
			}

			columns = append(columns, newColumn(key, half.kind, half.dates, half.cases))
		}
	}

	result.Rows = buildRows(columns)
	return result, nil
}

func newColumn(key string, kind SeriesKind, dates []string, cases []float64) column {
	index := make(map[string]int, len(dates))
	for i, date := range dates {
		// first occurrence wins
		if _, exists := index[date]; !exists {
			index[date] = i
		}
	}
	return column{key: key, cases: cases, index: index, kind: kind}
}

func buildRows(columns []column) []MergedRow {
	union := make(map[string]struct{})
	for _, c := range columns {
		for date := range c.index {
			union[date] = struct{}{}
		}
	}

	dates := make([]string, 0, len(union))
	for date := range union {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	rows := make([]MergedRow, 0, len(dates))
	for _, date := range dates {
		row := MergedRow{Date: date, Values: make(map[string]Point)}

		for _, c := range columns {
			i, ok := c.index[date]
			if !ok {
				continue
			}
			value := c.cases[i]
			if math.IsNaN(value) {
				continue
			}
			point := row.Values[c.key]
			if c.kind == KindHistorical {
				point.Actual = &value
			} else {
				point.Predicted = &value
			}
			row.Values[c.key] = point
		}

		rows = append(rows, row)
	}
	return rows
}

// Flatten turns rows into flat records of the form
// {"date": d, "<key>_actual": v, "<key>_predicted": v} for charting libraries
// that address lines by field name.
func Flatten(rows []MergedRow) []map[string]any {
	flat := make([]map[string]any, len(rows))
	for i, row := range rows {
		record := make(map[string]any, 1+2*len(row.Values))
		record["date"] = row.Date
		for key, point := range row.Values {
			if point.Actual != nil {
				record[key+"_actual"] = *point.Actual
			}
			if point.Predicted != nil {
				record[key+"_predicted"] = *point.Predicted
			}
		}
		flat[i] = record
	}
	return flat
}

// LogDiagnostics writes a summary of the diagnostics of a merge.
func LogDiagnostics(logger *slog.Logger, diagnostics []Diagnostic) {
	if len(diagnostics) == 0 {
		return
	}
	counts := make(map[DiagnosticKind]int)
	for _, d := range diagnostics {
		counts[d.Kind]++
	}
	logging.LogOperation(logger, "series_merge_diagnostics",
		slog.Int("missing_series", counts[DiagnosticMissingSeries]),
		slog.Int("length_mismatch", counts[DiagnosticLengthMismatch]),
		slog.Int("key_collision", counts[DiagnosticKeyCollision]),
		slog.String("component", "series_merger"))
}
