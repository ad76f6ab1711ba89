// Package series aligns per-country historical and predicted case series into
// date-ordered rows that a multi-line chart can consume directly.
package series

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Historical is an observed case series as returned by the forecast backend.
// Dates[i] corresponds to Cases[i]. A NaN case is a date without a value.
type Historical struct {
	Dates []string  `json:"dates"`
	Cases []float64 `json:"cases"`
}

// Predicted is a forecast case series. Dates[i] corresponds to Cases[i].
// A NaN case is a date without a value.
type Predicted struct {
	Dates []string  `json:"predicted_dates"`
	Cases []float64 `json:"predicted_cases"`
}

// EntityResult is one compared entity (usually a country) with whatever series
// the fetch layer could obtain for it. Either half may be nil.
type EntityResult struct {
	Label      string
	Historical *Historical
	Predicted  *Predicted
}

// Point holds the optional actual and predicted value of one entity on one date.
type Point struct {
	Actual    *float64 `json:"actual,omitempty"`
	Predicted *float64 `json:"predicted,omitempty"`
}

// MergedRow is one date's worth of aligned values, keyed by entity key.
type MergedRow struct {
	Date   string           `json:"date"`
	Values map[string]Point `json:"values"`
}

// TrendPoint is a single non-keyed (date, cases) sample.
type TrendPoint struct {
	Date  string  `json:"date"`
	Cases float64 `json:"cases"`
}

// SeriesKind names one half of an EntityResult.
type SeriesKind string

const (
	KindHistorical SeriesKind = "historical"
	KindPredicted  SeriesKind = "predicted"
)

var (
	// ErrLengthMismatch is reported when a series has a different number of dates and cases.
	ErrLengthMismatch = errors.New("dates and cases have different lengths")
	// ErrKeyCollision is reported when two labels normalize to the same entity key.
	ErrKeyCollision = errors.New("entity key collision")
)

// SeriesError describes a rejected series of one entity.
type SeriesError struct {
	Label  string
	Series SeriesKind
	Err    error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("%s series of %q: %v", e.Series, e.Label, e.Err)
}

func (e *SeriesError) Unwrap() error {
	return e.Err
}

// EntityKey derives the grouping key of a label: every run of whitespace becomes
// a single underscore and the result is lowercased. Whitespace is the set a
// browser matches with \s, so U+FEFF counts and U+0085 does not.
func EntityKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	inSpace := false
	for _, r := range label {
		if isLabelSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	return strings.ToLower(b.String())
}

func isLabelSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// Zip pairs the dates and cases of a historical series positionally. It is the
// single-entity fallback used when no comparison is active. Dates without a
// value are skipped.
func Zip(h Historical) ([]TrendPoint, error) {
	if len(h.Dates) != len(h.Cases) {
		return nil, ErrLengthMismatch
	}

	points := make([]TrendPoint, 0, len(h.Dates))
	for i, date := range h.Dates {
		if math.IsNaN(h.Cases[i]) {
			continue
		}
		points = append(points, TrendPoint{Date: date, Cases: h.Cases[i]})
	}
	return points, nil
}

// DailyIncrements turns cumulative counts into per-day counts. The first sample is
// measured against zero and negative corrections are clamped to zero.
func DailyIncrements(cumulative []TrendPoint) []TrendPoint {
	daily := make([]TrendPoint, len(cumulative))

	prev := 0.0
	for i, p := range cumulative {
		delta := p.Cases - prev
		if delta < 0 {
			delta = 0
		}
		daily[i] = TrendPoint{Date: p.Date, Cases: delta}
		prev = p.Cases
	}
	return daily
}
