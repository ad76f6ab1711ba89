package series

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidtracker.io/internal/logging"
)

func num(v float64) *float64 {
	return &v
}

func TestEntityKey(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"India", "india"},
		{"UNITED STATES", "united_states"},
		{"united  states", "united_states"},
		{"United\tStates", "united_states"},
		{" Brazil", "_brazil"},
		{"Bosnia and\n Herzegovina", "bosnia_and_herzegovina"},
		{"Côte d'Ivoire", "côte_d'ivoire"},
		{"\uFEFFIndia", "_india"},
		{"South\uFEFF Korea", "south_korea"},
		{"New\u0085Zealand", "new\u0085zealand"},
		{"Sri\u00a0Lanka", "sri_lanka"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, EntityKey(tt.label))
		})
	}
}

func TestMergeSingleEntityScenario(t *testing.T) {
	entities := []EntityResult{
		{
			Label:      "A",
			Historical: &Historical{Dates: []string{"2021-01-01", "2021-01-02"}, Cases: []float64{10, 20}},
			Predicted:  &Predicted{Dates: []string{"2021-01-02", "2021-01-03"}, Cases: []float64{25, 30}},
		},
	}

	result, err := Merge(entities)
	require.NoError(t, err)

	want := []MergedRow{
		{Date: "2021-01-01", Values: map[string]Point{"a": {Actual: num(10)}}},
		{Date: "2021-01-02", Values: map[string]Point{"a": {Actual: num(20), Predicted: num(25)}}},
		{Date: "2021-01-03", Values: map[string]Point{"a": {Predicted: num(30)}}},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("Merge() rows mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Diagnostics)
}

func TestMergeZeroEntities(t *testing.T) {
	result, err := Merge(nil)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Diagnostics)

	result, err = Merge([]EntityResult{})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestMergeRowsSortedAndUnique(t *testing.T) {
	entities := []EntityResult{
		{
			Label:      "India",
			Historical: &Historical{Dates: []string{"2021-03-01", "2021-01-15", "2021-02-01"}, Cases: []float64{3, 1, 2}},
			Predicted:  &Predicted{Dates: []string{"2021-04-01", "2021-03-01"}, Cases: []float64{5, 4}},
		},
		{
			Label:      "Brazil",
			Historical: &Historical{Dates: []string{"2021-02-01", "2020-12-31"}, Cases: []float64{7, 6}},
			Predicted:  &Predicted{Dates: []string{"2021-05-01"}, Cases: []float64{9}},
		},
	}

	result, err := Merge(entities)
	require.NoError(t, err)

	dates := make([]string, len(result.Rows))
	for i, row := range result.Rows {
		dates[i] = row.Date
	}
	assert.Equal(t, []string{"2020-12-31", "2021-01-15", "2021-02-01", "2021-03-01", "2021-04-01", "2021-05-01"}, dates)

	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i], "rows must be strictly ascending")
	}
}

func TestMergeValuePresence(t *testing.T) {
	entities := []EntityResult{
		{
			Label:      "India",
			Historical: &Historical{Dates: []string{"2021-01-01", "2021-01-02", "2021-01-03"}, Cases: []float64{1, 2, 3}},
			Predicted:  &Predicted{Dates: []string{"2021-01-03", "2021-01-04"}, Cases: []float64{30, 40}},
		},
		{
			Label:      "Peru",
			Historical: &Historical{Dates: []string{"2021-01-02"}, Cases: []float64{200}},
			Predicted:  &Predicted{Dates: []string{"2021-01-05"}, Cases: []float64{500}},
		},
	}

	result, err := Merge(entities)
	require.NoError(t, err)

	for _, row := range result.Rows {
		for _, entity := range entities {
			key := EntityKey(entity.Label)
			point := row.Values[key]

			histIdx := slices.Index(entity.Historical.Dates, row.Date)
			if histIdx >= 0 {
				require.NotNil(t, point.Actual, "%s actual on %s", key, row.Date)
				assert.Equal(t, entity.Historical.Cases[histIdx], *point.Actual)
			} else {
				assert.Nil(t, point.Actual, "%s actual on %s", key, row.Date)
			}

			predIdx := slices.Index(entity.Predicted.Dates, row.Date)
			if predIdx >= 0 {
				require.NotNil(t, point.Predicted, "%s predicted on %s", key, row.Date)
				assert.Equal(t, entity.Predicted.Cases[predIdx], *point.Predicted)
			} else {
				assert.Nil(t, point.Predicted, "%s predicted on %s", key, row.Date)
			}
		}
	}

	assert.Len(t, result.Rows, 5, "only dates from the inputs appear")
}

func TestMergeMissingSeries(t *testing.T) {
	t.Run("nil halves contribute nothing", func(t *testing.T) {
		entities := []EntityResult{
			{Label: "Chile"},
			{
				Label:      "Peru",
				Historical: &Historical{Dates: []string{"2021-01-01"}, Cases: []float64{1}},
			},
		}

		result, err := Merge(entities, WithStrict())
		require.NoError(t, err, "missing series are never an error")

		want := []MergedRow{
			{Date: "2021-01-01", Values: map[string]Point{"peru": {Actual: num(1)}}},
		}
		if diff := cmp.Diff(want, result.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}

		require.Len(t, result.Diagnostics, 3)
		for _, d := range result.Diagnostics {
			assert.Equal(t, DiagnosticMissingSeries, d.Kind)
		}
	})

	t.Run("absent cases array drops the dates too", func(t *testing.T) {
		entities := []EntityResult{
			{
				Label:      "Chile",
				Historical: &Historical{Dates: []string{"2021-01-01", "2021-01-02"}},
				Predicted:  &Predicted{Dates: []string{"2021-01-03"}, Cases: []float64{9}},
			},
		}

		result, err := Merge(entities)
		require.NoError(t, err)

		want := []MergedRow{
			{Date: "2021-01-03", Values: map[string]Point{"chile": {Predicted: num(9)}}},
		}
		if diff := cmp.Diff(want, result.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, KindHistorical, result.Diagnostics[0].Series)
	})

	t.Run("empty arrays are valid and empty", func(t *testing.T) {
		entities := []EntityResult{
			{
				Label:      "Chile",
				Historical: &Historical{Dates: []string{}, Cases: []float64{}},
				Predicted:  &Predicted{Dates: []string{}, Cases: []float64{}},
			},
		}

		result, err := Merge(entities)
		require.NoError(t, err)
		assert.Empty(t, result.Rows)
		assert.Empty(t, result.Diagnostics)
	})
}

func TestMergeLengthMismatch(t *testing.T) {
	entities := []EntityResult{
		{
			Label:      "Chile",
			Historical: &Historical{Dates: []string{"2021-01-01", "2021-01-02"}, Cases: []float64{1}},
			Predicted:  &Predicted{Dates: []string{"2021-01-03"}, Cases: []float64{3}},
		},
		{
			Label:      "Peru",
			Historical: &Historical{Dates: []string{"2021-01-02"}, Cases: []float64{20}},
		},
	}

	t.Run("lenient mode rejects only the malformed half", func(t *testing.T) {
		result, err := Merge(entities)
		require.NoError(t, err)

		want := []MergedRow{
			{Date: "2021-01-02", Values: map[string]Point{"peru": {Actual: num(20)}}},
			{Date: "2021-01-03", Values: map[string]Point{"chile": {Predicted: num(3)}}},
		}
		if diff := cmp.Diff(want, result.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}

		var mismatches []Diagnostic
		for _, d := range result.Diagnostics {
			if d.Kind == DiagnosticLengthMismatch {
				mismatches = append(mismatches, d)
			}
		}
		require.Len(t, mismatches, 1)
		assert.Equal(t, "Chile", mismatches[0].Label)
		assert.Equal(t, KindHistorical, mismatches[0].Series)
		assert.Equal(t, "2 dates, 1 cases", mismatches[0].Detail)
	})

	t.Run("strict mode returns a typed error", func(t *testing.T) {
		_, err := Merge(entities, WithStrict())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLengthMismatch))

		var seriesErr *SeriesError
		require.True(t, errors.As(err, &seriesErr))
		assert.Equal(t, "Chile", seriesErr.Label)
		assert.Equal(t, KindHistorical, seriesErr.Series)
	})
}

func TestMergeKeyCollision(t *testing.T) {
	// Both labels normalize to united_states. The later entity overwrites the
	// earlier one field by field; this is tolerated, not desired.
	entities := []EntityResult{
		{
			Label:      "United States",
			Historical: &Historical{Dates: []string{"2021-01-01", "2021-01-02"}, Cases: []float64{100, 200}},
			Predicted:  &Predicted{Dates: []string{"2021-01-03"}, Cases: []float64{300}},
		},
		{
			Label:      "united  states",
			Historical: &Historical{Dates: []string{"2021-01-02"}, Cases: []float64{999}},
		},
	}

	t.Run("lenient mode merges fields and reports the collision", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		result, err := Merge(entities, WithLogger(logger))
		require.NoError(t, err)

		want := []MergedRow{
			{Date: "2021-01-01", Values: map[string]Point{"united_states": {Actual: num(100)}}},
			{Date: "2021-01-02", Values: map[string]Point{"united_states": {Actual: num(999)}}},
			{Date: "2021-01-03", Values: map[string]Point{"united_states": {Predicted: num(300)}}},
		}
		if diff := cmp.Diff(want, result.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}

		var collisions []Diagnostic
		for _, d := range result.Diagnostics {
			if d.Kind == DiagnosticKeyCollision {
				collisions = append(collisions, d)
			}
		}
		require.Len(t, collisions, 1)
		assert.Equal(t, "united  states", collisions[0].Label)
		assert.Equal(t, "united_states", collisions[0].Key)

		output := buf.String()
		assert.Contains(t, output, `"level":"WARN"`)
		assert.Contains(t, output, `"kind":"key_collision"`)
	})

	t.Run("strict mode rejects the collision", func(t *testing.T) {
		_, err := Merge(entities, WithStrict())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrKeyCollision))
		assert.Contains(t, err.Error(), "united_states")
	})
}

func TestMergeFirstIndexWinsWithinSeries(t *testing.T) {
	entities := []EntityResult{
		{
			Label:      "Chile",
			Historical: &Historical{Dates: []string{"2021-01-01", "2021-01-01"}, Cases: []float64{1, 2}},
		},
	}

	result, err := Merge(entities)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1.0, *result.Rows[0].Values["chile"].Actual)
}

func TestMergeSingleEntityRoundTrip(t *testing.T) {
	h := Historical{
		Dates: []string{"2020-03-01", "2020-03-02", "2020-03-03", "2020-03-04"},
		Cases: []float64{5, 8, 13, 21},
	}

	result, err := Merge([]EntityResult{{Label: "New Zealand", Historical: &h}})
	require.NoError(t, err)

	zipped, err := Zip(h)
	require.NoError(t, err)
	require.Len(t, result.Rows, len(zipped))

	for i, point := range zipped {
		row := result.Rows[i]
		assert.Equal(t, point.Date, row.Date)
		require.NotNil(t, row.Values["new_zealand"].Actual)
		assert.Equal(t, point.Cases, *row.Values["new_zealand"].Actual)
	}
}

func TestMergeIsPureAndIdempotent(t *testing.T) {
	entities := []EntityResult{
		{
			Label:      "Japan",
			Historical: &Historical{Dates: []string{"2021-01-03", "2021-01-01"}, Cases: []float64{3, 1}},
			Predicted:  &Predicted{Dates: []string{"2021-01-04"}, Cases: []float64{4}},
		},
		{Label: "Korea", Historical: &Historical{Dates: []string{"2021-01-02"}, Cases: []float64{2}}},
	}
	before := []string{"2021-01-03", "2021-01-01"}

	first, err := Merge(entities)
	require.NoError(t, err)
	second, err := Merge(entities)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Merge is not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, before, entities[0].Historical.Dates, "inputs must not be reordered")
}

func TestFlatten(t *testing.T) {
	rows := []MergedRow{
		{Date: "2021-01-01", Values: map[string]Point{"a": {Actual: num(10)}}},
		{Date: "2021-01-02", Values: map[string]Point{
			"a":             {Actual: num(20), Predicted: num(25)},
			"united_states": {Predicted: num(7)},
		}},
	}

	flat := Flatten(rows)

	want := []map[string]any{
		{"date": "2021-01-01", "a_actual": 10.0},
		{"date": "2021-01-02", "a_actual": 20.0, "a_predicted": 25.0, "united_states_predicted": 7.0},
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestZip(t *testing.T) {
	t.Run("pairs dates and cases", func(t *testing.T) {
		points, err := Zip(Historical{Dates: []string{"2021-01-01", "2021-01-02"}, Cases: []float64{1, 2}})
		require.NoError(t, err)
		assert.Equal(t, []TrendPoint{{Date: "2021-01-01", Cases: 1}, {Date: "2021-01-02", Cases: 2}}, points)
	})

	t.Run("skips dates without a value", func(t *testing.T) {
		points, err := Zip(Historical{Dates: []string{"2021-01-01", "2021-01-02"}, Cases: []float64{math.NaN(), 2}})
		require.NoError(t, err)
		assert.Equal(t, []TrendPoint{{Date: "2021-01-02", Cases: 2}}, points)
	})

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		_, err := Zip(Historical{Dates: []string{"2021-01-01"}})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})
}

func TestDailyIncrements(t *testing.T) {
	cumulative := []TrendPoint{
		{Date: "2020-01-22", Cases: 557},
		{Date: "2020-01-23", Cases: 657},
		{Date: "2020-01-24", Cases: 640},
		{Date: "2020-01-25", Cases: 1000},
	}

	daily := DailyIncrements(cumulative)

	assert.Equal(t, []TrendPoint{
		{Date: "2020-01-22", Cases: 557},
		{Date: "2020-01-23", Cases: 100},
		{Date: "2020-01-24", Cases: 0},
		{Date: "2020-01-25", Cases: 360},
	}, daily)
	assert.Empty(t, DailyIncrements(nil))
}

func TestLogDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	LogDiagnostics(logger, nil)
	assert.Empty(t, buf.String())

	LogDiagnostics(logger, []Diagnostic{
		{Kind: DiagnosticMissingSeries},
		{Kind: DiagnosticKeyCollision},
		{Kind: DiagnosticKeyCollision},
	})
	output := buf.String()
	assert.Contains(t, output, `"msg":"series_merge_diagnostics"`)
	assert.Contains(t, output, `"key_collision":2`)
	assert.Contains(t, output, `"missing_series":1`)
}
