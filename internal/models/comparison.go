package models

import "covidtracker.io/internal/series"

// ComparedEntity names one line pair of the comparison chart
type ComparedEntity struct {
	Label        string `json:"label"`
	Key          string `json:"key"`
	ActualKey    string `json:"actualKey"`
	PredictedKey string `json:"predictedKey"`
}

// NewComparedEntity derives the chart field names of label
func NewComparedEntity(label string) ComparedEntity {
	key := series.EntityKey(label)
	return ComparedEntity{
		Label:        label,
		Key:          key,
		ActualKey:    key + "_actual",
		PredictedKey: key + "_predicted",
	}
}

// ComparisonEntry is the entry of the compare endpoint. Rows are flat chart
// records; see series.Flatten.
type ComparisonEntry struct {
	Days        int                 `json:"days"`
	Today       string              `json:"today"`
	Entities    []ComparedEntity    `json:"entities"`
	Rows        []map[string]any    `json:"rows"`
	Diagnostics []series.Diagnostic `json:"diagnostics"`
	Failed      []string            `json:"failed"`
}

// CountryDetail is the entry of the single-country endpoint
type CountryDetail struct {
	Stats       *CountryStats       `json:"stats"`
	Timeline    []series.TrendPoint `json:"timeline"`
	HasTimeline bool                `json:"hasTimeline"`
}
