package series

import (
	"encoding/json"
	"math"
)

// UnmarshalJSON decodes the backend payload leniently: a field that is absent
// or not an array of the expected type is left nil, which Merge reports as a
// missing series. A null case is kept as NaN so the date survives without a
// value.
func (h *Historical) UnmarshalJSON(data []byte) error {
	var raw struct {
		Dates json.RawMessage `json:"dates"`
		Cases json.RawMessage `json:"cases"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.Dates = decodeDates(raw.Dates)
	h.Cases = decodeCases(raw.Cases)
	return nil
}

// UnmarshalJSON decodes like Historical.UnmarshalJSON
func (p *Predicted) UnmarshalJSON(data []byte) error {
	var raw struct {
		Dates json.RawMessage `json:"predicted_dates"`
		Cases json.RawMessage `json:"predicted_cases"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Dates = decodeDates(raw.Dates)
	p.Cases = decodeCases(raw.Cases)
	return nil
}

// decodeDates returns nil unless raw is an array of strings
func decodeDates(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var elems []*string
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil
	}

	dates := make([]string, len(elems))
	for i, d := range elems {
		if d == nil {
			return nil
		}
		dates[i] = *d
	}
	return dates
}

// decodeCases returns nil unless raw is an array of numbers and nulls
func decodeCases(raw json.RawMessage) []float64 {
	if len(raw) == 0 {
		return nil
	}
	var elems []*float64
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil
	}

	cases := make([]float64, len(elems))
	for i, c := range elems {
		if c == nil {
			cases[i] = math.NaN()
			continue
		}
		cases[i] = *c
	}
	return cases
}
