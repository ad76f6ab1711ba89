package models

import "time"

// CurrentTimeModel is the entry of the current-time endpoint
type CurrentTimeModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	Today        string `json:"today"`
}

// NewCurrentTimeModel describes t. Today is the UTC calendar date the charts
// draw their "today" reference line at.
func NewCurrentTimeModel(t time.Time) CurrentTimeModel {
	return CurrentTimeModel{
		ReadableTime: t.Format(time.RFC3339),
		Time:         t.UnixMilli(),
		Today:        t.UTC().Format(time.DateOnly),
	}
}
