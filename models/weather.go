package models

import (
	"fmt"
	"time"
)

// OneCallResponse is the parsed One Call API payload. Sections missing from
// the JSON are left nil; an empty array decodes to a non-nil empty slice.
type OneCallResponse struct {
	Lat            float64          `json:"lat"`
	Lon            float64          `json:"lon"`
	Timezone       string           `json:"timezone"`
	TimezoneOffset int              `json:"timezone_offset"`
	Current        map[string]any   `json:"current"`
	Hourly         []map[string]any `json:"hourly"`
	Daily          []map[string]any `json:"daily"`
}

// Record is one flattened row (a WeatherRecord), keyed by column name.
type Record map[string]any

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the UTC calendar date of t.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
