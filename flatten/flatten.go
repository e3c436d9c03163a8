// Package flatten turns nested One Call sections into flat table rows.
//
// Nested objects become dotted columns ("temp.day", "rain.1h"). The
// "weather" array is dropped and its first entry promoted into
// "weather_<field>" columns. Timestamp columns are converted from POSIX
// seconds to UTC times, or to calendar dates for daily "dt".
package flatten

import (
	"time"

	"owapi/datasource"
	"owapi/models"
)

// WeatherField is the nested condition array in every section.
const WeatherField = "weather"

const separator = "."

// TimestampFields are converted from POSIX seconds.
var TimestampFields = []string{"dt", "sunrise", "sunset"}

// Object flattens a single JSON object into a record.
func Object(obj map[string]any) models.Record {
	rec := make(models.Record, len(obj)+4)
	for key, value := range obj {
		if key == WeatherField {
			continue
		}
		flattenInto(rec, key, value)
	}
	for key, value := range weatherColumns(obj[WeatherField]) {
		rec[key] = value
	}
	return rec
}

func flattenInto(rec models.Record, prefix string, value any) {
	if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
		for key, inner := range nested {
			flattenInto(rec, prefix+separator+key, inner)
		}
		return
	}
	rec[prefix] = value
}

// weatherColumns returns the prefixed fields of the first condition entry.
func weatherColumns(value any) map[string]any {
	var entry map[string]any
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		entry, _ = v[0].(map[string]any)
	case map[string]any:
		entry = v
	}
	if entry == nil {
		return nil
	}

	cols := make(map[string]any, len(entry))
	for key, field := range entry {
		cols[models.WeatherPrefix+key] = field
	}
	return cols
}

// ConvertTimestamps replaces the numeric timestamp columns of rec with UTC
// times. With dateOnlyDT the "dt" column becomes a models.Date.
func ConvertTimestamps(rec models.Record, dateOnlyDT bool) {
	for _, field := range TimestampFields {
		secs, ok := rec[field].(float64)
		if !ok {
			continue
		}
		t := time.Unix(int64(secs), 0).UTC()
		if field == "dt" && dateOnlyDT {
			rec[field] = models.DateOf(t)
			continue
		}
		rec[field] = t
	}
}

// Section flattens every entry of a section into one table.
func Section(objs []map[string]any, dateOnlyDT bool) *models.ForecastTable {
	records := make([]models.Record, 0, len(objs))
	for _, obj := range objs {
		rec := Object(obj)
		ConvertTimestamps(rec, dateOnlyDT)
		records = append(records, rec)
	}
	return models.NewForecastTable(records)
}

// Current returns the single-row table of the "current" section.
func Current(resp models.OneCallResponse) (*models.ForecastTable, error) {
	if resp.Current == nil {
		return nil, missing("current")
	}
	return Section([]map[string]any{resp.Current}, false), nil
}

// Hourly returns one row per hour.
func Hourly(resp models.OneCallResponse) (*models.ForecastTable, error) {
	if resp.Hourly == nil {
		return nil, missing("hourly")
	}
	return Section(resp.Hourly, false), nil
}

// Daily returns one row per day with "dt" truncated to a calendar date.
func Daily(resp models.OneCallResponse) (*models.ForecastTable, error) {
	if resp.Daily == nil {
		return nil, missing("daily")
	}
	return Section(resp.Daily, true), nil
}

func missing(section string) error {
	return &datasource.ParseError{Op: "flatten", Section: section, Err: datasource.ErrMissingSection}
}
