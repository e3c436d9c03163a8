package flatten

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"owapi/datasource"
	"owapi/models"
)

func loadFixture(t *testing.T) models.OneCallResponse {
	t.Helper()
	body, err := os.ReadFile("testdata/onecall.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var resp models.OneCallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return resp
}

func utc(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCurrent_PromotesWeather(t *testing.T) {
	table, err := Current(loadFixture(t))
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	for _, col := range []string{"weather_id", "weather_main", "weather_description", "weather_icon"} {
		if !table.HasColumn(col) {
			t.Errorf("column %q missing; columns = %v", col, table.Columns())
		}
	}
	if table.HasColumn("weather") {
		t.Errorf("nested weather column still present")
	}

	if v, _ := table.Value(0, "weather_id"); v != 802.0 {
		t.Errorf("weather_id = %v, want 802", v)
	}
	if v, _ := table.Value(0, "weather_description"); v != "scattered clouds" {
		t.Errorf("weather_description = %v, want scattered clouds", v)
	}
}

func TestCurrent_Timestamps(t *testing.T) {
	table, err := Current(loadFixture(t))
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	want := map[string]time.Time{
		"dt":      utc("2024-06-15 10:00:00"),
		"sunrise": utc("2024-06-15 03:43:20"),
		"sunset":  utc("2024-06-15 20:20:00"),
	}
	for col, w := range want {
		v, ok := table.Value(0, col)
		if !ok {
			t.Fatalf("%s is null", col)
		}
		got, isTime := v.(time.Time)
		if !isTime {
			t.Fatalf("%s has type %T, want time.Time", col, v)
		}
		if !got.Equal(w) || got.Location() != time.UTC {
			t.Errorf("%s = %v, want %v UTC", col, got, w)
		}
	}
}

func TestHourly_UniformSchema(t *testing.T) {
	table, err := Hourly(loadFixture(t))
	if err != nil {
		t.Fatalf("Hourly() error = %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if !table.HasColumn("rain.1h") {
		t.Fatalf("rain.1h column missing; columns = %v", table.Columns())
	}
	if _, ok := table.Value(0, "rain.1h"); ok {
		t.Errorf("first hour has rain.1h, want null")
	}
	if v, _ := table.Value(1, "rain.1h"); v != 0.21 {
		t.Errorf("rain.1h = %v, want 0.21", v)
	}

	// only the first condition entry is promoted
	if v, _ := table.Value(1, "weather_main"); v != "Rain" {
		t.Errorf("weather_main = %v, want Rain", v)
	}
	if v, _ := table.Value(1, "dt"); !v.(time.Time).Equal(utc("2024-06-15 11:00:00")) {
		t.Errorf("dt = %v", v)
	}
	if cols := table.Columns(); cols[0] != "dt" {
		t.Errorf("first column = %q, want dt", cols[0])
	}
}

func TestDaily_DateAndNestedTemps(t *testing.T) {
	table, err := Daily(loadFixture(t))
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}

	dt, _ := table.Value(0, "dt")
	date, ok := dt.(models.Date)
	if !ok {
		t.Fatalf("daily dt has type %T, want models.Date", dt)
	}
	if date.String() != "1970-01-01" {
		t.Errorf("epoch 0 dt = %s, want 1970-01-01", date)
	}

	sunset, _ := table.Value(0, "sunset")
	if !sunset.(time.Time).Equal(utc("1970-01-01 12:00:00")) {
		t.Errorf("sunset = %v, want 1970-01-01 12:00:00", sunset)
	}

	next, _ := table.Value(1, "dt")
	if next.(models.Date).String() != "2024-06-16" {
		t.Errorf("second day dt = %v, want 2024-06-16", next)
	}

	for _, col := range []string{"temp.day", "temp.min", "temp.max", "feels_like.morn"} {
		if !table.HasColumn(col) {
			t.Errorf("column %q missing", col)
		}
	}
	if table.HasColumn("temp") {
		t.Errorf("nested temp object kept as a column")
	}
	if v, _ := table.Value(1, "temp.max"); v != 22.4 {
		t.Errorf("temp.max = %v, want 22.4", v)
	}
}

func TestMissingSection(t *testing.T) {
	var empty models.OneCallResponse

	for name, fn := range map[string]func(models.OneCallResponse) (*models.ForecastTable, error){
		"current": Current,
		"hourly":  Hourly,
		"daily":   Daily,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn(empty)
			if !errors.Is(err, datasource.ErrParse) {
				t.Fatalf("error = %v, want ErrParse", err)
			}
			var parseErr *datasource.ParseError
			if !errors.As(err, &parseErr) || parseErr.Section != name {
				t.Errorf("error = %#v, want ParseError for section %q", err, name)
			}
		})
	}
}

func TestEmptySectionIsNotMissing(t *testing.T) {
	resp := models.OneCallResponse{Hourly: []map[string]any{}}
	table, err := Hourly(resp)
	if err != nil {
		t.Fatalf("Hourly() error = %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestObject_WithoutWeather(t *testing.T) {
	rec := Object(map[string]any{"dt": 5.0, "wind_speed": 1.2, "alerts": []any{"x"}})
	for col := range rec {
		if len(col) > len(models.WeatherPrefix) && col[:len(models.WeatherPrefix)] == models.WeatherPrefix {
			t.Errorf("unexpected weather column %q", col)
		}
	}
	if _, ok := rec["alerts"].([]any); !ok {
		t.Errorf("non-weather array not kept as raw value: %#v", rec["alerts"])
	}
}

func TestConvertTimestamps_SkipsNonNumeric(t *testing.T) {
	rec := models.Record{"dt": "not a number", "sunrise": nil}
	ConvertTimestamps(rec, true)
	if rec["dt"] != "not a number" || rec["sunrise"] != nil {
		t.Errorf("non-numeric timestamps rewritten: %#v", rec)
	}
	if _, ok := rec["sunset"]; ok {
		t.Errorf("absent sunset column was created")
	}
}
