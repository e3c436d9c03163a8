package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"owapi/models"
)

func sampleTable() *models.ForecastTable {
	return models.NewForecastTable([]models.Record{
		{
			"dt":                  models.DateOf(time.Unix(0, 0)),
			"sunrise":             time.Unix(21600, 0).UTC(),
			"humidity":            64.0,
			"temp.day":            19.2,
			"weather_description": "broken clouds",
			"alerts":              []any{"wind"},
		},
		{
			"dt":       models.DateOf(time.Unix(86400, 0)),
			"humidity": 58.0,
			"temp.day": 20.0,
			"snow":     true,
		},
	})
}

func TestSchema_InfersTypes(t *testing.T) {
	schema := Schema(sampleTable())

	want := map[string]arrow.Type{
		"dt":                  arrow.DATE32,
		"sunrise":             arrow.TIMESTAMP,
		"humidity":            arrow.INT64,
		"temp.day":            arrow.FLOAT64,
		"weather_description": arrow.STRING,
		"alerts":              arrow.STRING,
		"snow":                arrow.BOOL,
	}

	if schema.NumFields() != len(want) {
		t.Fatalf("NumFields() = %d, want %d", schema.NumFields(), len(want))
	}
	for name, typ := range want {
		idx := schema.FieldIndices(name)
		if len(idx) != 1 {
			t.Fatalf("field %q not found in %v", name, schema)
		}
		if got := schema.Field(idx[0]).Type.ID(); got != typ {
			t.Errorf("field %q type = %v, want %v", name, got, typ)
		}
	}
	if schema.Field(0).Name != "dt" {
		t.Errorf("first field = %q, want dt", schema.Field(0).Name)
	}
}

func TestToRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec, err := ToRecord(mem, sampleTable())
	if err != nil {
		t.Fatalf("ToRecord() error = %v", err)
	}
	defer rec.Release()

	if rec.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", rec.NumRows())
	}

	idx := rec.Schema().FieldIndices("sunrise")[0]
	sunrise := rec.Column(idx).(*array.Timestamp)
	if sunrise.Value(0) != arrow.Timestamp(21600) {
		t.Errorf("sunrise[0] = %v, want 21600", sunrise.Value(0))
	}
	if !sunrise.IsNull(1) {
		t.Errorf("sunrise[1] is not null")
	}

	idx = rec.Schema().FieldIndices("dt")[0]
	dt := rec.Column(idx).(*array.Date32)
	if dt.Value(0) != 0 || dt.Value(1) != 1 {
		t.Errorf("dt = %v, %v; want days 0, 1", dt.Value(0), dt.Value(1))
	}

	idx = rec.Schema().FieldIndices("alerts")[0]
	alerts := rec.Column(idx).(*array.String)
	if alerts.Value(0) != `["wind"]` {
		t.Errorf("alerts[0] = %q, want JSON array", alerts.Value(0))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	table := sampleTable()

	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}
	if lines[0] != strings.Join(table.Columns(), ",") {
		t.Errorf("header = %q, want %q", lines[0], strings.Join(table.Columns(), ","))
	}
	if !strings.Contains(lines[1], "1970-01-01") {
		t.Errorf("first row missing date: %q", lines[1])
	}
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, models.NewForecastTable(nil)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q for empty table", buf.String())
	}
}
