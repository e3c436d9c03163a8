package models

import (
	"sort"
	"strings"
)

// WeatherPrefix is prepended to the promoted weather condition fields.
const WeatherPrefix = "weather_"

// weatherOrder is the column order of the promoted weather fields
var weatherOrder = map[string]int{
	WeatherPrefix + "id":          0,
	WeatherPrefix + "main":        1,
	WeatherPrefix + "description": 2,
	WeatherPrefix + "icon":        3,
}

// ForecastTable is an ordered sequence of records sharing one column schema.
// Rows are split into row groups; a table built from one record slice has a
// single group, and Concat keeps one group per input table, empty ones included.
type ForecastTable struct {
	columns []string
	records []Record
	groups  []int // start offset of each row group
}

// NewForecastTable builds a table whose schema is the union of the record columns.
func NewForecastTable(records []Record) *ForecastTable {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for col := range rec {
			seen[col] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Slice(columns, func(i, j int) bool {
		return columnLess(columns[i], columns[j])
	})

	if records == nil {
		records = []Record{}
	}
	return &ForecastTable{columns: columns, records: records, groups: []int{0}}
}

// Concat joins tables row-group by row-group, in argument order. Nil tables
// are skipped; empty tables still contribute their (empty) groups.
func Concat(tables ...*ForecastTable) *ForecastTable {
	var records []Record
	var groups []int
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, start := range t.groups {
			groups = append(groups, len(records)+start)
		}
		records = append(records, t.records...)
	}

	out := NewForecastTable(records)
	if groups != nil {
		out.groups = groups
	}
	return out
}

// NumGroups returns the number of row groups.
func (t *ForecastTable) NumGroups() int {
	return len(t.groups)
}

// Group returns row group i as a table sharing this table's schema.
func (t *ForecastTable) Group(i int) *ForecastTable {
	start, end := t.groups[i], len(t.records)
	if i+1 < len(t.groups) {
		end = t.groups[i+1]
	}
	return &ForecastTable{
		columns: t.columns,
		records: t.records[start:end:end],
		groups:  []int{0},
	}
}

// Columns returns the column names in schema order.
func (t *ForecastTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether col is part of the schema.
func (t *ForecastTable) HasColumn(col string) bool {
	for _, c := range t.columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *ForecastTable) Len() int {
	return len(t.records)
}

// Record returns row i.
func (t *ForecastTable) Record(i int) Record {
	return t.records[i]
}

// Records returns all rows.
func (t *ForecastTable) Records() []Record {
	return t.records
}

// Value returns the cell at row i, column col. ok is false for a null cell.
func (t *ForecastTable) Value(i int, col string) (v any, ok bool) {
	v, ok = t.records[i][col]
	if v == nil {
		return nil, false
	}
	return v, ok
}

// rank: dt first, then base columns, then the weather columns
func columnRank(col string) int {
	switch {
	case col == "dt":
		return 0
	case strings.HasPrefix(col, WeatherPrefix):
		return 2
	default:
		return 1
	}
}

func columnLess(a, b string) bool {
	ra, rb := columnRank(a), columnRank(b)
	if ra != rb {
		return ra < rb
	}
	if ra == 2 {
		wa, okA := weatherOrder[a]
		wb, okB := weatherOrder[b]
		switch {
		case okA && okB:
			return wa < wb
		case okA != okB:
			return okA
		}
	}
	return a < b
}
