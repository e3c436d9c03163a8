// Package export converts forecast tables to Apache Arrow records and CSV.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"owapi/models"
)

type kind int

const (
	kindNull kind = iota
	kindInt
	kindFloat
	kindString
	kindBool
	kindTime
	kindDate
	kindRaw
)

var timestampType = &arrow.TimestampType{Unit: arrow.Second, TimeZone: "UTC"}

func valueKind(v any) kind {
	switch x := v.(type) {
	case nil:
		return kindNull
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return kindInt
		}
		return kindFloat
	case string:
		return kindString
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	case models.Date:
		return kindDate
	default:
		return kindRaw
	}
}

func merge(a, b kind) kind {
	switch {
	case a == b, b == kindNull:
		return a
	case a == kindNull:
		return b
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	default:
		return kindRaw
	}
}

func columnKinds(t *models.ForecastTable) []kind {
	cols := t.Columns()
	kinds := make([]kind, len(cols))
	for i, col := range cols {
		k := kindNull
		for row := 0; row < t.Len(); row++ {
			v, _ := t.Value(row, col)
			k = merge(k, valueKind(v))
		}
		kinds[i] = k
	}
	return kinds
}

func arrowType(k kind) arrow.DataType {
	switch k {
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	case kindTime:
		return timestampType
	case kindDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema infers an Arrow schema from the table's values. Columns holding
// mixed or non-scalar values become strings.
func Schema(t *models.ForecastTable) *arrow.Schema {
	cols := t.Columns()
	kinds := columnKinds(t)
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col, Type: arrowType(kinds[i]), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord builds an Arrow record from the table. The caller must Release it.
func ToRecord(mem memory.Allocator, t *models.ForecastTable) (arrow.Record, error) {
	schema := Schema(t)
	kinds := columnKinds(t)
	cols := t.Columns()

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, col := range cols {
		fb := b.Field(i)
		for row := 0; row < t.Len(); row++ {
			v, ok := t.Value(row, col)
			if !ok {
				fb.AppendNull()
				continue
			}
			if err := appendValue(fb, kinds[i], v); err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", col, row, err)
			}
		}
	}

	return b.NewRecord(), nil
}

func appendValue(fb array.Builder, k kind, v any) error {
	switch k {
	case kindInt:
		fb.(*array.Int64Builder).Append(int64(v.(float64)))
	case kindFloat:
		fb.(*array.Float64Builder).Append(v.(float64))
	case kindBool:
		fb.(*array.BooleanBuilder).Append(v.(bool))
	case kindTime:
		fb.(*array.TimestampBuilder).Append(arrow.Timestamp(v.(time.Time).Unix()))
	case kindDate:
		fb.(*array.Date32Builder).Append(arrow.Date32FromTime(v.(models.Date).Time()))
	default:
		s, err := formatValue(v)
		if err != nil {
			return err
		}
		fb.(*array.StringBuilder).Append(s)
	}
	return nil
}

func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339), nil
	case models.Date:
		return x.String(), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// WriteCSV writes the table as CSV with a header row. Null cells are empty.
func WriteCSV(w io.Writer, t *models.ForecastTable) error {
	if len(t.Columns()) == 0 {
		return nil
	}

	rec, err := ToRecord(memory.NewGoAllocator(), t)
	if err != nil {
		return err
	}
	defer rec.Release()

	cw := csv.NewWriter(w, rec.Schema(), csv.WithHeader(true), csv.WithNullWriter(""))
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return cw.Flush()
}
