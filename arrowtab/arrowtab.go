// Package arrowtab converts simple kdb tables into Arrow records.
package arrowtab

import (
	"errors"
	"fmt"
	"math"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/starfederation/kdb-go"
)

var (
	ErrUnsupportedColumn = errors.New("arrowtab: unsupported column type")
	ErrRaggedTable       = errors.New("arrowtab: columns differ in length")
)

const (
	// days and nanoseconds between the Unix epoch and 2000.01.01
	epochDays  = 10957
	epochNanos = int64(epochDays) * 86400 * 1e9
)

var guidType = &arrow.FixedSizeBinaryType{ByteWidth: 16}

// ArrowType returns the Arrow type a column of tag t converts to.
// Mixed columns are taken to hold strings.
func ArrowType(t kdb.Tag) (arrow.DataType, bool) {
	switch t {
	case kdb.TagMixed, kdb.TagChar, kdb.TagSymbol:
		return arrow.BinaryTypes.String, true
	case kdb.TagBoolean:
		return arrow.FixedWidthTypes.Boolean, true
	case kdb.TagGUID:
		return guidType, true
	case kdb.TagByte:
		return arrow.PrimitiveTypes.Int8, true
	case kdb.TagShort:
		return arrow.PrimitiveTypes.Int16, true
	case kdb.TagInt, kdb.TagMonth, kdb.TagMinute:
		return arrow.PrimitiveTypes.Int32, true
	case kdb.TagLong:
		return arrow.PrimitiveTypes.Int64, true
	case kdb.TagReal:
		return arrow.PrimitiveTypes.Float32, true
	case kdb.TagFloat, kdb.TagDatetime:
		return arrow.PrimitiveTypes.Float64, true
	case kdb.TagTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns, true
	case kdb.TagDate:
		return arrow.FixedWidthTypes.Date32, true
	case kdb.TagTimespan:
		return arrow.FixedWidthTypes.Duration_ns, true
	case kdb.TagSecond:
		return arrow.FixedWidthTypes.Time32s, true
	case kdb.TagTime:
		return arrow.FixedWidthTypes.Time32ms, true
	}
	return nil, false
}

// Schema returns the Arrow schema of a simple table.
func Schema(k kdb.K) (*arrow.Schema, error) {
	cs, names, err := decompose(k)
	if err != nil {
		return nil, err
	}
	return schemaOf(cs, names)
}

func decompose(k kdb.K) (kdb.ColumnSet, []string, error) {
	cs, r := kdb.GetSimpleTable(k)
	if r != kdb.Ok {
		return kdb.ColumnSet{}, nil, fmt.Errorf("arrowtab: %w", r.Err())
	}
	names, r := kdb.ColumnNames(cs)
	if r != kdb.Ok {
		return kdb.ColumnSet{}, nil, fmt.Errorf("arrowtab: %w", r.Err())
	}
	return cs, names, nil
}

func schemaOf(cs kdb.ColumnSet, names []string) (*arrow.Schema, error) {
	fields := make([]arrow.Field, cs.NumColumns)
	for i, col := range cs.Columns {
		typ, ok := ArrowType(col.Tag())
		if !ok {
			return nil, fmt.Errorf("%w: column %q is %s", ErrUnsupportedColumn, names[i], col.Tag())
		}
		if col.Len() != int64(cs.NumRows) {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrRaggedTable, names[i], col.Len(), cs.NumRows)
		}
		nullable := col.Tag() != kdb.TagBoolean && col.Tag() != kdb.TagByte
		fields[i] = arrow.Field{Name: names[i], Type: typ, Nullable: nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}

// FromTable converts a simple table into a record allocated from mem.
// kdb nulls and infinities become Arrow nulls. The caller releases the
// record.
func FromTable(k kdb.K, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	cs, names, err := decompose(k)
	if err != nil {
		return nil, err
	}
	schema, err := schemaOf(cs, names)
	if err != nil {
		return nil, err
	}
	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()
	for i, col := range cs.Columns {
		if err := appendColumn(rb.Field(i), col); err != nil {
			return nil, fmt.Errorf("arrowtab: column %q: %w", names[i], err)
		}
	}
	return rb.NewRecord(), nil
}

func appendColumn(fb array.Builder, col kdb.K) error {
	n := int(col.Len())
	fb.Reserve(n)
	switch col.Tag() {
	case kdb.TagBoolean:
		vals, r := kdb.Bools(col)
		if r != kdb.Ok {
			return r.Err()
		}
		fb.(*array.BooleanBuilder).AppendValues(vals, nil)
	case kdb.TagGUID:
		vals, r := kdb.GUIDs(col)
		if r != kdb.Ok {
			return r.Err()
		}
		b := fb.(*array.FixedSizeBinaryBuilder)
		for _, g := range vals {
			if g.IsNull() {
				b.AppendNull()
				continue
			}
			b.Append(g[:])
		}
	case kdb.TagByte:
		vals, r := kdb.Vector[int8](col)
		if r != kdb.Ok {
			return r.Err()
		}
		fb.(*array.Int8Builder).AppendValues(vals, nil)
	case kdb.TagShort:
		return appendNumbers[int16](fb.(*array.Int16Builder), col)
	case kdb.TagInt, kdb.TagMonth, kdb.TagMinute:
		return appendNumbers[int32](fb.(*array.Int32Builder), col)
	case kdb.TagLong:
		return appendNumbers[int64](fb.(*array.Int64Builder), col)
	case kdb.TagReal:
		return appendNumbers[float32](fb.(*array.Float32Builder), col)
	case kdb.TagFloat, kdb.TagDatetime:
		return appendNumbers[float64](fb.(*array.Float64Builder), col)
	case kdb.TagTimestamp:
		return appendShifted[arrow.Timestamp](fb.(*array.TimestampBuilder), col, epochNanos, func(v int64) arrow.Timestamp {
			return arrow.Timestamp(v)
		})
	case kdb.TagDate:
		vals, r := kdb.Vector[int32](col)
		if r != kdb.Ok {
			return r.Err()
		}
		b := fb.(*array.Date32Builder)
		for i, v := range vals {
			if kdb.NullAt(col, i) || kdb.InfAt(col, i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Date32(v + epochDays))
		}
	case kdb.TagTimespan:
		return appendShifted[arrow.Duration](fb.(*array.DurationBuilder), col, 0, func(v int64) arrow.Duration {
			return arrow.Duration(v)
		})
	case kdb.TagSecond, kdb.TagTime:
		vals, r := kdb.Vector[int32](col)
		if r != kdb.Ok {
			return r.Err()
		}
		b := fb.(*array.Time32Builder)
		for i, v := range vals {
			if kdb.NullAt(col, i) || kdb.InfAt(col, i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Time32(v))
		}
	case kdb.TagChar:
		s, r := kdb.StringFromCharVector(col)
		if r != kdb.Ok {
			return r.Err()
		}
		b := fb.(*array.StringBuilder)
		for i := 0; i < len(s); i++ {
			if s[i] == kdb.NullChar {
				b.AppendNull()
				continue
			}
			b.Append(s[i : i+1])
		}
	case kdb.TagSymbol:
		vals, r := kdb.Strings(col)
		if r != kdb.Ok {
			return r.Err()
		}
		b := fb.(*array.StringBuilder)
		for _, s := range vals {
			if s == "" {
				b.AppendNull()
				continue
			}
			b.Append(s)
		}
	case kdb.TagMixed:
		vals, r := kdb.Strings(col)
		if r != kdb.Ok {
			return r.Err()
		}
		fb.(*array.StringBuilder).AppendValues(vals, nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedColumn, col.Tag())
	}
	return nil
}

type number interface {
	int16 | int32 | int64 | float32 | float64
}

type numberBuilder[T number] interface {
	Append(T)
	AppendNull()
}

func appendNumbers[T number](b numberBuilder[T], col kdb.K) error {
	vals, r := kdb.Vector[T](col)
	if r != kdb.Ok {
		return r.Err()
	}
	for i, v := range vals {
		if kdb.NullAt(col, i) || kdb.InfAt(col, i) {
			b.AppendNull()
			continue
		}
		b.Append(v)
	}
	return nil
}

type shiftedBuilder[T any] interface {
	Append(T)
	AppendNull()
}

// appendShifted moves int64 values onto the Unix epoch. Nulls,
// infinities and values that leave the int64 range after the shift
// become Arrow nulls.
func appendShifted[T any](b shiftedBuilder[T], col kdb.K, shift int64, conv func(int64) T) error {
	vals, r := kdb.Vector[int64](col)
	if r != kdb.Ok {
		return r.Err()
	}
	for i, v := range vals {
		if kdb.NullAt(col, i) || kdb.InfAt(col, i) || v > math.MaxInt64-shift {
			b.AppendNull()
			continue
		}
		b.Append(conv(v + shift))
	}
	return nil
}
