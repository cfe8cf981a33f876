package kdb

import (
	"encoding/binary"
	"fmt"
	"math"
)

// maxDepth bounds recursion through mixed vectors, dictionaries and
// tables. A walk also fails after visiting more records than the heap
// has bytes, which stops offsets that form a cycle.
const maxDepth = 256

type walk struct {
	depth  int
	steps  int
	budget int
}

func newWalk(k K) *walk {
	return &walk{budget: len(k.heap)}
}

func (w *walk) enter() error {
	w.depth++
	w.steps++
	if w.depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrMalformedPayload, maxDepth)
	}
	if w.steps > w.budget {
		return fmt.Errorf("%w: more records visited than the heap holds", ErrMalformedPayload)
	}
	return nil
}

func (w *walk) leave() {
	w.depth--
}

// Dict is the generic form of a dictionary whose keys are not symbols.
type Dict struct {
	Keys   any `json:"keys" cbor:"keys"`
	Values any `json:"values" cbor:"values"`
}

// ToAny materialises k as ordinary Go values:
//
//	atoms           bool, GUID, int8..int64, float32, float64, string,
//	                time.Time or time.Duration; nulls are nil
//	char vector     string
//	other vectors   []any
//	mixed           []any
//	dict            map[string]any for symbol keys, Dict otherwise
//	table           []map[string]any, one map per row
//	keyed table     the table ToAny of its de-keyed form would give
//
// An error value becomes an error wrapping ErrValueError.
func ToAny(k K) (any, error) {
	return toAny(k, newWalk(k))
}

func toAny(k K, w *walk) (any, error) {
	if k.IsNil() {
		return nil, ErrNullInput
	}
	if err := w.enter(); err != nil {
		return nil, err
	}
	defer w.leave()
	t := k.Tag()
	switch {
	case t.IsError():
		msg, _ := ErrorText(k)
		return nil, fmt.Errorf("%w: %s", ErrValueError, msg)
	case t.IsAtomic():
		return atomAny(k)
	case t.IsTable():
		return tableAny(k, w)
	case t.IsDict():
		return dictAny(k, w)
	case t == TagMixed:
		refs, r := Refs(k)
		if r != Ok {
			return nil, r.Err()
		}
		out := make([]any, len(refs))
		for i, c := range refs {
			v, err := toAny(c, w)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case t == TagChar:
		s, r := StringFromCharVector(k)
		return s, r.Err()
	}
	return vectorAny(k)
}

func atomAny(k K) (any, error) {
	t := k.Tag()
	switch t {
	case -TagSymbol:
		var s string
		if !TryGetAtomString(k, &s) {
			return nil, ErrMalformedPayload
		}
		return s, nil
	case -TagChar:
		return string(k.Field()[:1]), nil
	}
	c, ok := CategoryOf(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQTypeId, t)
	}
	return elementAny(c, k.Field()), nil
}

func vectorAny(k K) (any, error) {
	t := k.Tag()
	c, ok := CategoryOf(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQTypeId, t)
	}
	if c == CategorySymbol {
		s, r := Strings(k)
		if r != Ok {
			return nil, r.Err()
		}
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, nil
	}
	w := c.Width()
	src, r := k.vectorBytes(w)
	if r != Ok {
		return nil, r.Err()
	}
	out := make([]any, len(src)/w)
	for i := range out {
		out[i] = elementAny(c, src[i*w:])
	}
	return out, nil
}

// elementAny converts the fixed-width element at the start of src.
func elementAny(c Category, src []byte) any {
	n := c.Native()
	if isNullNative(n, src) && c != CategoryChar {
		return nil
	}
	if c.Tag().IsTemporal() && isInfNative(n, src) {
		return nil
	}
	le := binary.LittleEndian
	switch c {
	case CategoryBoolean:
		return src[0] != 0
	case CategoryGUID:
		return GUID(src[:guidSize])
	case CategoryByte:
		return int8(src[0])
	case CategoryShort:
		return int16(le.Uint16(src))
	case CategoryInt:
		return int32(le.Uint32(src))
	case CategoryLong:
		return int64(le.Uint64(src))
	case CategoryReal:
		return math.Float32frombits(le.Uint32(src))
	case CategoryFloat:
		return math.Float64frombits(le.Uint64(src))
	case CategoryChar:
		return string(src[:1])
	case CategoryTimestamp:
		return TimestampToTime(int64(le.Uint64(src)))
	case CategoryMonth:
		return MonthToTime(int32(le.Uint32(src)))
	case CategoryDate:
		return DateToTime(int32(le.Uint32(src)))
	case CategoryDatetime:
		return DatetimeToTime(math.Float64frombits(le.Uint64(src)))
	case CategoryTimespan:
		return TimespanToDuration(int64(le.Uint64(src)))
	case CategoryMinute:
		return MinuteToDuration(int32(le.Uint32(src)))
	case CategorySecond:
		return SecondToDuration(int32(le.Uint32(src)))
	case CategoryTime:
		return TimeToDuration(int32(le.Uint32(src)))
	}
	return nil
}

func dictAny(k K, w *walk) (any, error) {
	keys, values, r := GetDictionary(k)
	if r != Ok {
		return nil, r.Err()
	}
	if keys.IsTable() && values.IsTable() {
		return keyedTableAny(keys, values, w)
	}
	vs, err := toAny(values, w)
	if err != nil {
		return nil, err
	}
	if keys.Tag() == TagSymbol {
		names, r := Strings(keys)
		if r != Ok {
			return nil, r.Err()
		}
		list, err := columnCells(vs, len(names))
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, len(names))
		for i, name := range names {
			m[name] = list[i]
		}
		return m, nil
	}
	ks, err := toAny(keys, w)
	if err != nil {
		return nil, err
	}
	return Dict{Keys: ks, Values: vs}, nil
}

func tableAny(k K, w *walk) (any, error) {
	cs, r := GetSimpleTable(k)
	if r != Ok {
		return nil, r.Err()
	}
	return rowsAny(cs, nil, w)
}

func keyedTableAny(keys, values K, w *walk) (any, error) {
	kc, r := GetSimpleTable(keys)
	if r != Ok {
		return nil, r.Err()
	}
	vc, r := GetSimpleTable(values)
	if r != Ok {
		return nil, r.Err()
	}
	rows, err := rowsAny(kc, nil, w)
	if err != nil {
		return nil, err
	}
	return rowsAny(vc, rows, w)
}

// rowsAny adds the columns of cs to rows, allocating the row maps when
// rows is nil.
func rowsAny(cs ColumnSet, rows []map[string]any, w *walk) ([]map[string]any, error) {
	names, r := ColumnNames(cs)
	if r != Ok {
		return nil, r.Err()
	}
	if cs.NumRows < 0 || cs.NumRows > len(cs.Names.heap) {
		return nil, fmt.Errorf("%w: %d rows", ErrMalformedPayload, cs.NumRows)
	}
	if rows == nil {
		rows = make([]map[string]any, cs.NumRows)
		for i := range rows {
			rows[i] = make(map[string]any, cs.NumColumns)
		}
	}
	for j, col := range cs.Columns {
		v, err := toAny(col, w)
		if err != nil {
			return nil, err
		}
		cells, err := columnCells(v, len(rows))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", names[j], err)
		}
		for i := range rows {
			rows[i][names[j]] = cells[i]
		}
	}
	return rows, nil
}

// columnCells splits a materialised list into n cells. A char vector
// yields one single-character string per cell.
func columnCells(v any, n int) ([]any, error) {
	switch col := v.(type) {
	case []any:
		if len(col) < n {
			return nil, fmt.Errorf("%w: %d values, want %d", ErrMalformedPayload, len(col), n)
		}
		return col, nil
	case string:
		if len(col) < n {
			return nil, fmt.Errorf("%w: %d values, want %d", ErrMalformedPayload, len(col), n)
		}
		cells := make([]any, n)
		for i := range cells {
			cells[i] = col[i : i+1]
		}
		return cells, nil
	}
	return nil, fmt.Errorf("%w: value is not a list", ErrMalformedPayload)
}
