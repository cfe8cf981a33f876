package kdb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/minio/simdjson-go"
)

// FromJSON parses JSON with simdjson-go into a new heap, the way q's
// .j.k reads it: numbers are floats, strings are char vectors, null is
// the float null, objects are symbol-keyed dictionaries and arrays of
// objects sharing one key list are tables.
func FromJSON(data []byte) (K, error) {
	b := NewBuilderWithCapacity(len(data) * 2)
	off, err := b.AppendJSON(data)
	if err != nil {
		return K{}, err
	}
	return b.Value(off)
}

// AppendJSON parses data and appends the resulting value.
func (b *Builder) AppendJSON(data []byte) (uint32, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("json input is empty")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return b.scalarFromJSON(trimmed)
	}
	parsed, err := simdjson.Parse(data, nil)
	if err != nil {
		return 0, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return 0, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return 0, err
	}
	return b.valueFromJSONIter(typ, root)
}

// scalarFromJSON handles a bare scalar document, which simdjson-go does
// not accept as a root.
func (b *Builder) scalarFromJSON(data []byte) (uint32, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	if _, err := dec.Token(); err == nil || err != io.EOF {
		return 0, fmt.Errorf("invalid character after top-level value")
	}
	switch val := v.(type) {
	case nil:
		return AppendAtom(b, TagFloat, math.NaN())
	case bool:
		return b.AppendBool(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid json number: %s", val)
		}
		return AppendAtom(b, TagFloat, f)
	case string:
		return b.AppendChars(val), nil
	default:
		return 0, fmt.Errorf("unsupported scalar json type %T", v)
	}
}

type jsonElem struct {
	typ simdjson.Type
	it  simdjson.Iter
}

func isJSONNumber(t simdjson.Type) bool {
	return t == simdjson.TypeInt || t == simdjson.TypeUint || t == simdjson.TypeFloat
}

func (b *Builder) valueFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (uint32, error) {
	switch typ {
	case simdjson.TypeNull:
		return AppendAtom(b, TagFloat, math.NaN())
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return 0, err
		}
		return b.AppendBool(v), nil
	case simdjson.TypeInt, simdjson.TypeUint, simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return 0, err
		}
		return AppendAtom(b, TagFloat, v)
	case simdjson.TypeString:
		s, err := it.StringBytes()
		if err != nil {
			return 0, err
		}
		return b.AppendChars(string(s)), nil
	case simdjson.TypeObject:
		keys, elems, err := jsonObject(it)
		if err != nil {
			return 0, err
		}
		k := b.AppendSymbols(keys)
		v, err := b.listFromJSON(elems)
		if err != nil {
			return 0, err
		}
		return b.AppendDict(k, v), nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return 0, err
		}
		var elems []jsonElem
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elems = append(elems, jsonElem{typ: t, it: iter})
		}
		if off, ok, err := b.tableFromJSON(elems); ok || err != nil {
			return off, err
		}
		return b.listFromJSON(elems)
	default:
		return 0, fmt.Errorf("unsupported json type: %v", typ)
	}
}

func jsonObject(it *simdjson.Iter) ([]string, []jsonElem, error) {
	obj, err := it.Object(nil)
	if err != nil {
		return nil, nil, err
	}
	var keys []string
	var elems []jsonElem
	err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
		keys = append(keys, string(key))
		elems = append(elems, jsonElem{typ: elem.Type(), it: elem})
	}, nil)
	if err != nil {
		return nil, nil, err
	}
	return keys, elems, nil
}

// listFromJSON appends a float vector when every element is a number or
// null, a boolean vector when every element is a bool, and a mixed
// vector otherwise.
func (b *Builder) listFromJSON(elems []jsonElem) (uint32, error) {
	numbers, bools := len(elems) > 0, len(elems) > 0
	for _, e := range elems {
		numbers = numbers && (isJSONNumber(e.typ) || e.typ == simdjson.TypeNull)
		bools = bools && e.typ == simdjson.TypeBool
	}
	switch {
	case numbers:
		vals := make([]float64, len(elems))
		for i := range elems {
			vals[i] = math.NaN()
			if e := elems[i]; e.typ != simdjson.TypeNull {
				f, err := e.it.Float()
				if err != nil {
					return 0, err
				}
				vals[i] = f
			}
		}
		return AppendVector(b, TagFloat, vals)
	case bools:
		vals := make([]bool, len(elems))
		for i := range elems {
			v, err := elems[i].it.Bool()
			if err != nil {
				return 0, err
			}
			vals[i] = v
		}
		return b.AppendBools(vals), nil
	}
	offs := getUint32Slice()
	defer func() { putUint32Slice(offs) }()
	for i := range elems {
		it := elems[i].it
		off, err := b.valueFromJSONIter(elems[i].typ, &it)
		if err != nil {
			return 0, err
		}
		offs = append(offs, off)
	}
	return b.AppendMixed(offs...), nil
}

// tableFromJSON appends a table when elems is a non-empty list of
// objects that all have the same keys in the same order.
func (b *Builder) tableFromJSON(elems []jsonElem) (uint32, bool, error) {
	if len(elems) == 0 {
		return 0, false, nil
	}
	var names []string
	rows := make([][]jsonElem, len(elems))
	for i := range elems {
		if elems[i].typ != simdjson.TypeObject {
			return 0, false, nil
		}
		it := elems[i].it
		keys, vals, err := jsonObject(&it)
		if err != nil {
			return 0, false, err
		}
		if i == 0 {
			names = keys
		} else if !equalStrings(names, keys) {
			return 0, false, nil
		}
		rows[i] = vals
	}
	if len(names) == 0 {
		return 0, false, nil
	}
	cols := make([]uint32, len(names))
	column := make([]jsonElem, len(rows))
	for j := range names {
		for i := range rows {
			column[i] = rows[i][j]
		}
		off, err := b.listFromJSON(column)
		if err != nil {
			return 0, false, err
		}
		cols[j] = off
	}
	off, err := b.AppendSimpleTable(names, cols...)
	return off, err == nil, err
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ToJSON encodes k the way q's .j.j does: tables become arrays of row
// objects, symbol-keyed dictionaries become objects, and nulls become
// null.
func ToJSON(k K) (string, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, k); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteJSON appends JSON for k to sb.
func WriteJSON(sb *strings.Builder, k K) error {
	return writeJSONValue(sb, k, newWalk(k))
}

func writeJSONValue(sb *strings.Builder, k K, w *walk) error {
	if k.IsNil() {
		return ErrNullInput
	}
	if err := w.enter(); err != nil {
		return err
	}
	defer w.leave()
	t := k.Tag()
	switch {
	case t.IsError():
		msg, _ := ErrorText(k)
		return fmt.Errorf("%w: %s", ErrValueError, msg)
	case t == -TagSymbol:
		b, ok := symbolAtomBytes(k)
		if !ok {
			return ErrMalformedPayload
		}
		writeJSONStringBytes(sb, b)
		return nil
	case t.IsAtomic():
		c, ok := CategoryOf(t)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidQTypeId, t)
		}
		writeJSONElement(sb, c, k.Field())
		return nil
	case t.IsTable():
		cs, r := GetSimpleTable(k)
		if r != Ok {
			return r.Err()
		}
		return writeJSONRows(sb, w, cs)
	case t.IsDict():
		return writeJSONDict(sb, k, w)
	case t == TagChar:
		s, r := k.vectorBytes(1)
		if r != Ok {
			return r.Err()
		}
		writeJSONStringBytes(sb, s)
		return nil
	}
	n, r := allocLen(k)
	if r != Ok {
		return r.Err()
	}
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := writeJSONCell(sb, k, i, w); err != nil {
			return err
		}
	}
	sb.WriteByte(']')
	return nil
}

// writeJSONCell writes element i of a vector. A char vector cell is a
// one-character string.
func writeJSONCell(sb *strings.Builder, k K, i int, w *walk) error {
	switch t := k.Tag(); t {
	case TagMixed:
		c, r := k.child(i)
		if r != Ok {
			return r.Err()
		}
		return writeJSONValue(sb, c, w)
	case TagSymbol:
		if _, r := k.count(offsetSize); r != Ok || i >= int(k.Len()) {
			return ErrMalformedPayload
		}
		b, ok := text(k.heap, k.offsetAt(i))
		if !ok {
			return ErrMalformedPayload
		}
		writeJSONStringBytes(sb, b)
		return nil
	default:
		c, ok := CategoryOf(t)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidQTypeId, t)
		}
		w := c.Width()
		src, r := k.vectorBytes(w)
		if r != Ok {
			return r.Err()
		}
		if (i+1)*w > len(src) {
			return ErrMalformedPayload
		}
		if c == CategoryChar {
			writeJSONStringBytes(sb, src[i:i+1])
			return nil
		}
		writeJSONElement(sb, c, src[i*w:])
		return nil
	}
}

func writeJSONDict(sb *strings.Builder, k K, w *walk) error {
	keys, values, r := GetDictionary(k)
	if r != Ok {
		return r.Err()
	}
	if keys.IsTable() && values.IsTable() {
		kc, r := GetSimpleTable(keys)
		if r != Ok {
			return r.Err()
		}
		vc, r := GetSimpleTable(values)
		if r != Ok {
			return r.Err()
		}
		return writeJSONRows(sb, w, kc, vc)
	}
	if keys.Tag() != TagSymbol {
		sb.WriteString(`{"keys":`)
		if err := writeJSONValue(sb, keys, w); err != nil {
			return err
		}
		sb.WriteString(`,"values":`)
		if err := writeJSONValue(sb, values, w); err != nil {
			return err
		}
		sb.WriteByte('}')
		return nil
	}
	names, r := Strings(keys)
	if r != Ok {
		return r.Err()
	}
	if !values.IsVector() || int(values.Len()) != len(names) {
		return fmt.Errorf("%w: dictionary keys and values differ in length", ErrMalformedPayload)
	}
	sb.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeJSONStringBytes(sb, []byte(name))
		sb.WriteByte(':')
		if err := writeJSONCell(sb, values, i, w); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

// writeJSONRows writes one object per row over the columns of every
// set in turn, so a keyed table lists its key columns first.
func writeJSONRows(sb *strings.Builder, w *walk, sets ...ColumnSet) error {
	var names [][]string
	for _, cs := range sets {
		n, r := ColumnNames(cs)
		if r != Ok {
			return r.Err()
		}
		names = append(names, n)
	}
	rows := sets[0].NumRows
	sb.WriteByte('[')
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('{')
		first := true
		for s, cs := range sets {
			for j, col := range cs.Columns {
				if !first {
					sb.WriteByte(',')
				}
				first = false
				writeJSONStringBytes(sb, []byte(names[s][j]))
				sb.WriteByte(':')
				if err := writeJSONCell(sb, col, i, w); err != nil {
					return err
				}
			}
		}
		sb.WriteByte('}')
	}
	sb.WriteByte(']')
	return nil
}

// writeJSONElement writes the fixed-width element at the start of src.
func writeJSONElement(sb *strings.Builder, c Category, src []byte) {
	n := c.Native()
	if c != CategoryChar && isNullNative(n, src) ||
		c.Tag().IsTemporal() && isInfNative(n, src) {
		sb.WriteString("null")
		return
	}
	le := binary.LittleEndian
	switch c {
	case CategoryBoolean:
		sb.WriteString(strconv.FormatBool(src[0] != 0))
	case CategoryGUID:
		sb.WriteByte('"')
		sb.WriteString(GUID(src[:guidSize]).String())
		sb.WriteByte('"')
	case CategoryByte:
		sb.WriteString(strconv.Itoa(int(int8(src[0]))))
	case CategoryShort:
		sb.WriteString(strconv.Itoa(int(int16(le.Uint16(src)))))
	case CategoryInt:
		sb.WriteString(strconv.Itoa(int(int32(le.Uint32(src)))))
	case CategoryLong:
		sb.WriteString(strconv.FormatInt(int64(le.Uint64(src)), 10))
	case CategoryReal:
		writeJSONFloat(sb, float64(math.Float32frombits(le.Uint32(src))), 32)
	case CategoryFloat:
		writeJSONFloat(sb, math.Float64frombits(le.Uint64(src)), 64)
	case CategoryChar:
		writeJSONStringBytes(sb, src[:1])
	case CategoryTimestamp:
		writeJSONQuoted(sb, TimestampToTime(int64(le.Uint64(src))).Format("2006-01-02T15:04:05.000000000"))
	case CategoryMonth:
		writeJSONQuoted(sb, MonthToTime(int32(le.Uint32(src))).Format("2006-01"))
	case CategoryDate:
		writeJSONQuoted(sb, DateToTime(int32(le.Uint32(src))).Format("2006-01-02"))
	case CategoryDatetime:
		writeJSONQuoted(sb, DatetimeToTime(math.Float64frombits(le.Uint64(src))).Format("2006-01-02T15:04:05.000"))
	case CategoryTimespan:
		writeJSONQuoted(sb, FormatTimespan(TimespanToDuration(int64(le.Uint64(src)))))
	case CategoryMinute:
		writeJSONQuoted(sb, formatClock(MinuteToDuration(int32(le.Uint32(src))), 2, 0))
	case CategorySecond:
		writeJSONQuoted(sb, formatClock(SecondToDuration(int32(le.Uint32(src))), 3, 0))
	case CategoryTime:
		writeJSONQuoted(sb, formatClock(TimeToDuration(int32(le.Uint32(src))), 3, 3))
	}
}

func writeJSONFloat(sb *strings.Builder, f float64, bits int) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		sb.WriteString("null")
		return
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
}

func writeJSONQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	sb.WriteString(s)
	sb.WriteByte('"')
}

// FormatTimespan formats d as q prints a timespan, 0D00:00:00.000000000.
func FormatTimespan(d time.Duration) string {
	var sb strings.Builder
	u := uint64(d)
	if d < 0 {
		sb.WriteByte('-')
		u = uint64(-d)
	}
	day := uint64(24 * time.Hour)
	sb.WriteString(strconv.FormatUint(u/day, 10))
	sb.WriteByte('D')
	sb.WriteString(formatClock(time.Duration(u%day), 3, 9))
	return sb.String()
}

// formatClock formats d as hh:mm, hh:mm:ss or hh:mm:ss.fff with parts
// fields and digits fractional digits.
func formatClock(d time.Duration, parts, digits int) string {
	var sb strings.Builder
	u := uint64(d)
	if d < 0 {
		sb.WriteByte('-')
		u = uint64(-d)
	}
	pad2(&sb, u/uint64(time.Hour))
	sb.WriteByte(':')
	pad2(&sb, u/uint64(time.Minute)%60)
	if parts > 2 {
		sb.WriteByte(':')
		pad2(&sb, u/uint64(time.Second)%60)
	}
	if digits > 0 {
		frac := u % uint64(time.Second)
		for i := digits; i < 9; i++ {
			frac /= 10
		}
		f := strconv.FormatUint(frac, 10)
		sb.WriteByte('.')
		sb.WriteString(strings.Repeat("0", digits-len(f)))
		sb.WriteString(f)
	}
	return sb.String()
}

func pad2(sb *strings.Builder, v uint64) {
	if v < 10 {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.FormatUint(v, 10))
}

func writeJSONStringBytes(sb *strings.Builder, b []byte) {
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigit(c >> 4))
				sb.WriteByte(hexDigit(c & 0xF))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
