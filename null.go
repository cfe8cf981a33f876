package kdb

import (
	"encoding/binary"
	"math"
)

// Null and infinity values of the integer types. The negative infinity
// of each type is one above its null.
const (
	NullShort int16 = math.MinInt16
	InfShort  int16 = math.MaxInt16
	NullInt   int32 = math.MinInt32
	InfInt    int32 = math.MaxInt32
	NullLong  int64 = math.MinInt64
	InfLong   int64 = math.MaxInt64

	// NullChar is the q null char, a space.
	NullChar byte = ' '
)

// NullFloat returns 0n, a NaN.
func NullFloat() float64 { return math.NaN() }

// NullReal returns 0Ne.
func NullReal() float32 { return float32(math.NaN()) }

// isNullNative reports whether the element at the start of src is the
// null of its storage type. Booleans and bytes have no null.
func isNullNative(n Native, src []byte) bool {
	le := binary.LittleEndian
	switch n {
	case NativeInt16:
		return int16(le.Uint16(src)) == NullShort
	case NativeInt32:
		return int32(le.Uint32(src)) == NullInt
	case NativeInt64:
		return int64(le.Uint64(src)) == NullLong
	case NativeFloat32:
		return math.IsNaN(float64(math.Float32frombits(le.Uint32(src))))
	case NativeFloat64:
		return math.IsNaN(math.Float64frombits(le.Uint64(src)))
	case NativeChar:
		return src[0] == NullChar
	case NativeGUID:
		return GUID(src[:guidSize]) == NullGUID
	}
	return false
}

// isInfNative reports whether the element is positive or negative
// infinity of its storage type.
func isInfNative(n Native, src []byte) bool {
	le := binary.LittleEndian
	switch n {
	case NativeInt16:
		v := int16(le.Uint16(src))
		return v == InfShort || v == -InfShort
	case NativeInt32:
		v := int32(le.Uint32(src))
		return v == InfInt || v == -InfInt
	case NativeInt64:
		v := int64(le.Uint64(src))
		return v == InfLong || v == -InfLong
	case NativeFloat32:
		return math.IsInf(float64(math.Float32frombits(le.Uint32(src))), 0)
	case NativeFloat64:
		return math.IsInf(math.Float64frombits(le.Uint64(src)), 0)
	}
	return false
}

// IsNull reports whether an atom holds the null of its type. The empty
// symbol is null.
func IsNull(k K) bool {
	if !k.IsAtomic() {
		return false
	}
	if k.Tag() == -TagSymbol {
		b, ok := symbolAtomBytes(k)
		return ok && len(b) == 0
	}
	n, r := NativeOf(k.Tag())
	return r == Ok && isNullNative(n, k.Field())
}

// IsInf reports whether an atom holds an infinity of its type.
func IsInf(k K) bool {
	if !k.IsAtomic() {
		return false
	}
	n, r := NativeOf(k.Tag())
	return r == Ok && isInfNative(n, k.Field())
}

// NullAt reports whether element i of a vector is null. Out of range
// indexes and non-vectors report false.
func NullAt(k K, i int) bool {
	if CheckVector(k) != Ok || k.Tag() == TagMixed {
		return false
	}
	c, ok := CategoryOf(k.Tag())
	if !ok {
		return false
	}
	w := c.Width()
	src, r := k.vectorBytes(w)
	if r != Ok || i < 0 || (i+1)*w > len(src) {
		return false
	}
	if c == CategorySymbol {
		b, ok := text(k.heap, k.offsetAt(i))
		return ok && len(b) == 0
	}
	return isNullNative(c.Native(), src[i*w:])
}

// InfAt reports whether element i of a vector is an infinity.
func InfAt(k K, i int) bool {
	if CheckVector(k) != Ok || k.Tag() == TagMixed {
		return false
	}
	c, ok := CategoryOf(k.Tag())
	if !ok || c == CategorySymbol {
		return false
	}
	w := c.Width()
	src, r := k.vectorBytes(w)
	if r != Ok || i < 0 || (i+1)*w > len(src) {
		return false
	}
	return isInfNative(c.Native(), src[i*w:])
}
