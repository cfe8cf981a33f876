package kdb

import (
	"encoding/binary"
	"math"
)

// Number is the set of Go numeric types a q value can be converted into.
// Conversion follows Go's rules for T(v): integers wrap, floats truncate
// toward zero, and out-of-range float to integer conversions are
// implementation defined.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// convertInto decodes len(out) elements of native representation n from
// src and converts each to T. It reports false for representations that
// have no numeric reading (guid, symbol).
func convertInto[T Number](n Native, src []byte, out []T) bool {
	le := binary.LittleEndian
	switch n {
	case NativeBool, NativeChar:
		for i := range out {
			out[i] = T(src[i])
		}
	case NativeInt8:
		for i := range out {
			out[i] = T(int8(src[i]))
		}
	case NativeInt16:
		for i := range out {
			out[i] = T(int16(le.Uint16(src[i*2:])))
		}
	case NativeInt32:
		for i := range out {
			out[i] = T(int32(le.Uint32(src[i*4:])))
		}
	case NativeInt64:
		for i := range out {
			out[i] = T(int64(le.Uint64(src[i*8:])))
		}
	case NativeFloat32:
		for i := range out {
			out[i] = T(math.Float32frombits(le.Uint32(src[i*4:])))
		}
	case NativeFloat64:
		for i := range out {
			out[i] = T(math.Float64frombits(le.Uint64(src[i*8:])))
		}
	default:
		return false
	}
	return true
}

// convertBools is convertInto for bool outputs: an element is true when
// it is non-zero. NaN is non-zero.
func convertBools(n Native, src []byte, out []bool) bool {
	le := binary.LittleEndian
	switch n {
	case NativeBool, NativeChar, NativeInt8:
		for i := range out {
			out[i] = src[i] != 0
		}
	case NativeInt16:
		for i := range out {
			out[i] = le.Uint16(src[i*2:]) != 0
		}
	case NativeInt32:
		for i := range out {
			out[i] = le.Uint32(src[i*4:]) != 0
		}
	case NativeInt64:
		for i := range out {
			out[i] = le.Uint64(src[i*8:]) != 0
		}
	case NativeFloat32:
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(src[i*4:])) != 0
		}
	case NativeFloat64:
		for i := range out {
			out[i] = math.Float64frombits(le.Uint64(src[i*8:])) != 0
		}
	default:
		return false
	}
	return true
}

// putNative encodes v in representation n at the start of dst.
func putNative[T Number](n Native, dst []byte, v T) bool {
	le := binary.LittleEndian
	switch n {
	case NativeBool:
		if v != 0 {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case NativeChar, NativeInt8:
		dst[0] = byte(int8(v))
	case NativeInt16:
		le.PutUint16(dst, uint16(int16(v)))
	case NativeInt32:
		le.PutUint32(dst, uint32(int32(v)))
	case NativeInt64:
		le.PutUint64(dst, uint64(int64(v)))
	case NativeFloat32:
		le.PutUint32(dst, math.Float32bits(float32(v)))
	case NativeFloat64:
		le.PutUint64(dst, math.Float64bits(float64(v)))
	default:
		return false
	}
	return true
}
