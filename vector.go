package kdb

// CheckVector validates k before a vector retrieval.
func CheckVector(k K) Result {
	if k.IsNil() {
		return NullInput
	}
	t := k.Tag()
	if t.IsError() {
		return ValueError
	}
	if !t.IsVector() {
		return NotVector
	}
	return Ok
}

// RetrieveStrings copies a symbol vector, or a mixed vector of char
// vectors, into out. On NotCharVectorInMixedVector the elements before
// the offending one have been written.
func RetrieveStrings(k K, out []string) Result {
	if r := CheckVector(k); r != Ok {
		return r
	}
	switch k.Tag() {
	case TagMixed:
		return copyMixedStrings(k, out)
	case TagSymbol:
		return copySymbols(k, out)
	}
	return NotStringVector
}

func copyMixedStrings(k K, out []string) Result {
	n, r := k.count(offsetSize)
	if r != Ok {
		return r
	}
	if len(out) < n {
		return OutputTooSmall
	}
	for i := 0; i < n; i++ {
		c, r := k.child(i)
		if r != Ok {
			return r
		}
		if c.Tag() != TagChar {
			return NotCharVectorInMixedVector
		}
		b, r := c.vectorBytes(1)
		if r != Ok {
			return r
		}
		out[i] = string(b)
	}
	return Ok
}

func copySymbols(k K, out []string) Result {
	n, r := k.count(offsetSize)
	if r != Ok {
		return r
	}
	if len(out) < n {
		return OutputTooSmall
	}
	for i := 0; i < n; i++ {
		b, ok := text(k.heap, k.offsetAt(i))
		if !ok {
			return MalformedPayload
		}
		out[i] = string(b)
	}
	return Ok
}

// StringFromCharVector copies a char vector into a string.
func StringFromCharVector(k K) (string, Result) {
	if r := CheckVector(k); r != Ok {
		return "", r
	}
	if k.Tag() != TagChar {
		return "", NotStringVector
	}
	b, r := k.vectorBytes(1)
	if r != Ok {
		return "", r
	}
	return string(b), Ok
}

// RetrieveRefs copies the element views of a mixed vector into out. The
// views share k's heap.
func RetrieveRefs(k K, out []K) Result {
	if r := CheckVector(k); r != Ok {
		return r
	}
	if k.Tag() != TagMixed {
		return NotMixedVector
	}
	n, r := k.count(offsetSize)
	if r != Ok {
		return r
	}
	if len(out) < n {
		return OutputTooSmall
	}
	for i := 0; i < n; i++ {
		c, err := Open(k.heap, k.offsetAt(i))
		if err != nil {
			return MalformedPayload
		}
		out[i] = c
	}
	return Ok
}

// numericSource resolves the payload of a homogeneous numeric vector.
func numericSource(k K, outLen int) (Native, []byte, Result) {
	if r := CheckVector(k); r != Ok {
		return NativeNone, nil, r
	}
	t := k.Tag()
	if t == TagMixed || t == TagSymbol {
		return NativeNone, nil, NotNumericalVector
	}
	c, ok := CategoryOf(t)
	if !ok || c == CategoryGUID {
		return NativeNone, nil, InvalidQTypeId
	}
	src, r := k.vectorBytes(c.Width())
	if r != Ok {
		return NativeNone, nil, r
	}
	if outLen < len(src)/c.Width() {
		return NativeNone, nil, OutputTooSmall
	}
	return c.Native(), src, Ok
}

// RetrieveVector converts every element of a numeric, char or temporal
// vector into out, which must hold at least Len elements.
func RetrieveVector[T Number](k K, out []T) Result {
	n, src, r := numericSource(k, len(out))
	if r != Ok {
		return r
	}
	if !convertInto(n, src, out[:len(src)/n.Width()]) {
		return InvalidQTypeId
	}
	return Ok
}

// RetrieveBools is RetrieveVector for bool outputs.
func RetrieveBools(k K, out []bool) Result {
	n, src, r := numericSource(k, len(out))
	if r != Ok {
		return r
	}
	if !convertBools(n, src, out[:len(src)/n.Width()]) {
		return InvalidQTypeId
	}
	return Ok
}

// RetrieveGUIDs copies a guid vector into out.
func RetrieveGUIDs(k K, out []GUID) Result {
	if r := CheckVector(k); r != Ok {
		return r
	}
	if k.Tag() != TagGUID {
		return NotGuidVector
	}
	src, r := k.vectorBytes(guidSize)
	if r != Ok {
		return r
	}
	n := len(src) / guidSize
	if len(out) < n {
		return OutputTooSmall
	}
	for i := 0; i < n; i++ {
		copy(out[i][:], src[i*guidSize:])
	}
	return Ok
}

// allocLen returns the element count of a vector for sizing an output
// slice. Counts that cannot fit the heap are rejected before allocating.
func allocLen(k K) (int, Result) {
	if r := CheckVector(k); r != Ok {
		return 0, r
	}
	width := offsetSize
	if c, ok := CategoryOf(k.Tag()); ok {
		width = c.Width()
	}
	return k.count(width)
}

// Vector allocates a slice and fills it with RetrieveVector.
func Vector[T Number](k K) ([]T, Result) {
	n, r := allocLen(k)
	if r != Ok {
		return nil, r
	}
	out := make([]T, n)
	if r := RetrieveVector(k, out); r != Ok {
		return nil, r
	}
	return out, Ok
}

// Bools allocates a slice and fills it with RetrieveBools.
func Bools(k K) ([]bool, Result) {
	n, r := allocLen(k)
	if r != Ok {
		return nil, r
	}
	out := make([]bool, n)
	if r := RetrieveBools(k, out); r != Ok {
		return nil, r
	}
	return out, Ok
}

// Strings allocates a slice and fills it with RetrieveStrings. The
// partial prefix is returned with NotCharVectorInMixedVector.
func Strings(k K) ([]string, Result) {
	n, r := allocLen(k)
	if r != Ok {
		return nil, r
	}
	out := make([]string, n)
	r = RetrieveStrings(k, out)
	if r != Ok && r != NotCharVectorInMixedVector {
		return nil, r
	}
	return out, r
}

// Refs allocates a slice and fills it with RetrieveRefs.
func Refs(k K) ([]K, Result) {
	n, r := allocLen(k)
	if r != Ok {
		return nil, r
	}
	out := make([]K, n)
	if r := RetrieveRefs(k, out); r != Ok {
		return nil, r
	}
	return out, Ok
}

// GUIDs allocates a slice and fills it with RetrieveGUIDs.
func GUIDs(k K) ([]GUID, Result) {
	n, r := allocLen(k)
	if r != Ok {
		return nil, r
	}
	out := make([]GUID, n)
	if r := RetrieveGUIDs(k, out); r != Ok {
		return nil, r
	}
	return out, Ok
}
