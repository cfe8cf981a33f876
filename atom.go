package kdb

// TryGetAtom converts the scalar held by an atom of any numeric or
// temporal category into out. It reports false, leaving out untouched,
// for the null reference, non-atoms, and guid or symbol atoms.
func TryGetAtom[T Number](k K, out *T) bool {
	if !k.IsAtomic() {
		return false
	}
	c, ok := CategoryOf(k.Tag())
	if !ok {
		return false
	}
	var v [1]T
	if !convertInto(c.Native(), k.Field(), v[:]) {
		return false
	}
	*out = v[0]
	return true
}

// Atom is TryGetAtom returning the value.
func Atom[T Number](k K) (T, bool) {
	var v T
	ok := TryGetAtom(k, &v)
	return v, ok
}

// TryGetAtomBool is TryGetAtom for bool outputs. Any non-zero scalar is
// true.
func TryGetAtomBool(k K, out *bool) bool {
	if !k.IsAtomic() {
		return false
	}
	c, ok := CategoryOf(k.Tag())
	if !ok {
		return false
	}
	var v [1]bool
	if !convertBools(c.Native(), k.Field(), v[:]) {
		return false
	}
	*out = v[0]
	return true
}

// TryGetAtomString copies the text of a symbol atom.
func TryGetAtomString(k K, out *string) bool {
	b, ok := symbolAtomBytes(k)
	if !ok {
		return false
	}
	*out = string(b)
	return true
}

func symbolAtomBytes(k K) ([]byte, bool) {
	if k.IsNil() || k.Tag() != -TagSymbol {
		return nil, false
	}
	return text(k.heap, k.fieldOffset())
}

// TryGetAtomGUID copies the value of a guid atom.
func TryGetAtomGUID(k K, out *GUID) bool {
	if k.IsNil() || k.Tag() != -TagGUID {
		return false
	}
	copy(out[:], k.Field())
	return true
}

// TryGetNested yields the dictionary a simple table refers to. It is the
// only nested reference a record carries in its field.
func TryGetNested(k K, out *K) bool {
	if !k.IsTable() {
		return false
	}
	d, err := Open(k.heap, k.fieldOffset())
	if err != nil {
		return false
	}
	*out = d
	return true
}

// ErrorText returns the message of an error value.
func ErrorText(k K) (string, bool) {
	if !k.IsError() {
		return "", false
	}
	b, ok := text(k.heap, k.fieldOffset())
	if !ok {
		return "", false
	}
	return string(b), true
}
