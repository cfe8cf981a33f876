package kdb

import "strconv"

// Tag is the signed type byte carried by every value record.
// Negative tags are atoms; non-negative tags other than 98 and 99 are vectors.
type Tag int8

const (
	TagMixed     Tag = 0
	TagBoolean   Tag = 1
	TagGUID      Tag = 2
	TagByte      Tag = 4
	TagShort     Tag = 5
	TagInt       Tag = 6
	TagLong      Tag = 7
	TagReal      Tag = 8
	TagFloat     Tag = 9
	TagChar      Tag = 10
	TagSymbol    Tag = 11
	TagTimestamp Tag = 12
	TagMonth     Tag = 13
	TagDate      Tag = 14
	TagDatetime  Tag = 15
	TagTimespan  Tag = 16
	TagMinute    Tag = 17
	TagSecond    Tag = 18
	TagTime      Tag = 19
	TagTable     Tag = 98
	TagDict      Tag = 99
	TagError     Tag = -128
)

// IsError reports whether t is the error sentinel.
func (t Tag) IsError() bool {
	return t == TagError
}

// IsAtomic reports whether t is a scalar tag.
func (t Tag) IsAtomic() bool {
	return t < 0 && t != TagError
}

// IsVector reports whether t is a vector tag, mixed vectors included.
func (t Tag) IsVector() bool {
	return t >= 0 && t != TagTable && t != TagDict
}

// IsMixedVector reports whether t is the mixed list tag.
func (t Tag) IsMixedVector() bool {
	return t == TagMixed
}

// IsDict reports whether t is a dictionary or keyed table.
func (t Tag) IsDict() bool {
	return t == TagDict
}

// IsTable reports whether t is a simple table.
func (t Tag) IsTable() bool {
	return t == TagTable
}

// Abs returns the category id shared by the atom and vector forms.
// The error sentinel has no positive form and maps to itself.
func (t Tag) Abs() Tag {
	if t < 0 && t != TagError {
		return -t
	}
	return t
}

// Atom returns the negated (scalar) form of a vector tag.
func (t Tag) Atom() Tag {
	if t > 0 {
		return -t
	}
	return t
}

// IsIntFamily reports whether t is stored as a 32-bit integer.
func (t Tag) IsIntFamily() bool {
	switch t.Abs() {
	case TagInt, TagMonth, TagDate, TagMinute, TagSecond, TagTime:
		return true
	}
	return false
}

// IsInt64Family reports whether t is stored as a 64-bit integer.
func (t Tag) IsInt64Family() bool {
	switch t.Abs() {
	case TagLong, TagTimestamp, TagTimespan:
		return true
	}
	return false
}

// IsDoubleFamily reports whether t is stored as a 64-bit float.
func (t Tag) IsDoubleFamily() bool {
	switch t.Abs() {
	case TagFloat, TagDatetime:
		return true
	}
	return false
}

// IsStringFamily reports whether t is a char or symbol tag, in either
// atom or vector form.
func (t Tag) IsStringFamily() bool {
	a := t.Abs()
	return a == TagSymbol || a == TagChar
}

// IsTemporal reports whether t is one of the date or time categories.
func (t Tag) IsTemporal() bool {
	a := t.Abs()
	return a >= TagTimestamp && a <= TagTime
}

// String returns the q type name of the tag, or a numeric form.
func (t Tag) String() string {
	switch t {
	case TagMixed:
		return "mixed"
	case TagTable:
		return "table"
	case TagDict:
		return "dict"
	case TagError:
		return "error"
	}
	if c, ok := CategoryOf(t); ok {
		return c.String()
	}
	return "tag(" + strconv.Itoa(int(t)) + ")"
}
