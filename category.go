package kdb

// Category is the storage family of an atom or vector. Its value is the
// positive tag id, so the atom -7 and the vector 7 share CategoryLong.
type Category uint8

const (
	CategoryBoolean   = Category(TagBoolean)
	CategoryGUID      = Category(TagGUID)
	CategoryByte      = Category(TagByte)
	CategoryShort     = Category(TagShort)
	CategoryInt       = Category(TagInt)
	CategoryLong      = Category(TagLong)
	CategoryReal      = Category(TagReal)
	CategoryFloat     = Category(TagFloat)
	CategoryChar      = Category(TagChar)
	CategorySymbol    = Category(TagSymbol)
	CategoryTimestamp = Category(TagTimestamp)
	CategoryMonth     = Category(TagMonth)
	CategoryDate      = Category(TagDate)
	CategoryDatetime  = Category(TagDatetime)
	CategoryTimespan  = Category(TagTimespan)
	CategoryMinute    = Category(TagMinute)
	CategorySecond    = Category(TagSecond)
	CategoryTime      = Category(TagTime)
)

// Native is the fixed-width representation a category is stored as.
// Several categories share one representation; timestamp and timespan
// are both NativeInt64.
type Native uint8

const (
	NativeNone Native = iota
	NativeBool
	NativeGUID
	NativeInt8
	NativeInt16
	NativeInt32
	NativeInt64
	NativeFloat32
	NativeFloat64
	NativeChar
	NativeSymbol
)

var nativeWidths = [...]int{
	NativeNone:    0,
	NativeBool:    1,
	NativeGUID:    16,
	NativeInt8:    1,
	NativeInt16:   2,
	NativeInt32:   4,
	NativeInt64:   8,
	NativeFloat32: 4,
	NativeFloat64: 8,
	NativeChar:    1,
	NativeSymbol:  4, // text record offset
}

var nativeNames = [...]string{
	NativeNone:    "none",
	NativeBool:    "bool",
	NativeGUID:    "guid",
	NativeInt8:    "int8",
	NativeInt16:   "int16",
	NativeInt32:   "int32",
	NativeInt64:   "int64",
	NativeFloat32: "float32",
	NativeFloat64: "float64",
	NativeChar:    "char",
	NativeSymbol:  "symbol",
}

// Width returns the byte width of one element in a vector payload.
func (n Native) Width() int {
	if int(n) >= len(nativeWidths) {
		return 0
	}
	return nativeWidths[n]
}

func (n Native) String() string {
	if int(n) >= len(nativeNames) {
		return "none"
	}
	return nativeNames[n]
}

type categoryInfo struct {
	name   string
	code   byte
	native Native
}

// categories is indexed by Category. Slots 0 and 3 are unassigned.
var categories = [...]categoryInfo{
	CategoryBoolean:   {"boolean", 'b', NativeBool},
	CategoryGUID:      {"guid", 'g', NativeGUID},
	CategoryByte:      {"byte", 'x', NativeInt8},
	CategoryShort:     {"short", 'h', NativeInt16},
	CategoryInt:       {"int", 'i', NativeInt32},
	CategoryLong:      {"long", 'j', NativeInt64},
	CategoryReal:      {"real", 'e', NativeFloat32},
	CategoryFloat:     {"float", 'f', NativeFloat64},
	CategoryChar:      {"char", 'c', NativeChar},
	CategorySymbol:    {"symbol", 's', NativeSymbol},
	CategoryTimestamp: {"timestamp", 'p', NativeInt64},
	CategoryMonth:     {"month", 'm', NativeInt32},
	CategoryDate:      {"date", 'd', NativeInt32},
	CategoryDatetime:  {"datetime", 'z', NativeFloat64},
	CategoryTimespan:  {"timespan", 'n', NativeInt64},
	CategoryMinute:    {"minute", 'u', NativeInt32},
	CategorySecond:    {"second", 'v', NativeInt32},
	CategoryTime:      {"time", 't', NativeInt32},
}

// CategoryOf returns the category of an atom or vector tag. It reports
// false for the mixed, table, dict and error tags and for unassigned ids.
func CategoryOf(t Tag) (Category, bool) {
	a := t.Abs()
	if a <= 0 || int(a) >= len(categories) {
		return 0, false
	}
	if categories[a].native == NativeNone {
		return 0, false
	}
	return Category(a), true
}

// NativeOf returns the storage representation for a tag in either its
// atom or vector form, or InvalidQTypeId when the tag has none.
func NativeOf(t Tag) (Native, Result) {
	c, ok := CategoryOf(t)
	if !ok {
		return NativeNone, InvalidQTypeId
	}
	return c.Native(), Ok
}

// Native returns the storage representation of c.
func (c Category) Native() Native {
	if int(c) >= len(categories) {
		return NativeNone
	}
	return categories[c].native
}

// Width returns the byte width of one element of c.
func (c Category) Width() int {
	return c.Native().Width()
}

// Tag returns the vector tag of c.
func (c Category) Tag() Tag {
	return Tag(c)
}

// Code returns the single-letter q type code, or 0 for unassigned ids.
func (c Category) Code() byte {
	if int(c) >= len(categories) {
		return 0
	}
	return categories[c].code
}

func (c Category) String() string {
	if int(c) >= len(categories) || categories[c].name == "" {
		return "unknown"
	}
	return categories[c].name
}

// Primitive is the set of Go types that have a canonical vector tag.
// int8 is the q byte type and byte is the q char type.
type Primitive interface {
	bool | GUID | int8 | int16 | int32 | int64 | float32 | float64 | byte | string
}

var primaryTags = [...]Tag{
	NativeBool:    TagBoolean,
	NativeGUID:    TagGUID,
	NativeInt8:    TagByte,
	NativeInt16:   TagShort,
	NativeInt32:   TagInt,
	NativeInt64:   TagLong,
	NativeFloat32: TagReal,
	NativeFloat64: TagFloat,
	NativeChar:    TagChar,
	NativeSymbol:  TagSymbol,
}

func nativeFor[T Primitive]() Native {
	var zero T
	switch any(zero).(type) {
	case bool:
		return NativeBool
	case GUID:
		return NativeGUID
	case int8:
		return NativeInt8
	case int16:
		return NativeInt16
	case int32:
		return NativeInt32
	case int64:
		return NativeInt64
	case float32:
		return NativeFloat32
	case float64:
		return NativeFloat64
	case byte:
		return NativeChar
	case string:
		return NativeSymbol
	}
	return NativeNone
}

// VectorTagFor returns the canonical positive tag for T. The mapping is
// not invertible: int32 is also the storage of month, date, minute,
// second and time, but only TagInt is returned here.
func VectorTagFor[T Primitive]() Tag {
	return primaryTags[nativeFor[T]()]
}

// IsSameType reports whether values of tag t are stored as T, in either
// the atom or the vector form.
func IsSameType[T Primitive](t Tag) bool {
	n, r := NativeOf(t)
	return r == Ok && n == nativeFor[T]()
}
