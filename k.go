package kdb

import (
	"encoding/binary"
	"fmt"
)

// Record layout, all integers little endian:
//
//	+0   tag (int8)
//	+1   attribute byte
//	+2   reserved
//	+8   scalar field, element count, or a uint32 offset
//	+16  vector payload
//
// GUID atoms widen the scalar field to 16 bytes.
const (
	headerSize  = 8
	fieldSize   = 8
	recordSize  = headerSize + fieldSize
	payloadBase = recordSize
	offsetSize  = 4
	textLenSize = 4
)

// K is a borrowed view of one value record inside a heap. The zero K is
// the null reference. A K never owns its heap: whoever produced the heap
// decides how long the view stays valid.
type K struct {
	heap []byte
	off  uint32
}

// Open returns a view of the record at off after checking that the
// record's fixed part lies within heap.
func Open(heap []byte, off uint32) (K, error) {
	if uint64(off)+recordSize > uint64(len(heap)) {
		return K{}, fmt.Errorf("record offset out of range: %d", off)
	}
	k := K{heap: heap, off: off}
	if k.Tag() == -TagGUID && uint64(off)+headerSize+guidSize > uint64(len(heap)) {
		return K{}, fmt.Errorf("guid atom truncated at offset %d", off)
	}
	return k, nil
}

// IsNil reports whether k is the null reference.
func (k K) IsNil() bool {
	return k.heap == nil
}

// Heap returns the buffer the view reads from.
func (k K) Heap() []byte {
	return k.heap
}

// Offset returns the record offset within the heap.
func (k K) Offset() uint32 {
	return k.off
}

// Tag returns the record tag. The null reference reports TagMixed, so
// callers check IsNil first.
func (k K) Tag() Tag {
	if k.heap == nil {
		return TagMixed
	}
	return Tag(int8(k.heap[k.off]))
}

// Attr returns the attribute byte (sorted, unique, parted, grouped).
func (k K) Attr() byte {
	if k.heap == nil {
		return 0
	}
	return k.heap[k.off+1]
}

// Len returns the element count of a vector or dictionary and 0 for every
// other tag.
func (k K) Len() int64 {
	if k.heap == nil {
		return 0
	}
	t := k.Tag()
	if !t.IsVector() && !t.IsDict() {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(k.heap[k.off+headerSize:]))
}

// Field returns the scalar field of an atom: 16 bytes for a guid atom
// and 8 bytes otherwise. Narrow types occupy the low bytes.
func (k K) Field() []byte {
	if k.heap == nil {
		return nil
	}
	start := k.off + headerSize
	if k.Tag() == -TagGUID {
		return k.heap[start : start+guidSize]
	}
	return k.heap[start : start+fieldSize]
}

// Payload returns the vector backing store, exactly Len elements wide,
// or nil when the tag has no fixed width or the payload overruns the heap.
func (k K) Payload() []byte {
	if k.heap == nil {
		return nil
	}
	t := k.Tag()
	if !t.IsVector() && !t.IsDict() {
		return nil
	}
	width := offsetSize
	if c, ok := CategoryOf(t); ok {
		width = c.Width()
	} else if !t.IsMixedVector() && !t.IsDict() {
		return nil
	}
	b, r := k.vectorBytes(width)
	if r != Ok {
		return nil
	}
	return b
}

// IsError reports whether k is a q error. This and the other class
// predicates below are false for the zero K.
func (k K) IsError() bool {
	return k.heap != nil && k.Tag().IsError()
}

// IsAtomic reports whether k is an atom.
func (k K) IsAtomic() bool {
	return k.heap != nil && k.Tag().IsAtomic()
}

// IsVector reports whether k is a vector, mixed lists included.
func (k K) IsVector() bool {
	return k.heap != nil && k.Tag().IsVector()
}

// IsMixedVector reports whether k is a mixed list.
func (k K) IsMixedVector() bool {
	return k.heap != nil && k.Tag().IsMixedVector()
}

// IsDict reports whether k is a dictionary.
func (k K) IsDict() bool {
	return k.heap != nil && k.Tag().IsDict()
}

// IsTable reports whether k is a table.
func (k K) IsTable() bool {
	return k.heap != nil && k.Tag().IsTable()
}

// count returns Len as an int after checking that count elements of
// width bytes fit between the payload base and the end of the heap.
func (k K) count(width int) (int, Result) {
	if k.heap == nil {
		return 0, NullInput
	}
	n := k.Len()
	if n < 0 {
		return 0, MalformedPayload
	}
	avail := uint64(len(k.heap)) - uint64(k.off) - payloadBase
	if width > 0 && uint64(n) > avail/uint64(width) {
		return 0, MalformedPayload
	}
	if width == 0 && n != 0 {
		return 0, MalformedPayload
	}
	return int(n), Ok
}

func (k K) vectorBytes(width int) ([]byte, Result) {
	n, r := k.count(width)
	if r != Ok {
		return nil, r
	}
	start := int(k.off) + payloadBase
	return k.heap[start : start+n*width], Ok
}

// offsetAt reads the i-th uint32 offset of a mixed, dict or symbol payload.
// The caller has checked the payload bounds.
func (k K) offsetAt(i int) uint32 {
	p := int(k.off) + payloadBase + i*offsetSize
	return binary.LittleEndian.Uint32(k.heap[p : p+offsetSize])
}

// child returns the i-th element of a mixed vector or dictionary.
func (k K) child(i int) (K, Result) {
	n, r := k.count(offsetSize)
	if r != Ok {
		return K{}, r
	}
	if i < 0 || i >= n {
		return K{}, MalformedPayload
	}
	c, err := Open(k.heap, k.offsetAt(i))
	if err != nil {
		return K{}, MalformedPayload
	}
	return c, Ok
}

// fieldOffset reads the uint32 offset held in the low bytes of the field.
func (k K) fieldOffset() uint32 {
	return binary.LittleEndian.Uint32(k.heap[k.off+headerSize:])
}

// text returns the bytes of the text record at off without copying.
func text(heap []byte, off uint32) ([]byte, bool) {
	if uint64(off)+textLenSize > uint64(len(heap)) {
		return nil, false
	}
	n := binary.LittleEndian.Uint32(heap[off:])
	start := uint64(off) + textLenSize
	if start+uint64(n) > uint64(len(heap)) {
		return nil, false
	}
	return heap[start : start+uint64(n)], true
}

func (k K) String() string {
	if k.heap == nil {
		return "K(nil)"
	}
	t := k.Tag()
	if t.IsVector() || t.IsDict() {
		return fmt.Sprintf("K(%s, n=%d @%d)", t, k.Len(), k.off)
	}
	return fmt.Sprintf("K(%s @%d)", t, k.off)
}
