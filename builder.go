package kdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrAppendTag   = errors.New("kdb: tag cannot be appended from this type")
	ErrForeignHeap = errors.New("kdb: value does not belong to this heap")
	ErrShape       = errors.New("kdb: names and columns differ in length")
)

// Builder assembles a heap by appending value records. Every Append
// returns the record offset; children must be appended before the
// mixed vector, dictionary or table that refers to them. Offsets are
// uint32, so a heap stays below 4 GiB.
type Builder struct {
	buf     []byte
	symbols map[string]uint32
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{buf: make([]byte, 0, 1024)}
}

// NewBuilderWithCapacity creates an empty builder with a given capacity.
func NewBuilderWithCapacity(capacity int) *Builder {
	if capacity <= 0 {
		return NewBuilder()
	}
	return &Builder{buf: make([]byte, 0, capacity)}
}

// NewBuilderWithBuffer builds into buf[:0], reusing its capacity.
func NewBuilderWithBuffer(buf []byte) *Builder {
	return &Builder{buf: buf[:0]}
}

// NewBuilderFromHeap copies a heap into a builder so that records can be
// added next to the existing ones.
func NewBuilderFromHeap(heap []byte) *Builder {
	buf := make([]byte, len(heap), len(heap)+1024)
	copy(buf, heap)
	return &Builder{buf: buf}
}

// AdoptHeap continues heap in place. The caller gives up heap: later
// appends may write into its spare capacity.
func AdoptHeap(heap []byte) *Builder {
	return &Builder{buf: heap}
}

// Heap returns the current builder buffer.
func (b *Builder) Heap() []byte {
	return b.buf
}

// Len returns the heap size in bytes.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset clears the builder buffer while retaining its capacity.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
	clear(b.symbols)
}

// Value opens the record at off in the current heap.
func (b *Builder) Value(off uint32) (K, error) {
	return Open(b.buf, off)
}

func (b *Builder) grow(n int) (uint32, []byte) {
	start := len(b.buf)
	b.buf = slices.Grow(b.buf, n)[:start+n]
	clear(b.buf[start:])
	return uint32(start), b.buf[start:]
}

// record appends a header plus payloadLen zero bytes and returns the
// record offset and its bytes.
func (b *Builder) record(t Tag, attr byte, payloadLen int) (uint32, []byte) {
	off, rec := b.grow(recordSize + payloadLen)
	rec[0] = byte(t)
	rec[1] = attr
	return off, rec
}

func (b *Builder) vectorRecord(t Tag, attr byte, n, width int) (uint32, []byte) {
	off, rec := b.record(t, attr, n*width)
	binary.LittleEndian.PutUint64(rec[headerSize:], uint64(n))
	return off, rec[payloadBase:]
}

func (b *Builder) appendText(s string) uint32 {
	off, rec := b.grow(textLenSize + len(s))
	binary.LittleEndian.PutUint32(rec, uint32(len(s)))
	copy(rec[textLenSize:], s)
	return off
}

// intern returns the text record for s, appending it on first use.
func (b *Builder) intern(s string) uint32 {
	if off, ok := b.symbols[s]; ok {
		return off
	}
	if b.symbols == nil {
		b.symbols = make(map[string]uint32)
	}
	off := b.appendText(s)
	b.symbols[s] = off
	return off
}

// AppendAtom appends an atom of tag t, which may be given in either its
// atom or vector form. Guid and symbol atoms have their own methods.
func AppendAtom[T Number](b *Builder, t Tag, v T) (uint32, error) {
	c, ok := CategoryOf(t)
	if !ok || c == CategoryGUID || c == CategorySymbol {
		return 0, fmt.Errorf("%w: %s atom", ErrAppendTag, t)
	}
	off, rec := b.record(t.Abs().Atom(), 0, 0)
	putNative(c.Native(), rec[headerSize:], v)
	return off, nil
}

// AppendBool appends a boolean atom.
func (b *Builder) AppendBool(v bool) uint32 {
	off, rec := b.record(-TagBoolean, 0, 0)
	if v {
		rec[headerSize] = 1
	}
	return off
}

// AppendGUID appends a guid atom.
func (b *Builder) AppendGUID(g GUID) uint32 {
	off, rec := b.grow(headerSize + guidSize)
	rec[0] = byte(TagGUID.Atom())
	copy(rec[headerSize:], g[:])
	return off
}

// AppendSymbol appends a symbol atom.
func (b *Builder) AppendSymbol(s string) uint32 {
	txt := b.intern(s)
	off, rec := b.record(-TagSymbol, 0, 0)
	binary.LittleEndian.PutUint32(rec[headerSize:], txt)
	return off
}

// AppendError appends an error value carrying msg.
func (b *Builder) AppendError(msg string) uint32 {
	txt := b.appendText(msg)
	off, rec := b.record(TagError, 0, 0)
	binary.LittleEndian.PutUint32(rec[headerSize:], txt)
	return off
}

// AppendRawAtom appends an atom whose scalar field is already in
// little-endian storage form. Symbol atoms go through AppendSymbol.
func (b *Builder) AppendRawAtom(t Tag, field []byte) (uint32, error) {
	c, ok := CategoryOf(t)
	if !ok || c == CategorySymbol {
		return 0, fmt.Errorf("%w: raw %s atom", ErrAppendTag, t)
	}
	if len(field) != c.Width() {
		return 0, fmt.Errorf("kdb: raw %s atom of %d bytes", t, len(field))
	}
	if c == CategoryGUID {
		var g GUID
		copy(g[:], field)
		return b.AppendGUID(g), nil
	}
	off, rec := b.record(c.Tag().Atom(), 0, 0)
	copy(rec[headerSize:], field)
	return off, nil
}

// AppendVector appends a vector of tag t holding vals converted to the
// tag's storage type.
func AppendVector[T Number](b *Builder, t Tag, vals []T) (uint32, error) {
	c, ok := CategoryOf(t)
	if !ok || c == CategoryGUID || c == CategorySymbol {
		return 0, fmt.Errorf("%w: %s vector", ErrAppendTag, t)
	}
	n := c.Native()
	w := n.Width()
	off, payload := b.vectorRecord(c.Tag(), 0, len(vals), w)
	for i, v := range vals {
		putNative(n, payload[i*w:], v)
	}
	return off, nil
}

// AppendRawVector appends a vector whose payload is already in
// little-endian storage form.
func (b *Builder) AppendRawVector(t Tag, attr byte, payload []byte) (uint32, error) {
	c, ok := CategoryOf(t)
	if !ok || c == CategorySymbol || t.IsAtomic() {
		return 0, fmt.Errorf("%w: raw %s vector", ErrAppendTag, t)
	}
	w := c.Width()
	if len(payload)%w != 0 {
		return 0, fmt.Errorf("kdb: raw %s payload of %d bytes", t, len(payload))
	}
	off, dst := b.vectorRecord(c.Tag(), attr, len(payload)/w, w)
	copy(dst, payload)
	return off, nil
}

// AppendBools appends a boolean vector.
func (b *Builder) AppendBools(vals []bool) uint32 {
	off, payload := b.vectorRecord(TagBoolean, 0, len(vals), 1)
	for i, v := range vals {
		if v {
			payload[i] = 1
		}
	}
	return off
}

// AppendGUIDs appends a guid vector.
func (b *Builder) AppendGUIDs(vals []GUID) uint32 {
	off, payload := b.vectorRecord(TagGUID, 0, len(vals), guidSize)
	for i, g := range vals {
		copy(payload[i*guidSize:], g[:])
	}
	return off
}

// AppendChars appends a char vector, the q string type.
func (b *Builder) AppendChars(s string) uint32 {
	off, payload := b.vectorRecord(TagChar, 0, len(s), 1)
	copy(payload, s)
	return off
}

// AppendSymbols appends a symbol vector.
func (b *Builder) AppendSymbols(vals []string) uint32 {
	txt := make([]uint32, len(vals))
	for i, s := range vals {
		txt[i] = b.intern(s)
	}
	off, payload := b.vectorRecord(TagSymbol, 0, len(vals), offsetSize)
	for i, t := range txt {
		binary.LittleEndian.PutUint32(payload[i*offsetSize:], t)
	}
	return off
}

// AppendMixed appends a mixed vector of previously appended records.
func (b *Builder) AppendMixed(elems ...uint32) uint32 {
	return b.appendRefs(TagMixed, elems)
}

func (b *Builder) appendRefs(t Tag, elems []uint32) uint32 {
	off, payload := b.vectorRecord(t, 0, len(elems), offsetSize)
	for i, e := range elems {
		binary.LittleEndian.PutUint32(payload[i*offsetSize:], e)
	}
	return off
}

// AppendDict appends a dictionary. A dictionary of two tables is a keyed
// table.
func (b *Builder) AppendDict(keys, values uint32) uint32 {
	return b.appendRefs(TagDict, []uint32{keys, values})
}

// AppendTable appends a table over a dictionary of a symbol vector and a
// mixed vector of columns.
func (b *Builder) AppendTable(dict uint32) uint32 {
	off, rec := b.record(TagTable, 0, 0)
	binary.LittleEndian.PutUint32(rec[headerSize:], dict)
	return off
}

// AppendSimpleTable appends the names, the column list, the dictionary
// and the table, returning the table offset.
func (b *Builder) AppendSimpleTable(names []string, cols ...uint32) (uint32, error) {
	if len(names) != len(cols) {
		return 0, fmt.Errorf("%w: %d names, %d columns", ErrShape, len(names), len(cols))
	}
	n := b.AppendSymbols(names)
	v := b.AppendMixed(cols...)
	return b.AppendTable(b.AppendDict(n, v)), nil
}

// SetAttr sets the attribute byte of the record at off.
func (b *Builder) SetAttr(off uint32, attr byte) {
	if int(off)+1 < len(b.buf) {
		b.buf[off+1] = attr
	}
}

func (b *Builder) owns(k K) bool {
	if len(k.heap) == 0 || len(k.heap) > len(b.buf) {
		return false
	}
	if &k.heap[0] == &b.buf[0] {
		return true
	}
	return bytes.Equal(k.heap, b.buf[:len(k.heap)])
}

// Dekey turns a keyed table of this heap into a simple table whose
// columns are the key columns followed by the value columns. Column
// records are shared, not copied. A simple table is returned as is.
func (b *Builder) Dekey(k K) (K, error) {
	if k.IsTable() {
		return k, nil
	}
	keys, values, r := GetKeyedTable(k)
	if r != Ok {
		return K{}, r.Err()
	}
	if !b.owns(k) {
		return K{}, ErrForeignHeap
	}
	kc, r := GetSimpleTable(keys)
	if r != Ok {
		return K{}, r.Err()
	}
	vc, r := GetSimpleTable(values)
	if r != Ok {
		return K{}, r.Err()
	}
	kn, r := ColumnNames(kc)
	if r != Ok {
		return K{}, r.Err()
	}
	vn, r := ColumnNames(vc)
	if r != Ok {
		return K{}, r.Err()
	}
	cols := getUint32Slice()
	defer func() { putUint32Slice(cols) }()
	for _, c := range kc.Columns {
		cols = append(cols, c.off)
	}
	for _, c := range vc.Columns {
		cols = append(cols, c.off)
	}
	off, err := b.AppendSimpleTable(append(kn, vn...), cols...)
	if err != nil {
		return K{}, err
	}
	return Open(b.buf, off)
}
