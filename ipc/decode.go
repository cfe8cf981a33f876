package ipc

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/starfederation/kdb-go"
)

// sortedDict is the wire type of a dictionary with the sorted attribute.
const sortedDict = 127

// attrSorted is the q `s# attribute.
const attrSorted = 1

// Decode decodes one message into a new heap.
func Decode(msg []byte) (kdb.K, Header, error) {
	return DecodeWithLimits(msg, DefaultLimits())
}

// DecodeWithLimits is Decode with explicit limits.
func DecodeWithLimits(msg []byte, limits Limits) (kdb.K, Header, error) {
	b := kdb.NewBuilderWithCapacity(len(msg) * 2)
	off, h, err := DecodeInto(b, msg, limits)
	if err != nil {
		return kdb.K{}, h, err
	}
	k, err := b.Value(off)
	return k, h, err
}

// DecodeInto decodes one message, appending its records to b, and
// returns the offset of the root value. Compressed messages are
// expanded first.
func DecodeInto(b *kdb.Builder, msg []byte, limits Limits) (uint32, Header, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return 0, Header{}, err
	}
	if int(h.Size) != len(msg) {
		return 0, h, fmt.Errorf("%w: header says %d bytes, have %d", ErrTruncated, h.Size, len(msg))
	}
	if h.Compressed {
		if msg, err = Decompress(msg, limits.MaxDecompressedBytes); err != nil {
			return 0, h, err
		}
	}
	d := decoder{
		buf:      msg,
		pos:      HeaderLen,
		order:    h.Order(),
		b:        b,
		maxDepth: limits.MaxDepth,
	}
	if d.maxDepth <= 0 {
		d.maxDepth = DefaultLimits().MaxDepth
	}
	off, err := d.value(0)
	if err != nil {
		return 0, h, err
	}
	if d.pos != len(d.buf) {
		return 0, h, fmt.Errorf("%w: %d", ErrTrailingBytes, len(d.buf)-d.pos)
	}
	return off, h, nil
}

type decoder struct {
	buf      []byte
	pos      int
	order    binary.ByteOrder
	b        *kdb.Builder
	maxDepth int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || n > len(d.buf)-d.pos {
		return nil, fmt.Errorf("%w: need %d bytes at %d", ErrTruncated, n, d.pos)
	}
	out := d.buf[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// cstring reads a NUL-terminated string.
func (d *decoder) cstring() (string, error) {
	rest := d.buf[d.pos:]
	for i, c := range rest {
		if c == 0 {
			d.pos += i + 1
			return string(rest[:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated symbol at %d", ErrTruncated, d.pos)
}

func (d *decoder) count() (int, error) {
	raw, err := d.take(4)
	if err != nil {
		return 0, err
	}
	n := int32(d.order.Uint32(raw))
	if n < 0 {
		return 0, fmt.Errorf("ipc: negative count %d at %d", n, d.pos-4)
	}
	return int(n), nil
}

func (d *decoder) value(depth int) (uint32, error) {
	if depth > d.maxDepth {
		return 0, ErrTooDeep
	}
	tb, err := d.readByte()
	if err != nil {
		return 0, err
	}
	t := kdb.Tag(int8(tb))
	switch {
	case t == kdb.TagError:
		msg, err := d.cstring()
		if err != nil {
			return 0, err
		}
		return d.b.AppendError(msg), nil
	case t == -kdb.TagSymbol:
		s, err := d.cstring()
		if err != nil {
			return 0, err
		}
		return d.b.AppendSymbol(s), nil
	case t.IsAtomic():
		return d.atom(t)
	case t == kdb.TagMixed:
		return d.mixed(depth)
	case t == kdb.TagSymbol:
		return d.symbols()
	case t == kdb.TagTable:
		if _, err := d.readByte(); err != nil {
			return 0, err
		}
		dict, err := d.value(depth + 1)
		if err != nil {
			return 0, err
		}
		return d.b.AppendTable(dict), nil
	case t == kdb.TagDict || tb == sortedDict:
		keys, err := d.value(depth + 1)
		if err != nil {
			return 0, err
		}
		values, err := d.value(depth + 1)
		if err != nil {
			return 0, err
		}
		off := d.b.AppendDict(keys, values)
		if tb == sortedDict {
			d.b.SetAttr(off, attrSorted)
		}
		return off, nil
	case t.IsVector():
		return d.vector(t)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedValue, int8(tb))
}

func (d *decoder) atom(t kdb.Tag) (uint32, error) {
	c, ok := kdb.CategoryOf(t)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedValue, int8(t))
	}
	raw, err := d.take(c.Width())
	if err != nil {
		return 0, err
	}
	var field [16]byte
	copy(field[:], raw)
	d.toLittle(c, field[:len(raw)])
	return d.b.AppendRawAtom(t, field[:len(raw)])
}

func (d *decoder) vector(t kdb.Tag) (uint32, error) {
	c, ok := kdb.CategoryOf(t)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedValue, int8(t))
	}
	attr, err := d.readByte()
	if err != nil {
		return 0, err
	}
	n, err := d.count()
	if err != nil {
		return 0, err
	}
	w := c.Width()
	if n > (len(d.buf)-d.pos)/w {
		return 0, fmt.Errorf("%w: %d %s elements at %d", ErrTruncated, n, c, d.pos)
	}
	raw, err := d.take(n * w)
	if err != nil {
		return 0, err
	}
	if d.order == binary.LittleEndian || w == 1 || c == kdb.CategoryGUID {
		return d.b.AppendRawVector(t, attr, raw)
	}
	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	scratch.Set(raw)
	sb := scratch.Bytes()
	for i := 0; i < len(sb); i += w {
		d.toLittle(c, sb[i:i+w])
	}
	return d.b.AppendRawVector(t, attr, sb)
}

func (d *decoder) symbols() (uint32, error) {
	attr, err := d.readByte()
	if err != nil {
		return 0, err
	}
	n, err := d.count()
	if err != nil {
		return 0, err
	}
	if n > len(d.buf)-d.pos {
		return 0, fmt.Errorf("%w: %d symbols at %d", ErrTruncated, n, d.pos)
	}
	syms := make([]string, n)
	for i := range syms {
		if syms[i], err = d.cstring(); err != nil {
			return 0, err
		}
	}
	off := d.b.AppendSymbols(syms)
	d.b.SetAttr(off, attr)
	return off, nil
}

func (d *decoder) mixed(depth int) (uint32, error) {
	attr, err := d.readByte()
	if err != nil {
		return 0, err
	}
	n, err := d.count()
	if err != nil {
		return 0, err
	}
	if n > len(d.buf)-d.pos {
		return 0, fmt.Errorf("%w: %d items at %d", ErrTruncated, n, d.pos)
	}
	elems := make([]uint32, n)
	for i := range elems {
		if elems[i], err = d.value(depth + 1); err != nil {
			return 0, err
		}
	}
	off := d.b.AppendMixed(elems...)
	d.b.SetAttr(off, attr)
	return off, nil
}

// toLittle rewrites one big-endian element of c in place.
func (d *decoder) toLittle(c kdb.Category, elem []byte) {
	if d.order == binary.LittleEndian || c == kdb.CategoryGUID {
		return
	}
	slices.Reverse(elem)
}
