package ipc

import (
	"encoding/binary"
	"fmt"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/starfederation/kdb-go"
)

// Encode serializes k as an uncompressed little-endian message.
func Encode(k kdb.K, mt MessageType) ([]byte, error) {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	var hdr [HeaderLen]byte
	body.Write(hdr[:])
	if err := encodeValue(body, k, 0); err != nil {
		return nil, err
	}
	if uint64(body.Len()) > uint64(^uint32(0)>>1) {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, body.Len())
	}
	out := make([]byte, body.Len())
	copy(out, body.Bytes())
	PutHeader(out, Header{LittleEndian: true, Type: mt, Size: uint32(len(out))})
	return out, nil
}

// EncodeCompressed is Encode followed by Compress. Messages that do not
// shrink are sent plain.
func EncodeCompressed(k kdb.K, mt MessageType) ([]byte, error) {
	msg, err := Encode(k, mt)
	if err != nil {
		return nil, err
	}
	out, _ := Compress(msg)
	return out, nil
}

func encodeValue(buf *bytebufferpool.ByteBuffer, k kdb.K, depth int) error {
	if k.IsNil() {
		return kdb.ErrNullInput
	}
	if depth > DefaultLimits().MaxDepth {
		return ErrTooDeep
	}
	t := k.Tag()
	switch {
	case t == kdb.TagError:
		msg, _ := kdb.ErrorText(k)
		buf.WriteByte(byte(int8(t)))
		writeCString(buf, msg)
		return nil
	case t == -kdb.TagSymbol:
		var s string
		if !kdb.TryGetAtomString(k, &s) {
			return fmt.Errorf("ipc: unreadable symbol at %d", k.Offset())
		}
		buf.WriteByte(byte(int8(t)))
		writeCString(buf, s)
		return nil
	case t.IsAtomic():
		c, ok := kdb.CategoryOf(t)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnsupportedValue, int8(t))
		}
		buf.WriteByte(byte(int8(t)))
		buf.Write(k.Field()[:c.Width()])
		return nil
	case t == kdb.TagTable:
		var dict kdb.K
		if !kdb.TryGetNested(k, &dict) {
			return fmt.Errorf("ipc: unreadable table at %d", k.Offset())
		}
		buf.WriteByte(byte(int8(t)))
		buf.WriteByte(k.Attr())
		return encodeValue(buf, dict, depth+1)
	case t == kdb.TagDict:
		keys, values, r := kdb.GetDictionary(k)
		if r != kdb.Ok {
			return r.Err()
		}
		if k.Attr() == attrSorted {
			buf.WriteByte(sortedDict)
		} else {
			buf.WriteByte(byte(int8(t)))
		}
		if err := encodeValue(buf, keys, depth+1); err != nil {
			return err
		}
		return encodeValue(buf, values, depth+1)
	case t == kdb.TagMixed:
		items, r := kdb.Refs(k)
		if r != kdb.Ok {
			return r.Err()
		}
		writeVectorHeader(buf, k, len(items))
		for _, item := range items {
			if err := encodeValue(buf, item, depth+1); err != nil {
				return err
			}
		}
		return nil
	case t == kdb.TagSymbol:
		syms, r := kdb.Strings(k)
		if r != kdb.Ok {
			return r.Err()
		}
		writeVectorHeader(buf, k, len(syms))
		for _, s := range syms {
			writeCString(buf, s)
		}
		return nil
	case t.IsVector():
		if r := kdb.CheckVector(k); r != kdb.Ok {
			return r.Err()
		}
		payload := k.Payload()
		c, ok := kdb.CategoryOf(t)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnsupportedValue, int8(t))
		}
		if int64(len(payload)) != k.Len()*int64(c.Width()) {
			return kdb.ErrMalformedPayload
		}
		writeVectorHeader(buf, k, int(k.Len()))
		buf.Write(payload)
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedValue, int8(t))
}

func writeVectorHeader(buf *bytebufferpool.ByteBuffer, k kdb.K, n int) {
	var tmp [4]byte
	buf.WriteByte(byte(int8(k.Tag())))
	buf.WriteByte(k.Attr())
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	buf.Write(tmp[:])
}

func writeCString(buf *bytebufferpool.ByteBuffer, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			s = s[:i]
			break
		}
	}
	buf.WriteString(s)
	buf.WriteByte(0)
}
