// Package ipc reads and writes the kdb+ IPC wire format: an 8-byte
// message header followed by one serialized value, optionally
// compressed. Decoded values land in a kdb heap.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderLen is the size of the fixed message header.
const HeaderLen = 8

// MessageType is the second header byte.
type MessageType uint8

const (
	Async    MessageType = 0
	Sync     MessageType = 1
	Response MessageType = 2
)

func (m MessageType) String() string {
	switch m {
	case Async:
		return "async"
	case Sync:
		return "sync"
	case Response:
		return "response"
	}
	return fmt.Sprintf("msgtype(%d)", uint8(m))
}

var (
	ErrShortHeader      = errors.New("ipc: short message header")
	ErrBadSize          = errors.New("ipc: message size smaller than header")
	ErrMessageTooLarge  = errors.New("ipc: message too large")
	ErrUnknownType      = errors.New("ipc: unknown message type")
	ErrUnknownEndian    = errors.New("ipc: unknown byte order")
	ErrUnsupportedFlags = errors.New("ipc: unsupported compression flag")
	ErrTruncated        = errors.New("ipc: truncated message")
	ErrUnsupportedValue = errors.New("ipc: unsupported value type")
	ErrTooDeep          = errors.New("ipc: value nested too deeply")
	ErrTrailingBytes    = errors.New("ipc: trailing bytes after value")
)

// Header is the fixed wire header.
//
//	byte 0  byte order, 1 little endian, 0 big endian
//	byte 1  message type
//	byte 2  1 when the body is compressed
//	byte 3  reserved
//	4..8    total message size including the header
type Header struct {
	LittleEndian bool
	Type         MessageType
	Compressed   bool
	Size         uint32
}

// Order returns the byte order of the message body.
func (h Header) Order() binary.ByteOrder {
	if h.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Limits constrains memory use while reading and decoding.
type Limits struct {
	MaxMessageBytes      uint32
	MaxDecompressedBytes uint32
	MaxDepth             int
}

func DefaultLimits() Limits {
	return Limits{
		MaxMessageBytes:      64 * 1024 * 1024,
		MaxDecompressedBytes: 256 * 1024 * 1024,
		MaxDepth:             256,
	}
}

// ParseHeader decodes the first HeaderLen bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, ErrShortHeader
	}
	var h Header
	switch b[0] {
	case 0:
	case 1:
		h.LittleEndian = true
	default:
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownEndian, b[0])
	}
	h.Type = MessageType(b[1])
	if h.Type > Response {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownType, b[1])
	}
	switch b[2] {
	case 0:
	case 1:
		h.Compressed = true
	default:
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedFlags, b[2])
	}
	h.Size = h.Order().Uint32(b[4:8])
	if h.Size < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d", ErrBadSize, h.Size)
	}
	return h, nil
}

// PutHeader writes h into the first HeaderLen bytes of dst.
func PutHeader(dst []byte, h Header) {
	dst[0] = 0
	if h.LittleEndian {
		dst[0] = 1
	}
	dst[1] = byte(h.Type)
	dst[2] = 0
	if h.Compressed {
		dst[2] = 1
	}
	dst[3] = 0
	h.Order().PutUint32(dst[4:8], h.Size)
}

// ReadMessage reads one complete message, header included.
func ReadMessage(r io.Reader, limits Limits) ([]byte, Header, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, Header{}, ErrShortHeader
		}
		return nil, Header{}, err
	}
	h, err := ParseHeader(fixed[:])
	if err != nil {
		return nil, Header{}, err
	}
	if limits.MaxMessageBytes > 0 && h.Size > limits.MaxMessageBytes {
		return nil, Header{}, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, h.Size)
	}
	msg := make([]byte, h.Size)
	copy(msg, fixed[:])
	if _, err := io.ReadFull(r, msg[HeaderLen:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, Header{}, ErrTruncated
		}
		return nil, Header{}, err
	}
	return msg, h, nil
}

// WriteMessage writes a complete message after checking its header.
func WriteMessage(w io.Writer, msg []byte) error {
	h, err := ParseHeader(msg)
	if err != nil {
		return err
	}
	if int(h.Size) != len(msg) {
		return fmt.Errorf("ipc: header size %d, message is %d bytes", h.Size, len(msg))
	}
	_, err = w.Write(msg)
	return err
}
