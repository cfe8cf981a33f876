package ipc

import (
	"errors"
	"fmt"
)

// compressedBase is where the compressed stream starts: the header
// followed by the uncompressed message size.
const compressedBase = HeaderLen + 4

var ErrCorrupt = errors.New("ipc: corrupt compressed message")

// Decompress expands a compressed message into a plain one with the
// same byte order and message type. Plain messages are returned as is.
// maxSize bounds the expanded size; zero means no bound.
func Decompress(msg []byte, maxSize uint32) ([]byte, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return nil, err
	}
	if !h.Compressed {
		return msg, nil
	}
	if len(msg) < compressedBase {
		return nil, ErrTruncated
	}
	size := h.Order().Uint32(msg[HeaderLen:compressedBase])
	if size < HeaderLen {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes expanded", ErrMessageTooLarge, size)
	}

	dst := make([]byte, size)
	var table [256]int
	d, s, p := compressedBase, HeaderLen, HeaderLen
	var flags, bit int
	for s < len(dst) {
		if bit == 0 {
			if d >= len(msg) {
				return nil, ErrTruncated
			}
			flags = int(msg[d])
			d++
			bit = 1
		}
		run := 0
		match := flags&bit != 0
		if match {
			if d+2 > len(msg) {
				return nil, ErrTruncated
			}
			r := table[msg[d]]
			run = int(msg[d+1])
			d += 2
			if s+2+run > len(dst) {
				return nil, fmt.Errorf("%w: run past end at %d", ErrCorrupt, s)
			}
			dst[s] = dst[r]
			dst[s+1] = dst[r+1]
			s += 2
			r += 2
			for m := 0; m < run; m++ {
				dst[s+m] = dst[r+m]
			}
		} else {
			if d >= len(msg) {
				return nil, ErrTruncated
			}
			dst[s] = msg[d]
			s++
			d++
		}
		for p < s-1 {
			table[dst[p]^dst[p+1]] = p
			p++
		}
		if match {
			s += run
			p = s
		}
		bit <<= 1
		if bit == 256 {
			bit = 0
		}
	}
	PutHeader(dst, Header{LittleEndian: h.LittleEndian, Type: h.Type, Size: size})
	return dst, nil
}

// Compress applies kdb+ IPC compression to a plain message. It reports
// false, returning msg unchanged, when the result would not be smaller
// than half the input.
func Compress(msg []byte) ([]byte, bool) {
	h, err := ParseHeader(msg)
	if err != nil || h.Compressed || int(h.Size) != len(msg) {
		return msg, false
	}
	t := len(msg)
	out := make([]byte, t/2)
	if len(out) < compressedBase {
		return msg, false
	}
	order := h.Order()
	copy(out, msg[:4])
	out[2] = 1
	order.PutUint32(out[HeaderLen:compressedBase], uint32(t))

	var table [256]int
	var bit, flags byte
	c, d, e := compressedBase, compressedBase, len(out)
	s := HeaderLen
	var hash, prevHash, pending, p int
	for s < t {
		if bit == 0 {
			if d > e-17 {
				return msg, false
			}
			bit = 1
			out[c] = flags
			c = d
			d++
			flags = 0
		}
		literal := s > t-3
		if !literal {
			hash = int(msg[s] ^ msg[s+1])
			p = table[hash]
			literal = p == 0 || msg[s] != msg[p]
		}
		// a zero hash marks no pending literal, so pairs hashing to zero
		// are never matched
		if prevHash > 0 {
			table[prevHash] = pending
			prevHash = 0
		}
		if literal {
			prevHash = hash
			pending = s
			out[d] = msg[s]
			d++
			s++
		} else {
			table[hash] = s
			flags |= bit
			p += 2
			s += 2
			r := s
			q := min(s+255, t)
			for msg[p] == msg[s] {
				s++
				if s >= q {
					break
				}
				p++
			}
			out[d] = byte(hash)
			out[d+1] = byte(s - r)
			d += 2
		}
		bit <<= 1
	}
	out[c] = flags
	order.PutUint32(out[4:8], uint32(d))
	return out[:d], true
}
