package kdb

import (
	"encoding/binary"

	"github.com/google/uuid"
)

const guidSize = 16

// GUID is the 16-byte value of the q guid type, in the byte order q
// prints it.
type GUID [guidSize]byte

// NullGUID is the q null guid, all zero bytes.
var NullGUID GUID

// ParseGUID parses the canonical 36-character form.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUID(u), nil
}

// NewGUID returns a random version 4 guid.
func NewGUID() GUID {
	return GUID(uuid.New())
}

func (g GUID) String() string {
	return uuid.UUID(g).String()
}

func (g GUID) IsNull() bool {
	return g == NullGUID
}

// Words returns the guid as four 32-bit integers in storage order.
func (g GUID) Words() [4]int32 {
	var w [4]int32
	for i := range w {
		w[i] = int32(binary.LittleEndian.Uint32(g[i*4:]))
	}
	return w
}

// GUIDFromWords is the inverse of Words.
func GUIDFromWords(w [4]int32) GUID {
	var g GUID
	for i, v := range w {
		binary.LittleEndian.PutUint32(g[i*4:], uint32(v))
	}
	return g
}

func (g GUID) MarshalText() ([]byte, error) {
	return uuid.UUID(g).MarshalText()
}

func (g *GUID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*g = GUID(u)
	return nil
}
