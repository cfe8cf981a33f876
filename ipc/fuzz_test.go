package ipc

import (
	"testing"

	"github.com/starfederation/kdb-go"
)

func FuzzDecode(f *testing.F) {
	b, values := sample(f)
	for _, off := range values {
		k, err := b.Value(off)
		if err != nil {
			f.Fatal(err)
		}
		msg, err := Encode(k, Response)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(msg)
		if packed, ok := Compress(msg); ok {
			f.Add(packed)
		}
	}
	f.Add(fromHex(f, "00 02 00 00 0000001e 07 00 00000002 0000000000000001 0000000000000002"))

	f.Fuzz(func(t *testing.T, msg []byte) {
		k, _, err := DecodeWithLimits(msg, Limits{MaxDecompressedBytes: 1 << 20, MaxDepth: 64})
		if err != nil {
			return
		}
		again, err := Encode(k, Response)
		if err != nil {
			return
		}
		back, _, err := Decode(again)
		if err != nil {
			t.Fatalf("re-decode: %v", err)
		}
		if back.Tag() != k.Tag() || back.Len() != k.Len() {
			t.Fatalf("shape changed: %s vs %s", k, back)
		}
		_, _ = kdb.ToJSON(back)
	})
}
