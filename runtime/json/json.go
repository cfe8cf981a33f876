package json

import (
	stdjson "encoding/json"
	"fmt"

	"github.com/starfederation/kdb-go"
	"github.com/starfederation/kdb-go/runtime"
)

// Marshal encodes a Go value into a new heap using JSON semantics.
func Marshal(v any) (kdb.K, error) {
	data, err := stdjson.Marshal(v)
	if err != nil {
		return kdb.K{}, err
	}
	return kdb.FromJSON(data)
}

// MarshalValue is Marshal into a pooled, reference-counted heap.
func MarshalValue(v any) (*runtime.Value, error) {
	data, err := stdjson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return runtime.Build(func(b *kdb.Builder) (uint32, error) {
		return b.AppendJSON(data)
	})
}

// Unmarshal decodes k into a Go value using JSON semantics.
func Unmarshal(k kdb.K, out any) error {
	if out == nil {
		return fmt.Errorf("nil target")
	}
	s, err := kdb.ToJSON(k)
	if err != nil {
		return err
	}
	return stdjson.Unmarshal([]byte(s), out)
}

// UnmarshalValue decodes a pooled value into a Go value.
func UnmarshalValue(v *runtime.Value, out any) error {
	k := v.K()
	if k.IsNil() {
		return runtime.ErrReleased
	}
	return Unmarshal(k, out)
}

// ValueFromGo encodes a Go value into builder and returns its offset.
func ValueFromGo(builder *kdb.Builder, v any) (uint32, error) {
	if builder == nil {
		return 0, fmt.Errorf("nil builder")
	}
	data, err := stdjson.Marshal(v)
	if err != nil {
		return 0, err
	}
	return builder.AppendJSON(data)
}
