// Package runtime owns decoded heaps. A Value holds a heap buffer taken
// from a pool together with a reference count; the last Release hands
// the buffer back. The kdb views handed out by a Value are valid only
// while at least one reference is held.
package runtime

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/delaneyj/toolbelt"
	"github.com/starfederation/kdb-go"
	"github.com/starfederation/kdb-go/ipc"
)

var ErrNoData = errors.New("runtime: no data")
var ErrReleased = errors.New("runtime: value already released")
var ErrNotTable = errors.New("runtime: value is not a table")

// maxPooledHeap keeps oversized buffers out of the pool.
const maxPooledHeap = 16 << 20

var heapPool = toolbelt.New(func() []byte { return make([]byte, 0, 4096) })

var outstanding atomic.Int64

func getHeap() []byte {
	return heapPool.Get()[:0]
}

func putHeap(buf []byte) {
	if buf == nil || cap(buf) > maxPooledHeap {
		return
	}
	heapPool.Put(buf[:0])
}

// Outstanding returns the number of values that still hold a heap.
func Outstanding() int64 {
	return outstanding.Load()
}

// Value is a reference-counted root value over a pooled heap.
type Value struct {
	heap []byte
	root uint32
	refs atomic.Int32
}

func newValue(heap []byte, root uint32) (*Value, error) {
	if _, err := kdb.Open(heap, root); err != nil {
		putHeap(heap)
		return nil, err
	}
	v := &Value{heap: heap, root: root}
	v.refs.Store(1)
	outstanding.Add(1)
	return v, nil
}

// Decode decodes an IPC message into a pooled heap. The returned value
// carries one reference.
func Decode(msg []byte, limits ipc.Limits) (*Value, ipc.Header, error) {
	if len(msg) == 0 {
		return nil, ipc.Header{}, ErrNoData
	}
	b := kdb.NewBuilderWithBuffer(getHeap())
	off, h, err := ipc.DecodeInto(b, msg, limits)
	if err != nil {
		putHeap(b.Heap())
		return nil, h, err
	}
	v, err := newValue(b.Heap(), off)
	return v, h, err
}

// Build runs fill against a builder over a pooled heap and wraps the
// offset it returns.
func Build(fill func(b *kdb.Builder) (uint32, error)) (*Value, error) {
	b := kdb.NewBuilderWithBuffer(getHeap())
	off, err := fill(b)
	if err != nil {
		putHeap(b.Heap())
		return nil, err
	}
	return newValue(b.Heap(), off)
}

// K returns a view of the root value, or the null K once released.
func (v *Value) K() kdb.K {
	if v == nil || v.refs.Load() <= 0 {
		return kdb.K{}
	}
	k, err := kdb.Open(v.heap, v.root)
	if err != nil {
		return kdb.K{}
	}
	return k
}

// Refs returns the current reference count.
func (v *Value) Refs() int32 {
	return v.refs.Load()
}

// Retain adds a reference and returns v.
func (v *Value) Retain() *Value {
	if v.refs.Add(1) <= 1 {
		panic(ErrReleased)
	}
	return v
}

// Release drops a reference. It reports whether this was the last one,
// in which case the heap has gone back to the pool.
func (v *Value) Release() bool {
	n := v.refs.Add(-1)
	switch {
	case n > 0:
		return false
	case n < 0:
		panic(ErrReleased)
	}
	heap := v.heap
	v.heap = nil
	outstanding.Add(-1)
	putHeap(heap)
	return true
}

// Encode serializes the root value as an IPC message.
func (v *Value) Encode(mt ipc.MessageType) ([]byte, error) {
	k := v.K()
	if k.IsNil() {
		return nil, ErrReleased
	}
	return ipc.Encode(k, mt)
}

// Dekey returns a value holding the simple form of a keyed table. A
// simple table is returned with an extra reference. The result lives in
// its own heap, so v may be released independently.
func (v *Value) Dekey() (*Value, error) {
	k := v.K()
	if k.IsNil() {
		return nil, ErrReleased
	}
	if k.IsTable() {
		return v.Retain(), nil
	}
	if !k.IsDict() {
		return nil, fmt.Errorf("%w: %s", ErrNotTable, k.Tag())
	}
	b := kdb.AdoptHeap(append(getHeap(), v.heap...))
	own, err := b.Value(v.root)
	if err != nil {
		putHeap(b.Heap())
		return nil, err
	}
	out, err := b.Dekey(own)
	if err != nil {
		putHeap(b.Heap())
		return nil, err
	}
	return newValue(b.Heap(), out.Offset())
}

// Guard scopes one reference:
//
//	g := runtime.Acquire(v)
//	defer g.Release()
type Guard struct {
	v *Value
}

// Acquire takes a reference on v for the lifetime of the guard.
func Acquire(v *Value) *Guard {
	return &Guard{v: v.Retain()}
}

// Adopt wraps a reference the caller already holds.
func Adopt(v *Value) *Guard {
	return &Guard{v: v}
}

// Value returns the guarded value, or nil after Release.
func (g *Guard) Value() *Value {
	return g.v
}

// K returns the guarded root view.
func (g *Guard) K() kdb.K {
	return g.v.K()
}

// Release drops the guarded reference. Further calls do nothing.
func (g *Guard) Release() {
	if g.v == nil {
		return
	}
	g.v.Release()
	g.v = nil
}
