package kdb

import "github.com/delaneyj/toolbelt"

var uint32Pool = toolbelt.New(func() []uint32 { return make([]uint32, 0, 16) })

func getUint32Slice() []uint32 {
	return uint32Pool.Get()[:0]
}

func putUint32Slice(s []uint32) {
	if s == nil {
		return
	}
	uint32Pool.Put(s[:0])
}
