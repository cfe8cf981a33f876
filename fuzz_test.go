package kdb

import (
	"encoding/json"
	"testing"
)

func FuzzRetrieveArbitraryHeap(f *testing.F) {
	b := NewBuilder()
	table := hitchhikers(f, b)
	f.Add(append([]byte{}, b.Heap()...), table)

	b = NewBuilder()
	keyed := keyedHitchhikers(f, b)
	f.Add(append([]byte{}, b.Heap()...), keyed)

	b = NewBuilder()
	mixed := b.AppendMixed(b.AppendChars("abc"), b.AppendSymbol("x"), b.AppendGUID(NullGUID))
	f.Add(append([]byte{}, b.Heap()...), mixed)

	f.Add(make([]byte, 16), uint32(0))
	f.Add([]byte{0x62, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, uint32(0))

	f.Fuzz(func(t *testing.T, heap []byte, off uint32) {
		k, err := Open(heap, off)
		if err != nil {
			return
		}
		results := []Result{CheckVector(k)}
		_, r := Vector[float64](k)
		results = append(results, r)
		_, r = Bools(k)
		results = append(results, r)
		_, r = Strings(k)
		results = append(results, r)
		_, r = Refs(k)
		results = append(results, r)
		_, r = GUIDs(k)
		results = append(results, r)
		_, r = StringFromCharVector(k)
		results = append(results, r)
		cs, r := GetSimpleTable(k)
		results = append(results, r)
		if r == Ok {
			_, r = ColumnNames(cs)
			results = append(results, r)
		}
		_, _, r = GetDictionary(k)
		results = append(results, r)
		_, _, r = GetKeyedTable(k)
		results = append(results, r)
		for _, r := range results {
			if r.String() == "Invalid" {
				t.Fatalf("result outside taxonomy: %d", r)
			}
		}

		var f float64
		var s string
		var g GUID
		var n K
		TryGetAtom(k, &f)
		TryGetAtomString(k, &s)
		TryGetAtomGUID(k, &g)
		TryGetNested(k, &n)
		IsNull(k)
		IsInf(k)
		NullAt(k, 0)
		_ = k.Payload()
		_ = k.String()

		_, _ = ToAny(k)
		if out, err := ToJSON(k); err == nil {
			var v any
			if err := json.Unmarshal([]byte(out), &v); err != nil {
				t.Fatalf("invalid json %q: %v", out, err)
			}
		}
		_, _ = NewBuilderFromHeap(heap).Dekey(k)
	})
}

func FuzzJSONRoundTrip(f *testing.F) {
	seeds := [][]byte{
		[]byte("null"),
		[]byte("true"),
		[]byte("1"),
		[]byte("1.5"),
		[]byte(`"hi"`),
		[]byte("[]"),
		[]byte("{}"),
		[]byte(`[{"a":1},{"a":2}]`),
		[]byte(`{"a":1,"b":[true,false],"c":{"d":"x"}}`),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) == 0 {
			return
		}
		k, err := FromJSON(data)
		if err != nil {
			return
		}
		out, err := ToJSON(k)
		if err != nil {
			t.Fatalf("tojson: %v", err)
		}
		var v any
		if err := json.Unmarshal([]byte(out), &v); err != nil {
			t.Fatalf("json unmarshal: %v", err)
		}
		if _, err := FromJSON([]byte(out)); err != nil {
			t.Fatalf("fromjson roundtrip: %v", err)
		}
	})
}
