package kdb

// ColumnSet is a simple table taken apart. Names is the symbol vector of
// column names; Columns[i] is the column named by its i-th element.
//
// NumRows is the length of the first column and is zero for a table
// without columns. The other columns are not checked against it.
type ColumnSet struct {
	Names      K
	Columns    []K
	NumColumns int
	NumRows    int
}

// Column returns the column called name.
func (cs ColumnSet) Column(name string) (K, bool) {
	n, r := cs.Names.count(offsetSize)
	if r != Ok {
		return K{}, false
	}
	for i := 0; i < n && i < len(cs.Columns); i++ {
		b, ok := text(cs.Names.heap, cs.Names.offsetAt(i))
		if ok && string(b) == name {
			return cs.Columns[i], true
		}
	}
	return K{}, false
}

// GetSimpleTable decomposes a table into its names, columns and shape.
func GetSimpleTable(k K) (ColumnSet, Result) {
	if k.IsNil() {
		return ColumnSet{}, NullInput
	}
	t := k.Tag()
	if t.IsError() {
		return ColumnSet{}, ValueError
	}
	if !t.IsTable() {
		return ColumnSet{}, NotTable
	}
	var d K
	if !TryGetNested(k, &d) {
		return ColumnSet{}, MalformedPayload
	}
	names, values, r := dictParts(d)
	if r != Ok {
		return ColumnSet{}, r
	}
	if names.Tag() != TagSymbol || values.Tag() != TagMixed {
		return ColumnSet{}, NotSimpleTable
	}
	nc, r := names.count(offsetSize)
	if r != Ok {
		return ColumnSet{}, r
	}
	if values.Len() != int64(nc) {
		return ColumnSet{}, MalformedPayload
	}
	cs := ColumnSet{
		Names:      names,
		Columns:    make([]K, nc),
		NumColumns: nc,
	}
	if r := RetrieveRefs(values, cs.Columns); r != Ok {
		return ColumnSet{}, r
	}
	if nc > 0 {
		cs.NumRows = int(cs.Columns[0].Len())
	}
	return cs, Ok
}

// ColumnNames returns the column names of a decomposed table.
func ColumnNames(cs ColumnSet) ([]string, Result) {
	return Strings(cs.Names)
}

// GetDictionary returns the keys and values of a dictionary or keyed
// table.
func GetDictionary(k K) (keys, values K, r Result) {
	if k.IsNil() {
		return K{}, K{}, NullInput
	}
	t := k.Tag()
	if t.IsError() {
		return K{}, K{}, ValueError
	}
	if !t.IsDict() {
		return K{}, K{}, NotDictionary
	}
	return dictParts(k)
}

func dictParts(d K) (keys, values K, r Result) {
	if !d.IsDict() {
		return K{}, K{}, NotDictionary
	}
	if d.Len() != 2 {
		return K{}, K{}, MalformedPayload
	}
	if keys, r = d.child(0); r != Ok {
		return K{}, K{}, r
	}
	if values, r = d.child(1); r != Ok {
		return K{}, K{}, r
	}
	return keys, values, Ok
}

// GetKeyedTable returns the key table and the value table of a keyed
// table.
func GetKeyedTable(k K) (keys, values K, r Result) {
	keys, values, r = GetDictionary(k)
	switch r {
	case Ok:
	case NotDictionary:
		return K{}, K{}, NotKeyedTable
	default:
		return K{}, K{}, r
	}
	if !keys.IsTable() || !values.IsTable() {
		return K{}, K{}, NotKeyedTable
	}
	return keys, values, Ok
}
