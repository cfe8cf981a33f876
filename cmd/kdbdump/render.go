package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
	"github.com/starfederation/kdb-go"
	"github.com/starfederation/kdb-go/arrowtab"
)

var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.EncOptions{
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
		Sort:    cbor.SortCanonical,
	}.EncMode()
	if err != nil {
		panic(err)
	}
}

func render(w io.Writer, format string, k kdb.K, msgSize int) error {
	switch format {
	case "summary":
		return writeSummary(w, k, msgSize)
	case "json":
		s, err := kdb.ToJSON(k)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	case "cbor":
		v, err := kdb.ToAny(k)
		if err != nil {
			return err
		}
		data, err := cborMode.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "arrow":
		return writeArrow(w, k)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func class(k kdb.K) string {
	switch {
	case k.IsError():
		return "error"
	case k.IsTable():
		return "table"
	case k.IsDict():
		if _, _, r := kdb.GetKeyedTable(k); r == kdb.Ok {
			return "keyed table"
		}
		return "dict"
	case k.IsMixedVector():
		return "mixed list"
	case k.IsVector():
		return "vector"
	case k.IsAtomic():
		return "atom"
	}
	return "unknown"
}

func writeSummary(w io.Writer, k kdb.K, msgSize int) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "message  %s\n", humanize.IBytes(uint64(msgSize)))
	fmt.Fprintf(&sb, "heap     %s\n", humanize.IBytes(uint64(len(k.Heap()))))
	fmt.Fprintf(&sb, "type     %s (%d)\n", k.Tag(), int8(k.Tag()))
	fmt.Fprintf(&sb, "class    %s\n", class(k))
	switch {
	case k.IsError():
		text, _ := kdb.ErrorText(k)
		fmt.Fprintf(&sb, "error    %s\n", text)
	case k.IsTable():
		if err := writeColumns(&sb, k); err != nil {
			return err
		}
	case k.IsDict():
		keys, values, r := kdb.GetKeyedTable(k)
		if r != kdb.Ok {
			fmt.Fprintf(&sb, "count    %s\n", humanize.Comma(k.Len()))
			break
		}
		sb.WriteString("keys\n")
		if err := writeColumns(&sb, keys); err != nil {
			return err
		}
		sb.WriteString("values\n")
		if err := writeColumns(&sb, values); err != nil {
			return err
		}
	case k.IsVector():
		fmt.Fprintf(&sb, "count    %s\n", humanize.Comma(k.Len()))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeColumns(sb *strings.Builder, table kdb.K) error {
	cs, r := kdb.GetSimpleTable(table)
	if r != kdb.Ok {
		return r.Err()
	}
	names, r := kdb.ColumnNames(cs)
	if r != kdb.Ok {
		return r.Err()
	}
	fmt.Fprintf(sb, "rows     %s\n", humanize.Comma(int64(cs.NumRows)))
	fmt.Fprintf(sb, "columns  %d\n", cs.NumColumns)
	for i, col := range cs.Columns {
		code := "*"
		if c, ok := kdb.CategoryOf(col.Tag()); ok {
			code = string(c.Code())
		}
		fmt.Fprintf(sb, "  %-12s %s %s\n", names[i], code, col.Tag())
	}
	return nil
}

func writeArrow(w io.Writer, k kdb.K) error {
	rec, err := arrowtab.FromTable(k, memory.NewGoAllocator())
	if err != nil {
		return err
	}
	defer rec.Release()
	_, err = fmt.Fprintf(w, "%s\nrows: %d\n", rec.Schema(), rec.NumRows())
	return err
}
