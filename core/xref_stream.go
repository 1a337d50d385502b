package core

import (
	"errors"
	"fmt"
)

// xrefSubsection is one "start count" pair of an xref stream /Index.
type xrefSubsection struct {
	start int
	count int
}

// parseXRefIndex reads /Index, defaulting to [0 Size].
func parseXRefIndex(dict Dict) ([]xrefSubsection, error) {
	obj := dict.Get("Index")
	if obj == nil {
		size, ok := dict.GetInt("Size")
		if !ok || size < 0 {
			return nil, fmt.Errorf("xref stream has invalid /Size %v", dict.Get("Size"))
		}
		return []xrefSubsection{{start: 0, count: int(size)}}, nil
	}

	arr, ok := obj.(Array)
	if !ok || len(arr)%2 != 0 {
		return nil, fmt.Errorf("invalid /Index %v", obj)
	}
	subs := make([]xrefSubsection, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		start, ok1 := arr.GetInt(i)
		count, ok2 := arr.GetInt(i + 1)
		if !ok1 || !ok2 || start < 0 || count < 0 {
			return nil, fmt.Errorf("invalid /Index pair %v %v", arr[i], arr[i+1])
		}
		subs = append(subs, xrefSubsection{start: int(start), count: int(count)})
	}
	return subs, nil
}

// parseXRefWidths reads /W, three field widths in bytes.
func parseXRefWidths(dict Dict) ([3]int, error) {
	var w [3]int
	arr, ok := dict.GetArray("W")
	if !ok || len(arr) < 3 {
		return w, fmt.Errorf("invalid /W %v", dict.Get("W"))
	}
	for i := range w {
		v, ok := arr.GetInt(i)
		if !ok || v < 0 || v > 8 {
			return w, fmt.Errorf("invalid /W %v", arr)
		}
		w[i] = int(v)
	}
	if w[0]+w[1]+w[2] == 0 {
		return w, errors.New("/W describes empty rows")
	}
	return w, nil
}

// field decodes a big-endian unsigned integer. An empty field yields def.
func field(b []byte, def int64) int64 {
	if len(b) == 0 {
		return def
	}
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// decodeXRefStream turns the decoded rows of an xref stream into entries.
// Rows of unknown type are skipped.
func decodeXRefStream(s *Stream) ([]*XRefEntry, error) {
	w, err := parseXRefWidths(s.Dict)
	if err != nil {
		return nil, err
	}
	index, err := parseXRefIndex(s.Dict)
	if err != nil {
		return nil, err
	}
	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}

	rowLen := w[0] + w[1] + w[2]
	var entries []*XRefEntry
	for _, sub := range index {
		for i := 0; i < sub.count; i++ {
			if len(data) < rowLen {
				return nil, fmt.Errorf("xref stream data ends before entry %d", sub.start+i)
			}
			row := data[:rowLen]
			data = data[rowLen:]

			typ := field(row[:w[0]], 1)
			f2 := field(row[w[0]:w[0]+w[1]], 0)
			f3 := field(row[w[0]+w[1]:], 0)
			num := sub.start + i

			switch typ {
			case 0:
				entries = append(entries, &XRefEntry{Number: num, Generation: int(f3), Offset: f2})
			case 1:
				entries = append(entries, &XRefEntry{Number: num, Generation: int(f3), InUse: true, Offset: f2})
			case 2:
				entries = append(entries, &XRefEntry{Number: num, InUse: true, Stream: int(f2), Index: int(f3)})
			}
		}
	}
	return entries, nil
}
