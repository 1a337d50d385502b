// Package pdftest builds small PDF files for tests, keeping track of the
// byte offset of everything it writes.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Entry describes one cross-reference entry to write. Stream > 0 makes it a
// compressed entry, which only xref streams can hold.
type Entry struct {
	Num    int
	Gen    int
	Offset int64
	Free   bool
	Stream int
	Index  int
}

// Builder accumulates the bytes of a PDF file.
type Builder struct {
	buf     bytes.Buffer
	offsets map[int]int64

	// EOL terminates classic xref entries. It must be two bytes long.
	EOL string
}

// New starts a file with a "%PDF-version" header and a binary comment.
func New(version string) *Builder {
	b := &Builder{offsets: make(map[int]int64), EOL: "\r\n"}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	return b
}

// Len is the current file size, which is also the offset of the next write.
func (b *Builder) Len() int64 { return int64(b.buf.Len()) }

// Bytes returns the file written so far.
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// Offset returns where object num was last written.
func (b *Builder) Offset(num int) int64 { return b.offsets[num] }

// Raw appends s and returns its offset.
func (b *Builder) Raw(s string) int64 {
	off := b.Len()
	b.buf.WriteString(s)
	return off
}

// Object writes "num gen obj body endobj".
func (b *Builder) Object(num, gen int, body string) int64 {
	off := b.Len()
	b.offsets[num] = off
	fmt.Fprintf(&b.buf, "%d %d obj\n%s\nendobj\n", num, gen, body)
	return off
}

// Stream writes a stream object. /Length is appended to dict.
func (b *Builder) Stream(num int, dict string, data []byte) int64 {
	off := b.Len()
	b.offsets[num] = off
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
	return off
}

// In returns an entry for object num at the offset it was written to.
func (b *Builder) In(num int) Entry {
	return Entry{Num: num, Offset: b.offsets[num]}
}

// Table writes a classic xref table and its trailer. trailer is the body of
// the trailer dictionary without the angle brackets.
func (b *Builder) Table(entries []Entry, trailer string) int64 {
	off := b.Len()
	b.buf.WriteString("xref\n")
	for _, sub := range subsections(entries) {
		fmt.Fprintf(&b.buf, "%d %d\n", sub[0].Num, len(sub))
		for _, e := range sub {
			kind := 'n'
			if e.Free {
				kind = 'f'
			}
			fmt.Fprintf(&b.buf, "%010d %05d %c%s", e.Offset, e.Gen, kind, b.EOL)
		}
	}
	fmt.Fprintf(&b.buf, "trailer\n<< %s >>\n", trailer)
	return off
}

// XRefStream writes object num as an xref stream with /W [1 4 2]. dict is
// added to the stream dictionary. With predict set the rows are PNG Up
// encoded and /DecodeParms says so.
func (b *Builder) XRefStream(num int, entries []Entry, dict string, predict bool) int64 {
	const rowLen = 7
	var index, rows bytes.Buffer
	for _, sub := range subsections(entries) {
		fmt.Fprintf(&index, "%d %d ", sub[0].Num, len(sub))
		for _, e := range sub {
			var row [rowLen]byte
			switch {
			case e.Free:
				putInt(row[1:5], 0)
				putInt(row[5:7], int64(e.Gen))
			case e.Stream > 0:
				row[0] = 2
				putInt(row[1:5], int64(e.Stream))
				putInt(row[5:7], int64(e.Index))
			default:
				row[0] = 1
				putInt(row[1:5], e.Offset)
				putInt(row[5:7], int64(e.Gen))
			}
			rows.Write(row[:])
		}
	}

	data := rows.Bytes()
	parms := ""
	if predict {
		data = pngUp(data, rowLen)
		parms = fmt.Sprintf(" /DecodeParms << /Predictor 12 /Columns %d >>", rowLen)
	}
	full := fmt.Sprintf("/Type /XRef /W [1 4 2] /Index [%s] /Filter /FlateDecode%s %s",
		bytes.TrimSpace(index.Bytes()), parms, dict)
	return b.Stream(num, full, Deflate(data))
}

// ObjStm writes object num as an object stream holding the given objects,
// keyed by object number.
func (b *Builder) ObjStm(num int, objects map[int]string) int64 {
	nums := make([]int, 0, len(objects))
	for n := range objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var header, body bytes.Buffer
	for _, n := range nums {
		fmt.Fprintf(&header, "%d %d ", n, body.Len())
		body.WriteString(objects[n])
		body.WriteString("\n")
	}
	data := append(header.Bytes(), body.Bytes()...)
	dict := fmt.Sprintf("/Type /ObjStm /N %d /First %d /Filter /FlateDecode", len(nums), header.Len())
	return b.Stream(num, dict, Deflate(data))
}

// StartXRef writes the file tail pointing at offset.
func (b *Builder) StartXRef(offset int64) {
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", offset)
}

// WriteFile stores the file in a temporary directory and returns its path.
func (b *Builder) WriteFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// Deflate compresses data with zlib.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func subsections(entries []Entry) [][]Entry {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Num < sorted[j].Num })

	var subs [][]Entry
	for i, e := range sorted {
		if i == 0 || e.Num != sorted[i-1].Num+1 {
			subs = append(subs, nil)
		}
		subs[len(subs)-1] = append(subs[len(subs)-1], e)
	}
	return subs
}

func putInt(dst []byte, v int64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

// pngUp applies the PNG Up filter to rows of rowLen bytes.
func pngUp(data []byte, rowLen int) []byte {
	out := make([]byte, 0, len(data)+len(data)/rowLen)
	prev := make([]byte, rowLen)
	for i := 0; i+rowLen <= len(data); i += rowLen {
		row := data[i : i+rowLen]
		out = append(out, 2)
		for j, c := range row {
			out = append(out, c-prev[j])
		}
		prev = row
	}
	return out
}
