package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/tsawler/pdfxref/logging"
)

// ErrInvalidHeader reports a file without a "%PDF-x.y" header.
var ErrInvalidHeader = errors.New("invalid PDF header")

// XRefEntry is one cross-reference record.
type XRefEntry struct {
	Number     int
	Generation int
	InUse      bool
	Offset     int64 // byte offset when in use and direct, next free object number when free
	Stream     int   // number of the containing object stream, 0 for direct objects
	Index      int   // position inside the object stream
}

// Compressed reports whether the object lives inside an object stream.
func (e *XRefEntry) Compressed() bool {
	return e.InUse && e.Stream > 0
}

func (e *XRefEntry) String() string {
	switch {
	case !e.InUse:
		return fmt.Sprintf("%d %d free (next %d)", e.Number, e.Generation, e.Offset)
	case e.Compressed():
		return fmt.Sprintf("%d %d in stream %d[%d]", e.Number, e.Generation, e.Stream, e.Index)
	}
	return fmt.Sprintf("%d %d at %d", e.Number, e.Generation, e.Offset)
}

// XRefSection is one xref table or xref stream together with its trailer.
// It is not modified after ReadSectionAt returns it.
type XRefSection struct {
	Offset  int64
	Trailer Dict
	Entries []*XRefEntry

	prev    int64
	hasPrev bool
}

// Prev returns the offset of the previous section. The second result is
// false at the end of the chain.
func (s *XRefSection) Prev() (int64, bool) {
	return s.prev, s.hasPrev
}

// Version is the "%PDF-major.minor" header version.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// XRefTable is the merged result of a whole chain of sections: the newest
// trailer and, per object number, the newest entry.
type XRefTable struct {
	Version Version
	Trailer Dict
	Entries map[int]*XRefEntry
}

// NewXRefTable creates an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Trailer: make(Dict),
		Entries: make(map[int]*XRefEntry),
	}
}

// Get returns the entry recorded for object num.
func (t *XRefTable) Get(num int) (*XRefEntry, bool) {
	e, ok := t.Entries[num]
	return e, ok
}

// Size returns the number of distinct object numbers in the table, which
// may differ from the trailer's /Size.
func (t *XRefTable) Size() int {
	return len(t.Entries)
}

// Numbers returns the object numbers in ascending order.
func (t *XRefTable) Numbers() []int {
	nums := make([]int, 0, len(t.Entries))
	for n := range t.Entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// merge adds the entries of s whose numbers are not yet present.
func (t *XRefTable) merge(s *XRefSection) int {
	added := 0
	for _, e := range s.Entries {
		if _, ok := t.Entries[e.Number]; ok {
			continue
		}
		t.Entries[e.Number] = e
		added++
	}
	return added
}

// XRefParser reads cross-reference data from a PDF file.
type XRefParser struct {
	reader io.ReadSeeker
}

// NewXRefParser returns a parser reading from r, which must be the whole file.
func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{reader: r}
}

const tailSize = 1024

// FindXRef returns the offset written after the last "startxref" keyword
// in the final 1024 bytes of the file.
func (x *XRefParser) FindXRef() (int64, error) {
	size, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, &IOError{Op: "seek", Err: err}
	}
	start := size - tailSize
	if start < 0 {
		start = 0
	}
	tail, err := x.readAt(start, int(size-start))
	if err != nil {
		return 0, err
	}

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, &XRefError{Offset: start, Kind: ErrMalformedXRef, Err: errors.New("startxref not found")}
	}
	pos := start + int64(idx)
	fields := bytes.Fields(tail[idx+len("startxref"):])
	if len(fields) == 0 {
		return 0, &XRefError{Offset: pos, Kind: ErrMalformedXRef, Err: errors.New("missing offset after startxref")}
	}
	offset, n := strconv.ParseInt(fields[0])
	if n != len(fields[0]) || offset < 0 || offset >= size {
		return 0, &XRefError{Offset: pos, Kind: ErrMalformedXRef, Err: fmt.Errorf("invalid startxref offset %q", fields[0])}
	}
	return offset, nil
}

// ReadVersion parses the "%PDF-x.y" header, which may be preceded by up to
// 1024 bytes of junk.
func (x *XRefParser) ReadVersion() (Version, error) {
	size, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return Version{}, &IOError{Op: "seek", Err: err}
	}
	n := int64(tailSize)
	if size < n {
		n = size
	}
	head, err := x.readAt(0, int(n))
	if err != nil {
		return Version{}, err
	}

	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return Version{}, ErrInvalidHeader
	}
	rest := head[idx+len("%PDF-"):]
	major, i := strconv.ParseUint(rest)
	if i == 0 || i >= len(rest) || rest[i] != '.' {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidHeader, firstLine(head[idx:]))
	}
	minor, j := strconv.ParseUint(rest[i+1:])
	if j == 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidHeader, firstLine(head[idx:]))
	}
	return Version{Major: int(major), Minor: int(minor)}, nil
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexAny(b, "\r\n"); i >= 0 {
		return b[:i]
	}
	return b
}

func (x *XRefParser) readAt(off int64, n int) ([]byte, error) {
	if _, err := x.reader.Seek(off, io.SeekStart); err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(x.reader, buf); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	return buf, nil
}

// parserAt positions the reader at offset and returns a parser over it.
func (x *XRefParser) parserAt(offset int64) (*Parser, error) {
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	return NewParserAt(x.reader, offset), nil
}

// ReadSectionAt reads the xref table or xref stream that starts at offset.
// A classic table whose trailer names an /XRefStm also gets the entries of
// that stream for numbers the table leaves undefined or free.
func (x *XRefParser) ReadSectionAt(offset int64) (*XRefSection, error) {
	p, err := x.parserAt(offset)
	if err != nil {
		return nil, err
	}
	p.skipComments()

	var sec *XRefSection
	switch {
	case p.isKeyword("xref"):
		p.nextToken()
		sec, err = readTable(p, offset)
		if err == nil {
			err = x.addHybridEntries(sec)
		}
	case p.currentToken != nil && p.currentToken.Type == TokenInteger:
		sec, err = readStreamSection(p, offset)
	default:
		err = malformed(offset, p.unexpected("'xref' or xref stream object"))
	}
	if err != nil {
		return nil, err
	}

	if err := sec.setPrev(); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *XRefSection) setPrev() error {
	obj := s.Trailer.Get("Prev")
	if obj == nil {
		return nil
	}
	prev, ok := obj.(Int)
	if !ok || prev < 0 {
		return malformed(s.Offset, fmt.Errorf("invalid /Prev %v", obj))
	}
	s.prev, s.hasPrev = int64(prev), true
	return nil
}

// readTable reads subsections up to and including the trailer dictionary.
// The "xref" keyword has already been consumed.
func readTable(p *Parser, offset int64) (*XRefSection, error) {
	sec := &XRefSection{Offset: offset}
	for {
		p.skipComments()
		switch {
		case p.currentToken != nil && p.currentToken.Type == TokenInteger:
			if err := readSubsection(p, sec); err != nil {
				return nil, malformed(offset, err)
			}
		case p.isKeyword("trailer"):
			p.nextToken()
			obj, err := p.ParseObject()
			if err != nil {
				return nil, malformed(offset, fmt.Errorf("trailer: %w", err))
			}
			dict, ok := obj.(Dict)
			if !ok {
				return nil, malformed(offset, fmt.Errorf("trailer is %v, not a dictionary", obj.Type()))
			}
			sec.Trailer = dict
			return sec, nil
		default:
			return nil, malformed(offset, p.unexpected("subsection header or 'trailer'"))
		}
	}
}

// readSubsection reads "start count" followed by count entries of the form
// "offset generation n|f". Line terminators are plain whitespace to the
// lexer, so every historical variant is accepted.
func readSubsection(p *Parser, sec *XRefSection) error {
	start, err := p.readInt()
	if err != nil {
		return err
	}
	count, err := p.readInt()
	if err != nil {
		return err
	}
	if start < 0 || count < 0 {
		return fmt.Errorf("invalid subsection header %d %d", start, count)
	}

	for i := int64(0); i < count; i++ {
		off, err := p.readInt()
		if err != nil {
			return fmt.Errorf("entry %d: %w", start+i, err)
		}
		gen, err := p.readInt()
		if err != nil {
			return fmt.Errorf("entry %d: %w", start+i, err)
		}
		var inUse bool
		switch {
		case p.isKeyword("n"):
			inUse = true
		case p.isKeyword("f"):
		default:
			return fmt.Errorf("entry %d: %w", start+i, p.unexpected("'n' or 'f'"))
		}
		p.nextToken()

		sec.Entries = append(sec.Entries, &XRefEntry{
			Number:     int(start + i),
			Generation: int(gen),
			InUse:      inUse,
			Offset:     off,
		})
	}
	return nil
}

// readStreamSection reads "num gen obj" holding a /Type /XRef stream. The
// stream dictionary doubles as the trailer.
func readStreamSection(p *Parser, offset int64) (*XRefSection, error) {
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, malformed(offset, err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, malformed(offset, fmt.Errorf("object %v is %v, not an xref stream", obj.Ref, obj.Object.Type()))
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, malformed(offset, fmt.Errorf("object %v has /Type %v, want /XRef", obj.Ref, stream.Dict.Get("Type")))
	}

	entries, err := decodeXRefStream(stream)
	if err != nil {
		return nil, malformed(offset, err)
	}
	return &XRefSection{Offset: offset, Trailer: stream.Dict, Entries: entries}, nil
}

// addHybridEntries merges the /XRefStm stream of a hybrid-reference file
// into sec.
func (x *XRefParser) addHybridEntries(sec *XRefSection) error {
	obj := sec.Trailer.Get("XRefStm")
	if obj == nil {
		return nil
	}
	off, ok := sec.Trailer.GetOffset("XRefStm")
	if !ok {
		return malformed(sec.Offset, fmt.Errorf("invalid /XRefStm %v", obj))
	}

	p, err := x.parserAt(off)
	if err != nil {
		return err
	}
	stm, err := readStreamSection(p, off)
	if err != nil {
		return err
	}

	defined := make(map[int]bool, len(sec.Entries))
	for _, e := range sec.Entries {
		if e.InUse {
			defined[e.Number] = true
		}
	}
	added := 0
	for _, e := range stm.Entries {
		if defined[e.Number] {
			continue
		}
		// a free table slot is overridden by the stream's in-use entry
		sec.Entries = replaceEntry(sec.Entries, e)
		added++
	}
	logging.Logger().Debug("xref hybrid stream", "offset", off, "added", added)
	return nil
}

func replaceEntry(entries []*XRefEntry, e *XRefEntry) []*XRefEntry {
	for i, old := range entries {
		if old.Number == e.Number {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}

// Resolve walks the section chain from start along /Prev. For each object
// number the entry from the newest section wins, and the trailer is the
// newest section's. Revisiting an offset fails with ErrCircularXRef.
func (x *XRefParser) Resolve(start int64) (*XRefTable, error) {
	version, err := x.ReadVersion()
	if err != nil {
		return nil, err
	}

	table := &XRefTable{Version: version, Entries: make(map[int]*XRefEntry)}
	visited := make(map[int64]bool)
	offset := start
	for {
		if visited[offset] {
			return nil, &XRefError{Offset: offset, Kind: ErrCircularXRef}
		}
		visited[offset] = true

		sec, err := x.ReadSectionAt(offset)
		if err != nil {
			return nil, err
		}
		if table.Trailer == nil {
			table.Trailer = sec.Trailer
		}
		added := table.merge(sec)
		logging.Logger().Debug("xref section",
			"offset", offset, "entries", len(sec.Entries), "added", added)

		prev, ok := sec.Prev()
		if !ok {
			break
		}
		offset = prev
	}
	return table, nil
}

// ResolveFromEOF locates startxref and resolves the chain from there.
func (x *XRefParser) ResolveFromEOF() (*XRefTable, error) {
	start, err := x.FindXRef()
	if err != nil {
		return nil, err
	}
	return x.Resolve(start)
}
