package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	arc "github.com/hashicorp/golang-lru/arc/v2"
	"golang.org/x/exp/mmap"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/logging"
	"github.com/tsawler/pdfxref/resolver"
	"github.com/tsawler/pdfxref/store"
)

// ErrEncrypted is returned by Open and NewReader for a file with an
// /Encrypt dictionary when no Decrypter was configured.
var ErrEncrypted = errors.New("document is encrypted and no decrypter is configured")

// Decrypter decrypts the objects of an encrypted document. PrepareDecryption
// is called once with the trailer and the resolved /Encrypt dictionary,
// before any other object is loaded. The /Encrypt dictionary itself is
// never passed to DecryptObject.
type Decrypter interface {
	PrepareDecryption(trailer, encrypt core.Dict) error
	DecryptObject(num, gen int, obj core.Object) (core.Object, error)
}

// Reader represents a PDF file reader. It owns its byte source until Close.
type Reader struct {
	src      io.ReaderAt
	closer   io.Closer
	tempPath string
	size     int64

	xrefTable *core.XRefTable
	store     *store.Store
	resolver  *resolver.ObjectResolver
	decrypter Decrypter
	encrypt   int // object number of the /Encrypt dictionary, 0 if none
	objStms   *arc.ARCCache[int, *core.ObjectStream] // parsed object streams by number
}

// Open opens a PDF file and returns a Reader
func Open(filename string, opts ...Option) (*Reader, error) {
	o := newOptions(opts)

	path, tempPath := filename, ""
	if o.tempCopy {
		var err error
		if path, err = tempCopy(filename); err != nil {
			return nil, fmt.Errorf("failed to copy file: %w", err)
		}
		tempPath = path
	}

	r, err := openPath(path, o)
	if err != nil {
		removeTemp(tempPath)
		return nil, err
	}
	r.tempPath = tempPath
	return r, nil
}

func openPath(path string, o *options) (*Reader, error) {
	if o.mmap {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to map file: %w", err)
		}
		r, err := newReaderSize(m, m, int64(m.Len()), o)
		if err != nil {
			m.Close()
			return nil, err
		}
		return r, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := newReader(file, file, o)
	if err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// NewReader creates a Reader over an open file. The Reader takes ownership
// of file and closes it in Close.
func NewReader(file *os.File, opts ...Option) (*Reader, error) {
	return newReader(file, file, newOptions(opts))
}

// NewReaderAt creates a Reader over size bytes of src, such as a
// bytes.Reader. Close closes src if it is an io.Closer.
func NewReaderAt(src io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	closer, _ := src.(io.Closer)
	return newReaderSize(src, closer, size, newOptions(opts))
}

func newReader(file *os.File, closer io.Closer, o *options) (*Reader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	return newReaderSize(file, closer, info.Size(), o)
}

func newReaderSize(src io.ReaderAt, closer io.Closer, size int64, o *options) (*Reader, error) {
	objStms, err := arc.NewARC[int, *core.ObjectStream](o.maxObjStms)
	if err != nil {
		return nil, fmt.Errorf("failed to create object stream cache: %w", err)
	}
	r := &Reader{
		src:       src,
		closer:    closer,
		size:      size,
		decrypter: o.decrypter,
		objStms:   objStms,
	}

	table, err := core.NewXRefParser(io.NewSectionReader(src, 0, size)).ResolveFromEOF()
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	r.xrefTable = table

	r.store = store.New(table, store.LoaderFunc(r.loadObject), o.storeOpts...)
	r.resolver = resolver.NewResolver(r.store, o.resolverOpts...)

	if enc := table.Trailer.Get("Encrypt"); enc != nil {
		if r.decrypter == nil {
			return nil, ErrEncrypted
		}
		if ref, ok := enc.(core.IndirectRef); ok {
			r.encrypt = ref.Number
		}
		dict, err := r.resolveDict("Encrypt")
		if err != nil {
			return nil, err
		}
		if err := r.decrypter.PrepareDecryption(table.Trailer, dict); err != nil {
			return nil, fmt.Errorf("failed to prepare decryption: %w", err)
		}
	}

	logging.Logger().Debug("opened document",
		"version", table.Version.String(), "size", size, "objects", table.Size())
	return r, nil
}

// Close releases the byte source and removes the temporary copy, if any.
// Failing to remove the copy is logged, not returned.
func (r *Reader) Close() error {
	var err error
	if r.closer != nil {
		err = r.closer.Close()
		r.closer = nil
	}
	removeTemp(r.tempPath)
	r.tempPath = ""
	return err
}

// loadObject reads the object an entry points to. Lookups of other objects,
// such as an indirect /Length or the containing object stream, go through
// res.
func (r *Reader) loadObject(entry *core.XRefEntry, res core.ReferenceResolver) (core.Object, error) {
	if entry.Compressed() {
		return r.loadCompressed(entry, res)
	}
	if entry.Offset < 0 || entry.Offset >= r.size {
		return nil, fmt.Errorf("object %d offset %d outside file of %d bytes", entry.Number, entry.Offset, r.size)
	}

	sr := io.NewSectionReader(r.src, entry.Offset, r.size-entry.Offset)
	parser := core.NewParserAt(sr, entry.Offset)
	parser.SetReferenceResolver(res)
	obj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d at offset %d: %w", entry.Number, entry.Offset, err)
	}
	if obj.Ref.Number != entry.Number {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", entry.Number, obj.Ref.Number)
	}

	if r.decrypter == nil || entry.Number == r.encrypt || isXRefStream(obj.Object) {
		return obj.Object, nil
	}
	return r.decrypter.DecryptObject(entry.Number, obj.Ref.Generation, obj.Object)
}

func isXRefStream(obj core.Object) bool {
	s, ok := obj.(*core.Stream)
	if !ok {
		return false
	}
	typ, _ := s.Dict.GetName("Type")
	return typ == "XRef"
}

// loadCompressed reads an object stored in an object stream. Such objects
// are never decrypted on their own: the container already was.
func (r *Reader) loadCompressed(entry *core.XRefEntry, res core.ReferenceResolver) (core.Object, error) {
	stm, ok := r.objStms.Get(entry.Stream)
	if !ok {
		container, err := res.ResolveReference(core.IndirectRef{Number: entry.Stream})
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", entry.Stream, err)
		}
		stream, isStream := container.(*core.Stream)
		if !isStream {
			return nil, fmt.Errorf("object stream %d is %v, not a stream", entry.Stream, container.Type())
		}
		if stm, err = core.NewObjectStream(stream); err != nil {
			return nil, fmt.Errorf("object stream %d: %w", entry.Stream, err)
		}
		r.objStms.Add(entry.Stream, stm)
	}

	obj, num, err := stm.ObjectAt(entry.Index)
	if err == nil && num == entry.Number {
		return obj, nil
	}
	// the index is only a hint, search by number
	return stm.Object(entry.Number)
}

// Version returns the PDF version
func (r *Reader) Version() core.Version {
	return r.xrefTable.Version
}

// Trailer returns the trailer dictionary of the newest revision.
func (r *Reader) Trailer() core.Dict {
	return r.xrefTable.Trailer
}

// XRefTable returns the merged cross-reference table
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xrefTable
}

// Store returns the document's object store.
func (r *Reader) Store() *store.Store {
	return r.store
}

// Resolver returns a resolver over the document's store.
func (r *Reader) Resolver() *resolver.ObjectResolver {
	return r.resolver
}

// GetObject returns the payload of object objNum.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	obj, err := r.store.Get(objNum)
	if err != nil {
		return nil, err
	}
	return obj.Object(), nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.store.ResolveReference(ref)
}

// Resolve follows obj if it is a reference, otherwise returns it as-is.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	return r.resolver.Resolve(obj)
}

// ResolveDeep recursively resolves all indirect references in an object
func (r *Reader) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolver.ResolveDeep(obj)
}

// resolveDict resolves the trailer entry key to a dictionary.
func (r *Reader) resolveDict(key string) (core.Dict, error) {
	obj := r.xrefTable.Trailer.Get(key)
	if obj == nil {
		return nil, nil
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /%s: %w", key, err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/%s is %v, not a dictionary", key, resolved.Type())
	}
	return dict, nil
}

// GetCatalog returns the document catalog (root object)
func (r *Reader) GetCatalog() (core.Dict, error) {
	catalog, err := r.resolveDict("Root")
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	return catalog, nil
}

// GetInfo returns the document info dictionary, or nil if there is none.
func (r *Reader) GetInfo() (core.Dict, error) {
	return r.resolveDict("Info")
}

// NumObjects returns /Size from the trailer.
func (r *Reader) NumObjects() int {
	size, _ := r.xrefTable.Trailer.GetInt("Size")
	return int(size)
}

// FileSize returns the size of the PDF file in bytes
func (r *Reader) FileSize() int64 {
	return r.size
}

// CacheSize returns the number of objects held in memory.
func (r *Reader) CacheSize() int {
	return r.store.Materialized()
}
