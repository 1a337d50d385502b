package reader

import (
	"github.com/tsawler/pdfxref/resolver"
	"github.com/tsawler/pdfxref/store"
)

// Option configures a Reader.
type Option func(*options)

type options struct {
	tempCopy     bool
	mmap         bool
	decrypter    Decrypter
	maxObjStms   int
	storeOpts    []store.Option
	resolverOpts []resolver.Option
}

const defaultObjStmCache = 16

func newOptions(opts []Option) *options {
	o := &options{maxObjStms: defaultObjStmCache}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithTempCopy makes Open read from a temporary copy of the file, leaving
// the original free to be rewritten. Close removes the copy.
func WithTempCopy() Option {
	return func(o *options) {
		o.tempCopy = true
	}
}

// WithMmap makes Open map the file into memory instead of reading it
// through a file descriptor. Combined with WithTempCopy the copy is mapped.
func WithMmap() Option {
	return func(o *options) {
		o.mmap = true
	}
}

// WithDecrypter sets the Decrypter used for documents with /Encrypt.
func WithDecrypter(d Decrypter) Option {
	return func(o *options) {
		o.decrypter = d
	}
}

// WithMaxObjectStreamCache sets how many parsed object streams are kept
// (default 16). Values below 1 keep one.
func WithMaxObjectStreamCache(n int) Option {
	return func(o *options) {
		o.maxObjStms = max(n, 1)
	}
}

// WithStoreOptions passes options to the document's store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// WithResolverOptions passes options to the document's resolver.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, opts...)
	}
}
