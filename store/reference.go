package store

import (
	"cmp"
	"fmt"
	"hash/maphash"
	"strings"

	"github.com/tsawler/pdfxref/core"
)

// Reference is a handle to an indirect object. A numbered reference names
// an object number in a store and is resolved on demand. A delegated
// reference points at an IndirectObject directly, which covers objects
// that have no number yet.
type Reference struct {
	store  *Store
	num    int
	gen    int
	genSet bool

	delegate *IndirectObject
}

// Delegated reports whether r points at an object instead of a number.
func (r *Reference) Delegated() bool {
	return r.delegate != nil
}

// Number returns the object number, if the reference has one.
func (r *Reference) Number() (int, bool) {
	if r.delegate != nil {
		return r.delegate.Number()
	}
	return r.num, true
}

// Generation returns the generation given when r was created, or else the
// one the store currently holds for the object.
func (r *Reference) Generation() int {
	switch {
	case r.delegate != nil:
		return r.delegate.Generation()
	case r.genSet:
		return r.gen
	}
	return r.store.generation(r.num)
}

// IndirectObject returns the object r refers to.
func (r *Reference) IndirectObject() (*IndirectObject, error) {
	if r.delegate != nil {
		return r.delegate, nil
	}
	return r.store.Get(r.num)
}

// Resolve returns the payload r refers to.
func (r *Reference) Resolve() (core.Object, error) {
	obj, err := r.IndirectObject()
	if err != nil {
		return nil, err
	}
	return obj.Object(), nil
}

// Equal reports whether r and other are numbered references to the same
// number and generation in the same store, or delegate to the same object.
func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.delegate != nil || other.delegate != nil {
		return r.delegate == other.delegate
	}
	return r.store == other.store && r.num == other.num && r.Generation() == other.Generation()
}

// ID is "num gen". Delegated references to unregistered objects have the
// ID "delegated".
func (r *Reference) ID() string {
	num, ok := r.Number()
	if !ok {
		return "delegated"
	}
	return fmt.Sprintf("%d %d", num, r.Generation())
}

// Hash is consistent with Equal. It mixes in the seed of the store, so
// values differ between documents.
func (r *Reference) Hash() uint64 {
	if r.delegate != nil {
		return maphash.Comparable(r.delegate.store.seed, r.delegate)
	}
	return maphash.String(r.store.seed, r.ID())
}

// Compare orders numbered references by ID as strings and anything else by
// Hash.
func Compare(a, b *Reference) int {
	if !a.Delegated() && !b.Delegated() {
		return strings.Compare(a.ID(), b.ID())
	}
	return cmp.Compare(a.Hash(), b.Hash())
}

func (r *Reference) Type() core.ObjectType { return core.ObjIndirect }
func (r *Reference) String() string      { return r.ID() + " R" }

// IndirectRef converts r back to its file form. Delegated references to
// unregistered objects have no such form.
func (r *Reference) IndirectRef() (core.IndirectRef, bool) {
	num, ok := r.Number()
	if !ok {
		return core.IndirectRef{}, false
	}
	return core.IndirectRef{Number: num, Generation: r.Generation()}, true
}
