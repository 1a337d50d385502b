package resolver

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/store"
)

var (
	// ErrCircularReference is returned by deep resolution when an object
	// contains itself.
	ErrCircularReference = errors.New("circular reference")

	// ErrMaxDepth is returned when nesting exceeds the configured depth.
	ErrMaxDepth = errors.New("maximum resolution depth exceeded")
)

// ObjectResolver follows indirect references through a store. Both
// core.IndirectRef values parsed from the file and *store.Reference handles
// are followed. An ObjectResolver keeps no state between calls.
type ObjectResolver struct {
	store    *store.Store
	maxDepth int
}

// Option configures the resolver
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum nesting depth (default: 100)
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// NewResolver creates a resolver over s.
func NewResolver(s *store.Store, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{store: s, maxDepth: 100}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve follows obj if it is a reference, possibly through a chain of
// references. Containers are returned as they are.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	return r.newWalk(false).resolve(obj, 0)
}

// ResolveDeep returns a copy of obj with every reference inside
// dictionaries, arrays and stream dictionaries replaced by its target.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.newWalk(true).resolve(obj, 0)
}

// ResolveDict deep-resolves a dictionary.
func (r *ObjectResolver) ResolveDict(dict core.Dict) (core.Dict, error) {
	resolved, err := r.ResolveDeep(dict)
	if err != nil {
		return nil, err
	}
	return resolved.(core.Dict), nil
}

// ResolveArray deep-resolves an array.
func (r *ObjectResolver) ResolveArray(arr core.Array) (core.Array, error) {
	resolved, err := r.ResolveDeep(arr)
	if err != nil {
		return nil, err
	}
	return resolved.(core.Array), nil
}

// ResolveReference returns the target of ref without expanding it.
func (r *ObjectResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.store.ResolveReference(ref)
}

// ResolveReferenceDeep returns the fully expanded target of ref.
func (r *ObjectResolver) ResolveReferenceDeep(ref core.IndirectRef) (core.Object, error) {
	return r.ResolveDeep(ref)
}

// GetObject returns the payload of object num.
func (r *ObjectResolver) GetObject(num int) (core.Object, error) {
	return r.store.ResolveReference(core.IndirectRef{Number: num})
}

// GetObjectResolved returns object num with top-level references followed.
func (r *ObjectResolver) GetObjectResolved(num int) (core.Object, error) {
	obj, err := r.GetObject(num)
	if err != nil {
		return nil, err
	}
	return r.Resolve(obj)
}

// GetObjectResolvedDeep returns object num fully expanded.
func (r *ObjectResolver) GetObjectResolvedDeep(num int) (core.Object, error) {
	obj, err := r.GetObject(num)
	if err != nil {
		return nil, err
	}
	return r.ResolveDeep(obj)
}

// walk is the state of one resolution: the objects on the current path.
type walk struct {
	r      *ObjectResolver
	deep   bool
	onPath map[*store.IndirectObject]bool
}

func (r *ObjectResolver) newWalk(deep bool) *walk {
	return &walk{r: r, deep: deep, onPath: make(map[*store.IndirectObject]bool)}
}

// target returns the object a reference points to.
func (w *walk) target(obj core.Object) (*store.IndirectObject, bool, error) {
	switch v := obj.(type) {
	case core.IndirectRef:
		io, err := w.r.store.Get(v.Number)
		if err != nil {
			return nil, true, fmt.Errorf("failed to resolve reference %v: %w", v, err)
		}
		return io, true, nil
	case *store.Reference:
		io, err := v.IndirectObject()
		if err != nil {
			return nil, true, fmt.Errorf("failed to resolve reference %v: %w", v, err)
		}
		return io, true, nil
	}
	return nil, false, nil
}

func (w *walk) resolve(obj core.Object, depth int) (core.Object, error) {
	if depth >= w.r.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrMaxDepth, w.r.maxDepth)
	}

	io, isRef, err := w.target(obj)
	if err != nil {
		return nil, err
	}
	if isRef {
		if w.onPath[io] {
			return nil, fmt.Errorf("%w: %v", ErrCircularReference, obj)
		}
		// only the current path counts, so shared objects are expanded in
		// every branch
		w.onPath[io] = true
		defer delete(w.onPath, io)
		return w.resolve(io.Object(), depth+1)
	}

	if !w.deep {
		return obj, nil
	}

	switch v := obj.(type) {
	case core.Dict:
		resolved := make(core.Dict, len(v))
		for key, value := range v {
			rv, err := w.resolve(value, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dict key %s: %w", key, err)
			}
			resolved[key] = rv
		}
		return resolved, nil

	case core.Array:
		resolved := make(core.Array, len(v))
		for i, elem := range v {
			re, err := w.resolve(elem, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve array element %d: %w", i, err)
			}
			resolved[i] = re
		}
		return resolved, nil

	case *core.Stream:
		dict, err := w.resolve(v.Dict, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stream dict: %w", err)
		}
		return &core.Stream{Dict: dict.(core.Dict), Data: v.Data}, nil
	}
	return obj, nil
}
