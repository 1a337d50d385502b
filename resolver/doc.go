// Package resolver follows indirect references through a document's object
// store.
//
// # Basic Usage
//
//	r := resolver.NewResolver(s)
//	obj, err := r.Resolve(ref)
//
// Resolve follows a reference, or a chain of references, to the first
// object that is not one. Both core.IndirectRef values and *store.Reference
// handles are accepted.
//
// # Deep Resolution
//
// ResolveDeep returns a copy of a dictionary, array or stream with every
// nested reference replaced by its target. An object reached again through
// itself fails with ErrCircularReference, and nesting beyond the depth
// limit fails with ErrMaxDepth:
//
//	r := resolver.NewResolver(s, resolver.WithMaxDepth(50))
package resolver
