// Package store keeps the indirect objects of a document.
//
// A [Store] is created from the resolved cross-reference table and a
// [Loader] that knows how to read an entry's bytes. [Store.Get] loads an
// object the first time its number is asked for and caches the resulting
// [IndirectObject], so every later lookup, through any path, sees the same
// instance. [Store.Replace] swaps the payload without changing that
// instance.
//
// A [Reference] is the handle callers pass around:
//
//	ref := s.Ref(7, 0)
//	obj, err := ref.Resolve()
//
// References hold a store and an object number, not the object, so a
// cyclic object graph does not keep anything alive on its own.
// References to objects that have no number yet delegate to the object:
//
//	obj := s.NewObject(core.Dict{"Type": core.Name("Annot")})
//	ref := obj.Reference()
package store
