package store

import (
	"fmt"
	"sync"

	"github.com/tsawler/pdfxref/core"
)

// IndirectObject is the single in-memory instance of an object of a
// document. Its payload can be replaced, its identity never changes.
type IndirectObject struct {
	store *Store

	mu         sync.RWMutex
	number     int
	generation int
	numbered   bool
	payload    core.Object
}

// Number returns the object number. The second result is false for objects
// created with NewObject and not yet registered.
func (o *IndirectObject) Number() (int, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.number, o.numbered
}

func (o *IndirectObject) Generation() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.generation
}

// Object returns the current payload.
func (o *IndirectObject) Object() core.Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.payload
}

func (o *IndirectObject) set(payload core.Object) {
	o.mu.Lock()
	o.payload = payload
	o.mu.Unlock()
}

// Reference returns a reference delegating to o.
func (o *IndirectObject) Reference() *Reference {
	return &Reference{delegate: o}
}

func (o *IndirectObject) String() string {
	num, ok := o.Number()
	if !ok {
		return fmt.Sprintf("unnumbered obj %v", o.Object())
	}
	return fmt.Sprintf("%d %d obj %v", num, o.Generation(), o.Object())
}
