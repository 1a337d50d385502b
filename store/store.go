package store

import (
	"errors"
	"fmt"
	"hash/maphash"
	"sort"
	"sync"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/logging"
)

// ErrRecursiveObject reports an object whose loading needs the object itself,
// such as a stream whose /Length refers to its own number.
var ErrRecursiveObject = errors.New("object refers to itself while loading")

// Loader reads the payload an entry points to. Lookups of other objects
// made while loading must go through r, never through the Store, which is
// locked for the duration of a load.
type Loader interface {
	LoadObject(entry *core.XRefEntry, r core.ReferenceResolver) (core.Object, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(entry *core.XRefEntry, r core.ReferenceResolver) (core.Object, error)

func (f LoaderFunc) LoadObject(entry *core.XRefEntry, r core.ReferenceResolver) (core.Object, error) {
	return f(entry, r)
}

// Store owns the indirect objects of one document, keyed by object number.
// An object is loaded on first access and the same *IndirectObject is
// returned from then on.
//
// Cached objects may be read from several goroutines. Loads are serialized.
type Store struct {
	table  *core.XRefTable
	loader Loader
	seed   maphash.Seed

	load sync.Mutex // held while materializing

	mu      sync.RWMutex
	objects map[int]*IndirectObject
	next    int
}

// Option configures a Store.
type Option func(*Store)

// WithSeed sets the seed that Reference.Hash mixes in. Stores get a random
// seed by default.
func WithSeed(seed maphash.Seed) Option {
	return func(s *Store) {
		s.seed = seed
	}
}

// New creates a store over a resolved cross-reference table. A nil table is
// treated as empty, which suits documents built in memory.
func New(table *core.XRefTable, loader Loader, opts ...Option) *Store {
	if table == nil {
		table = core.NewXRefTable()
	}
	s := &Store{
		table:   table,
		loader:  loader,
		seed:    maphash.MakeSeed(),
		objects: make(map[int]*IndirectObject),
		next:    1,
	}
	for num := range table.Entries {
		if num >= s.next {
			s.next = num + 1
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the cross-reference table the store was created with.
func (s *Store) Table() *core.XRefTable {
	return s.table
}

// Entry returns the cross-reference entry for num.
func (s *Store) Entry(num int) (*core.XRefEntry, bool) {
	return s.table.Get(num)
}

// cached returns the materialized object for num.
func (s *Store) cached(num int) (*IndirectObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[num]
	return obj, ok
}

// Get returns the object numbered num, loading it on first use. Numbers
// without an in-use entry fail with core.ErrUndefinedObject.
func (s *Store) Get(num int) (*IndirectObject, error) {
	if obj, ok := s.cached(num); ok {
		return obj, nil
	}

	s.load.Lock()
	defer s.load.Unlock()
	l := &load{store: s, active: make(map[int]bool)}
	return l.get(num)
}

// ResolveReference returns the payload ref points to. The generation of ref
// is not checked against the table.
func (s *Store) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, err := s.Get(ref.Number)
	if err != nil {
		return nil, err
	}
	return obj.Object(), nil
}

// load tracks the objects being materialized by one top-level Get.
type load struct {
	store  *Store
	active map[int]bool
}

func (l *load) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, err := l.get(ref.Number)
	if err != nil {
		return nil, err
	}
	return obj.Object(), nil
}

func (l *load) get(num int) (*IndirectObject, error) {
	s := l.store
	if obj, ok := s.cached(num); ok {
		return obj, nil
	}

	entry, ok := s.table.Get(num)
	if !ok || !entry.InUse {
		return nil, fmt.Errorf("object %d: %w", num, core.ErrUndefinedObject)
	}
	if l.active[num] {
		return nil, fmt.Errorf("object %d: %w", num, ErrRecursiveObject)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("object %d: store has no loader", num)
	}

	l.active[num] = true
	payload, err := s.loader.LoadObject(entry, l)
	delete(l.active, num)
	if err != nil {
		return nil, fmt.Errorf("loading object %d: %w", num, err)
	}
	if payload == nil {
		payload = core.Null{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a Replace may have created the slot meanwhile
	if obj, ok := s.objects[num]; ok {
		return obj, nil
	}
	obj := &IndirectObject{store: s, number: num, generation: entry.Generation, numbered: true, payload: payload}
	s.objects[num] = obj
	logging.Logger().Debug("materialized object",
		"obj", num, "gen", entry.Generation, "type", payload.Type().String())
	return obj, nil
}

// Replace sets the payload of object num in place. Outstanding references
// and *IndirectObject values see the new payload. An object that was never
// loaded gets its slot without being read from the file.
func (s *Store) Replace(num int, payload core.Object) *IndirectObject {
	if payload == nil {
		payload = core.Null{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj, ok := s.objects[num]; ok {
		obj.set(payload)
		return obj
	}
	gen := 0
	if e, ok := s.table.Get(num); ok && e.InUse {
		gen = e.Generation
	}
	obj := &IndirectObject{store: s, number: num, generation: gen, numbered: true, payload: payload}
	s.objects[num] = obj
	if num >= s.next {
		s.next = num + 1
	}
	return obj
}

// NewObject creates an object without a number. Reference it with
// (*IndirectObject).Reference until Register assigns one.
func (s *Store) NewObject(payload core.Object) *IndirectObject {
	if payload == nil {
		payload = core.Null{}
	}
	return &IndirectObject{store: s, payload: payload}
}

// Register gives obj the next unused object number, generation 0, and adds
// it to the store. Registering an object twice returns its number.
func (s *Store) Register(obj *IndirectObject) (int, error) {
	if obj.store != s {
		return 0, errors.New("object belongs to another store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.numbered {
		return obj.number, nil
	}
	obj.number, obj.generation, obj.numbered = s.next, 0, true
	s.objects[obj.number] = obj
	s.next++
	return obj.number, nil
}

// Len returns the number of objects the store knows: in-use table entries
// plus objects added with Replace or Register.
func (s *Store) Len() int {
	return len(s.Numbers())
}

// Numbers returns the known object numbers in ascending order.
func (s *Store) Numbers() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]bool, len(s.table.Entries)+len(s.objects))
	for num, e := range s.table.Entries {
		if e.InUse {
			seen[num] = true
		}
	}
	for num := range s.objects {
		seen[num] = true
	}
	nums := make([]int, 0, len(seen))
	for num := range seen {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

// Materialized returns how many objects are held in memory.
func (s *Store) Materialized() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Ref returns a reference to num with an explicit generation.
func (s *Store) Ref(num, gen int) *Reference {
	return &Reference{store: s, num: num, gen: gen, genSet: true}
}

// RefLatest returns a reference to num whose generation is taken from the
// store when asked for.
func (s *Store) RefLatest(num int) *Reference {
	return &Reference{store: s, num: num}
}

// Bind turns a reference parsed from the file into one tied to this store.
func (s *Store) Bind(ref core.IndirectRef) *Reference {
	return s.Ref(ref.Number, ref.Generation)
}

// generation is the generation of num as far as the store knows it.
func (s *Store) generation(num int) int {
	if obj, ok := s.cached(num); ok {
		return obj.Generation()
	}
	if e, ok := s.table.Get(num); ok && e.InUse {
		return e.Generation
	}
	return 0
}
