package core

import (
	"bytes"
	"fmt"
	"sync"
)

// ObjectStream is a /Type /ObjStm stream holding N compressed objects. Its
// decoded data starts with N pairs "number offset", offsets being relative
// to /First. Safe for concurrent use.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *IndirectRef

	once    sync.Once
	err     error
	data    []byte
	headers []objStmHeader

	mu      sync.Mutex
	objects map[int]Object // by index
}

type objStmHeader struct {
	number int
	offset int
}

// NewObjectStream checks the dictionary of s. The data is decoded on first
// access.
func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if s == nil {
		return nil, fmt.Errorf("object stream is nil")
	}
	if typ, _ := s.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("stream has /Type %v, want /ObjStm", s.Dict.Get("Type"))
	}
	n, ok := s.Dict.GetOffset("N")
	if !ok {
		return nil, fmt.Errorf("object stream has invalid /N %v", s.Dict.Get("N"))
	}
	first, ok := s.Dict.GetOffset("First")
	if !ok {
		return nil, fmt.Errorf("object stream has invalid /First %v", s.Dict.Get("First"))
	}

	os := &ObjectStream{stream: s, n: int(n), first: int(first), objects: make(map[int]Object)}
	if obj := s.Dict.Get("Extends"); obj != nil {
		ref, ok := obj.(IndirectRef)
		if !ok {
			return nil, fmt.Errorf("object stream has invalid /Extends %v", obj)
		}
		os.extends = &ref
	}
	return os, nil
}

func (os *ObjectStream) N() int     { return os.n }
func (os *ObjectStream) First() int { return os.first }

// Extends returns the object stream this one extends, if any.
func (os *ObjectStream) Extends() (IndirectRef, bool) {
	if os.extends == nil {
		return IndirectRef{}, false
	}
	return *os.extends, true
}

func (os *ObjectStream) load() error {
	os.once.Do(func() {
		data, err := os.stream.Decode()
		if err != nil {
			os.err = fmt.Errorf("decoding object stream: %w", err)
			return
		}
		if os.first > len(data) {
			os.err = fmt.Errorf("object stream /First %d beyond %d decoded bytes", os.first, len(data))
			return
		}
		os.data = data
		os.err = os.readHeaders()
	})
	return os.err
}

func (os *ObjectStream) readHeaders() error {
	p := NewParser(bytes.NewReader(os.data[:os.first]))
	// a pair takes at least four bytes, "n o" plus a separator
	os.headers = make([]objStmHeader, 0, min(os.n, os.first/4+1))
	for i := 0; i < os.n; i++ {
		num, err := p.readInt()
		if err != nil {
			return fmt.Errorf("object stream header %d: %w", i, err)
		}
		off, err := p.readInt()
		if err != nil {
			return fmt.Errorf("object stream header %d: %w", i, err)
		}
		if num < 0 || off < 0 || os.first+int(off) > len(os.data) {
			return fmt.Errorf("object stream header %d: invalid pair %d %d", i, num, off)
		}
		os.headers = append(os.headers, objStmHeader{number: int(num), offset: int(off)})
	}
	return nil
}

// ObjectAt parses the object at position index and returns it with its
// object number.
func (os *ObjectStream) ObjectAt(index int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.headers) {
		return nil, 0, fmt.Errorf("object stream index %d out of range [0, %d)", index, len(os.headers))
	}
	h := os.headers[index]

	os.mu.Lock()
	defer os.mu.Unlock()
	if obj, ok := os.objects[index]; ok {
		return obj, h.number, nil
	}

	start := os.first + h.offset
	end := len(os.data)
	if index+1 < len(os.headers) {
		if next := os.first + os.headers[index+1].offset; next >= start && next < end {
			end = next
		}
	}
	obj, err := NewParserAt(bytes.NewReader(os.data[start:end]), int64(start)).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object stream index %d: %w", index, err)
	}
	os.objects[index] = obj
	return obj, h.number, nil
}

// Object returns the object numbered num.
func (os *ObjectStream) Object(num int) (Object, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	for i, h := range os.headers {
		if h.number == num {
			obj, _, err := os.ObjectAt(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", num)
}

// Numbers lists the object numbers in header order.
func (os *ObjectStream) Numbers() ([]int, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	nums := make([]int, len(os.headers))
	for i, h := range os.headers {
		nums[i] = h.number
	}
	return nums, nil
}
