package core

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/tsawler/pdfxref/internal/filters"
	"github.com/tsawler/pdfxref/internal/pdftest"
)

func TestStreamDecode(t *testing.T) {
	plain := []byte("BT /F1 12 Tf (Hello) Tj ET")
	flate := pdftest.Deflate(plain)
	hexFlate := []byte(hex.EncodeToString(flate) + ">")

	tests := []struct {
		name string
		dict Dict
		data []byte
		want []byte
	}{
		{"no filter", Dict{}, plain, plain},
		{"flate", Dict{"Filter": Name("FlateDecode")}, flate, plain},
		{"abbreviated", Dict{"Filter": Name("Fl")}, flate, plain},
		{"chain", Dict{"Filter": Array{Name("ASCIIHexDecode"), Name("FlateDecode")}}, hexFlate, plain},
		{"null params", Dict{"Filter": Name("FlateDecode"), "DecodeParms": Null{}}, flate, plain},
		{"lzw", Dict{"Filter": Name("LZWDecode")}, []byte{0x80, 0x0b, 0x60, 0x50, 0x22, 0x0c, 0x0c, 0x85, 0x01}, []byte("-----A---B")},
		{"run length", Dict{"Filter": Name("RunLengthDecode")}, []byte{253, 'z', 0x80}, []byte("zzzz")},
		{"jpeg left alone", Dict{"Filter": Name("DCTDecode")}, []byte{0xff, 0xd8}, []byte{0xff, 0xd8}},
		{
			"png predictor",
			Dict{"Filter": Name("FlateDecode"), "DecodeParms": Dict{"Predictor": Int(12), "Columns": Int(2)}},
			pdftest.Deflate([]byte{2, 1, 2, 2, 1, 1}),
			[]byte{1, 2, 2, 3},
		},
		{
			"params array",
			Dict{
				"Filter":      Array{Name("FlateDecode"), Name("ASCIIHexDecode")},
				"DecodeParms": Array{Null{}, Dict{"Predictor": Int(2), "Colors": Int(1)}},
			},
			[]byte(hex.EncodeToString(pdftest.Deflate([]byte{5, 5, 5})) + ">"),
			[]byte{5, 10, 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stream{Dict: tt.dict, Data: tt.data}
			got, err := s.Decode()
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStreamDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		dict   Dict
		target error
	}{
		{"unknown filter", Dict{"Filter": Name("Crypt")}, ErrUnsupportedFilter},
		{"unknown in chain", Dict{"Filter": Array{Name("FlateDecode"), Name("JBIG2Decode")}}, ErrUnsupportedFilter},
		{"bad predictor", Dict{"Filter": Name("FlateDecode"), "DecodeParms": Dict{"Predictor": Int(7)}}, ErrUnsupportedPredictor},
		{"bad parameter", Dict{"Filter": Name("FlateDecode"), "DecodeParms": Dict{"Predictor": Name("PNG")}}, ErrUnsupportedFilterParameter},
		{"indirect parameters", Dict{"Filter": Name("FlateDecode"), "DecodeParms": IndirectRef{Number: 7}}, ErrUnsupportedFilterParameter},
		{"indirect parameters in chain", Dict{
			"Filter":      Array{Name("FlateDecode"), Name("ASCIIHexDecode")},
			"DecodeParms": Array{Null{}, IndirectRef{Number: 7}},
		}, ErrUnsupportedFilterParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stream{Dict: tt.dict, Data: pdftest.Deflate([]byte("x"))}
			if _, err := s.Decode(); !errors.Is(err, tt.target) {
				t.Errorf("Decode() error = %v, want %v", err, tt.target)
			}
		})
	}

	s := &Stream{Dict: Dict{"Filter": Int(3)}}
	if _, err := s.Decode(); err == nil {
		t.Error("Decode() with numeric /Filter succeeded, want error")
	}
}

func TestStreamDecodedCaches(t *testing.T) {
	s := &Stream{Dict: Dict{"Filter": Name("FlateDecode")}, Data: pdftest.Deflate([]byte("abc"))}
	first, err := s.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	s.Data = nil
	second, err := s.Decoded()
	if err != nil || !bytes.Equal(first, second) {
		t.Errorf("second Decoded() = %q, %v; want cached %q", second, err, first)
	}
}

func TestStreamFilters(t *testing.T) {
	s := &Stream{Dict: Dict{"Filter": Array{Name("A85"), Name("Fl")}}}
	if got := s.Filters(); len(got) != 2 || got[0] != "A85" || got[1] != "Fl" {
		t.Errorf("Filters() = %v", got)
	}
}

func TestParamsFromDict(t *testing.T) {
	got := paramsFromDict(Dict{"Columns": Int(4), "K": Real(-1), "BlackIs1": Bool(true), "Name": Name("x")})
	want := filters.Params{"Columns": 4, "K": -1.0, "BlackIs1": true, "Name": "x"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("params[%s] = %v (%T), want %v (%T)", k, got[k], got[k], v, v)
		}
	}
	if paramsFromDict(nil) != nil {
		t.Error("paramsFromDict(nil) should be nil")
	}
}
