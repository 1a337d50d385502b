package filters

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hhrutter/lzw"
)

func lzwCompress(t *testing.T, data []byte, early bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, early)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("lzw write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzw close: %v", err)
	}
	return buf.Bytes()
}

func TestLZWDecodeReferenceExample(t *testing.T) {
	// "-----A---B" as encoded in the PDF reference, EarlyChange 1.
	encoded := []byte{0x80, 0x0b, 0x60, 0x50, 0x22, 0x0c, 0x0c, 0x85, 0x01}

	got, err := LZWDecode(encoded, nil)
	if err != nil {
		t.Fatalf("LZWDecode() error = %v", err)
	}
	if diff := cmp.Diff([]byte("-----A---B"), got); diff != "" {
		t.Errorf("decoded data mismatch (-want +got):\n%s", diff)
	}
}

func TestLZWRoundTrip(t *testing.T) {
	text := bytes.Repeat([]byte("TOBEORNOTTOBEORTOBEORNOT#"), 40)

	tests := []struct {
		name   string
		early  bool
		params Params
	}{
		{"early change default", true, nil},
		{"early change 1", true, Params{"EarlyChange": 1}},
		{"early change 0", false, Params{"EarlyChange": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LZWDecode(lzwCompress(t, text, tt.early), tt.params)
			if err != nil {
				t.Fatalf("LZWDecode() error = %v", err)
			}
			if !bytes.Equal(got, text) {
				t.Errorf("LZWDecode() = %q, want %q", got, text)
			}
		})
	}
}

func TestLZWDecodePredictor(t *testing.T) {
	// two PNG Up rows of three columns
	rows := []byte{2, 1, 2, 3, 2, 1, 1, 1}

	got, err := LZWDecode(lzwCompress(t, rows, true), Params{"Predictor": 12, "Columns": 3})
	if err != nil {
		t.Fatalf("LZWDecode() error = %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 2, 3, 4}, got); diff != "" {
		t.Errorf("decoded data mismatch (-want +got):\n%s", diff)
	}
}

func TestLZWDecodeBadParams(t *testing.T) {
	if _, err := LZWDecode(nil, Params{"EarlyChange": "yes"}); err == nil {
		t.Error("expected error for a non-integer /EarlyChange")
	}
}
