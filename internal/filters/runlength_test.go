package filters

import (
	"bytes"
	"testing"
)

func TestRunLengthDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"literal", []byte{2, 'a', 'b', 'c', 0x80}, []byte("abc"), false},
		{"repeat", []byte{254, 'x', 0x80}, []byte("xxx"), false},
		{"mixed", []byte{0, 'a', 255, 'b', 0x80}, []byte("abb"), false},
		{"no EOD", []byte{1, 'h', 'i'}, []byte("hi"), false},
		{"data after EOD", []byte{0, 'a', 0x80, 0, 'z'}, []byte("a"), false},
		{"empty", nil, []byte{}, false},
		{"short literal", []byte{5, 'a'}, nil, true},
		{"missing repeat byte", []byte{200}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RunLengthDecode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunLengthDecode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("RunLengthDecode() = %q, want %q", got, tt.want)
			}
		})
	}
}
