package filters

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"simple", "48656C6C6F>", []byte("Hello"), false},
		{"lowercase", "48656c6c6f", []byte("Hello"), false},
		{"whitespace", "48 65\n6C\t6C 6F >", []byte("Hello"), false},
		{"odd digit count", "4865F>", []byte{0x48, 0x65, 0xF0}, false},
		{"stops at marker", "41>42", []byte("A"), false},
		{"empty", ">", []byte{}, false},
		{"invalid digit", "4G>", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCIIHexDecode([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got error: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ASCIIHexDecode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestASCII85Decode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"four bytes", "87cURD]i,\"Ebo80~>", []byte("Hello World!"), false},
		{"with prefix", "<~87cURD]i,\"Ebo80~>", []byte("Hello World!"), false},
		{"z shortcut", "z~>", []byte{0, 0, 0, 0}, false},
		{"single group", "87cUR~>", []byte("Hell"), false},
		{"whitespace", " 87c\nURD]i,\"Ebo80~>", []byte("Hello World!"), false},
		{"empty", "~>", []byte{}, false},
		{"invalid character", "87c{~>", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got error: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ASCII85Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
