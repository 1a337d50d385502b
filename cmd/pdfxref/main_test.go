package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tsawler/pdfxref/internal/pdftest"
)

func samplePDF(t *testing.T) string {
	b := pdftest.New("1.5")
	b.Object(1, 0, "<< /Type /Catalog /Pages 2 0 R >>")
	b.Object(2, 0, "<< /Type /Pages /Count 0 >>")
	b.Stream(3, "/Filter /FlateDecode", pdftest.Deflate(bytes.Repeat([]byte("pdfxref!"), 200)))
	b.StartXRef(b.Table([]pdftest.Entry{
		{Num: 0, Gen: 65535, Free: true}, b.In(1), b.In(2), b.In(3),
	}, "/Size 4 /Root 1 0 R"))
	return b.WriteFile(t)
}

func TestRun(t *testing.T) {
	path := samplePDF(t)

	tests := []struct {
		name     string
		args     []string
		tty      bool
		wantCode int
		want     []string
	}{
		{"table", []string{path}, false, 0, []string{"PDF-1.5, 4 entries", "     0 65535 free", "     3     0 at "}},
		{"trailer", []string{"-trailer", path}, false, 0, []string{"PDF-1.5", "/Root"}},
		{"object", []string{"-obj", "1", path}, false, 0, []string{"1: Dict", "2 0 R"}},
		{"deep", []string{"-obj", "1", "-deep", path}, false, 0, []string{"/Pages"}},
		{"dump", []string{"-obj", "3", "-dump", path}, false, 0, []string{"3: Stream"}},
		{"dump tty", []string{"-obj", "3", "-dump", path}, true, 0, []string{"576 more bytes"}},
		{"dump full tty", []string{"-obj", "3", "-dump", "-full", path}, true, 0, nil},
		{"missing object", []string{"-obj", "9", path}, false, 1, nil},
		{"dump non-stream", []string{"-obj", "2", "-dump", path}, false, 1, nil},
		{"no file", nil, false, 2, nil},
		{"bad flag", []string{"-nope", path}, false, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr, tt.tty)
			if code != tt.wantCode {
				t.Fatalf("run() = %d, want %d; stderr: %s", code, tt.wantCode, stderr.String())
			}
			for _, s := range tt.want {
				if !strings.Contains(stdout.String(), s) {
					t.Errorf("output missing %q:\n%s", s, stdout.String())
				}
			}
			if tt.name == "dump" && stdout.Len() < 1600 {
				t.Errorf("dump of 1600 bytes printed only %d bytes", stdout.Len())
			}
			if tt.name == "dump full tty" && strings.Contains(stdout.String(), "more bytes") {
				t.Error("-full output was truncated")
			}
		})
	}
}
