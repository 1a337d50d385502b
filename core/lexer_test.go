package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tok struct {
	Type  TokenType
	Value string
}

func lexAll(t *testing.T, input string) []tok {
	t.Helper()
	l := NewLexer(strings.NewReader(input))
	var out []tok
	for {
		token, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		if token.Type == TokenEOF {
			return out
		}
		out = append(out, tok{token.Type, string(token.Value)})
	}
}

func TestLexerTokens(t *testing.T) {
	input := "<< /Type /Page /A#20B 12 -3.5 +7 .5 (x) <4 8 6> [ ] true 5 0 R >> %note\n"
	want := []tok{
		{TokenDictStart, "<<"},
		{TokenName, "Type"},
		{TokenName, "Page"},
		{TokenName, "A B"},
		{TokenInteger, "12"},
		{TokenReal, "-3.5"},
		{TokenInteger, "+7"},
		{TokenReal, ".5"},
		{TokenString, "x"},
		{TokenHexString, "486"},
		{TokenArrayStart, "["},
		{TokenArrayEnd, "]"},
		{TokenKeyword, "true"},
		{TokenInteger, "5"},
		{TokenInteger, "0"},
		{TokenIndirectRef, "R"},
		{TokenDictEnd, ">>"},
		{TokenComment, "%note"},
	}
	if diff := cmp.Diff(want, lexAll(t, input)); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "(hello)", "hello"},
		{"balanced parens", "(a (b) c)", "a (b) c"},
		{"escaped parens", `(a\(b\)c)`, "a(b)c"},
		{"control escapes", `(\n\r\t\b\f\\)`, "\n\r\t\b\f\\"},
		{"octal", `(\101\0530\7)`, "A+0\a"},
		{"unknown escape", `(\x)`, "x"},
		{"continuation lf", "(ab\\\ncd)", "abcd"},
		{"continuation crlf", "(ab\\\r\ncd)", "abcd"},
		{"raw newline kept", "(a\nb)", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexAll(t, tt.input)
			if len(got) != 1 || got[0].Type != TokenString || got[0].Value != tt.want {
				t.Errorf("lex %q = %v, want string %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", "(abc"},
		{"unterminated hex", "<414"},
		{"bad hex digit", "<4G>"},
		{"lone greater than", "> "},
		{"unexpected character", "}"},
		{"bad name escape", "/A#G1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(strings.NewReader(tt.input))
			if _, err := l.NextToken(); err == nil {
				t.Errorf("NextToken(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestLexerSkipStreamEOL(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"lf", "\nDATA"},
		{"crlf", "\r\nDATA"},
		{"cr", "\rDATA"},
		{"none", "DATA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(strings.NewReader(tt.input))
			if err := l.SkipStreamEOL(); err != nil {
				t.Fatalf("SkipStreamEOL() error = %v", err)
			}
			data, err := l.ReadBytes(4)
			if err != nil || string(data) != "DATA" {
				t.Errorf("ReadBytes(4) = %q, %v", data, err)
			}
			if l.Pos() != int64(len(tt.input)) {
				t.Errorf("Pos() = %d, want %d", l.Pos(), len(tt.input))
			}
		})
	}
}

func TestLexerReadBytesShort(t *testing.T) {
	l := NewLexerAt(strings.NewReader("abc"), 100)
	data, err := l.ReadBytes(5)
	if err == nil {
		t.Fatal("ReadBytes(5) on 3 bytes succeeded")
	}
	if string(data) != "abc" || l.Pos() != 103 {
		t.Errorf("ReadBytes(5) = %q, Pos() = %d", data, l.Pos())
	}
}

func TestLexerReadBytesHugeCount(t *testing.T) {
	l := NewLexer(strings.NewReader("abc"))
	data, err := l.ReadBytes(1 << 62)
	if err == nil {
		t.Fatal("ReadBytes(1<<62) on 3 bytes succeeded")
	}
	if string(data) != "abc" {
		t.Errorf("ReadBytes() = %q, want the bytes present", data)
	}
	if _, err := NewLexer(strings.NewReader("abc")).ReadBytes(-1); err == nil {
		t.Error("ReadBytes(-1) succeeded")
	}
}
