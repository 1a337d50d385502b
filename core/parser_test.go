package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mapResolver map[IndirectRef]Object

func (m mapResolver) ResolveReference(ref IndirectRef) (Object, error) {
	if obj, ok := m[ref]; ok {
		return obj, nil
	}
	return nil, ErrUndefinedObject
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		input string
		want  Object
	}{
		{"null", Null{}},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"42", Int(42)},
		{"-17", Int(-17)},
		{"+3", Int(3)},
		{"3.5", Real(3.5)},
		{"-.25", Real(-0.25)},
		{"(Hello)", String("Hello")},
		{"(a\\(b\\)c)", String("a(b)c")},
		{"(line\\nbreak)", String("line\nbreak")},
		{"(\\101\\102)", String("AB")},
		{"(nested (parens) ok)", String("nested (parens) ok")},
		{"<48656C6C6F>", String("Hello")},
		{"<48 65 6c 6c 6f>", String("Hello")},
		{"<901FA>", String("\x90\x1f\xa0")},
		{"/Type", Name("Type")},
		{"/A#20B", Name("A B")},
		{"[1 2 3]", Array{Int(1), Int(2), Int(3)}},
		{"[1 0 R 2]", Array{IndirectRef{Number: 1}, Int(2)}},
		{"[1 2 R]", Array{IndirectRef{Number: 1, Generation: 2}}},
		{"[]", Array{}},
		{"[[1] [2]]", Array{Array{Int(1)}, Array{Int(2)}}},
		{"<< /Type /Page /Count 3 >>", Dict{"Type": Name("Page"), "Count": Int(3)}},
		{"<< /Kids [4 0 R] /Parent 2 0 R >>", Dict{
			"Kids":   Array{IndirectRef{Number: 4}},
			"Parent": IndirectRef{Number: 2},
		}},
		{"<< % comment\n/A 1 >>", Dict{"A": Int(1)}},
		{"<<>>", Dict{}},
		{"12 0 R", IndirectRef{Number: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewParser(strings.NewReader(tt.input)).ParseObject()
			if err != nil {
				t.Fatalf("ParseObject() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseObject() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseObjectSequence(t *testing.T) {
	p := NewParser(strings.NewReader("1 2 3 0 R /X"))
	var got []Object
	for {
		obj, err := p.ParseObject()
		if err != nil {
			break
		}
		got = append(got, obj)
	}
	want := []Object{Int(1), Int(2), IndirectRef{Number: 3}, Name("X")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
}

func TestParseObjectErrors(t *testing.T) {
	tests := []string{
		"",
		"[1 2",
		"<< /A 1",
		"<< 1 2 >>",
		"obj",
		">",
		"(unterminated",
		"<< /A ] >>",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if obj, err := NewParser(strings.NewReader(input)).ParseObject(); err == nil {
				t.Errorf("ParseObject() = %v, want error", obj)
			}
		})
	}
}

func TestParseIndirectObject(t *testing.T) {
	p := NewParser(strings.NewReader("7 1 obj\n<< /A [1 2] >>\nendobj\n"))
	got, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatalf("ParseIndirectObject() error = %v", err)
	}
	want := &IndirectObject{
		Ref:    IndirectRef{Number: 7, Generation: 1},
		Object: Dict{"A": Array{Int(1), Int(2)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseIndirectObject() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStream(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		resolver ReferenceResolver
		want     string
	}{
		{"lf", "1 0 obj\n<< /Length 5 >>\nstream\nhello\nendstream\nendobj", nil, "hello"},
		{"crlf", "1 0 obj\n<< /Length 5 >>\nstream\r\nhello\r\nendstream\r\nendobj", nil, "hello"},
		{"cr", "1 0 obj\n<< /Length 5 >>\nstream\rhello endstream endobj", nil, "hello"},
		{"binary with keywords", "1 0 obj\n<< /Length 10 >>\nstream\nendobj\x00\xffxx\nendstream\nendobj", nil, "endobj\x00\xffxx"},
		{"indirect length", "1 0 obj\n<< /Length 9 0 R >>\nstream\nabc\nendstream\nendobj",
			mapResolver{{Number: 9}: Int(3)}, "abc"},
		{"empty", "1 0 obj\n<< /Length 0 >>\nstream\n\nendstream\nendobj", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tt.input))
			p.SetReferenceResolver(tt.resolver)
			obj, err := p.ParseIndirectObject()
			if err != nil {
				t.Fatalf("ParseIndirectObject() error = %v", err)
			}
			s, ok := obj.Object.(*Stream)
			if !ok {
				t.Fatalf("object is %T, want *Stream", obj.Object)
			}
			if string(s.Data) != tt.want {
				t.Errorf("Data = %q, want %q", s.Data, tt.want)
			}
		})
	}
}

func TestParseStreamErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing length", "1 0 obj\n<< >>\nstream\nabc\nendstream\nendobj"},
		{"negative length", "1 0 obj\n<< /Length -1 >>\nstream\nabc\nendstream\nendobj"},
		{"wrong length", "1 0 obj\n<< /Length 2 >>\nstream\nabc\nendstream\nendobj"},
		{"truncated", "1 0 obj\n<< /Length 50 >>\nstream\nabc"},
		{"indirect length without resolver", "1 0 obj\n<< /Length 2 0 R >>\nstream\nabc\nendstream\nendobj"},
		{"not a dictionary", "1 0 obj\n[1]\nstream\nabc\nendstream\nendobj"},
		{"missing endobj", "1 0 obj\n42\n"},
		{"missing obj", "1 0 42 endobj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewParser(strings.NewReader(tt.input)).ParseIndirectObject(); err == nil {
				t.Error("ParseIndirectObject() succeeded, want error")
			}
		})
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("broken") }

func TestParserIOError(t *testing.T) {
	_, err := NewParser(brokenReader{}).ParseObject()
	if !errors.Is(err, ErrIO) {
		t.Errorf("ParseObject() error = %v, want ErrIO", err)
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexerAt(strings.NewReader("  /Name 12 %c\n(s)"), 100)
	var got []int64
	var types []TokenType
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		if tok.Type == TokenEOF {
			break
		}
		got = append(got, tok.Pos)
		types = append(types, tok.Type)
	}
	if diff := cmp.Diff([]int64{102, 108, 111, 114}, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]TokenType{TokenName, TokenInteger, TokenComment, TokenString}, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}
