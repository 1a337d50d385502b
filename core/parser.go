package core

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references. The parser needs one to
// read streams whose /Length is an indirect object.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser parses PDF objects from a Lexer with two tokens of lookahead.
type Parser struct {
	lexer        *Lexer
	currentToken *Token
	peekToken    *Token
	err          error // first lexer error, sticky
	resolver     ReferenceResolver
}

// NewParser creates a parser for r with positions counted from 0.
func NewParser(r io.Reader) *Parser {
	return NewParserAt(r, 0)
}

// NewParserAt creates a parser for input that begins at byte offset base of
// the file.
func NewParserAt(r io.Reader, base int64) *Parser {
	p := &Parser{lexer: NewLexerAt(r, base)}
	p.nextToken()
	p.nextToken()
	return p
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// nextToken shifts the lookahead. Once "stream" becomes the current token
// nothing more is tokenized, since binary data follows.
func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = nil
	if p.err != nil || p.isKeyword("stream") {
		return
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		p.err = err
		return
	}
	p.peekToken = token
}

// isKeyword reports whether the current token is the keyword kw.
func (p *Parser) isKeyword(kw string) bool {
	t := p.currentToken
	return t != nil && t.Type == TokenKeyword && string(t.Value) == kw
}

// unexpected builds the error for the current token.
func (p *Parser) unexpected(want string) error {
	if p.currentToken == nil {
		if p.err != nil {
			return p.err
		}
		return fmt.Errorf("expected %s, got end of input", want)
	}
	return fmt.Errorf("expected %s, got %v", want, p.currentToken)
}

func (p *Parser) skipComments() {
	for p.currentToken != nil && p.currentToken.Type == TokenComment {
		p.nextToken()
	}
}

// readInt consumes the current token as an integer.
func (p *Parser) readInt() (int64, error) {
	p.skipComments()
	if p.currentToken == nil || p.currentToken.Type != TokenInteger {
		return 0, p.unexpected("integer")
	}
	v, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %v: %w", p.currentToken, err)
	}
	p.nextToken()
	return v, nil
}

// ParseObject parses the next object. Two integers followed by R are
// returned as an IndirectRef.
func (p *Parser) ParseObject() (Object, error) {
	p.skipComments()
	tok := p.currentToken
	if tok == nil {
		return nil, p.unexpected("object")
	}

	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		var obj Object
		switch string(tok.Value) {
		case "null":
			obj = Null{}
		case "true":
			obj = Bool(true)
		case "false":
			obj = Bool(false)
		default:
			return nil, fmt.Errorf("unexpected keyword %v", tok)
		}
		p.nextToken()
		return obj, nil

	case TokenInteger:
		return p.parseNumber()

	case TokenReal:
		val, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %v: %w", tok, err)
		}
		p.nextToken()
		return Real(val), nil

	case TokenString:
		p.nextToken()
		return String(tok.Value), nil

	case TokenHexString:
		digits := tok.Value
		if len(digits)%2 == 1 {
			digits = append(digits[:len(digits):len(digits)], '0')
		}
		data := make([]byte, len(digits)/2)
		if _, err := hex.Decode(data, digits); err != nil {
			return nil, fmt.Errorf("invalid hex string %v: %w", tok, err)
		}
		p.nextToken()
		return String(data), nil

	case TokenName:
		p.nextToken()
		return Name(tok.Value), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// parseNumber parses an integer or, when followed by "gen R", a reference.
func (p *Parser) parseNumber() (Object, error) {
	first, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		// sign-only or otherwise odd numbers, e.g. "-"
		f, ferr := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number %v", p.currentToken)
		}
		p.nextToken()
		return Real(f), nil
	}

	if p.peekToken != nil && p.peekToken.Type == TokenInteger {
		second, err := strconv.ParseInt(string(p.peekToken.Value), 10, 64)
		if err == nil {
			p.nextToken() // second integer is now current
			if p.peekToken != nil && p.peekToken.Type == TokenIndirectRef {
				p.nextToken()
				p.nextToken()
				return IndirectRef{Number: int(first), Generation: int(second)}, nil
			}
			// the second integer stays current for the next call
			return Int(first), nil
		}
	}

	p.nextToken()
	return Int(first), nil
}

func (p *Parser) parseArray() (Object, error) {
	p.nextToken() // [

	arr := Array{}
	for {
		p.skipComments()
		if p.currentToken == nil || p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated array: %w", p.unexpected("']'"))
		}
		if p.currentToken.Type == TokenArrayEnd {
			p.nextToken()
			return arr, nil
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	p.nextToken() // <<

	dict := make(Dict)
	for {
		p.skipComments()
		if p.currentToken == nil || p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated dictionary: %w", p.unexpected("'>>'"))
		}
		if p.currentToken.Type == TokenDictEnd {
			p.nextToken()
			return dict, nil
		}
		if p.currentToken.Type != TokenName {
			return nil, fmt.Errorf("dictionary key: %w", p.unexpected("name"))
		}
		key := string(p.currentToken.Value)
		p.nextToken()

		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing dictionary value for key '%s': %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses "num gen obj <object> endobj", where the
// object may be a stream.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	num, err := p.readInt()
	if err != nil {
		return nil, fmt.Errorf("object number: %w", err)
	}
	gen, err := p.readInt()
	if err != nil {
		return nil, fmt.Errorf("generation number: %w", err)
	}
	if !p.isKeyword("obj") {
		return nil, p.unexpected("'obj' keyword")
	}
	p.nextToken()

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("error parsing indirect object value: %w", err)
	}

	if p.isKeyword("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("stream must follow a dictionary, got %T", obj)
		}
		if obj, err = p.parseStream(dict); err != nil {
			return nil, fmt.Errorf("error parsing stream: %w", err)
		}
	}

	if !p.isKeyword("endobj") {
		return nil, p.unexpected("'endobj' keyword")
	}
	p.nextToken()

	return &IndirectObject{
		Ref:    IndirectRef{Number: int(num), Generation: int(gen)},
		Object: obj,
	}, nil
}

// parseStream reads the /Length bytes after the "stream" keyword and the
// closing "endstream".
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	length, err := p.streamLength(dict)
	if err != nil {
		return nil, err
	}

	if err := p.lexer.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("failed to skip EOL after stream keyword: %w", err)
	}
	data, err := p.lexer.ReadBytes(length)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream data: %w", err)
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		return nil, fmt.Errorf("failed to read token after stream data: %w", err)
	}
	if token.Type != TokenKeyword || string(token.Value) != "endstream" {
		return nil, fmt.Errorf("expected 'endstream' keyword, got %v", token)
	}

	// reload the lookahead after the binary section
	p.currentToken = nil
	p.peekToken = nil
	p.nextToken()
	p.nextToken()

	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	obj := dict.Get("Length")
	if ref, ok := obj.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, fmt.Errorf("indirect stream length %v requires a reference resolver", ref)
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stream length %v: %w", ref, err)
		}
		obj = resolved
	}

	switch v := obj.(type) {
	case nil:
		return 0, fmt.Errorf("stream dictionary missing 'Length' entry")
	case Int:
		if v < 0 {
			return 0, fmt.Errorf("invalid stream length: %d", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid type for stream length: %T", obj)
	}
}
