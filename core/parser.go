package core

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Parser reads a PDF file into a Document. The byte source stays open for
// the lifetime of the parser because stream payloads reference byte ranges
// within it; Close releases it. A parser is not safe for concurrent use.
type Parser struct {
	src *Source
	lex *Lexer
	doc *Document
}

// NewParser creates a parser with no source attached.
func NewParser() *Parser {
	return &Parser{}
}

// Document returns the most recently parsed document.
func (p *Parser) Document() *Document {
	return p.doc
}

// Close releases the source. Stream payloads of the parsed document are no
// longer readable afterwards unless they were detached first.
func (p *Parser) Close() error {
	if p.src == nil {
		return nil
	}
	err := p.src.Close()
	p.src = nil
	return err
}

// Parse reads the named file. A source left open by a prior Parse call is
// closed first. On error the parser is left in an unspecified state and
// should be dropped.
func (p *Parser) Parse(filename string) (*Document, error) {
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}

	src, err := OpenSource(filename)
	if err != nil {
		return nil, err
	}
	return p.parseSource(src)
}

// ParseBytes parses an in-memory PDF.
func (p *Parser) ParseBytes(data []byte) (*Document, error) {
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	return p.parseSource(NewSource(data))
}

func (p *Parser) parseSource(src *Source) (*Document, error) {
	p.src = src
	p.lex = NewLexer(src)
	p.doc = NewDocument()

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	// The line after the header may be an uncommented binary marker; it is
	// tolerated once.
	secondLine := true

	for {
		token, err := p.lex.NextTokenEOF()
		if err != nil {
			return nil, err
		}
		if token == "" {
			break
		}

		switch {
		case token == "xref":
			err = p.parseXref()
		case token[0] >= '1' && token[0] <= '9':
			err = p.parseObject(token)
		case token == "startxref":
			// startxref may appear mid-document, without a trailer.
			err = p.parseStartXref()
		default:
			if !secondLine {
				return nil, syntaxErr(KindInvalidLine, p.lex.TokenOffset(), "unexpected token %q", token)
			}
			// A line break that ended the token has already been consumed;
			// otherwise skip the rest of the line.
			if last, serr := p.src.Slice(p.src.Offset()-1, p.src.Offset()); serr != nil || (last[0] != '\n' && last[0] != '\r') {
				p.src.skipLine()
			}
		}
		if err != nil {
			return nil, err
		}

		if secondLine {
			secondLine = false
		}
	}

	p.linkXref()

	return p.doc, nil
}

// parseHeader requires %PDF- followed by single-digit major and minor
// versions, then consumes the rest of the header line.
func (p *Parser) parseHeader() error {
	magic := make([]byte, 5)
	for i := range magic {
		c, err := p.src.ReadByte()
		if err != nil {
			return syntaxErr(KindInvalidHeader, 0, "missing PDF header")
		}
		magic[i] = c
	}
	if string(magic) != "%PDF-" {
		return syntaxErr(KindInvalidHeader, 0, "missing PDF header")
	}

	major, err := p.src.ReadByte()
	if err != nil || !isDigit(major) {
		return syntaxErr(KindInvalidHeader, p.src.Offset(), "invalid major version")
	}
	dot, err := p.src.ReadByte()
	if err != nil || dot != '.' {
		return syntaxErr(KindInvalidHeader, p.src.Offset(), "invalid header version")
	}
	minor, err := p.src.ReadByte()
	if err != nil || !isDigit(minor) {
		return syntaxErr(KindInvalidHeader, p.src.Offset(), "invalid minor version")
	}

	p.doc.Version = Version{Major: major - '0', Minor: minor - '0'}
	p.src.skipLine()
	return nil
}

// parseObject reads one indirect object. The object id has already been
// tokenized and is passed in.
func (p *Parser) parseObject(token string) error {
	offset := p.lex.TokenOffset()

	objectID, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return syntaxErr(KindInvalidObject, offset, "invalid object id %q", token)
	}

	token, err = p.lex.NextToken()
	if err != nil {
		return err
	}
	generation, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return syntaxErr(KindInvalidObject, offset, "invalid generation %q", token)
	}

	token, err = p.lex.NextToken()
	if err != nil {
		return err
	}
	if token != "obj" {
		return syntaxErr(KindInvalidObject, p.lex.TokenOffset(), "expected obj, got %q", token)
	}

	obj := &IndirectObject{
		ObjectID:   uint32(objectID),
		Generation: uint32(generation),
		Offset:     offset,
		Dict:       Dict{},
	}
	p.doc.AddObject(obj)

	for {
		token, err = p.lex.NextToken()
		if err != nil {
			return err
		}

		switch {
		case token == "endobj":
			return nil

		case token == "<<":
			// Subsequent dictionaries merge into the first.
			if err := p.parseDictionary(obj, obj.Dict); err != nil {
				return err
			}

		case token[0] >= '1' && token[0] <= '9':
			// A digit-leading token in the body is taken as the lone-integer
			// offset stand-in; the tokens after it are not examined.
			value, err := tokenToNumber(token, 0)
			if err != nil {
				return syntaxErr(KindInvalidObject, p.lex.TokenOffset(), "invalid token %q", token)
			}
			num, ok := value.(Integer)
			if !ok {
				return syntaxErr(KindInvalidObject, p.lex.TokenOffset(), "expected integer, got %s", value.Type())
			}
			v := num.Value
			obj.IndirectOffset = &v

		default:
			value, err := p.parseValue(token, obj)
			if err != nil {
				return err
			}
			obj.Data = append(obj.Data, value)
		}
	}
}

// parseValue dispatches on the first character or exact token. The owning
// object supplies the dictionary a stream needs for its Length.
func (p *Parser) parseValue(token string, obj *IndirectObject) (Object, error) {
	switch {
	case token == "<<":
		dict := Dict{}
		if err := p.parseDictionary(obj, dict); err != nil {
			return nil, err
		}
		return dict, nil
	case token == "[":
		return p.parseArray(obj)
	case token == "(":
		return p.parseString()
	case token == "<":
		return p.parseHexString()
	case token == "stream":
		return p.parseStream(obj)
	case token == "true":
		return Boolean(true), nil
	case token == "false":
		return Boolean(false), nil
	case token == "null":
		return Null{}, nil
	case token[0] >= '1' && token[0] <= '9':
		return p.parseNumberOrReference(token)
	case token[0] == '/':
		return p.parseName(token)
	case token[0] == '+' || token[0] == '-':
		return p.parseSignedNumber(token)
	case token[0] == '0' || token[0] == '.':
		return p.parseNumber(token)
	default:
		return nil, syntaxErr(KindInvalidToken, p.lex.TokenOffset(), "invalid token %q", token)
	}
}

// tokenToNumber parses token as an Integer, or as a Real when it contains a
// decimal point. A leading point is normalized to 0. first. A non-zero sign
// negates when - and sets the explicit-sign marker either way.
func tokenToNumber(token string, sign byte) (Object, error) {
	if strings.ContainsRune(token, '.') {
		if token[0] == '.' {
			token = "0" + token
		}
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, err
		}
		if sign == '-' {
			value = -value
		}
		return Real{Value: value, Signed: sign != 0}, nil
	}

	value, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, err
	}
	if sign == '-' {
		value = -value
	}
	return Integer{Value: value, Signed: sign != 0}, nil
}

func (p *Parser) parseSignedNumber(token string) (Object, error) {
	sign := token[0]
	value, err := tokenToNumber(token[1:], sign)
	if err != nil {
		return nil, syntaxErr(KindInvalidToken, p.lex.TokenOffset(), "invalid number %q", token)
	}
	return value, nil
}

func (p *Parser) parseNumber(token string) (Object, error) {
	value, err := tokenToNumber(token, 0)
	if err != nil {
		return nil, syntaxErr(KindInvalidToken, p.lex.TokenOffset(), "invalid number %q", token)
	}
	return value, nil
}

// parseNumberOrReference resolves the number-vs-reference ambiguity: after
// an integer, two more tokens are tried; an integer followed by exactly R
// makes the triple a reference, anything else seeks back so the integer
// stands alone. A real can never start a reference.
func (p *Parser) parseNumberOrReference(token string) (Object, error) {
	value, err := tokenToNumber(token, 0)
	if err != nil {
		return nil, syntaxErr(KindInvalidToken, p.lex.TokenOffset(), "invalid number %q", token)
	}
	num, ok := value.(Integer)
	if !ok {
		return value, nil
	}

	offset := p.src.Offset()

	token2, err := p.lex.NextTokenEOF()
	if err != nil {
		return nil, err
	}
	token3, err := p.lex.NextTokenEOF()
	if err != nil {
		return nil, err
	}

	generation, err := tokenToNumber(token2, 0)
	if err != nil {
		p.src.Seek(offset, io.SeekStart)
		return num, nil
	}
	gen, ok := generation.(Integer)
	if !ok || token3 != "R" {
		p.src.Seek(offset, io.SeekStart)
		return num, nil
	}

	return Reference{ObjectID: uint32(num.Value), Generation: uint32(gen.Value)}, nil
}

// parseArray accumulates values until the closing bracket.
func (p *Parser) parseArray(obj *IndirectObject) (Array, error) {
	arr := Array{}
	for {
		token, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if token == "]" {
			return arr, nil
		}

		value, err := p.parseValue(token, obj)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}

// parseString reads the raw bytes of a balanced-parenthesis string. Escapes
// are kept verbatim; an unescaped parenthesis adjusts the nesting depth and
// the string ends when depth returns to zero.
func (p *Parser) parseString() (String, error) {
	var b strings.Builder
	escaped := false
	depth := 1

	for {
		c, err := p.src.ReadByte()
		if err != nil {
			break
		}

		if c == '(' && !escaped {
			depth++
		} else if c == ')' && !escaped {
			depth--
			if depth == 0 {
				break
			}
		}

		// A backslash toggles escape state; two in a row collapse back.
		if c == '\\' && escaped {
			escaped = false
		} else {
			escaped = c == '\\'
		}

		b.WriteByte(c)
	}

	return String(b.String()), nil
}

// parseHexString reads raw bytes up to the closing angle bracket and
// requires an even count.
func (p *Parser) parseHexString() (HexString, error) {
	var b strings.Builder

	for {
		c, err := p.src.ReadByte()
		if err != nil {
			break
		}
		if c == '>' {
			break
		}
		b.WriteByte(c)
	}

	if b.Len()%2 != 0 {
		return "", syntaxErr(KindInvalidHexString, p.lex.TokenOffset(), "odd length %d", b.Len())
	}
	return HexString(b.String()), nil
}

func (p *Parser) parseName(token string) (Name, error) {
	if len(token) == 0 || token[0] != '/' {
		return "", syntaxErr(KindInvalidName, p.lex.TokenOffset(), "invalid name %q", token)
	}
	return Name(token), nil
}

// parseDictionary fills dict with key/value pairs until the closing >>.
// A key immediately followed by >> is recorded with an absent value.
func (p *Parser) parseDictionary(obj *IndirectObject, dict Dict) error {
	for {
		token, err := p.lex.NextToken()
		if err != nil {
			return err
		}
		if token == ">>" {
			return nil
		}

		key, err := p.parseName(token)
		if err != nil {
			return err
		}

		token, err = p.lex.NextToken()
		if err != nil {
			return err
		}
		if token == ">>" {
			dict[key.Value()] = nil
			return nil
		}

		value, err := p.parseValue(token, obj)
		if err != nil {
			return err
		}
		dict[key.Value()] = value
	}
}

// parseStream locates the payload of a stream entered immediately after the
// stream keyword. With an integer Length and no Filter the end is a direct
// seek, confirmed by the endstream keyword; otherwise the payload is scanned
// for the endstream marker. The payload bytes are never copied.
func (p *Parser) parseStream(obj *IndirectObject) (*Stream, error) {
	start := p.src.Offset()

	if !obj.Dict.Has("Length") {
		return nil, syntaxErr(KindInvalidStream, p.lex.TokenOffset(), "stream has no Length")
	}

	if length, ok := obj.Dict.GetInt("Length"); ok && !obj.Dict.Has("Filter") {
		end := start + length.Value
		p.src.Seek(end, io.SeekStart)
		token, err := p.lex.NextTokenEOF()
		if err != nil {
			return nil, err
		}
		if token == "endstream" {
			return &Stream{Dict: obj.Dict, Start: start, End: end, src: p.src}, nil
		}
		// Length did not land on endstream; fall back to scanning.
		p.src.Seek(start, io.SeekStart)
	}

	rest, err := p.src.Slice(start, p.src.Len())
	if err != nil {
		return nil, err
	}
	idx := bytes.Index(rest, []byte("endstream"))
	if idx < 0 {
		return nil, syntaxErr(KindInvalidStream, start, "missing endstream")
	}

	end := start + int64(idx)
	p.src.Seek(end+int64(len("endstream")), io.SeekStart)

	// The payload ends before the line break that precedes endstream.
	if end > start && rest[end-start-1] == '\n' {
		end--
	}
	if end > start && rest[end-start-1] == '\r' {
		end--
	}

	return &Stream{Dict: obj.Dict, Start: start, End: end, src: p.src}, nil
}
