package core

import (
	"strings"
)

// Lexer slices a byte source into PDF tokens. Tokens are returned as raw
// strings; the parser decides what they mean from context. The offset of the
// first byte of the most recent token is kept in tokenOffset and is what all
// "at offset N" errors refer to.
type Lexer struct {
	src         *Source
	tokenOffset int64
}

// NewLexer creates a lexer over the given source.
func NewLexer(src *Source) *Lexer {
	return &Lexer{src: src}
}

// TokenOffset returns the absolute offset of the first byte of the token
// most recently returned by NextToken.
func (l *Lexer) TokenOffset() int64 {
	return l.tokenOffset
}

// NextToken returns the next token, failing with a truncated-file error if
// the source ends first.
func (l *Lexer) NextToken() (string, error) {
	return l.next(true, false)
}

// NextTokenEOF returns the next token, or an empty string at end of input.
func (l *Lexer) NextTokenEOF() (string, error) {
	return l.next(false, false)
}

// nextComment returns the next token with comment capture: a % starts a
// token holding the % and the rest of its line. Used to read %%EOF markers.
func (l *Lexer) nextComment(required bool) (string, error) {
	return l.next(required, true)
}

// next scans forward for a token.
//
// Space, tab, <, >, [, ], (, ), and / end a running token and are pushed
// back for the next call. + and - end the token only when the previous byte
// was a space; names and numbers legitimately contain them otherwise.
// Whitespace is swallowed while the token is empty; CR and LF end a
// non-empty token. <, >, [, ], (, and ) at token start form a one-character
// token, with < and > doubled to << and >> by one byte of lookahead.
func (l *Lexer) next(required, captureComment bool) (string, error) {
	var b strings.Builder
	var c, prev byte

	for {
		prev = c
		var err error
		c, err = l.src.ReadByte()
		if err != nil {
			if required {
				return "", syntaxErr(KindTruncatedFile, l.src.Offset(), "unexpected end of file")
			}
			return b.String(), nil
		}

		if c == '%' {
			if captureComment {
				l.tokenOffset = l.src.Offset() - 1
				b.WriteByte(c)
				for {
					c, err = l.src.ReadByte()
					if err != nil {
						if required {
							return "", syntaxErr(KindTruncatedFile, l.src.Offset(), "unexpected end of file")
						}
						break
					}
					if c == '\n' || c == '\r' {
						break
					}
					b.WriteByte(c)
				}
				return b.String(), nil
			}

			l.src.skipLine()
			if b.Len() > 0 {
				break
			}
			continue
		}

		// Swallow whitespace while nothing has accumulated.
		if b.Len() == 0 && isLexWhitespace(c) {
			continue
		}

		// A line break ends the token without pushback.
		if c == '\n' || c == '\r' {
			if b.Len() > 0 {
				break
			}
			continue
		}

		if b.Len() > 0 {
			if isTokenDelimiter(c) {
				l.src.UnreadByte()
				break
			}
			if prev == ' ' && (c == '+' || c == '-') {
				l.src.UnreadByte()
				break
			}
			b.WriteByte(c)
			continue
		}

		l.tokenOffset = l.src.Offset() - 1
		b.WriteByte(c)
		if isStartDelimiter(c) {
			break
		}
	}

	tok := b.String()

	// Double < and > by lookahead so << and >> come back whole.
	if tok == "<" || tok == ">" {
		c, err := l.src.ReadByte()
		if err == nil {
			if c == tok[0] {
				tok += string(c)
			} else {
				l.src.UnreadByte()
			}
		}
	}

	return tok, nil
}

func isLexWhitespace(b byte) bool {
	// space, tab, LF, CR, NUL
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == 0
}

func isTokenDelimiter(b byte) bool {
	switch b {
	case ' ', '\t', '<', '>', '[', ']', '(', ')', '/':
		return true
	}
	return false
}

func isStartDelimiter(b byte) bool {
	switch b {
	case '<', '>', '[', ']', '(', ')':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
