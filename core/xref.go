package core

import (
	"io"
	"strconv"
	"strings"
)

// XRefEntry represents a single cross-reference table entry
type XRefEntry struct {
	ObjectID   uint32
	Offset     int64
	Generation uint32
	InUse      bool

	// Object is the indirect object this entry resolves to, linked after
	// the whole document has been read.
	Object *IndirectObject
}

// parseXref reads a classical cross-reference table entered just after the
// xref keyword, then the trailer that follows it.
//
// Entries are recognized by shape: a token of exactly ten characters is a
// byte offset, followed by a generation and the n/f marker. Any other first
// token opens a new subsection; it carries the base object id, and the entry
// count after it is read but not retained.
func (p *Parser) parseXref() error {
	p.doc.XRefOffset = p.lex.TokenOffset()

	var currentID uint32

	for {
		first, err := p.lex.NextToken()
		if err != nil {
			return err
		}
		if first == "trailer" {
			break
		}

		second, err := p.lex.NextToken()
		if err != nil {
			return err
		}

		if len(first) == 10 {
			marker, err := p.lex.NextToken()
			if err != nil {
				return err
			}

			offset, err := strconv.ParseInt(first, 10, 64)
			if err != nil {
				return syntaxErr(KindInvalidTrailer, p.lex.TokenOffset(), "invalid xref offset %q", first)
			}
			generation, err := strconv.ParseUint(second, 10, 32)
			if err != nil {
				return syntaxErr(KindInvalidTrailer, p.lex.TokenOffset(), "invalid xref generation %q", second)
			}

			p.doc.XRef = append(p.doc.XRef, &XRefEntry{
				ObjectID:   currentID,
				Offset:     offset,
				Generation: uint32(generation),
				InUse:      marker == "n",
			})
			currentID++
		} else {
			base, err := strconv.ParseUint(first, 10, 32)
			if err != nil {
				return syntaxErr(KindInvalidTrailer, p.lex.TokenOffset(), "invalid xref subsection %q", first)
			}
			currentID = uint32(base)
		}
	}

	_, err := p.parseTrailer()
	return err
}

// parseTrailer reads the trailer dictionary into the document's trailer
// sentinel. It returns false, after rewinding, when no startxref follows;
// some producers emit a trailer with the xref elsewhere.
func (p *Parser) parseTrailer() (bool, error) {
	token, err := p.lex.NextToken()
	if err != nil {
		return false, err
	}
	if token != "<<" {
		return false, syntaxErr(KindInvalidTrailer, p.lex.TokenOffset(), "expected dictionary, got %q", token)
	}

	if err := p.parseDictionary(p.doc.Trailer, p.doc.Trailer.Dict); err != nil {
		return false, err
	}

	token, err = p.lex.NextToken()
	if err != nil {
		return false, err
	}
	if token != "startxref" {
		p.src.Seek(p.lex.TokenOffset(), io.SeekStart)
		return false, nil
	}

	if err := p.parseStartXref(); err != nil {
		return false, err
	}
	return true, nil
}

// parseStartXref consumes the xref byte offset and the %%EOF marker. The
// marker line is captured whole so producers that run the next object into
// the same line (%%EOF1 0 obj) are handled: the source is repositioned to
// the byte just after %%EOF.
func (p *Parser) parseStartXref() error {
	if _, err := p.lex.NextToken(); err != nil {
		return err
	}

	token, err := p.lex.nextComment(false)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(token, "%%EOF") {
		return syntaxErr(KindInvalidTrailer, p.lex.TokenOffset(), "expected %%%%EOF, got %q", token)
	}
	if len(token) > 5 {
		p.src.Seek(p.lex.TokenOffset()+5, io.SeekStart)
	}
	return nil
}

// linkXref cross-links every xref entry with the object carrying the same
// id and generation, copying the in-use marker onto the object.
func (p *Parser) linkXref() {
	for _, entry := range p.doc.XRef {
		obj, ok := p.doc.Object(entry.ObjectID, entry.Generation)
		if !ok {
			continue
		}
		entry.Object = obj
		obj.Used = entry.InUse
	}
}
