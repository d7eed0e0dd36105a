package quill

import (
	"encoding/hex"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/tsawler/quill/core"
)

// Info returns the document information dictionary, resolving the trailer's
// /Info reference. The second return is false when the document has none.
func (d *Document) Info() (core.Dict, bool) {
	ref, ok := d.doc.Trailer.Dict.GetReference("Info")
	if !ok {
		// Some producers inline the dictionary.
		dict, ok := d.doc.Trailer.Dict.GetDict("Info")
		return dict, ok
	}

	obj, ok := d.doc.Resolve(ref)
	if !ok {
		return nil, false
	}
	return obj.Dict, true
}

// InfoString returns a document information entry (Title, Author, Subject,
// and so on) decoded for display.
func (d *Document) InfoString(key string) (string, bool) {
	info, ok := d.Info()
	if !ok {
		return "", false
	}

	switch v := info.Get(key).(type) {
	case core.String:
		return decodeTextString([]byte(v)), true
	case core.HexString:
		raw, err := v.Decode()
		if err != nil {
			return "", false
		}
		return decodeTextString(raw), true
	default:
		return "", false
	}
}

// SetInfo sets a document information entry. The information object is
// marked new, so a subsequent incremental write carries the change; when the
// document has no information dictionary one is created and wired into the
// trailer.
func (d *Document) SetInfo(key, value string) {
	encoded := encodeTextString(value)

	if ref, ok := d.doc.Trailer.Dict.GetReference("Info"); ok {
		if obj, found := d.doc.Resolve(ref); found {
			obj.Dict.Set(key, encoded)
			obj.IsNew = true
			return
		}
	}

	obj := core.NewIndirectObject(d.doc.NextObjectID(), 0)
	obj.Dict.Set(key, encoded)
	d.doc.AddObject(obj)
	d.doc.Trailer.Dict.Set("Info", obj.Ref())
}

// decodeTextString interprets a PDF text string for display. Strings with a
// UTF-16BE byte order mark are decoded with x/text; everything else is
// close enough to ASCII to pass through.
func decodeTextString(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err == nil {
			return string(out)
		}
	}
	return string(raw)
}

// encodeTextString produces the PDF value for a text string: a literal
// string when the text is plain ASCII with no parentheses or backslashes,
// otherwise a UTF-16BE hex string with a byte order mark.
func encodeTextString(text string) core.Object {
	ascii := true
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 0x80 || c == '(' || c == ')' || c == '\\' {
			ascii = false
			break
		}
	}
	if ascii {
		return core.String(text)
	}

	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(text))
	if err != nil {
		return core.String(text)
	}
	return core.HexString(strings.ToUpper(hex.EncodeToString(out)))
}
