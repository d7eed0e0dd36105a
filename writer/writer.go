package writer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/tsawler/quill/core"
)

// Update appends an incremental update to the named file: every object
// marked new, a fresh xref section, and a trailer whose /Prev points at the
// document's previous xref offset. The bytes already in the file are left
// untouched, which is what keeps existing signatures valid.
//
// When the document has no new objects, only the separator byte is written.
func Update(doc *core.Document, filename string) (err error) {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return &core.SyntaxError{Kind: core.KindUnableToOpenFile, Offset: 0}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// Separates the appended region from the previous %%EOF; some readers
	// need it.
	if _, err := f.Write([]byte{'\r'}); err != nil {
		return errors.Wrap(err, "write separator")
	}

	var xref bytes.Buffer
	xref.WriteString("xref\n")

	newObjects := 0
	for _, obj := range doc.Objects {
		if !obj.IsNew {
			continue
		}
		newObjects++

		offset, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return errors.Wrap(err, "current offset")
		}
		if _, err := obj.WriteTo(f); err != nil {
			return errors.Wrapf(err, "write object %d %d", obj.ObjectID, obj.Generation)
		}

		fmt.Fprintf(&xref, "%d 1\n", obj.ObjectID)
		fmt.Fprintf(&xref, "%010d %05d n\r\n", offset, obj.Generation)
	}

	if newObjects == 0 {
		return nil
	}

	xrefOffset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "current offset")
	}
	if _, err := f.Write(xref.Bytes()); err != nil {
		return errors.Wrap(err, "write xref")
	}

	trailer := doc.Trailer.Dict
	trailer.Delete("Prev")
	trailer.Set("Prev", core.Integer{Value: doc.XRefOffset})

	if _, err := io.WriteString(f, "trailer\n"); err != nil {
		return errors.Wrap(err, "write trailer")
	}
	if _, err := io.WriteString(f, trailer.String()); err != nil {
		return errors.Wrap(err, "write trailer")
	}
	if _, err := fmt.Fprintf(f, "startxref\n%d\n%%%%EOF", xrefOffset); err != nil {
		return errors.Wrap(err, "write startxref")
	}

	return nil
}

// Rewrite writes the whole document from scratch: header with binary
// marker, every object in order, a single xref with the synthetic free head
// entry, and a trailer cleaned of update chaining.
func Rewrite(doc *core.Document, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return &core.SyntaxError{Kind: core.KindUnableToOpenFile, Offset: 0}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = fmt.Fprintf(f, "%%PDF-%d.%d\r%%%s\r\n",
		doc.Version.Major, doc.Version.Minor, []byte{0xe2, 0xe3, 0xcf, 0xd3})
	if err != nil {
		return errors.Wrap(err, "write header")
	}

	var xref bytes.Buffer
	xref.WriteString("xref\n")
	xref.WriteString("0 1 f\r\n")
	xref.WriteString("0000000000 65535 f\r\n")

	objectCount := 1
	for _, obj := range doc.Objects {
		offset, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return errors.Wrap(err, "current offset")
		}
		if _, err := obj.WriteTo(f); err != nil {
			return errors.Wrapf(err, "write object %d %d", obj.ObjectID, obj.Generation)
		}

		marker := byte('f')
		if obj.Used {
			marker = 'n'
		}
		fmt.Fprintf(&xref, "%d 1\n", obj.ObjectID)
		fmt.Fprintf(&xref, "%010d %05d %c\r\n", offset, obj.Generation, marker)
		objectCount++
	}

	xrefOffset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "current offset")
	}
	if _, err := f.Write(xref.Bytes()); err != nil {
		return errors.Wrap(err, "write xref")
	}

	trailer := doc.Trailer.Dict
	trailer.Delete("Prev")
	trailer.Delete("Size")
	trailer.Delete("XRefStm")
	trailer.Set("Size", core.Integer{Value: int64(objectCount)})

	if _, err := io.WriteString(f, "trailer\n"); err != nil {
		return errors.Wrap(err, "write trailer")
	}
	if _, err := io.WriteString(f, trailer.String()); err != nil {
		return errors.Wrap(err, "write trailer")
	}
	if _, err := fmt.Fprintf(f, "startxref\n%d\n%%%%EOF", xrefOffset); err != nil {
		return errors.Wrap(err, "write startxref")
	}

	return nil
}
