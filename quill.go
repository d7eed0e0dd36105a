// Package quill reads and writes PDF files at the object level.
//
// quill parses the classical PDF file syntax into an object graph, lets the
// caller inspect or modify indirect objects, and writes the result back.
// The primary write path is the incremental update: new and changed objects
// are appended after the original bytes together with a fresh xref section
// and trailer, which preserves the original file contents exactly. That
// makes it suitable for tooling that edits metadata on, or re-signs, a PDF
// without disturbing the bytes a signature covers.
//
// Basic usage:
//
//	doc, err := quill.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//
//	obj := core.NewIndirectObject(doc.NextObjectID(), 0)
//	obj.Dict.Set("Type", core.Name("/Example"))
//	doc.AddObject(obj)
//
//	err = doc.Write("document.pdf", true)
//
// Content streams are located but not decoded, and encrypted documents,
// cross-reference streams, and object streams are out of scope. For the
// lower-level syntax machinery, the core package is also available.
package quill

import (
	"github.com/pkg/errors"

	"github.com/tsawler/quill/core"
	"github.com/tsawler/quill/writer"
)

// Document is an open PDF document. The underlying file stays open for the
// lifetime of the Document because stream payloads reference byte ranges
// within it; call Close when done, or DetachStreams first to make the
// parsed graph self-contained.
type Document struct {
	parser *core.Parser
	doc    *core.Document
}

// Open parses the named PDF file.
func Open(filename string, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	parser := core.NewParser()
	doc, err := parser.Parse(filename)
	if err != nil {
		parser.Close()
		return nil, errors.Wrapf(err, "parse %s", filename)
	}

	d := &Document{parser: parser, doc: doc}
	if o.detachStreams {
		if err := d.DetachStreams(); err != nil {
			parser.Close()
			return nil, err
		}
	}
	return d, nil
}

// Close releases the underlying file. Stream payloads that were not
// detached are unreadable afterwards.
func (d *Document) Close() error {
	return d.parser.Close()
}

// Version returns the header version. It is recorded as parsed, not
// validated.
func (d *Document) Version() core.Version {
	return d.doc.Version
}

// Objects returns the document's indirect objects in file order. The slice
// is the live list: objects may be modified in place, but modified objects
// must be marked new for the incremental writer to pick them up.
func (d *Document) Objects() []*core.IndirectObject {
	return d.doc.Objects
}

// Object finds an indirect object by id and generation.
func (d *Document) Object(objectID, generation uint32) (*core.IndirectObject, bool) {
	return d.doc.Object(objectID, generation)
}

// Resolve follows a reference value to its indirect object.
func (d *Document) Resolve(ref core.Reference) (*core.IndirectObject, bool) {
	return d.doc.Resolve(ref)
}

// AddObject appends an object to the document.
func (d *Document) AddObject(obj *core.IndirectObject) {
	d.doc.AddObject(obj)
}

// NextObjectID returns one past the highest object id in the object list or
// the xref table (free entries included), the id a new object should take.
func (d *Document) NextObjectID() uint32 {
	return d.doc.NextObjectID()
}

// Trailer returns the trailer dictionary.
func (d *Document) Trailer() core.Dict {
	return d.doc.Trailer.Dict
}

// XRef returns the parsed cross-reference entries.
func (d *Document) XRef() []*core.XRefEntry {
	return d.doc.XRef
}

// DetachStreams copies every stream payload out of the source so the
// document remains fully usable after Close.
func (d *Document) DetachStreams() error {
	for _, obj := range d.doc.Objects {
		for _, v := range obj.Data {
			stream, ok := v.(*core.Stream)
			if !ok {
				continue
			}
			if err := stream.Detach(); err != nil {
				return errors.Wrapf(err, "detach stream of object %d %d", obj.ObjectID, obj.Generation)
			}
		}
	}
	return nil
}

// Write serializes the document to the named file. With update true the
// objects marked new are appended as an incremental update, preserving the
// target's existing bytes; the target is normally a copy of the file the
// document was parsed from. With update false the whole document is
// rewritten from scratch.
func (d *Document) Write(filename string, update bool) error {
	if update {
		return writer.Update(d.doc, filename)
	}
	return writer.Rewrite(d.doc, filename)
}
