package core

import "fmt"

// Version is the PDF version from the file header. It is recorded as-is and
// not validated against feature use.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as a string (e.g., "1.7")
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Document is the parsed object graph of a PDF file: the header version, the
// indirect objects in file order, the cross-reference entries, the offset of
// the most recent xref section, and a sentinel object holding the trailer
// dictionary.
type Document struct {
	Version    Version
	Objects    []*IndirectObject
	XRef       []*XRefEntry
	XRefOffset int64
	Trailer    *IndirectObject
}

// NewDocument creates an empty document with an empty trailer.
func NewDocument() *Document {
	return &Document{
		Trailer: &IndirectObject{Dict: Dict{}},
	}
}

// Object finds the indirect object with the given id and generation. Object
// identity is the (id, generation) pair. Incremental updates append
// superseding definitions, so the most recent one wins.
func (d *Document) Object(objectID, generation uint32) (*IndirectObject, bool) {
	for i := len(d.Objects) - 1; i >= 0; i-- {
		obj := d.Objects[i]
		if obj.ObjectID == objectID && obj.Generation == generation {
			return obj, true
		}
	}
	return nil, false
}

// Resolve follows a reference to its indirect object.
func (d *Document) Resolve(ref Reference) (*IndirectObject, bool) {
	return d.Object(ref.ObjectID, ref.Generation)
}

// AddObject appends an object to the document.
func (d *Document) AddObject(obj *IndirectObject) {
	d.Objects = append(d.Objects, obj)
}

// NextObjectID returns one past the highest object id found in the object
// list or the xref table, free entries included.
func (d *Document) NextObjectID() uint32 {
	var max uint32
	for _, obj := range d.Objects {
		if obj.ObjectID > max {
			max = obj.ObjectID
		}
	}
	for _, entry := range d.XRef {
		if entry.ObjectID > max {
			max = entry.ObjectID
		}
	}
	return max + 1
}
