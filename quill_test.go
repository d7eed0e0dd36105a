package quill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/quill/core"
)

const samplePDF = "%PDF-1.4\n" +
	"1 0 obj\n" +
	"<</Type/Catalog/Pages 2 0 R>>\n" +
	"endobj\n" +
	"2 0 obj\n" +
	"<</Type/Pages/Count 0>>\n" +
	"endobj\n" +
	"3 0 obj\n" +
	"<</Title(draft)>>\n" +
	"endobj\n" +
	"4 0 obj\n" +
	"<</Length 5>>\n" +
	"stream\n" +
	"HELLO\n" +
	"endstream\n" +
	"endobj\n" +
	"xref\n" +
	"0 5\n" +
	"0000000000 65535 f \n" +
	"0000000009 00000 n \n" +
	"0000000054 00000 n \n" +
	"0000000093 00000 n \n" +
	"0000000126 00000 n \n" +
	"trailer\n" +
	"<</Size 5/Root 1 0 R/Info 3 0 R>>\n" +
	"startxref\n" +
	"178\n" +
	"%%EOF"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := os.WriteFile(path, []byte(samplePDF), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestOpen tests the basic read path through the facade
func TestOpen(t *testing.T) {
	doc, err := Open(writeSample(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer doc.Close()

	if doc.Version().String() != "1.4" {
		t.Errorf("version: got %s", doc.Version())
	}
	if len(doc.Objects()) != 4 {
		t.Errorf("objects: got %d", len(doc.Objects()))
	}

	catalog, ok := doc.Object(1, 0)
	if !ok {
		t.Fatal("catalog not found")
	}
	ref, _ := catalog.Dict.GetReference("Pages")
	if _, ok := doc.Resolve(ref); !ok {
		t.Error("pages did not resolve")
	}

	if size, _ := doc.Trailer().GetInt("Size"); size.Value != 5 {
		t.Errorf("trailer size: got %v", size)
	}
	if got := doc.NextObjectID(); got != 5 {
		t.Errorf("next object id: got %d", got)
	}
}

// TestOpenMissingFile tests the open error path
func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestInfo tests reading the information dictionary
func TestInfo(t *testing.T) {
	doc, err := Open(writeSample(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer doc.Close()

	title, ok := doc.InfoString("Title")
	if !ok {
		t.Fatal("Title not found")
	}
	if title != "draft" {
		t.Errorf("title: got %q", title)
	}

	if _, ok := doc.InfoString("Author"); ok {
		t.Error("Author should be absent")
	}
}

// TestSetInfoRoundTrip tests metadata editing through an incremental write
func TestSetInfoRoundTrip(t *testing.T) {
	path := writeSample(t)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc.SetInfo("Title", "final report")
	if err := doc.Write(path, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc.Close()

	// The original bytes are still there.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), samplePDF) {
		t.Error("incremental write disturbed original bytes")
	}

	reread, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reread.Close()

	title, ok := reread.InfoString("Title")
	if !ok || title != "final report" {
		t.Errorf("title after round trip: got %q %v", title, ok)
	}
}

// TestSetInfoUnicode tests that non-ASCII metadata survives as UTF-16BE
func TestSetInfoUnicode(t *testing.T) {
	path := writeSample(t)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc.SetInfo("Author", "Grégory Soutadé")
	if err := doc.Write(path, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc.Close()

	reread, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reread.Close()

	author, ok := reread.InfoString("Author")
	if !ok || author != "Grégory Soutadé" {
		t.Errorf("author after round trip: got %q %v", author, ok)
	}
}

// TestSetInfoCreatesDictionary tests the path with no /Info in the trailer
func TestSetInfoCreatesDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.pdf")
	bare := "%PDF-1.4\n" +
		"1 0 obj\n" +
		"<</Type/Catalog>>\n" +
		"endobj\n" +
		"xref\n" +
		"0 2\n" +
		"0000000000 65535 f \n" +
		"0000000009 00000 n \n" +
		"trailer\n" +
		"<</Size 2/Root 1 0 R>>\n" +
		"startxref\n" +
		"42\n" +
		"%%EOF"
	if err := os.WriteFile(path, []byte(bare), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc.SetInfo("Title", "made from scratch")
	if err := doc.Write(path, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc.Close()

	reread, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reread.Close()

	title, ok := reread.InfoString("Title")
	if !ok || title != "made from scratch" {
		t.Errorf("title: got %q %v", title, ok)
	}
}

// TestDetachStreams tests that payloads survive Close after detaching
func TestDetachStreams(t *testing.T) {
	doc, err := Open(writeSample(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := doc.DetachStreams(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	doc.Close()

	obj, ok := doc.Object(4, 0)
	if !ok {
		t.Fatal("stream object not found")
	}
	stream := obj.Data[0].(*core.Stream)
	payload, err := stream.Payload()
	if err != nil {
		t.Fatalf("payload after close: %v", err)
	}
	if string(payload) != "HELLO" {
		t.Errorf("payload: got %q", payload)
	}
}

// TestOpenWithDetachedStreams tests the open option that copies payloads out
// of the source
func TestOpenWithDetachedStreams(t *testing.T) {
	doc, err := Open(writeSample(t), WithDetachedStreams())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc.Close()

	obj, ok := doc.Object(4, 0)
	if !ok {
		t.Fatal("stream object not found")
	}
	stream := obj.Data[0].(*core.Stream)
	payload, err := stream.Payload()
	if err != nil {
		t.Fatalf("payload after close: %v", err)
	}
	if string(payload) != "HELLO" {
		t.Errorf("payload: got %q", payload)
	}
}

// TestAddObjectWrite tests the facade write path with a caller-built object
func TestAddObjectWrite(t *testing.T) {
	path := writeSample(t)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	obj := core.NewIndirectObject(doc.NextObjectID(), 0)
	obj.Dict.Set("Type", core.Name("/Annot"))
	doc.AddObject(obj)
	if err := doc.Write(path, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc.Close()

	reread, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reread.Close()

	if _, ok := reread.Object(obj.ObjectID, 0); !ok {
		t.Errorf("object %d not recovered", obj.ObjectID)
	}
}
