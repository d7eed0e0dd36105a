package core

import (
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Source provides random-access reads over PDF bytes with absolute offset
// tracking. File-backed sources are memory-mapped, so seeking and slicing
// are position arithmetic rather than syscalls. The lexer never needs more
// than a single byte of pushback, which UnreadByte covers.
type Source struct {
	file *os.File
	mm   mmap.MMap
	data []byte
	pos  int64
}

// OpenSource memory-maps the named file for reading.
func OpenSource(filename string) (*Source, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, syntaxErr(KindUnableToOpenFile, 0, "unable to open %s: %v", filename, err)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, syntaxErr(KindUnableToOpenFile, 0, "unable to map %s: %v", filename, err)
	}

	return &Source{file: f, mm: m, data: m}, nil
}

// NewSource wraps an in-memory byte slice. The slice is not copied.
func NewSource(data []byte) *Source {
	return &Source{data: data}
}

// ReadByte returns the byte at the current offset and advances by one.
// It returns io.EOF past the end of the source.
func (s *Source) ReadByte() (byte, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// UnreadByte steps the current offset back by one byte.
func (s *Source) UnreadByte() error {
	if s.pos == 0 {
		return io.ErrUnexpectedEOF
	}
	s.pos--
	return nil
}

// Seek implements io.Seeker over the mapped bytes. Seeking past the end is
// allowed; the next ReadByte reports io.EOF.
func (s *Source) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.data)) + offset
	}
	if s.pos < 0 {
		s.pos = 0
	}
	return s.pos, nil
}

// Offset returns the current position in bytes from the start of the file.
func (s *Source) Offset() int64 {
	return s.pos
}

// Len returns the total size of the source in bytes.
func (s *Source) Len() int64 {
	return int64(len(s.data))
}

// Slice returns the bytes in [start, end) without copying or moving the
// current offset.
func (s *Source) Slice(start, end int64) ([]byte, error) {
	if start < 0 || end < start || end > int64(len(s.data)) {
		return nil, syntaxErr(KindTruncatedFile, start, "byte range [%d, %d) outside source", start, end)
	}
	return s.data[start:end], nil
}

// skipLine reads through the next CR or LF, then consumes one more CR or LF
// if one follows, so CRLF and LFCR both advance past a full break.
func (s *Source) skipLine() {
	var c byte
	var err error
	for {
		c, err = s.ReadByte()
		if err != nil {
			return
		}
		if c == '\n' || c == '\r' {
			break
		}
	}
	next, err := s.ReadByte()
	if err != nil {
		return
	}
	if next != '\n' && next != '\r' {
		s.UnreadByte()
	}
}

// Close unmaps and closes a file-backed source. In-memory sources are a no-op.
func (s *Source) Close() error {
	if s.mm != nil {
		if err := s.mm.Unmap(); err != nil {
			s.file.Close()
			return err
		}
		s.mm = nil
	}
	s.data = nil
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}
