package dsp

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StreamFile is random access to one named file. Channel records keep their
// own StreamFile so each can hold an independent read buffer.
type StreamFile interface {
	// Name returns the path the file was opened with.
	Name() string
	// ReadAt reads len(p) bytes at off. A read that cannot be completed
	// returns the bytes that were available and a non-nil error.
	ReadAt(p []byte, off int64) (int, error)
	// Open returns a new, independently closable handle on the same file.
	Open(bufferSize int) (StreamFile, error)
	Close() error
}

// osFile is a StreamFile over an *os.File with a single read-ahead buffer.
type osFile struct {
	f      *os.File
	name   string
	buf    []byte
	bufOff int64
	bufLen int
}

// maxBufferSize caps buffer hints, which may come from untrusted headers.
const maxBufferSize = 1 << 20

// OpenFile opens path with the given buffer size.
func OpenFile(path string, bufferSize int) (StreamFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	bufferSize = min(bufferSize, maxBufferSize)
	return &osFile{
		f:    f,
		name: path,
		buf:  make([]byte, bufferSize),
	}, nil
}

func (o *osFile) Name() string { return o.name }

func (o *osFile) ReadAt(p []byte, off int64) (int, error) {
	if o.f == nil {
		return 0, os.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("dsp: negative offset %d", off)
	}
	// Large reads bypass the buffer.
	if len(p) > len(o.buf) {
		return o.f.ReadAt(p, off)
	}
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		if pos < o.bufOff || pos >= o.bufOff+int64(o.bufLen) {
			m, err := o.f.ReadAt(o.buf, pos)
			o.bufOff = pos
			o.bufLen = m
			if m == 0 {
				if err == nil {
					err = io.EOF
				}
				return n, err
			}
		}
		n += copy(p[n:], o.buf[pos-o.bufOff:o.bufLen])
	}
	return n, nil
}

func (o *osFile) Open(bufferSize int) (StreamFile, error) {
	return OpenFile(o.name, bufferSize)
}

func (o *osFile) Close() error {
	if o.f == nil {
		return nil
	}
	err := o.f.Close()
	o.f = nil
	o.buf = nil
	return err
}

// MemFile is an in-memory StreamFile. Handles opened from it share the same
// backing slice.
type MemFile struct {
	name   string
	data   []byte
	closed bool
}

// NewMemFile wraps data under the given name. The name drives extension checks.
func NewMemFile(name string, data []byte) *MemFile {
	return &MemFile{name: name, data: data}
}

func (m *MemFile) Name() string { return m.name }

func (m *MemFile) ReadAt(p []byte, off int64) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemFile) Open(int) (StreamFile, error) {
	if m.closed {
		return nil, os.ErrClosed
	}
	return &MemFile{name: m.name, data: m.data}, nil
}

func (m *MemFile) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called on this handle.
func (m *MemFile) Closed() bool { return m.closed }

// readFull reads exactly len(p) bytes or fails with ErrShortRead.
func readFull(f StreamFile, p []byte, off int64) error {
	if off < 0 {
		return fmt.Errorf("%w: %d bytes at negative offset %d", ErrShortRead, len(p), off)
	}
	n, err := f.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		return fmt.Errorf("%w: %d of %d bytes at 0x%x", ErrShortRead, n, len(p), off)
	}
	return fmt.Errorf("%w: %v", ErrShortRead, err)
}

func readU8(f StreamFile, off int64) (uint8, error) {
	var b [1]byte
	if err := readFull(f, b[:], off); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readU16BE(f StreamFile, off int64) (uint16, error) {
	var b [2]byte
	if err := readFull(f, b[:], off); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU32BE(f StreamFile, off int64) (uint32, error) {
	var b [4]byte
	if err := readFull(f, b[:], off); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// extension returns the lowercase extension of name without the dot.
func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// hasExtension reports whether name ends in one of exts, ignoring case.
func hasExtension(name string, exts ...string) bool {
	ext := extension(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// hasSuffixFold reports whether name ends with suffix, ignoring case.
func hasSuffixFold(name, suffix string) bool {
	return len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix)
}
