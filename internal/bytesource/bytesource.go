// Package bytesource provides a read-only, positionally-addressable view of
// a file, backed by a single mmap(2) mapping so that payload bytes can be
// handed to callers without copying.
package bytesource

import (
	"golang.org/x/sys/unix"
	errors "golang.org/x/xerrors"
)

// A Source is a read-only view of a file, indexed by absolute byte offset.
// It is safe for concurrent use: the underlying mapping never changes after
// Open returns, so any number of goroutines may call Slice/ByteAt/Cursor
// concurrently.
type Source struct {
	fd   int
	data []byte
}

// Open maps path into memory read-only. The mapping remains valid until
// Close is called.
func Open(path string) (*Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, errors.Errorf("bytesource: open %s: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, errors.Errorf("bytesource: stat %s: %w", path, err)
	}

	size := st.Size
	if size == 0 {
		// mmap of a zero-length file fails; treat it as an empty source.
		unix.Close(fd)
		return &Source{fd: -1}, nil
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Errorf("bytesource: mmap %s: %w", path, err)
	}

	return &Source{fd: fd, data: data}, nil
}

// Close unmaps the file and releases its descriptor.
func (s *Source) Close() error {
	if s.fd < 0 {
		return nil
	}
	var err error
	if s.data != nil {
		err = unix.Munmap(s.data)
	}
	if cerr := unix.Close(s.fd); err == nil {
		err = cerr
	}
	return err
}

// Len returns the total size of the underlying file in bytes.
func (s *Source) Len() int64 {
	return int64(len(s.data))
}

// Slice returns the byte range [start, end) of the file. The returned slice
// aliases the mapping directly; callers must not write to it and must not
// retain it past Close.
func (s *Source) Slice(start, end int64) ([]byte, error) {
	if start < 0 || end < start || end > int64(len(s.data)) {
		return nil, errors.Errorf("bytesource: range [%d,%d) out of bounds (len=%d)", start, end, len(s.data))
	}
	return s.data[start:end], nil
}

// ByteAt returns the single byte at the given absolute offset.
func (s *Source) ByteAt(off int64) (byte, error) {
	if off < 0 || off >= int64(len(s.data)) {
		return 0, errors.Errorf("bytesource: offset %d out of bounds (len=%d)", off, len(s.data))
	}
	return s.data[off], nil
}

// Cursor returns a sequential reader positioned at the start of the file.
// Multiple cursors may be created and advanced independently of Slice/ByteAt
// positional reads.
func (s *Source) Cursor() *Cursor {
	return &Cursor{src: s}
}

// A Cursor is a sequential, forward-only read position into a Source. It is
// not safe for concurrent use by multiple goroutines.
type Cursor struct {
	src *Source
	pos int64
}

// Pos returns the cursor's current absolute offset.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Len returns the number of bytes remaining between the cursor and EOF.
func (c *Cursor) Len() int64 {
	return int64(len(c.src.data)) - c.pos
}

// Remaining returns the unread suffix of the file, from the cursor's
// current position to EOF. It does not advance the cursor.
func (c *Cursor) Remaining() []byte {
	return c.src.data[c.pos:]
}

// Advance moves the cursor forward by n bytes.
func (c *Cursor) Advance(n int64) {
	c.pos += n
	if c.pos > int64(len(c.src.data)) {
		c.pos = int64(len(c.src.data))
	}
}

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(off int64) {
	c.pos = off
}

// AtEOF reports whether the cursor has reached the end of the file.
func (c *Cursor) AtEOF() bool {
	return c.pos >= int64(len(c.src.data))
}
