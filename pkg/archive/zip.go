package archive

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// ZipWriter appends entries to a ZIP container. Text entries are deflated;
// entries already compressed by the chunk codec are stored as is.
type ZipWriter struct {
	zw     *zip.Writer
	file   io.Closer
	closed bool
}

// NewZipWriter writes a ZIP container to w. Closing the ZipWriter writes
// the central directory but does not close w.
func NewZipWriter(w io.Writer) *ZipWriter {
	return &ZipWriter{zw: zip.NewWriter(w)}
}

// CreateZip creates or truncates the file at path and writes a ZIP
// container to it. Close closes the file.
func CreateZip(path string) (*ZipWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	zw := NewZipWriter(f)
	zw.file = f
	return zw, nil
}

// Append writes one entry.
func (z *ZipWriter) Append(name string, data []byte) error {
	if z.closed {
		return errors.New(errors.ErrCodeClosed, "zip writer is closed")
	}
	if err := errors.ValidateEntryName(name); err != nil {
		return err
	}
	method := zip.Deflate
	if strings.HasSuffix(name, ".lz4") || strings.HasSuffix(name, ".zst") {
		method = zip.Store
	}
	w, err := z.zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create zip entry %s", name)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write zip entry %s", name)
	}
	return nil
}

// Close finishes the container. It is safe to call more than once.
func (z *ZipWriter) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	err := z.zw.Close()
	if z.file != nil {
		if cerr := z.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "finish zip")
	}
	return nil
}

// ZipReader reads entries from a ZIP container in central-directory order,
// which is the order they were appended. Checksum mismatches and truncated
// data fail with CORRUPT_ARCHIVE.
type ZipReader struct {
	files  []*zip.File
	pos    int
	closer io.Closer
}

// NewZipReader reads a ZIP container of the given size from r.
func NewZipReader(r io.ReaderAt, size int64) (*ZipReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "open zip")
	}
	return &ZipReader{files: zr.File}, nil
}

// OpenZip opens the ZIP file at path. Close closes the file.
func OpenZip(path string) (*ZipReader, error) {
	rc, err := zip.OpenReader(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "archive %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "open zip %s", path)
	}
	return &ZipReader{files: rc.File, closer: rc}, nil
}

// Next returns the next entry, or io.EOF after the last one.
func (z *ZipReader) Next() (Entry, error) {
	if z.pos >= len(z.files) {
		return Entry{}, io.EOF
	}
	f := z.files[z.pos]
	z.pos++
	if err := errors.ValidateEntryName(f.Name); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "zip entry %q", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "open zip entry %s", f.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "read zip entry %s", f.Name)
	}
	return Entry{Name: f.Name, Data: data}, nil
}

// Close releases the underlying file, if the reader opened one.
func (z *ZipReader) Close() error {
	if z.closer == nil {
		return nil
	}
	err := z.closer.Close()
	z.closer = nil
	return err
}

var (
	_ EntryWriter = (*ZipWriter)(nil)
	_ EntryReader = (*ZipReader)(nil)
)
