package archive

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// IndexName is the manifest file a directory archive keeps its entry order
// in. It is not itself an entry.
const IndexName = "index.json"

// dirIndex lists entry names in append order.
type dirIndex struct {
	Entries []string `json:"entries"`
}

// DirWriter stores each entry as a file under a directory and records the
// order in an index written on Close.
type DirWriter struct {
	dir    string
	names  []string
	closed bool
}

// NewDirWriter creates the directory if it doesn't exist. An existing index
// in the directory is overwritten on Close.
func NewDirWriter(dir string) (*DirWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create archive directory %s", dir)
	}
	return &DirWriter{dir: dir}, nil
}

// Append writes data to the file named by the entry.
func (d *DirWriter) Append(name string, data []byte) error {
	if d.closed {
		return errors.New(errors.ErrCodeClosed, "directory writer is closed")
	}
	if err := errors.ValidateEntryName(name); err != nil {
		return err
	}
	if name == IndexName {
		return errors.New(errors.ErrCodeInvalidPath, "entry name %s is reserved", IndexName)
	}
	if slices.Contains(d.names, name) {
		return errors.New(errors.ErrCodeConflict, "duplicate entry %s", name)
	}

	path := filepath.Join(d.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create entry directory for %s", name)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write entry %s", name)
	}
	d.names = append(d.names, name)
	return nil
}

// Close writes the index. It is safe to call more than once.
func (d *DirWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	data, err := json.MarshalIndent(dirIndex{Entries: d.names}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal index")
	}
	if err := os.WriteFile(filepath.Join(d.dir, IndexName), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write index")
	}
	return nil
}

// DirReader reads a directory archive in index order.
type DirReader struct {
	dir   string
	names []string
	pos   int
}

// NewDirReader loads the index of the directory archive at dir. A missing
// index means the directory is not an archive.
func NewDirReader(dir string) (*DirReader, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexName))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s has no %s", dir, IndexName)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read index")
	}
	var idx dirIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse index")
	}
	return &DirReader{dir: dir, names: idx.Entries}, nil
}

// Next returns the next entry, or io.EOF after the last one. An indexed
// entry whose file is missing is corrupt.
func (d *DirReader) Next() (Entry, error) {
	if d.pos >= len(d.names) {
		return Entry{}, io.EOF
	}
	name := d.names[d.pos]
	d.pos++
	if err := errors.ValidateEntryName(name); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "index entry %q", name)
	}
	data, err := os.ReadFile(filepath.Join(d.dir, filepath.FromSlash(name)))
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "read entry %s", name)
	}
	return Entry{Name: name, Data: data}, nil
}

// Close does nothing for directory archives.
func (d *DirReader) Close() error {
	return nil
}

var (
	_ EntryWriter = (*DirWriter)(nil)
	_ EntryReader = (*DirReader)(nil)
)
