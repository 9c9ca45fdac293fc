package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// Entry is one named document in an archive.
type Entry struct {
	Name string
	Data []byte
}

// Digest returns the hex SHA-256 of the entry data.
func (e Entry) Digest() string {
	sum := sha256.Sum256(e.Data)
	return hex.EncodeToString(sum[:])
}

// EntryWriter appends named entries to an ordered container.
type EntryWriter interface {
	Append(name string, data []byte) error
	Close() error
}

// EntryReader iterates the entries of a container in the order they were
// appended. Next returns io.EOF after the last entry.
type EntryReader interface {
	Next() (Entry, error)
	Close() error
}

// CreateStore opens an entry writer at path. Paths ending in ".zip" produce
// a ZIP file; anything else is treated as a directory.
func CreateStore(path string) (EntryWriter, error) {
	if isZipPath(path) {
		return CreateZip(path)
	}
	return NewDirWriter(path)
}

// OpenStore opens an entry reader at path, choosing the directory or ZIP
// reader by what exists on disk.
func OpenStore(path string) (EntryReader, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "archive %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", path)
	}
	if info.IsDir() {
		return NewDirReader(path)
	}
	return OpenZip(path)
}

func isZipPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zip")
}
