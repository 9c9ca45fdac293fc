// Package archive writes node streams into chunked archives and reads them
// back.
//
// An archive is an ordered sequence of named entries. Entry 0 is always
// [MetadataName], a fixed-shape header with a run identifier and
// provenance. Entries 1..N are chunk documents named
// "chunks/000001.jsonld" (or ".cbor", ".cbor.lz4", ".cbor.zst") in write
// order.
//
// # Stores
//
// Entries live in an [EntryWriter] / [EntryReader] pair:
//
//   - [ZipWriter] / [ZipReader]: a ZIP file
//   - [DirWriter] / [DirReader]: a directory with an index.json manifest
//   - [MemoryStore]: in memory
//
// # Lifecycle
//
// A [Writer] goes Open → Writing → Closed, or Failed after a storage error.
// A [Reader] goes Open → Reading → Exhausted, Failed or Closed.
//
//	w, err := archive.Create("bom.zip", codec, archive.WithMaxPerChunk(500))
//	if err != nil {
//	    return err
//	}
//	if err := w.WriteSeq(nodes); err != nil {
//	    w.Close()
//	    return err
//	}
//	return w.Close()
package archive

import (
	"github.com/matzehuels/stackbom/pkg/chunk"
)

// Create opens a writer on a new archive at path. See [CreateStore].
func Create(path string, codec *chunk.Codec, opts ...Option) (*Writer, error) {
	store, err := CreateStore(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(store, codec, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return w, nil
}

// Open opens a reader on the archive at path. See [OpenStore].
func Open(path string, codec *chunk.Codec, opts ...Option) (*Reader, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	return NewReader(store, codec, opts...), nil
}
