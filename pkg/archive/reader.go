package archive

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbom/pkg/chunk"
	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/node"
	"github.com/matzehuels/stackbom/pkg/observability"
)

// Reader reads an archive back: the metadata entry first, then one chunk
// per entry in archive order.
//
// Any failure is terminal. The reader moves to StateFailed and every later
// read returns the same error; it never skips a bad entry.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	store  EntryReader
	codec  *chunk.Codec
	logger *log.Logger

	state  State
	meta   *Metadata
	chunks int
	err    error
}

// NewReader returns a reader over store. A nil codec uses the default
// vocabulary in strict mode.
func NewReader(store EntryReader, codec *chunk.Codec, opts ...Option) *Reader {
	cfg := newConfig(opts)
	if codec == nil {
		codec = chunk.NewCodec(nil, chunk.WithLogger(cfg.logger))
	}
	return &Reader{store: store, codec: codec, logger: cfg.logger}
}

// State returns the reader's lifecycle state.
func (r *Reader) State() State { return r.state }

// Chunks returns the number of chunk entries decoded so far.
func (r *Reader) Chunks() int { return r.chunks }

// Metadata reads and caches the metadata entry. An empty archive or a first
// entry that is not metadata fails with MISSING_METADATA.
func (r *Reader) Metadata() (Metadata, error) {
	if r.meta != nil {
		return *r.meta, nil
	}
	if err := r.check(); err != nil {
		return Metadata{}, err
	}

	e, err := r.store.Next()
	if err == io.EOF {
		return Metadata{}, r.fail(errors.New(errors.ErrCodeMissingMetadata, "archive has no entries"))
	}
	if err != nil {
		return Metadata{}, r.fail(storeError(err, "read metadata"))
	}
	m, err := parseMetadata(e)
	if err != nil {
		return Metadata{}, r.fail(err)
	}
	r.meta = &m
	r.state = StateReading
	r.logger.Debug("read metadata", "run", m.RunID, "format", m.Format, "creator", m.Creator)
	return m, nil
}

// Next decodes the next chunk entry. It returns io.EOF once every entry
// has been read.
func (r *Reader) Next() (*chunk.Chunk, error) {
	if r.meta == nil {
		if _, err := r.Metadata(); err != nil {
			return nil, err
		}
	}
	if err := r.check(); err != nil {
		return nil, err
	}

	start := time.Now()
	e, err := r.store.Next()
	if err == io.EOF {
		r.state = StateExhausted
		r.logger.Debug("archive exhausted", "chunks", r.chunks)
		return nil, io.EOF
	}
	if err != nil {
		return nil, r.fail(storeError(err, "read chunk %d", r.chunks+1))
	}

	f, comp, err := parseChunkName(e.Name)
	if err != nil {
		return nil, r.fail(err)
	}
	ch, err := r.codec.Unmarshal(e.Data, f, comp)
	if err != nil {
		return nil, r.fail(fmt.Errorf("entry %s: %w", e.Name, err))
	}
	r.chunks++
	ch.Index = r.chunks
	observability.Archive().OnEntryRead(e.Name, ch.Len(), len(e.Data), time.Since(start))
	r.logger.Debug("read chunk", "entry", e.Name, "nodes", ch.Len())
	return ch, nil
}

// Nodes iterates every node of the remaining chunks in order. The first
// error is yielded with a nil node and ends the sequence.
func (r *Reader) Nodes() iter.Seq2[node.Node, error] {
	return func(yield func(node.Node, error) bool) {
		for {
			ch, err := r.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			for n := range ch.All() {
				if !yield(n, nil) {
					return
				}
			}
		}
	}
}

// Close releases the store. Reads after Close fail with CLOSED.
func (r *Reader) Close() error {
	if r.state == StateClosed {
		return nil
	}
	r.state = StateClosed
	return r.store.Close()
}

func (r *Reader) check() error {
	switch r.state {
	case StateClosed:
		return errors.New(errors.ErrCodeClosed, "archive reader is closed")
	case StateFailed:
		return r.err
	case StateExhausted:
		return io.EOF
	}
	return nil
}

func (r *Reader) fail(err error) error {
	r.state = StateFailed
	r.err = err
	observability.Archive().OnFailed("read", err)
	return err
}

// storeError keeps coded store errors and marks anything else corrupt.
func storeError(err error, format string, args ...any) error {
	if errors.GetCode(err) != "" {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	return errors.Wrap(errors.ErrCodeCorruptArchive, err, format, args...)
}
