package archive

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/matzehuels/stackbom/pkg/chunk"
	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/node"
	"github.com/matzehuels/stackbom/pkg/observability"
)

// State is the lifecycle position of a Writer or Reader.
type State int

const (
	StateOpen State = iota
	StateWriting
	StateReading
	StateExhausted
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateWriting:
		return "writing"
	case StateReading:
		return "reading"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Writer streams nodes into an archive: the metadata entry first, then one
// entry per chunk. Only one chunk is held in memory at a time.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	store EntryWriter
	codec *chunk.Codec
	cfg   config

	state       State
	meta        Metadata
	chunks      int
	nodes       int
	err         error
	storeClosed bool
}

// NewWriter returns a writer appending to store. A nil codec uses the
// default vocabulary. The chunk bound must be at least 1, and compression
// requires the binary format; both fail with INVALID_INPUT.
func NewWriter(store EntryWriter, codec *chunk.Codec, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts)
	if cfg.maxPerChunk < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "max nodes per chunk must be at least 1, got %d", cfg.maxPerChunk)
	}
	if cfg.format == chunk.FormatJSONLD && cfg.compression != chunk.CompressionNone {
		return nil, errors.New(errors.ErrCodeInvalidInput, "compression %s requires the cbor format", cfg.compression)
	}
	if codec == nil {
		codec = chunk.NewCodec(nil, chunk.WithLogger(cfg.logger))
	}
	w := &Writer{
		store: store,
		codec: codec,
		cfg:   cfg,
	}
	w.meta = newMetadata(cfg, codec.Context().Base())
	return w, nil
}

// State returns the writer's lifecycle state.
func (w *Writer) State() State { return w.state }

// Metadata returns the header the writer emits, or has emitted.
func (w *Writer) Metadata() Metadata { return w.meta }

// Chunks returns the number of chunk entries written so far.
func (w *Writer) Chunks() int { return w.chunks }

// Nodes returns the number of nodes written so far.
func (w *Writer) Nodes() int { return w.nodes }

// Write chunks nodes and appends one entry per chunk. The first call
// emits the metadata entry.
func (w *Writer) Write(nodes ...node.Node) error {
	return w.WriteSeq(slices.Values(nodes))
}

// WriteSeq is Write over an iterator. Nodes are pulled one chunk at a time.
//
// A chunk that fails to encode is not appended and the error is returned;
// chunks before it remain written. A storage failure moves the writer to
// StateFailed and every later call returns CLOSED.
func (w *Writer) WriteSeq(seq iter.Seq[node.Node]) error {
	if err := w.begin(); err != nil {
		return err
	}
	for ch := range chunk.Split(seq, w.cfg.maxPerChunk) {
		if err := w.writeChunk(ch); err != nil {
			return err
		}
	}
	return nil
}

// begin checks the writer accepts writes and emits the metadata entry on
// the first call.
func (w *Writer) begin() error {
	switch w.state {
	case StateClosed:
		return errors.New(errors.ErrCodeClosed, "archive writer is closed")
	case StateFailed:
		return errors.Wrap(errors.ErrCodeClosed, w.err, "archive writer failed")
	case StateOpen:
		if err := w.writeMetadata(); err != nil {
			return err
		}
		w.state = StateWriting
	}
	return nil
}

func (w *Writer) writeMetadata() error {
	data, err := json.MarshalIndent(w.meta, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal metadata")
	}
	if err := w.append(MetadataName, data, 0, time.Now()); err != nil {
		return err
	}
	w.cfg.logger.Debug("wrote metadata", "run", w.meta.RunID)
	return nil
}

func (w *Writer) writeChunk(ch *chunk.Chunk) error {
	start := time.Now()
	index := w.chunks + 1
	ch.Index = index

	data, err := w.codec.Marshal(ch, w.cfg.format, w.cfg.compression)
	if err != nil {
		return fmt.Errorf("encode chunk %d: %w", index, err)
	}
	name := ChunkName(index, w.cfg.format, w.cfg.compression)
	if err := w.append(name, data, ch.Len(), start); err != nil {
		return err
	}
	w.chunks = index
	w.nodes += ch.Len()
	w.cfg.logger.Debug("wrote chunk", "entry", name, "nodes", ch.Len(), "bytes", len(data))
	return nil
}

func (w *Writer) append(name string, data []byte, nodes int, start time.Time) error {
	if err := w.store.Append(name, data); err != nil {
		w.state = StateFailed
		w.err = err
		observability.Archive().OnFailed("write", err)
		w.cfg.logger.Error("archive write failed", "entry", name, "error", err)
		return err
	}
	observability.Archive().OnEntryWritten(name, nodes, len(data), time.Since(start))
	return nil
}

// Close finishes the archive and closes the store. An untouched writer
// still emits the metadata entry. Close is idempotent.
func (w *Writer) Close() error {
	if w.storeClosed {
		return nil
	}
	var err error
	if w.state == StateOpen {
		err = w.writeMetadata()
	}
	w.storeClosed = true
	if cerr := w.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if w.state != StateFailed {
		w.state = StateClosed
	}
	w.cfg.logger.Debug("closed archive", "chunks", w.chunks, "nodes", w.nodes)
	return err
}
