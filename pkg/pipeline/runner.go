package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbom/pkg/archive"
	"github.com/matzehuels/stackbom/pkg/chunk"
	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/node"
	"github.com/matzehuels/stackbom/pkg/observability"
)

// Runner executes pipeline operations.
//
// The Runner is stateless except for the logger. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Pack reads JSON-lines nodes from src and writes an archive to
// opts.Output. Cancelling ctx stops the run between nodes; the archive is
// closed but incomplete.
func (r *Runner) Pack(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Output == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "output archive path is required")
	}

	start := time.Now()
	observability.Pipeline().OnPackStart(ctx, opts.Output)
	result, err := r.pack(ctx, src, opts)
	duration := time.Since(start)
	if result != nil {
		result.Duration = duration
		observability.Pipeline().OnPackComplete(ctx, opts.Output, result.Nodes, result.Chunks, duration, err)
	} else {
		observability.Pipeline().OnPackComplete(ctx, opts.Output, 0, 0, duration, err)
	}
	if err != nil {
		return nil, err
	}

	r.Logger.Info("packed archive",
		"path", opts.Output,
		"nodes", result.Nodes,
		"chunks", result.Chunks,
		"duration", duration)
	return result, nil
}

func (r *Runner) pack(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	codec, err := opts.Codec()
	if err != nil {
		return nil, err
	}
	archiveOpts, err := opts.ArchiveOptions()
	if err != nil {
		return nil, err
	}
	w, err := archive.Create(opts.Output, codec, archiveOpts...)
	if err != nil {
		return nil, err
	}

	var srcErr error
	seq := func(yield func(node.Node) bool) {
		for n, err := range chunk.ReadNodes(src, codec) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				srcErr = err
				return
			}
			if !yield(n) {
				return
			}
		}
	}
	writeErr := w.WriteSeq(seq)
	closeErr := w.Close()

	result := &Result{Metadata: w.Metadata(), Nodes: w.Nodes(), Chunks: w.Chunks()}
	switch {
	case srcErr != nil:
		return result, fmt.Errorf("read nodes: %w", srcErr)
	case writeErr != nil:
		return result, fmt.Errorf("write archive: %w", writeErr)
	case closeErr != nil:
		return result, fmt.Errorf("close archive: %w", closeErr)
	}
	return result, nil
}

// Unpack reads the archive at opts.Input and writes its nodes to dst as
// JSON lines, in archive order.
func (r *Runner) Unpack(ctx context.Context, dst io.Writer, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Input == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input archive path is required")
	}

	start := time.Now()
	observability.Pipeline().OnUnpackStart(ctx, opts.Input)
	result, err := r.unpack(ctx, dst, opts)
	duration := time.Since(start)
	if result != nil {
		result.Duration = duration
		observability.Pipeline().OnUnpackComplete(ctx, opts.Input, result.Nodes, result.Chunks, duration, err)
	} else {
		observability.Pipeline().OnUnpackComplete(ctx, opts.Input, 0, 0, duration, err)
	}
	if err != nil {
		return nil, err
	}

	r.Logger.Info("unpacked archive",
		"path", opts.Input,
		"nodes", result.Nodes,
		"chunks", result.Chunks,
		"duration", duration)
	return result, nil
}

func (r *Runner) unpack(ctx context.Context, dst io.Writer, opts Options) (*Result, error) {
	codec, err := opts.Codec()
	if err != nil {
		return nil, err
	}
	rd, err := archive.Open(opts.Input, codec, archive.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	meta, err := rd.Metadata()
	if err != nil {
		return nil, err
	}
	seq := func(yield func(node.Node, error) bool) {
		for n, err := range rd.Nodes() {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(n, nil) {
				return
			}
		}
	}
	count, err := chunk.WriteNodes(dst, codec, seq)
	return &Result{Metadata: meta, Nodes: count, Chunks: rd.Chunks()}, err
}

// Inspect reads the archive at path and reports its metadata and, for each
// entry, its size, SHA-256 digest and per-kind node counts. Every chunk is
// decoded, so a corrupt archive fails Inspect.
func (r *Runner) Inspect(ctx context.Context, path string, opts Options) (*Inspection, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	codec, err := opts.Codec()
	if err != nil {
		return nil, err
	}
	store, err := archive.OpenStore(path)
	if err != nil {
		return nil, err
	}
	rec := &recordingReader{EntryReader: store}
	rd := archive.NewReader(rec, codec, archive.WithLogger(opts.Logger))
	defer rd.Close()

	meta, err := rd.Metadata()
	if err != nil {
		return nil, err
	}
	insp := &Inspection{
		Path:     path,
		Metadata: meta,
		Entries:  []EntryInfo{entryInfo(rec.last)},
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ch, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		info := entryInfo(rec.last)
		info.Nodes = ch.Len()
		info.Counts = make(map[string]int)
		for k, n := range ch.Counts() {
			info.Counts[k.String()] = n
		}
		insp.Entries = append(insp.Entries, info)
		insp.Nodes += ch.Len()
	}
	r.Logger.Debug("inspected archive", "path", path, "entries", len(insp.Entries), "nodes", insp.Nodes)
	return insp, nil
}

func entryInfo(e archive.Entry) EntryInfo {
	return EntryInfo{Name: e.Name, Size: len(e.Data), Digest: e.Digest()}
}

// recordingReader remembers the last entry read so Inspect can describe
// raw entries while the archive reader validates them.
type recordingReader struct {
	archive.EntryReader
	last archive.Entry
}

func (r *recordingReader) Next() (archive.Entry, error) {
	e, err := r.EntryReader.Next()
	r.last = e
	return e, err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
