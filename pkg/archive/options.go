package archive

import (
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbom/pkg/chunk"
)

// DefaultMaxPerChunk is the chunk bound used when none is given.
const DefaultMaxPerChunk = 1000

type config struct {
	maxPerChunk int
	format      chunk.Format
	compression chunk.Compression
	properties  map[string]string
	runID       string
	now         func() time.Time
	logger      *log.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		maxPerChunk: DefaultMaxPerChunk,
		format:      chunk.FormatJSONLD,
		now:         time.Now,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Writer or Reader. Readers only use WithLogger.
type Option func(*config)

// WithMaxPerChunk bounds the number of nodes per chunk entry.
func WithMaxPerChunk(n int) Option {
	return func(c *config) { c.maxPerChunk = n }
}

// WithFormat selects the chunk document form.
func WithFormat(f chunk.Format) Option {
	return func(c *config) { c.format = f }
}

// WithCompression compresses binary chunk entries.
func WithCompression(comp chunk.Compression) Option {
	return func(c *config) { c.compression = comp }
}

// WithProperties adds free-form provenance to the metadata entry.
func WithProperties(p map[string]string) Option {
	return func(c *config) { c.properties = maps.Clone(p) }
}

// WithRunID fixes the run identifier instead of generating a UUID.
func WithRunID(id string) Option {
	return func(c *config) { c.runID = id }
}

// WithClock replaces time.Now for the metadata creation time.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger. Nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
