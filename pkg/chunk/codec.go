package chunk

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

// Codec converts chunks to and from documents using a term context.
//
// Codec is stateless apart from its configuration and may be shared by a
// writer and readers as long as the context is not being modified.
type Codec struct {
	ctx    *ld.Context
	strict bool
	kinds  KindMap
	logger *log.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithStrict controls how Decode treats terms missing from the context.
// Strict decoding (the default) fails with UNKNOWN_TERM; lenient decoding
// drops the unknown term, and drops a node left with no known type.
func WithStrict(strict bool) Option {
	return func(c *Codec) { c.strict = strict }
}

// WithKinds replaces the type-to-kind mapping.
func WithKinds(m KindMap) Option {
	return func(c *Codec) {
		if m != nil {
			c.kinds = m
		}
	}
}

// WithLogger sets the logger used for debug output about dropped terms.
func WithLogger(l *log.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCodec returns a codec bound to ctx. A nil ctx uses [ld.Default].
func NewCodec(ctx *ld.Context, opts ...Option) *Codec {
	if ctx == nil {
		ctx = ld.Default()
	}
	c := &Codec{
		ctx:    ctx,
		strict: true,
		kinds:  DefaultKinds(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Context returns the term context.
func (c *Codec) Context() *ld.Context { return c.ctx }

// Strict reports whether unknown terms fail decoding.
func (c *Codec) Strict() bool { return c.strict }

// Kinds returns the type-to-kind mapping.
func (c *Codec) Kinds() KindMap { return c.kinds }

// expandTypes adds the type names the context knows to b and returns how
// many there were. Strict codecs fail on the first unknown name.
func (c *Codec) expandTypes(b *node.Builder, id string, names []string) (int, error) {
	known := 0
	for _, name := range names {
		iri, err := c.ctx.Expand(name, ld.TypeTerm)
		if err != nil {
			if c.strict {
				return 0, fmt.Errorf("node %s: %w", id, err)
			}
			c.logger.Debug("dropping unknown type", "id", id, "type", name)
			continue
		}
		b.Type(iri)
		known++
	}
	return known, nil
}

// expandTerm expands a data term name. It reports false when a lenient
// codec drops the term.
func (c *Codec) expandTerm(id, name string) (string, bool, error) {
	iri, err := c.ctx.Expand(name, ld.DataTerm)
	if err != nil {
		if c.strict {
			return "", false, fmt.Errorf("node %s: %w", id, err)
		}
		c.logger.Debug("dropping unknown term", "id", id, "term", name)
		return "", false, nil
	}
	return iri, true, nil
}

// checkNode rejects nodes whose identifier or values cannot be written
// back unchanged. Nodes built by package node already pass; other Node
// implementations may not.
func checkNode(n node.Node) error {
	if err := errors.ValidateIdentifier(n.ID()); err != nil {
		return err
	}
	for _, term := range n.Terms() {
		v, _ := n.Get(term)
		if err := v.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidValue, err, "node %s: term %s", n.ID(), term)
		}
	}
	return nil
}
