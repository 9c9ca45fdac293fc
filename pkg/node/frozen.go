package node

import (
	"maps"
	"slices"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// Frozen is an immutable node. Build one with [NewBuilder] or
// [Mutable.Freeze]. A Frozen node is safe for concurrent use.
type Frozen struct {
	attrs
}

// Class returns ClassFrozen.
func (f *Frozen) Class() Class { return ClassFrozen }

// AddType always fails with IMMUTABLE.
func (f *Frozen) AddType(typ string) error {
	return errors.New(errors.ErrCodeImmutable, "node %s is frozen: cannot add type %s", f.id, typ)
}

// Put always fails with IMMUTABLE.
func (f *Frozen) Put(term string, _ Value) error {
	return errors.New(errors.ErrCodeImmutable, "node %s is frozen: cannot set %s", f.id, term)
}

// Delete always fails with IMMUTABLE.
func (f *Frozen) Delete(term string) error {
	return errors.New(errors.ErrCodeImmutable, "node %s is frozen: cannot delete %s", f.id, term)
}

// Builder assembles a [Frozen] node. Methods chain; the first problem is
// reported by Build.
//
//	n, err := node.NewBuilder().
//	    ID("http://example.com/files/1").
//	    Type(ld.TypeFile).
//	    Put(ld.PropPath, node.String("go.mod")).
//	    Build()
type Builder struct {
	id    string
	types []string
	data  map[string]Value
	order []string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{data: make(map[string]Value)}
}

// ID sets the identifier. A later call replaces an earlier one.
func (b *Builder) ID(id string) *Builder {
	b.id = id
	return b
}

// Type adds a type IRI. Duplicates are ignored.
func (b *Builder) Type(typ string) *Builder {
	if !slices.Contains(b.types, typ) {
		b.types = append(b.types, typ)
	}
	return b
}

// Put sets term to v; the last value per term wins.
func (b *Builder) Put(term string, v Value) *Builder {
	if _, ok := b.data[term]; !ok {
		b.order = append(b.order, term)
	}
	b.data[term] = v
	return b
}

// PutAll merges m into the builder; the last value per term wins. Keys are
// applied in sorted order so the outcome does not depend on map iteration.
func (b *Builder) PutAll(m map[string]Value) *Builder {
	for _, term := range slices.Sorted(maps.Keys(m)) {
		b.Put(term, m[term])
	}
	return b
}

// Build validates the accumulated state and returns the frozen node.
// It fails with MISSING_IDENTIFIER when no id was given and MISSING_TYPE
// when no type was given.
func (b *Builder) Build() (*Frozen, error) {
	if b.id == "" {
		return nil, errors.New(errors.ErrCodeMissingIdentifier, "node has no identifier")
	}
	if err := errors.ValidateIdentifier(b.id); err != nil {
		return nil, err
	}
	if len(b.types) == 0 {
		return nil, errors.New(errors.ErrCodeMissingType, "node %s has no type", b.id)
	}

	a := newAttrs(b.id)
	for _, typ := range b.types {
		if err := a.addType(typ); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "node %s", b.id)
		}
	}
	for _, term := range b.order {
		if err := a.put(term, b.data[term]); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "node %s", b.id)
		}
	}
	return &Frozen{attrs: a}, nil
}

// Ensure Frozen implements Editable.
var _ Editable = (*Frozen)(nil)
