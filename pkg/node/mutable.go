package node

import (
	"maps"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// Mutable is the working representation while a graph is assembled from an
// external source. Types and data stay open until the node is frozen or
// streamed. A Mutable is not safe for concurrent use.
type Mutable struct {
	attrs
}

// NewMutable returns an empty mutable node with the given identifier.
func NewMutable(id string) (*Mutable, error) {
	if err := errors.ValidateIdentifier(id); err != nil {
		return nil, err
	}
	return &Mutable{attrs: newAttrs(id)}, nil
}

// Class returns ClassMutable.
func (m *Mutable) Class() Class { return ClassMutable }

// AddType adds a type IRI; adding a present type is a no-op.
func (m *Mutable) AddType(typ string) error { return m.addType(typ) }

// Put sets term to v, replacing any previous value.
func (m *Mutable) Put(term string, v Value) error { return m.put(term, v) }

// Delete removes term. Deleting an absent term is a no-op.
func (m *Mutable) Delete(term string) error {
	delete(m.data, term)
	return nil
}

// Freeze returns a frozen copy. The mutable node stays usable and later
// changes do not affect the copy.
func (m *Mutable) Freeze() (*Frozen, error) {
	if len(m.types) == 0 {
		return nil, errors.New(errors.ErrCodeMissingType, "node %s has no type", m.id)
	}
	a := newAttrs(m.id)
	a.types = append(a.types, m.types...)
	a.data = maps.Clone(m.data)
	return &Frozen{attrs: a}, nil
}

// Ensure Mutable implements Editable.
var _ Editable = (*Mutable)(nil)
