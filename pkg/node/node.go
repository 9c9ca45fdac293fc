package node

import (
	"maps"
	"slices"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// Class is the mutability class of a node.
type Class int

const (
	// ClassAnonymous nodes have a minted blank identifier and exactly one
	// type; their data stays mutable.
	ClassAnonymous Class = iota + 1
	// ClassFrozen nodes reject every mutation.
	ClassFrozen
	// ClassMutable nodes accept type and data mutation for their lifetime.
	ClassMutable
)

// String returns the lowercase class name.
func (c Class) String() string {
	switch c {
	case ClassAnonymous:
		return "anonymous"
	case ClassFrozen:
		return "frozen"
	case ClassMutable:
		return "mutable"
	default:
		return "unknown"
	}
}

// Node is the read-only view shared by every node variant. Type and data
// keys are canonical IRIs; compaction to short terms happens in the codec.
type Node interface {
	// ID returns the node identifier. It never changes.
	ID() string
	// Types returns the node's type IRIs in insertion order.
	Types() []string
	// Get returns the value stored under term.
	Get(term string) (Value, bool)
	// Terms returns the data keys, sorted.
	Terms() []string
	// Len returns the number of data entries.
	Len() int
	// Class reports the mutability class.
	Class() Class
}

// Editable is the mutation capability. All three variants implement it;
// which operations succeed depends on the class:
//
//	           AddType   Put/Delete
//	anonymous  IMMUTABLE ok
//	frozen     IMMUTABLE IMMUTABLE
//	mutable    ok        ok
type Editable interface {
	Node
	AddType(typ string) error
	Put(term string, v Value) error
	Delete(term string) error
}

// attrs is the storage shared by all variants.
type attrs struct {
	id    string
	types []string
	data  map[string]Value
}

func newAttrs(id string) attrs {
	return attrs{id: id, data: make(map[string]Value)}
}

func (a *attrs) ID() string      { return a.id }
func (a *attrs) Types() []string { return slices.Clone(a.types) }
func (a *attrs) Len() int        { return len(a.data) }

func (a *attrs) Get(term string) (Value, bool) {
	v, ok := a.data[term]
	return v, ok
}

func (a *attrs) Terms() []string {
	return slices.Sorted(maps.Keys(a.data))
}

func (a *attrs) hasType(typ string) bool {
	return slices.Contains(a.types, typ)
}

func (a *attrs) addType(typ string) error {
	if err := validateIRI("type", typ); err != nil {
		return err
	}
	if !a.hasType(typ) {
		a.types = append(a.types, typ)
	}
	return nil
}

func (a *attrs) put(term string, v Value) error {
	if err := validateIRI("term", term); err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidValue, err, "term %s", term)
	}
	a.data[term] = v
	return nil
}

func validateIRI(what, iri string) error {
	if iri == "" {
		if what == "type" {
			return errors.New(errors.ErrCodeMissingType, "empty type")
		}
		return errors.New(errors.ErrCodeInvalidInput, "empty %s", what)
	}
	if !errors.IsAbsoluteIRI(iri) {
		return errors.New(errors.ErrCodeInvalidInput, "%s %q is not an absolute IRI", what, iri)
	}
	return nil
}

// Equal reports whether a and b have the same identifier, the same set of
// types and the same data. The mutability class is not compared.
func Equal(a, b Node) bool {
	if a.ID() != b.ID() {
		return false
	}
	at, bt := a.Types(), b.Types()
	slices.Sort(at)
	slices.Sort(bt)
	if !slices.Equal(at, bt) {
		return false
	}
	terms := a.Terms()
	if !slices.Equal(terms, b.Terms()) {
		return false
	}
	for _, term := range terms {
		av, _ := a.Get(term)
		bv, _ := b.Get(term)
		if !av.Equal(bv) {
			return false
		}
	}
	return true
}
