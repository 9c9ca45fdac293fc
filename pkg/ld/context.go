package ld

import (
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// TermKind says whether a term names a node category or an attribute key.
type TermKind int

const (
	// TypeTerm names a node category and appears under "@type".
	TypeTerm TermKind = iota + 1
	// DataTerm names an attribute key on a node.
	DataTerm
)

// String returns "type" or "data".
func (k TermKind) String() string {
	switch k {
	case TypeTerm:
		return "type"
	case DataTerm:
		return "data"
	default:
		return "unknown"
	}
}

// ParseTermKind parses the string form used in configuration files.
func ParseTermKind(s string) (TermKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type":
		return TypeTerm, nil
	case "data":
		return DataTerm, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown term kind %q (want type or data)", s)
	}
}

// Term is a short name bound to a canonical IRI.
type Term struct {
	Name string
	IRI  string
	Kind TermKind
}

// Context maps short term names to canonical IRIs and back.
//
// Lookups that miss the context's own terms fall through its embedded
// contexts in the order they were embedded. A Context is safe for concurrent
// use; once registration is finished it is typically shared read-only
// between a writer and any number of readers.
type Context struct {
	mu       sync.RWMutex
	base     *url.URL
	terms    map[string]Term   // name -> term
	names    map[string]string // iri -> name
	embedded []*Context
}

// NewContext creates an empty context. base may be empty; otherwise it must
// be an absolute IRI and is used by [Context.ResolveID] for relative
// identifiers found in input documents.
func NewContext(base string) (*Context, error) {
	c := &Context{
		terms: make(map[string]Term),
		names: make(map[string]string),
	}
	if base == "" {
		return c, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBase, err, "parse base %q", base)
	}
	if !u.IsAbs() {
		return nil, errors.New(errors.ErrCodeInvalidBase, "base %q is not an absolute IRI", base)
	}
	c.base = u
	return c, nil
}

// Base returns the base IRI, or "" when none was configured.
func (c *Context) Base() string {
	if c.base == nil {
		return ""
	}
	return c.base.String()
}

// Register binds name to iri with the given kind.
//
// Registering the same binding twice is a no-op. Rebinding a name to a
// different IRI or kind fails with CONFLICT. A second name for an IRI is an
// alias: it expands to the same IRI, and Compact keeps returning the name
// registered first. An alias must have the IRI's kind. Terms of embedded
// contexts may be shadowed freely.
func (c *Context) Register(name, iri string, kind TermKind) error {
	if name == "" || strings.HasPrefix(name, "@") {
		return errors.New(errors.ErrCodeInvalidInput, "invalid term name %q", name)
	}
	if kind != TypeTerm && kind != DataTerm {
		return errors.New(errors.ErrCodeInvalidInput, "term %q: invalid kind %d", name, kind)
	}
	if !errors.IsAbsoluteIRI(iri) {
		return errors.New(errors.ErrCodeInvalidInput, "term %q: %q is not an absolute IRI", name, iri)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.terms[name]; ok {
		if t.IRI == iri && t.Kind == kind {
			return nil
		}
		return errors.New(errors.ErrCodeConflict, "term %q already bound to %s (%s)", name, t.IRI, t.Kind)
	}
	if other, ok := c.names[iri]; ok {
		if c.terms[other].Kind != kind {
			return errors.New(errors.ErrCodeConflict, "iri %s already bound to %s term %q", iri, c.terms[other].Kind, other)
		}
	} else {
		c.names[iri] = name
	}
	c.terms[name] = Term{Name: name, IRI: iri, Kind: kind}
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// package-level vocabularies built at init time.
func (c *Context) MustRegister(name, iri string, kind TermKind) {
	if err := c.Register(name, iri, kind); err != nil {
		panic(err)
	}
}

// Embed appends other to the fallback chain. Embedding a context into
// itself is ignored; cycles are tolerated by the lookup walk.
func (c *Context) Embed(other *Context) {
	if other == nil || other == c {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embedded = append(c.embedded, other)
}

// Resolve returns the term registered under name.
func (c *Context) Resolve(name string) (Term, error) {
	if t, ok := c.lookupName(name, nil); ok {
		return t, nil
	}
	return Term{}, errors.New(errors.ErrCodeUnknownTerm, "unknown term %q", name)
}

// Expand returns the IRI for name, which must be registered with kind.
func (c *Context) Expand(name string, kind TermKind) (string, error) {
	t, ok := c.lookupName(name, nil)
	if !ok || t.Kind != kind {
		return "", errors.New(errors.ErrCodeUnknownTerm, "unknown %s term %q", kind, name)
	}
	return t.IRI, nil
}

// Compact returns the short name for iri, which must be registered with kind.
func (c *Context) Compact(iri string, kind TermKind) (string, error) {
	t, ok := c.lookupIRI(iri, nil)
	if !ok || t.Kind != kind {
		return "", errors.New(errors.ErrCodeUnknownTerm, "no %s term for %s", kind, iri)
	}
	// A name shadowed by a closer context would expand to a different IRI.
	if back, ok := c.lookupName(t.Name, nil); !ok || back.IRI != iri {
		return "", errors.New(errors.ErrCodeUnknownTerm, "term %q for %s is shadowed", t.Name, iri)
	}
	return t.Name, nil
}

// IsType reports whether iri is a registered type term.
func (c *Context) IsType(iri string) bool {
	t, ok := c.lookupIRI(iri, nil)
	return ok && t.Kind == TypeTerm
}

// ResolveID turns an identifier literal from input into an absolute or
// blank identifier. Relative references are resolved against the base; a
// relative reference without a base fails with INVALID_BASE.
func (c *Context) ResolveID(ref string) (string, error) {
	if ref == "" {
		return "", errors.New(errors.ErrCodeMissingIdentifier, "empty identifier")
	}
	if errors.IsBlank(ref) || errors.IsAbsoluteIRI(ref) {
		return ref, errors.ValidateIdentifier(ref)
	}
	if c.base == nil {
		return "", errors.New(errors.ErrCodeInvalidBase, "relative identifier %q without a base", ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse identifier %q", ref)
	}
	return c.base.ResolveReference(u).String(), nil
}

// Terms returns every term visible through c, sorted by name. Shadowed
// terms of embedded contexts are omitted.
func (c *Context) Terms() []Term {
	seen := make(map[string]Term)
	c.collect(seen, make(map[*Context]bool))
	out := make([]Term, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Term) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// local returns the term bound in c itself and a snapshot of the embedded
// chain. The lock is released before the caller walks the chain, since a
// read lock must not be taken twice by one goroutine.
func (c *Context) local(name string) (Term, bool, []*Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.terms[name]; ok {
		return t, true, nil
	}
	return Term{}, false, slices.Clone(c.embedded)
}

func (c *Context) localIRI(iri string) (Term, bool, []*Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.names[iri]; ok {
		return c.terms[name], true, nil
	}
	return Term{}, false, slices.Clone(c.embedded)
}

func (c *Context) collect(into map[string]Term, visited map[*Context]bool) {
	if visited[c] {
		return
	}
	visited[c] = true

	c.mu.RLock()
	for name, t := range c.terms {
		if _, ok := into[name]; !ok {
			into[name] = t
		}
	}
	embedded := slices.Clone(c.embedded)
	c.mu.RUnlock()

	for _, e := range embedded {
		e.collect(into, visited)
	}
}

func (c *Context) lookupName(name string, visited map[*Context]bool) (Term, bool) {
	t, ok, embedded := c.local(name)
	if ok || len(embedded) == 0 {
		return t, ok
	}
	if visited == nil {
		visited = make(map[*Context]bool)
	}
	visited[c] = true
	for _, e := range embedded {
		if visited[e] {
			continue
		}
		if t, ok := e.lookupName(name, visited); ok {
			return t, true
		}
	}
	return Term{}, false
}

func (c *Context) lookupIRI(iri string, visited map[*Context]bool) (Term, bool) {
	t, ok, embedded := c.localIRI(iri)
	if ok || len(embedded) == 0 {
		return t, ok
	}
	if visited == nil {
		visited = make(map[*Context]bool)
	}
	visited[c] = true
	for _, e := range embedded {
		if visited[e] {
			continue
		}
		if t, ok := e.lookupIRI(iri, visited); ok {
			return t, true
		}
	}
	return Term{}, false
}
