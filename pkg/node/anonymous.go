package node

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
)

// Anonymous is a node with a minted blank identifier and exactly one type.
// Its data remains mutable; its type set does not.
type Anonymous struct {
	attrs
}

// Class returns ClassAnonymous.
func (a *Anonymous) Class() Class { return ClassAnonymous }

// AddType always fails with IMMUTABLE: an anonymous node keeps the type it
// was minted with.
func (a *Anonymous) AddType(typ string) error {
	return errors.New(errors.ErrCodeImmutable, "anonymous node %s: cannot add type %s", a.id, typ)
}

// Put sets term to v.
func (a *Anonymous) Put(term string, v Value) error { return a.put(term, v) }

// Delete removes term.
func (a *Anonymous) Delete(term string) error {
	delete(a.data, term)
	return nil
}

// Minter hands out blank identifiers that are unique for the lifetime of
// the minter. Identifiers have the form "_:<type>-<namespace>-<n>".
// A Minter is safe for concurrent use.
type Minter struct {
	namespace string
	next      atomic.Uint64
}

// NewMinter returns a minter scoped to namespace. An empty namespace is
// replaced by a random one, so two processes never collide.
func NewMinter(namespace string) *Minter {
	if namespace == "" {
		namespace = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	return &Minter{namespace: namespace}
}

// Namespace returns the namespace embedded in minted identifiers.
func (m *Minter) Namespace() string { return m.namespace }

// Anonymous creates an anonymous node of type typ, which must be a type
// term registered in c.
func (m *Minter) Anonymous(c *ld.Context, typ string) (*Anonymous, error) {
	if typ == "" {
		return nil, errors.New(errors.ErrCodeMissingType, "anonymous node needs a type")
	}
	local, err := c.Compact(typ, ld.TypeTerm)
	if err != nil {
		return nil, err
	}
	n := m.next.Add(1)
	id := errors.BlankPrefix + strings.ToLower(local) + "-" + m.namespace + "-" + strconv.FormatUint(n, 10)

	a := &Anonymous{attrs: newAttrs(id)}
	a.types = []string{typ}
	return a, nil
}

var defaultMinter = NewMinter("")

// NewAnonymous creates an anonymous node using the process-wide minter.
func NewAnonymous(c *ld.Context, typ string) (*Anonymous, error) {
	return defaultMinter.Anonymous(c, typ)
}

// Ensure Anonymous implements Editable.
var _ Editable = (*Anonymous)(nil)
