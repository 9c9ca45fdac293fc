package chunk

import (
	"fmt"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

// Kind is one of the six node collections of a chunk.
type Kind int

const (
	KindFile Kind = iota + 1
	KindDependency
	KindComponent
	KindAnnotation
	KindContainer
	KindContainerLayer
)

// Kinds lists every kind in collection order.
var Kinds = []Kind{
	KindFile,
	KindDependency,
	KindComponent,
	KindAnnotation,
	KindContainer,
	KindContainerLayer,
}

// String returns the collection name used in binary chunks.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDependency:
		return "dependency"
	case KindComponent:
		return "component"
	case KindAnnotation:
		return "annotation"
	case KindContainer:
		return "container"
	case KindContainerLayer:
		return "container_layer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindMap assigns type IRIs to kinds.
type KindMap map[string]Kind

// DefaultKinds maps the BOM vocabulary types to their kinds.
func DefaultKinds() KindMap {
	return KindMap{
		ld.TypeFile:           KindFile,
		ld.TypeDependency:     KindDependency,
		ld.TypeComponent:      KindComponent,
		ld.TypeAnnotation:     KindAnnotation,
		ld.TypeContainer:      KindContainer,
		ld.TypeContainerLayer: KindContainerLayer,
	}
}

// KindOf returns the kind of the first of n's types that has one.
// A node without types fails with MISSING_TYPE, a node whose types all lack
// a kind fails with UNSUPPORTED_KIND.
func (m KindMap) KindOf(n node.Node) (Kind, error) {
	types := n.Types()
	if len(types) == 0 {
		return 0, errors.New(errors.ErrCodeMissingType, "node %s has no type", n.ID())
	}
	for _, typ := range types {
		if k, ok := m[typ]; ok {
			return k, nil
		}
	}
	return 0, errors.New(errors.ErrCodeUnsupportedKind, "node %s: no supported kind among types %v", n.ID(), types)
}
