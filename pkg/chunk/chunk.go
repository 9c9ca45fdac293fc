package chunk

import (
	"iter"
	"slices"

	"github.com/matzehuels/stackbom/pkg/node"
)

// Chunk is an ordered group of nodes, the unit of archive serialization.
//
// Nodes keep their encounter order. The kind views (Files, Components, ...)
// partition the same nodes into the six collections; they require the
// chunk to be classified, which Encode and Decode do. An unclassified chunk
// is classified against [DefaultKinds] on first use, skipping nodes without
// a supported kind.
//
// A Chunk is not safe for concurrent use.
type Chunk struct {
	// Index is the 1-based position of the chunk in the stream it was split
	// from, or in the archive it was read from. Zero when unknown.
	Index int

	nodes []node.Node
	kinds []Kind
}

// New returns an unclassified chunk holding nodes.
func New(nodes ...node.Node) *Chunk {
	return &Chunk{nodes: slices.Clone(nodes)}
}

// Len returns the number of nodes.
func (c *Chunk) Len() int { return len(c.nodes) }

// Nodes returns the nodes in encounter order.
func (c *Chunk) Nodes() []node.Node { return slices.Clone(c.nodes) }

// All iterates the nodes in encounter order.
func (c *Chunk) All() iter.Seq[node.Node] {
	return slices.Values(c.nodes)
}

// Classify assigns every node its kind. It fails without modifying the
// chunk when any node has no supported kind.
func (c *Chunk) Classify(m KindMap) error {
	kinds := make([]Kind, len(c.nodes))
	for i, n := range c.nodes {
		k, err := m.KindOf(n)
		if err != nil {
			return err
		}
		kinds[i] = k
	}
	c.kinds = kinds
	return nil
}

// Collection returns the nodes of kind k in encounter order.
func (c *Chunk) Collection(k Kind) []node.Node {
	c.ensureKinds()
	var out []node.Node
	for i, n := range c.nodes {
		if c.kinds[i] == k {
			out = append(out, n)
		}
	}
	return out
}

func (c *Chunk) Files() []node.Node           { return c.Collection(KindFile) }
func (c *Chunk) Dependencies() []node.Node    { return c.Collection(KindDependency) }
func (c *Chunk) Components() []node.Node      { return c.Collection(KindComponent) }
func (c *Chunk) Annotations() []node.Node     { return c.Collection(KindAnnotation) }
func (c *Chunk) Containers() []node.Node      { return c.Collection(KindContainer) }
func (c *Chunk) ContainerLayers() []node.Node { return c.Collection(KindContainerLayer) }

// Counts returns the number of nodes per kind. Kinds with no nodes are
// omitted.
func (c *Chunk) Counts() map[Kind]int {
	c.ensureKinds()
	counts := make(map[Kind]int)
	for _, k := range c.kinds {
		if k != 0 {
			counts[k]++
		}
	}
	return counts
}

func (c *Chunk) ensureKinds() {
	if len(c.kinds) == len(c.nodes) {
		return
	}
	m := DefaultKinds()
	c.kinds = make([]Kind, len(c.nodes))
	for i, n := range c.nodes {
		c.kinds[i], _ = m.KindOf(n)
	}
}

// Split groups seq into chunks of at most limit nodes, preserving order.
// Boundaries depend only on the count, so splitting the same stream with
// the same bound always yields the same chunks. An empty stream yields no
// chunks. A limit below 1 is treated as 1.
//
// The returned sequence is lazy: only the chunk being filled is resident.
func Split(seq iter.Seq[node.Node], limit int) iter.Seq[*Chunk] {
	if limit < 1 {
		limit = 1
	}
	return func(yield func(*Chunk) bool) {
		index := 0
		buf := make([]node.Node, 0, min(limit, 1024))
		for n := range seq {
			buf = append(buf, n)
			if len(buf) < limit {
				continue
			}
			index++
			if !yield(&Chunk{Index: index, nodes: buf}) {
				return
			}
			buf = make([]node.Node, 0, min(limit, 1024))
		}
		if len(buf) > 0 {
			index++
			yield(&Chunk{Index: index, nodes: buf})
		}
	}
}

// SplitSlice is Split over a slice.
func SplitSlice(nodes []node.Node, limit int) iter.Seq[*Chunk] {
	return Split(slices.Values(nodes), limit)
}
