package chunk

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/fxamacker/cbor/v2"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

// binaryVersion is written into every binary chunk. Readers reject other
// versions.
const binaryVersion = 1

// encMode uses Core Deterministic Encoding so the same chunk always
// produces the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("chunk: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("chunk: CBOR decoder initialization failed: " + err.Error())
	}
}

// binaryChunk groups nodes by collection name and then by id. Seq records
// the encounter order so decoding can restore it.
type binaryChunk struct {
	Version     int                              `cbor:"v"`
	Collections map[string]map[string]binaryNode `cbor:"c"`
}

type binaryNode struct {
	Seq   int                    `cbor:"seq"`
	Types []string               `cbor:"t"`
	Data  map[string]binaryValue `cbor:"d,omitempty"`
}

type binaryValue struct {
	Kind node.ValueKind `cbor:"k"`
	S    string         `cbor:"s,omitempty"`
	N    float64        `cbor:"n,omitempty"`
	B    bool           `cbor:"b,omitempty"`
	L    []binaryValue  `cbor:"l,omitempty"`
}

// EncodeBinary serializes c in the CBOR chunk form. It applies the same
// checks as Encode. Within a collection a node id is stored once; the first
// occurrence wins.
func (c *Codec) EncodeBinary(ch *Chunk) ([]byte, error) {
	if err := ch.Classify(c.kinds); err != nil {
		return nil, err
	}

	bc := binaryChunk{
		Version:     binaryVersion,
		Collections: make(map[string]map[string]binaryNode),
	}
	for i, n := range ch.nodes {
		bn, err := c.binaryNode(n, i)
		if err != nil {
			return nil, err
		}
		name := ch.kinds[i].String()
		coll, ok := bc.Collections[name]
		if !ok {
			coll = make(map[string]binaryNode)
			bc.Collections[name] = coll
		}
		if _, dup := coll[n.ID()]; dup {
			c.logger.Debug("skipping duplicate node", "id", n.ID(), "collection", name)
			continue
		}
		coll[n.ID()] = bn
	}

	data, err := encMode.Marshal(bc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal binary chunk %d", ch.Index)
	}
	return data, nil
}

func (c *Codec) binaryNode(n node.Node, seq int) (binaryNode, error) {
	if err := checkNode(n); err != nil {
		return binaryNode{}, err
	}
	bn := binaryNode{Seq: seq}
	for _, typ := range n.Types() {
		name, err := c.ctx.Compact(typ, ld.TypeTerm)
		if err != nil {
			return binaryNode{}, fmt.Errorf("node %s: %w", n.ID(), err)
		}
		bn.Types = append(bn.Types, name)
	}
	if n.Len() > 0 {
		bn.Data = make(map[string]binaryValue, n.Len())
	}
	for _, term := range n.Terms() {
		name, err := c.ctx.Compact(term, ld.DataTerm)
		if err != nil {
			return binaryNode{}, fmt.Errorf("node %s: %w", n.ID(), err)
		}
		v, _ := n.Get(term)
		bn.Data[name] = toBinary(v)
	}
	return bn, nil
}

func toBinary(v node.Value) binaryValue {
	bv := binaryValue{Kind: v.Kind()}
	switch v.Kind() {
	case node.KindString:
		bv.S, _ = v.AsString()
	case node.KindRef:
		bv.S, _ = v.AsRef()
	case node.KindNumber:
		bv.N, _ = v.AsNumber()
	case node.KindBool:
		bv.B, _ = v.AsBool()
	case node.KindList:
		for _, item := range v.Items() {
			bv.L = append(bv.L, toBinary(item))
		}
	}
	return bv
}

func fromBinary(bv binaryValue, top bool) (node.Value, error) {
	switch bv.Kind {
	case node.KindString:
		return node.String(bv.S), nil
	case node.KindRef:
		return node.Ref(bv.S), nil
	case node.KindNumber:
		return node.Number(bv.N), nil
	case node.KindBool:
		return node.Bool(bv.B), nil
	case node.KindList:
		if !top {
			return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "nested list")
		}
		items := make([]node.Value, len(bv.L))
		for i, item := range bv.L {
			v, err := fromBinary(item, false)
			if err != nil {
				return node.Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			items[i] = v
		}
		return node.List(items...), nil
	default:
		return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "unknown value kind %d", bv.Kind)
	}
}

type seqNode struct {
	seq  int
	node node.Node
	kind Kind
}

// DecodeBinary parses the CBOR chunk form. A record filed under a
// collection that does not match its kind is corrupt.
func (c *Codec) DecodeBinary(data []byte) (*Chunk, error) {
	var bc binaryChunk
	if err := decMode.Unmarshal(data, &bc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse binary chunk")
	}
	if bc.Version != binaryVersion {
		return nil, errors.New(errors.ErrCodeUnsupported, "binary chunk version %d", bc.Version)
	}

	byName := make(map[string]Kind, len(Kinds))
	for _, k := range Kinds {
		byName[k.String()] = k
	}

	var decoded []seqNode
	seen := make(map[int]string)
	for name, coll := range bc.Collections {
		want, ok := byName[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeCorruptArchive, "unknown collection %q", name)
		}
		for id, bn := range coll {
			if prev, dup := seen[bn.Seq]; dup {
				return nil, errors.New(errors.ErrCodeCorruptArchive, "nodes %s and %s share position %d", prev, id, bn.Seq)
			}
			seen[bn.Seq] = id

			n, err := c.decodeBinaryNode(id, bn)
			if err != nil {
				return nil, err
			}
			if n == nil {
				continue
			}
			k, err := c.kinds.KindOf(n)
			if err != nil {
				if c.strict {
					return nil, err
				}
				c.logger.Debug("dropping node without supported kind", "id", id)
				continue
			}
			if k != want {
				return nil, errors.New(errors.ErrCodeCorruptArchive, "node %s of kind %s filed under %s", id, k, name)
			}
			decoded = append(decoded, seqNode{seq: bn.Seq, node: n, kind: k})
		}
	}

	slices.SortFunc(decoded, func(a, b seqNode) int { return a.seq - b.seq })
	ch := &Chunk{
		nodes: make([]node.Node, len(decoded)),
		kinds: make([]Kind, len(decoded)),
	}
	for i, d := range decoded {
		ch.nodes[i] = d.node
		ch.kinds[i] = d.kind
	}
	return ch, nil
}

func (c *Codec) decodeBinaryNode(ref string, bn binaryNode) (*node.Frozen, error) {
	id, err := c.ctx.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	if len(bn.Types) == 0 {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "node %s has no types", id)
	}

	b := node.NewBuilder().ID(id)
	known, err := c.expandTypes(b, id, bn.Types)
	if err != nil {
		return nil, err
	}
	if known == 0 {
		c.logger.Debug("dropping node without known types", "id", id)
		return nil, nil
	}
	for _, name := range sortedKeys(bn.Data) {
		iri, ok, err := c.expandTerm(id, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := fromBinary(bn.Data[name], true)
		if err != nil {
			return nil, fmt.Errorf("node %s, term %s: %w", id, name, err)
		}
		b.Put(iri, v)
	}
	n, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "rebuild node %s", id)
	}
	return n, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
