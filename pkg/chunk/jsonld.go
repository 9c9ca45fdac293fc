package chunk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

// JSON-LD keywords.
const (
	keyContext = "@context"
	keyBase    = "@base"
	keyGraph   = "@graph"
	keyID      = "@id"
	keyType    = "@type"
	keyList    = "@list"
	keyValue   = "@value"
)

// document is the JSON-LD shape of one chunk. The context lists the terms
// the chunk uses so the document stands on its own; readers resolve terms
// against their own context and ignore it.
type document struct {
	Context map[string]string `json:"@context,omitempty"`
	Graph   []map[string]any  `json:"@graph"`
}

type rawDocument struct {
	Context json.RawMessage    `json:"@context"`
	Graph   *[]json.RawMessage `json:"@graph"`
}

// Encode serializes c as a JSON-LD document.
//
// Every node must have a supported kind (UNSUPPORTED_KIND otherwise) and
// every type and data term must compact against the context (UNKNOWN_TERM
// otherwise). Any failure aborts the whole chunk; no bytes are returned.
func (c *Codec) Encode(ch *Chunk) ([]byte, error) {
	if err := ch.Classify(c.kinds); err != nil {
		return nil, err
	}

	doc := document{
		Context: make(map[string]string),
		Graph:   make([]map[string]any, 0, ch.Len()),
	}
	if base := c.ctx.Base(); base != "" {
		doc.Context[keyBase] = base
	}
	for _, n := range ch.nodes {
		obj, err := c.compactNode(n, doc.Context)
		if err != nil {
			return nil, err
		}
		doc.Graph = append(doc.Graph, obj)
	}
	if len(doc.Context) == 0 {
		doc.Context = nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal chunk %d", ch.Index)
	}
	return data, nil
}

// EncodeNode serializes a single node as a compacted JSON-LD object.
func (c *Codec) EncodeNode(n node.Node) ([]byte, error) {
	obj, err := c.compactNode(n, nil)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal node %s", n.ID())
	}
	return data, nil
}

func (c *Codec) compactNode(n node.Node, used map[string]string) (map[string]any, error) {
	if err := checkNode(n); err != nil {
		return nil, err
	}
	obj := make(map[string]any, n.Len()+2)
	obj[keyID] = n.ID()

	types := n.Types()
	if len(types) == 0 {
		return nil, errors.New(errors.ErrCodeMissingType, "node %s has no type", n.ID())
	}
	names := make([]string, len(types))
	for i, typ := range types {
		name, err := c.ctx.Compact(typ, ld.TypeTerm)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID(), err)
		}
		names[i] = name
		if used != nil {
			used[name] = typ
		}
	}
	if len(names) == 1 {
		obj[keyType] = names[0]
	} else {
		obj[keyType] = names
	}

	for _, term := range n.Terms() {
		name, err := c.ctx.Compact(term, ld.DataTerm)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID(), err)
		}
		if used != nil {
			used[name] = term
		}
		v, _ := n.Get(term)
		obj[name] = compactValue(v)
	}
	return obj, nil
}

func compactValue(v node.Value) any {
	switch v.Kind() {
	case node.KindString:
		s, _ := v.AsString()
		return s
	case node.KindNumber:
		f, _ := v.AsNumber()
		return f
	case node.KindBool:
		b, _ := v.AsBool()
		return b
	case node.KindRef:
		id, _ := v.AsRef()
		return map[string]string{keyID: id}
	case node.KindList:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = compactValue(item)
		}
		return map[string]any{keyList: out}
	default:
		return nil
	}
}

// Decode parses a JSON-LD chunk document back into a classified chunk of
// frozen nodes, in document order.
//
// Malformed documents fail with CORRUPT_ARCHIVE. Terms missing from the
// context fail with UNKNOWN_TERM unless the codec is lenient, in which case
// they are dropped.
func (c *Codec) Decode(data []byte) (*Chunk, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse chunk document")
	}
	if doc.Graph == nil {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "chunk document has no %s", keyGraph)
	}

	ch := &Chunk{nodes: make([]node.Node, 0, len(*doc.Graph))}
	for i, raw := range *doc.Graph {
		n, err := c.DecodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("graph member %d: %w", i, err)
		}
		if n != nil {
			ch.nodes = append(ch.nodes, n)
		}
	}
	if err := c.classifyDecoded(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// classifyDecoded assigns kinds after decoding. Lenient codecs drop nodes
// without a supported kind instead of failing.
func (c *Codec) classifyDecoded(ch *Chunk) error {
	kept := ch.nodes[:0]
	kinds := make([]Kind, 0, len(ch.nodes))
	for _, n := range ch.nodes {
		k, err := c.kinds.KindOf(n)
		if err != nil {
			if c.strict {
				return err
			}
			c.logger.Debug("dropping node without supported kind", "id", n.ID(), "types", n.Types())
			continue
		}
		kept = append(kept, n)
		kinds = append(kinds, k)
	}
	ch.nodes = kept
	ch.kinds = kinds
	return nil
}

// DecodeNode parses one compacted node object. It returns a nil node and
// no error when a lenient codec drops the node because none of its types
// are known.
func (c *Codec) DecodeNode(raw []byte) (*node.Frozen, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse node object")
	}
	if obj == nil {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "node object is null")
	}

	idRaw, ok := obj[keyID]
	if !ok {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "node object has no %s", keyID)
	}
	var ref string
	if err := json.Unmarshal(idRaw, &ref); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "node %s is not a string", keyID)
	}
	id, err := c.ctx.ResolveID(ref)
	if err != nil {
		return nil, err
	}

	b := node.NewBuilder().ID(id)
	typeNames, err := parseTypes(obj[keyType])
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", id, err)
	}
	known, err := c.expandTypes(b, id, typeNames)
	if err != nil {
		return nil, err
	}
	if known == 0 {
		c.logger.Debug("dropping node without known types", "id", id)
		return nil, nil
	}

	for _, key := range slices.Sorted(maps.Keys(obj)) {
		if key == keyID || key == keyType {
			continue
		}
		if strings.HasPrefix(key, "@") {
			if c.strict {
				return nil, errors.New(errors.ErrCodeUnknownTerm, "node %s: unsupported keyword %s", id, key)
			}
			c.logger.Debug("dropping keyword", "id", id, "keyword", key)
			continue
		}
		iri, ok, err := c.expandTerm(id, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := c.expandValue(obj[key])
		if err != nil {
			return nil, fmt.Errorf("node %s, term %s: %w", id, key, err)
		}
		b.Put(iri, v)
	}
	return b.Build()
}

func parseTypes(raw json.RawMessage) ([]string, error) {
	if raw == nil {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "no %s", keyType)
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "%s must be a string or list of strings", keyType)
	}
	if len(many) == 0 {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "empty %s", keyType)
	}
	return many, nil
}

func (c *Codec) expandValue(raw json.RawMessage) (node.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return node.Value{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse value")
	}
	return c.valueOf(v, true)
}

// valueOf converts a decoded JSON value. Lists are only accepted at the
// top level; a list inside a list is corrupt.
func (c *Codec) valueOf(v any, top bool) (node.Value, error) {
	switch x := v.(type) {
	case string:
		return node.String(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return node.Value{}, errors.Wrap(errors.ErrCodeCorruptArchive, err, "number %s", x)
		}
		return node.Number(f), nil
	case bool:
		return node.Bool(x), nil
	case map[string]any:
		if ref, ok := x[keyID]; ok {
			s, ok := ref.(string)
			if !ok {
				return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "%s reference is not a string", keyID)
			}
			id, err := c.ctx.ResolveID(s)
			if err != nil {
				return node.Value{}, err
			}
			return node.Ref(id), nil
		}
		if lit, ok := x[keyValue]; ok {
			switch lit.(type) {
			case string, json.Number, bool:
				return c.valueOf(lit, false)
			}
			return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "%s must be a scalar", keyValue)
		}
		if items, ok := x[keyList]; ok {
			arr, ok := items.([]any)
			if !ok {
				return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "%s must be an array", keyList)
			}
			return c.listOf(arr, top)
		}
		return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "unsupported value object")
	case []any:
		return c.listOf(x, top)
	case nil:
		return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "null value")
	default:
		return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "unsupported value %T", v)
	}
}

func (c *Codec) listOf(arr []any, top bool) (node.Value, error) {
	if !top {
		return node.Value{}, errors.New(errors.ErrCodeCorruptArchive, "nested list")
	}
	items := make([]node.Value, len(arr))
	for i, item := range arr {
		v, err := c.valueOf(item, false)
		if err != nil {
			return node.Value{}, fmt.Errorf("list item %d: %w", i, err)
		}
		items[i] = v
	}
	return node.List(items...), nil
}
