package chunk

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

func sampleChunk(t *testing.T) *Chunk {
	t.Helper()
	comp := mustNode(t, "http://example.com/c/app", ld.TypeComponent, map[string]node.Value{
		ld.PropName:    node.String("app"),
		ld.PropVersion: node.String("1.2.0"),
		ld.PropTags:    node.List(node.String("go"), node.Int(7), node.Bool(true)),
	})
	file := mustNode(t, "_:file-x-1", ld.TypeFile, map[string]node.Value{
		ld.PropPath:     node.String("go.mod"),
		ld.PropSize:     node.Number(812.5),
		ld.PropContains: node.Ref("http://example.com/c/app"),
	})
	dep := mustNode(t, "http://example.com/d/1", ld.TypeDependency, map[string]node.Value{
		ld.PropFrom:  node.Ref("http://example.com/c/app"),
		ld.PropTo:    node.Ref("http://example.com/c/lib"),
		ld.PropScope: node.String(""),
	})
	multi, err := node.NewBuilder().
		ID("http://example.com/c/root").
		Type(ld.TypeProject).
		Type(ld.TypeComponent).
		Put(ld.PropTags, node.List()).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return New(comp, file, dep, multi)
}

func assertSameNodes(t *testing.T, got, want []node.Node) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d nodes %v, want %d %v", len(got), ids(got), len(want), ids(want))
	}
	for i := range want {
		if !node.Equal(got[i], want[i]) {
			t.Errorf("node %d: got %s %v, want %s %v", i, got[i].ID(), got[i].Types(), want[i].ID(), want[i].Types())
		}
	}
}

func TestJSONLDRoundTrip(t *testing.T) {
	c := NewCodec(nil)
	ch := sampleChunk(t)

	data, err := c.Encode(ch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertSameNodes(t, got.Nodes(), ch.Nodes())
	if got.Counts()[KindComponent] != 2 {
		t.Errorf("decoded Counts() = %v", got.Counts())
	}

	again, err := c.Encode(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("re-encoding changed bytes:\n%s\n%s", data, again)
	}
}

func TestJSONLDShape(t *testing.T) {
	c := NewCodec(nil)
	data, err := c.Encode(sampleChunk(t))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Context map[string]string `json:"@context"`
		Graph   []map[string]any  `json:"@graph"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Context["File"] != ld.TypeFile || doc.Context["from"] != ld.PropFrom {
		t.Errorf("@context missing used terms: %v", doc.Context)
	}
	if _, ok := doc.Context["license"]; ok {
		t.Error("@context lists unused term license")
	}
	if len(doc.Graph) != 4 {
		t.Fatalf("@graph has %d members", len(doc.Graph))
	}
	if typ := doc.Graph[0]["@type"]; typ != "Component" {
		t.Errorf("single @type = %v, want string", typ)
	}
	if typ, ok := doc.Graph[3]["@type"].([]any); !ok || len(typ) != 2 {
		t.Errorf("multiple @type = %v, want array", doc.Graph[3]["@type"])
	}
	ref, ok := doc.Graph[1]["contains"].(map[string]any)
	if !ok || ref["@id"] != "http://example.com/c/app" {
		t.Errorf("reference = %v, want {\"@id\": ...}", doc.Graph[1]["contains"])
	}
	if _, ok := doc.Graph[0]["tags"].(map[string]any)["@list"]; !ok {
		t.Errorf("list = %v, want {\"@list\": ...}", doc.Graph[0]["tags"])
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	c := NewCodec(nil)
	ch := sampleChunk(t)

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := c.Marshal(ch, FormatBinary, comp)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := c.Unmarshal(data, FormatBinary, comp)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			assertSameNodes(t, got.Nodes(), ch.Nodes())

			again, err := c.Marshal(got, FormatBinary, comp)
			if err != nil {
				t.Fatal(err)
			}
			if comp == CompressionNone && !bytes.Equal(data, again) {
				t.Error("binary encoding is not deterministic")
			}
		})
	}
}

func TestBinaryDuplicateIDs(t *testing.T) {
	c := NewCodec(nil)
	first := mustNode(t, "http://example.com/f", ld.TypeFile, map[string]node.Value{ld.PropPath: node.String("a")})
	second := mustNode(t, "http://example.com/f", ld.TypeFile, map[string]node.Value{ld.PropPath: node.String("b")})
	other := mustNode(t, "http://example.com/g", ld.TypeFile, nil)

	data, err := c.EncodeBinary(New(first, other, second))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.DecodeBinary(data)
	if err != nil {
		t.Fatal(err)
	}
	assertSameNodes(t, got.Nodes(), []node.Node{first, other})
}

func TestMarshalJSONLDRejectsCompression(t *testing.T) {
	c := NewCodec(nil)
	if _, err := c.Marshal(sampleChunk(t), FormatJSONLD, CompressionZstd); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Marshal code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestEncodeErrors(t *testing.T) {
	custom := mustNode(t, "http://example.com/f", ld.TypeFile, map[string]node.Value{
		"https://example.com/ns#color": node.String("red"),
	})
	project := mustNode(t, "http://example.com/p", ld.TypeProject, nil)
	widget := mustNode(t, "http://example.com/w", "https://example.com/ns#Widget", nil)

	tests := []struct {
		name     string
		ch       *Chunk
		wantCode errors.Code
	}{
		{"unregistered data term", New(custom), errors.ErrCodeUnknownTerm},
		{"no kind", New(project), errors.ErrCodeUnsupportedKind},
		{"unknown type", New(widget), errors.ErrCodeUnsupportedKind},
	}

	c := NewCodec(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := c.Encode(tt.ch)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Encode code = %v, want %v (err: %v)", errors.GetCode(err), tt.wantCode, err)
			}
			if data != nil {
				t.Errorf("Encode returned %d bytes on failure", len(data))
			}
			if _, err := c.EncodeBinary(tt.ch); !errors.Is(err, tt.wantCode) {
				t.Errorf("EncodeBinary code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}

const unknownTermsDoc = `{"@graph": [
	{"@id": "http://example.com/f", "@type": ["File", "Widget"], "path": "a.go", "color": "red"},
	{"@id": "http://example.com/w", "@type": "Widget", "name": "w"},
	{"@id": "http://example.com/c", "@type": "Component", "@reverse": {}}
]}`

func TestDecodeStrict(t *testing.T) {
	c := NewCodec(nil)
	if _, err := c.Decode([]byte(unknownTermsDoc)); !errors.Is(err, errors.ErrCodeUnknownTerm) {
		t.Errorf("strict Decode code = %v, want UNKNOWN_TERM", errors.GetCode(err))
	}
}

func TestDecodeLenient(t *testing.T) {
	c := NewCodec(nil, WithStrict(false))
	ch, err := c.Decode([]byte(unknownTermsDoc))
	if err != nil {
		t.Fatalf("lenient Decode: %v", err)
	}
	if got := ids(ch.Nodes()); !slices.Equal(got, []string{"http://example.com/f", "http://example.com/c"}) {
		t.Fatalf("lenient Decode kept %v", got)
	}
	f := ch.Nodes()[0]
	if len(f.Types()) != 1 || f.Len() != 1 {
		t.Errorf("unknown terms survived: types %v, %d terms", f.Types(), f.Len())
	}
}

func TestDecodeValueForms(t *testing.T) {
	ctx, err := ld.NewContext("http://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if err := ld.RegisterBOM(ctx); err != nil {
		t.Fatal(err)
	}
	c := NewCodec(ctx)

	doc := `{"@graph": [{
		"@id": "files/1",
		"@type": "File",
		"size": {"@value": 12},
		"tags": ["a", 1],
		"contains": {"@id": "c/app"}
	}]}`
	ch, err := c.Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	n := ch.Nodes()[0]
	if n.ID() != "http://example.com/files/1" {
		t.Errorf("ID() = %q, want resolved against base", n.ID())
	}
	if v, _ := n.Get(ld.PropSize); !v.Equal(node.Int(12)) {
		t.Errorf("size = %v", v)
	}
	if v, _ := n.Get(ld.PropTags); !v.Equal(node.List(node.String("a"), node.Int(1))) {
		t.Errorf("tags = %v", v)
	}
	if v, _ := n.Get(ld.PropContains); !v.Equal(node.Ref("http://example.com/c/app")) {
		t.Errorf("contains = %v", v)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `{"@graph": [`},
		{"no graph", `{"@context": {}}`},
		{"no id", `{"@graph": [{"@type": "File"}]}`},
		{"no type", `{"@graph": [{"@id": "http://example.com/f"}]}`},
		{"nested list", `{"@graph": [{"@id": "http://example.com/f", "@type": "File", "tags": [[1]]}]}`},
		{"null value", `{"@graph": [{"@id": "http://example.com/f", "@type": "File", "path": null}]}`},
		{"object value", `{"@graph": [{"@id": "http://example.com/f", "@type": "File", "path": {"x": 1}}]}`},
	}

	c := NewCodec(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode([]byte(tt.doc)); !errors.Is(err, errors.ErrCodeCorruptArchive) {
				t.Errorf("Decode code = %v, want CORRUPT_ARCHIVE (err: %v)", errors.GetCode(err), err)
			}
		})
	}

	if _, err := c.DecodeBinary([]byte("not cbor")); !errors.Is(err, errors.ErrCodeCorruptArchive) {
		t.Errorf("DecodeBinary code = %v, want CORRUPT_ARCHIVE", errors.GetCode(err))
	}
	if _, err := Decompress([]byte("garbage"), CompressionZstd); !errors.Is(err, errors.ErrCodeCorruptArchive) {
		t.Errorf("Decompress code = %v, want CORRUPT_ARCHIVE", errors.GetCode(err))
	}
}

func TestDecodeBinaryMisfiled(t *testing.T) {
	bc := binaryChunk{
		Version: binaryVersion,
		Collections: map[string]map[string]binaryNode{
			"component": {"http://example.com/f": {Seq: 0, Types: []string{"File"}}},
		},
	}
	data, err := encMode.Marshal(bc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCodec(nil).DecodeBinary(data); !errors.Is(err, errors.ErrCodeCorruptArchive) {
		t.Errorf("DecodeBinary code = %v, want CORRUPT_ARCHIVE", errors.GetCode(err))
	}
}

func TestReadWriteNodes(t *testing.T) {
	c := NewCodec(nil)
	ch := sampleChunk(t)

	var buf bytes.Buffer
	count, err := WriteNodes(&buf, c, func(yield func(node.Node, error) bool) {
		for n := range ch.All() {
			if !yield(n, nil) {
				return
			}
		}
	})
	if err != nil || count != 4 {
		t.Fatalf("WriteNodes = %d, %v", count, err)
	}

	var got []node.Node
	for n, err := range ReadNodes(strings.NewReader("\n"+buf.String()+"\n\n"), c) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, n)
	}
	assertSameNodes(t, got, ch.Nodes())
}

func TestReadNodesError(t *testing.T) {
	input := `{"@id": "http://example.com/f", "@type": "File"}` + "\n" + `{"@id": "http://example.com/g", "@type": "Nope"}` + "\n"
	var seen int
	var lastErr error
	for n, err := range ReadNodes(strings.NewReader(input), NewCodec(nil)) {
		if err != nil {
			lastErr = err
			break
		}
		if n != nil {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("read %d nodes before the error, want 1", seen)
	}
	if !errors.Is(lastErr, errors.ErrCodeInvalidFormat) || !errors.Has(lastErr, errors.ErrCodeUnknownTerm) {
		t.Errorf("error = %v, want INVALID_FORMAT wrapping UNKNOWN_TERM", lastErr)
	}
	if !strings.Contains(lastErr.Error(), "line 2") {
		t.Errorf("error %q does not name the line", lastErr)
	}
}

func TestParseFormatAndCompression(t *testing.T) {
	if f, err := ParseFormat("cbor"); err != nil || f != FormatBinary {
		t.Errorf("ParseFormat(cbor) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseFormat(xml) code = %v", errors.GetCode(err))
	}
	if c, err := ParseCompression(""); err != nil || c != CompressionNone {
		t.Errorf("ParseCompression(\"\") = %v, %v", c, err)
	}
	if got := FormatBinary.Ext(CompressionZstd); got != ".cbor.zst" {
		t.Errorf("Ext = %q", got)
	}
	if got := FormatJSONLD.Ext(CompressionNone); got != ".jsonld" {
		t.Errorf("Ext = %q", got)
	}
}
