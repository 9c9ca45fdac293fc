package chunk

import (
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

func mustNode(t *testing.T, id, typ string, data map[string]node.Value) *node.Frozen {
	t.Helper()
	n, err := node.NewBuilder().ID(id).Type(typ).PutAll(data).Build()
	if err != nil {
		t.Fatalf("build %s: %v", id, err)
	}
	return n
}

func fileNodes(t *testing.T, count int) []node.Node {
	t.Helper()
	nodes := make([]node.Node, count)
	for i := range nodes {
		nodes[i] = mustNode(t, fmt.Sprintf("http://example.com/files/%d", i), ld.TypeFile, map[string]node.Value{
			ld.PropPath: node.String(fmt.Sprintf("src/%d.go", i)),
		})
	}
	return nodes
}

func ids(nodes []node.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		count int
		limit int
		want  []int
	}{
		{"empty", 0, 3, nil},
		{"exact", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"single chunk", 2, 10, []int{2}},
		{"limit one", 3, 1, []int{1, 1, 1}},
		{"limit clamped", 2, 0, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := fileNodes(t, tt.count)
			var sizes []int
			var all []node.Node
			for ch := range SplitSlice(nodes, tt.limit) {
				if ch.Index != len(sizes)+1 {
					t.Errorf("chunk Index = %d, want %d", ch.Index, len(sizes)+1)
				}
				sizes = append(sizes, ch.Len())
				all = append(all, ch.Nodes()...)
			}
			if !slices.Equal(sizes, tt.want) {
				t.Errorf("chunk sizes = %v, want %v", sizes, tt.want)
			}
			if !slices.Equal(ids(all), ids(nodes)) {
				t.Errorf("concatenated chunks lost order: %v", ids(all))
			}
		})
	}
}

func TestSplitDeterministic(t *testing.T) {
	nodes := fileNodes(t, 10)
	split := func() [][]string {
		var out [][]string
		for ch := range SplitSlice(nodes, 4) {
			out = append(out, ids(ch.Nodes()))
		}
		return out
	}
	a, b := split(), split()
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			t.Errorf("chunk %d differs: %v vs %v", i+1, a[i], b[i])
		}
	}
}

func TestSplitStopsEarly(t *testing.T) {
	pulled := 0
	seq := func(yield func(node.Node) bool) {
		for _, n := range fileNodes(t, 100) {
			pulled++
			if !yield(n) {
				return
			}
		}
	}
	for range Split(seq, 5) {
		break
	}
	if pulled != 5 {
		t.Errorf("pulled %d nodes for one chunk, want 5", pulled)
	}
}

func TestCollections(t *testing.T) {
	file := mustNode(t, "http://example.com/f", ld.TypeFile, nil)
	comp := mustNode(t, "http://example.com/c", ld.TypeComponent, nil)
	layer := mustNode(t, "http://example.com/l", ld.TypeContainerLayer, nil)
	ch := New(file, comp, layer, mustNode(t, "http://example.com/c2", ld.TypeComponent, nil))

	if err := ch.Classify(DefaultKinds()); err != nil {
		t.Fatal(err)
	}
	if got := ids(ch.Components()); !slices.Equal(got, []string{"http://example.com/c", "http://example.com/c2"}) {
		t.Errorf("Components() = %v", got)
	}
	if got := ids(ch.ContainerLayers()); !slices.Equal(got, []string{"http://example.com/l"}) {
		t.Errorf("ContainerLayers() = %v", got)
	}
	if len(ch.Annotations()) != 0 {
		t.Errorf("Annotations() = %v, want none", ids(ch.Annotations()))
	}
	counts := ch.Counts()
	if counts[KindComponent] != 2 || counts[KindFile] != 1 || len(counts) != 3 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestKindOf(t *testing.T) {
	multi, _ := node.NewBuilder().ID("http://example.com/p").Type(ld.TypeProject).Type(ld.TypeComponent).Build()
	project := mustNode(t, "http://example.com/p2", ld.TypeProject, nil)

	if k, err := DefaultKinds().KindOf(multi); err != nil || k != KindComponent {
		t.Errorf("KindOf(project+component) = %v, %v", k, err)
	}
	if _, err := DefaultKinds().KindOf(project); !errors.Is(err, errors.ErrCodeUnsupportedKind) {
		t.Errorf("KindOf(project) code = %v, want UNSUPPORTED_KIND", errors.GetCode(err))
	}
}

func TestClassifyAllOrNothing(t *testing.T) {
	ch := New(
		mustNode(t, "http://example.com/f", ld.TypeFile, nil),
		mustNode(t, "http://example.com/p", ld.TypeProject, nil),
	)
	if err := ch.Classify(DefaultKinds()); !errors.Is(err, errors.ErrCodeUnsupportedKind) {
		t.Fatalf("Classify code = %v", errors.GetCode(err))
	}
	if ch.kinds != nil {
		t.Errorf("failed Classify assigned kinds %v", ch.kinds)
	}
}

func TestKindString(t *testing.T) {
	want := []string{"file", "dependency", "component", "annotation", "container", "container_layer"}
	for i, k := range Kinds {
		if k.String() != want[i] {
			t.Errorf("Kinds[%d].String() = %q, want %q", i, k.String(), want[i])
		}
	}
}
