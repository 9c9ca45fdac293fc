package archive_test

import (
	"fmt"

	"github.com/matzehuels/stackbom/pkg/archive"
	"github.com/matzehuels/stackbom/pkg/ld"
	"github.com/matzehuels/stackbom/pkg/node"
)

func ExampleWriter() {
	store := archive.NewMemoryStore()
	w, err := archive.NewWriter(store, nil, archive.WithMaxPerChunk(2))
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := range 3 {
		n, _ := node.NewBuilder().
			ID(fmt.Sprintf("http://example.com/files/%d", i)).
			Type(ld.TypeFile).
			Build()
		_ = w.Write(n)
	}
	_ = w.Close()

	for _, e := range store.Entries() {
		fmt.Println(e.Name)
	}
	// Output:
	// metadata.json
	// chunks/000001.jsonld
	// chunks/000002.jsonld
	// chunks/000003.jsonld
}

func ExampleReader_Nodes() {
	store := archive.NewMemoryStore()
	w, _ := archive.NewWriter(store, nil)
	file, _ := node.NewBuilder().ID("http://example.com/files/1").Type(ld.TypeFile).Build()
	_ = w.Write(file)
	_ = w.Close()

	r := archive.NewReader(store.Reader(), nil)
	for n, err := range r.Nodes() {
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(n.ID())
	}
	fmt.Println(r.State())
	// Output:
	// http://example.com/files/1
	// exhausted
}
