// Package ld provides the linked-data term context used to compact and
// expand BOM documents.
//
// # Overview
//
// Nodes carry canonical IRIs for their types and attribute keys. On the
// wire, documents use short terms instead:
//
//	{"@id": "http://example.com/files/1", "@type": "File", "name": "go.mod"}
//
// A [Context] holds the bindings between the two forms. [Context.Compact]
// maps an IRI to its short name when writing, [Context.Expand] maps a short
// name back when reading. Every binding has a [TermKind]: type terms appear
// under "@type", data terms appear as attribute keys.
//
// # Composition
//
// A context can embed others with [Context.Embed]. Lookups that miss the
// context's own terms fall through the embedded contexts in priority order:
//
//	project, _ := ld.NewContext("https://example.com/")
//	_ = project.Register("buildTool", "https://example.com/ns#buildTool", ld.DataTerm)
//	project.Embed(ld.Default())
//
// # Vocabulary
//
// [Default] returns a context with the BOM vocabulary registered under
// [Namespace]: the six chunk kinds (File, Component, Dependency, Annotation,
// Container, ContainerLayer), Project, and the common attributes.
package ld
