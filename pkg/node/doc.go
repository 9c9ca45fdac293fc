// Package node provides the BOM node model: an identifier, a set of type
// IRIs and a map of attribute IRIs to typed values.
//
// # Variants
//
// Three variants share the read-only [Node] interface and differ in what
// the [Editable] mutation methods allow:
//
//   - [Anonymous]: minted blank identifier, exactly one type, mutable data.
//     Create with [NewAnonymous] or [Minter.Anonymous].
//   - [Frozen]: built once with a [Builder]; every mutation fails with
//     IMMUTABLE.
//   - [Mutable]: open types and data, used while a graph is assembled.
//     [Mutable.Freeze] produces a frozen copy.
//
// # Values
//
// [Value] is a closed variant: string, number, bool, reference ([Ref]) or a
// flat [List] of those. Nodes reference each other by identifier and are
// never nested.
//
// # Example
//
//	file, err := node.NewBuilder().
//	    ID("http://example.com/files/1").
//	    Type(ld.TypeFile).
//	    Put(ld.PropPath, node.String("go.mod")).
//	    Put(ld.PropSize, node.Int(812)).
//	    Build()
package node
