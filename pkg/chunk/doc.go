// Package chunk splits node streams into bounded chunks and converts
// chunks to and from their serialized forms.
//
// # Splitting
//
// [Split] groups an iterator of nodes into chunks of at most a given size.
// Boundaries depend only on the node count, so the same stream always
// splits the same way.
//
// # Forms
//
// A [Codec] binds a term context and converts a [Chunk] to:
//
//   - JSON-LD ([Codec.Encode], [Codec.Decode]): a document with an
//     "@context" listing the terms it uses and an "@graph" of node objects
//     with compacted term names.
//   - CBOR ([Codec.EncodeBinary], [Codec.DecodeBinary]): six collections
//     keyed by kind and node id, deterministic byte for byte, optionally
//     compressed with lz4 or zstd ([Compress]).
//
// Every node must belong to one of the six kinds (see [Kind]); encoding
// fails before producing output otherwise.
//
// # Node streams
//
// [ReadNodes] and [WriteNodes] convert between chunks' node objects and
// JSON lines, the plain interchange format used by the pack and unpack
// commands.
package chunk
