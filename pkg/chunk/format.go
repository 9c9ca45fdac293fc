package chunk

import (
	"fmt"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// Format selects the serialized form of a chunk.
type Format uint8

const (
	FormatJSONLD Format = iota
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatJSONLD:
		return "jsonld"
	case FormatBinary:
		return "cbor"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name. The empty string means JSON-LD.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "jsonld", "json-ld":
		return FormatJSONLD, nil
	case "cbor", "binary":
		return FormatBinary, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown chunk format %q", name)
	}
}

// Ext returns the entry name suffix for chunks in format f compressed
// with c.
func (f Format) Ext(c Compression) string {
	if f == FormatJSONLD {
		return ".jsonld"
	}
	return ".cbor" + c.Ext()
}

// Marshal encodes ch in format f and compresses the result with comp.
// JSON-LD chunks are never compressed.
func (c *Codec) Marshal(ch *Chunk, f Format, comp Compression) ([]byte, error) {
	switch f {
	case FormatJSONLD:
		if comp != CompressionNone {
			return nil, errors.New(errors.ErrCodeInvalidInput, "compression %s requires the cbor format", comp)
		}
		return c.Encode(ch)
	case FormatBinary:
		data, err := c.EncodeBinary(ch)
		if err != nil {
			return nil, err
		}
		return Compress(data, comp)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "chunk format %s", f)
	}
}

// Unmarshal reverses Marshal.
func (c *Codec) Unmarshal(data []byte, f Format, comp Compression) (*Chunk, error) {
	switch f {
	case FormatJSONLD:
		return c.Decode(data)
	case FormatBinary:
		raw, err := Decompress(data, comp)
		if err != nil {
			return nil, err
		}
		return c.DecodeBinary(raw)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "chunk format %s", f)
	}
}
