package chunk

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// Compression is the algorithm applied to binary chunk entries.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

// String returns the name used in configuration and archive metadata.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Ext returns the entry name suffix for the compression, including the dot.
func (c Compression) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses a compression name. The empty string means none.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown compression %q", name)
	}
}

// zstd encoders and decoders are safe for concurrent use and costly to
// create, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("chunk: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("chunk: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress returns data compressed with c. CompressionNone returns data
// unchanged. LZ4 output is a self-describing frame.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "lz4 compress")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "compression %s", c)
	}
}

// Decompress reverses Compress. Malformed input fails with CORRUPT_ARCHIVE.
func Decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "zstd decompress")
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "lz4 decompress")
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "compression %s", c)
	}
}
