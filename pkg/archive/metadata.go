package archive

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackbom/pkg/buildinfo"
	"github.com/matzehuels/stackbom/pkg/chunk"
	"github.com/matzehuels/stackbom/pkg/errors"
)

// MetadataName is the name of the first entry of every archive.
const MetadataName = "metadata.json"

// ChunkDir is the directory chunk entries are written under.
const ChunkDir = "chunks/"

// Metadata is the archive header. It is not a node and has a fixed shape.
type Metadata struct {
	RunID       string            `json:"runId"`
	CreatedAt   time.Time         `json:"createdAt"`
	Creator     string            `json:"creator"`
	Format      string            `json:"format"`
	Compression string            `json:"compression,omitempty"`
	MaxPerChunk int               `json:"maxPerChunk"`
	Base        string            `json:"base,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

func newMetadata(cfg config, base string) Metadata {
	runID := cfg.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	comp := ""
	if cfg.format == chunk.FormatBinary {
		comp = cfg.compression.String()
	}
	return Metadata{
		RunID:       runID,
		CreatedAt:   cfg.now().UTC(),
		Creator:     buildinfo.Creator(),
		Format:      cfg.format.String(),
		Compression: comp,
		MaxPerChunk: cfg.maxPerChunk,
		Base:        base,
		Properties:  cfg.properties,
	}
}

// parseMetadata checks that e is metadata-shaped: the reserved name and a
// JSON object carrying a run identifier.
func parseMetadata(e Entry) (Metadata, error) {
	if e.Name != MetadataName {
		return Metadata{}, errors.New(errors.ErrCodeMissingMetadata, "first entry is %s, want %s", e.Name, MetadataName)
	}
	var m Metadata
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return Metadata{}, errors.Wrap(errors.ErrCodeMissingMetadata, err, "parse %s", MetadataName)
	}
	if m.RunID == "" {
		return Metadata{}, errors.New(errors.ErrCodeMissingMetadata, "%s has no run id", MetadataName)
	}
	return m, nil
}

// ChunkName returns the entry name of the chunk at 1-based index.
func ChunkName(index int, f chunk.Format, c chunk.Compression) string {
	return fmt.Sprintf("%s%06d%s", ChunkDir, index, f.Ext(c))
}

// parseChunkName recovers the format and compression from a chunk entry
// name.
func parseChunkName(name string) (chunk.Format, chunk.Compression, error) {
	if !strings.HasPrefix(name, ChunkDir) {
		return 0, 0, errors.New(errors.ErrCodeCorruptArchive, "unexpected entry %s", name)
	}
	switch {
	case strings.HasSuffix(name, ".jsonld"):
		return chunk.FormatJSONLD, chunk.CompressionNone, nil
	case strings.HasSuffix(name, ".cbor"):
		return chunk.FormatBinary, chunk.CompressionNone, nil
	case strings.HasSuffix(name, ".cbor.lz4"):
		return chunk.FormatBinary, chunk.CompressionLZ4, nil
	case strings.HasSuffix(name, ".cbor.zst"):
		return chunk.FormatBinary, chunk.CompressionZstd, nil
	default:
		return 0, 0, errors.New(errors.ErrCodeCorruptArchive, "entry %s has an unknown document type", name)
	}
}
