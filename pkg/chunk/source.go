package chunk

import (
	"bufio"
	"bytes"
	"io"
	"iter"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/node"
)

// maxLineSize bounds a single JSON-lines record.
const maxLineSize = 16 << 20

// ReadNodes streams nodes from JSON lines, one compacted node object per
// line, using c to expand terms. Blank lines are skipped. Nodes a lenient
// codec drops are skipped too.
//
// The first error is yielded with a nil node and ends the sequence. Decode
// errors are wrapped with INVALID_FORMAT and the line number; the inner
// code stays reachable through [errors.Has].
func ReadNodes(r io.Reader, c *Codec) iter.Seq2[node.Node, error] {
	return func(yield func(node.Node, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		line := 0
		for sc.Scan() {
			line++
			raw := bytes.TrimSpace(sc.Bytes())
			if len(raw) == 0 {
				continue
			}
			n, err := c.DecodeNode(raw)
			if err != nil {
				yield(nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line))
				return
			}
			if n == nil {
				continue
			}
			if !yield(n, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read line %d", line+1))
		}
	}
}

// WriteNodes writes each node of seq as one JSON line and returns the
// number written. It stops at the first error from seq or from encoding.
func WriteNodes(w io.Writer, c *Codec, seq iter.Seq2[node.Node, error]) (int, error) {
	bw := bufio.NewWriter(w)
	count := 0
	for n, err := range seq {
		if err != nil {
			return count, err
		}
		data, err := c.EncodeNode(n)
		if err != nil {
			return count, err
		}
		if _, err := bw.Write(append(data, '\n')); err != nil {
			return count, errors.Wrap(errors.ErrCodeInternal, err, "write node %s", n.ID())
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return count, errors.Wrap(errors.ErrCodeInternal, err, "flush nodes")
	}
	return count, nil
}
