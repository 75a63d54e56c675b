package main

import (
	"bytes"
	"io"

	"github.com/piql/boxcodec/std"
)

// bufferRWC adapts a *bytes.Buffer into an io.ReadWriteCloser so it can
// back a std.CompStream for one-shot, in-memory compression: boxctl codes
// a whole file at a time rather than a live connection, so there is no
// network stream to frame, only a byte slice to frame in place of one.
type bufferRWC struct{ *bytes.Buffer }

func (bufferRWC) Close() error { return nil }

// compressBytes snappy-compresses data using std.CompStream's write side.
func compressBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	cs := std.NewCompStream(bufferRWC{&buf})
	if _, err := cs.Write(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressBytes inverts compressBytes using std.CompStream's read side.
func decompressBytes(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(append([]byte(nil), data...))
	cs := std.NewCompStream(bufferRWC{buf})
	return io.ReadAll(cs)
}
