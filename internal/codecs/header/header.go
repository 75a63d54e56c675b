// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package header implements the packet header stage: a fixed-size
// little-endian prefix identifying the encoding scheme, its version, the
// modulator's bits-per-pixel setting, symbol alignment, and (when the
// whitening cipher is running in auto_key mode) the synthesized cipher
// key, so a decoder can configure itself before touching the payload.
package header

import (
	"encoding/binary"

	"github.com/piql/boxcodec/internal/codecs"
)

const (
	name = "PacketHeader"

	schemeNameSize = 16
	// Size is the fixed header length in bytes.
	Size = schemeNameSize + 2 + 2 + 1 + 1 + 1 + 1 + 4

	flagCipherKey = 0x01
)

// Stage is the packet header codec.
type Stage struct {
	SchemeName      string
	VersionMajor    uint16
	VersionMinor    uint16
	Modulation      byte
	SymbolAlignment byte
	HasCipherKey    bool
	CipherKey       uint32

	// decoded holds the most recently parsed header, available to the
	// dispatcher after Decode so it can wire a transmitted auto_key
	// cipher key back into the cipher stage.
	decoded *Stage

	desc codecs.Descriptor
}

// New constructs a packet header stage describing the scheme this
// pipeline instance produces.
func New(schemeName string, versionMajor, versionMinor uint16, modulation, symbolAlignment byte) (*Stage, error) {
	if len(schemeName) > schemeNameSize {
		return nil, codecs.ErrInvalidProperty
	}
	s := &Stage{
		SchemeName:      schemeName,
		VersionMajor:    versionMajor,
		VersionMinor:    versionMinor,
		Modulation:      modulation,
		SymbolAlignment: symbolAlignment,
	}
	s.desc = codecs.Descriptor{Name: name, Reentrant: true}
	return s, nil
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; the header's own configuration is fixed
// at construction, only the last-decoded snapshot is session state.
func (s *Stage) Reset() { s.decoded = nil }

// InitCapacity implements codecs.Stage; the header adds a fixed prefix.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	if encodedCapacity < Size {
		return codecs.ErrBufferMisaligned
	}
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity - Size
	return nil
}

// Decoded returns the most recently decoded header, or nil if Decode has
// not been called (or was called before the last Reset).
func (s *Stage) Decoded() *Stage { return s.decoded }

// Encode prepends the fixed header to buf.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	out := make([]byte, Size+len(buf.Bytes))
	copy(out, []byte(s.SchemeName))
	binary.LittleEndian.PutUint16(out[schemeNameSize:], s.VersionMajor)
	binary.LittleEndian.PutUint16(out[schemeNameSize+2:], s.VersionMinor)
	out[schemeNameSize+4] = s.Modulation
	out[schemeNameSize+5] = s.SymbolAlignment
	if s.HasCipherKey {
		out[schemeNameSize+6] = flagCipherKey
	}
	binary.LittleEndian.PutUint32(out[schemeNameSize+8:], s.CipherKey)
	copy(out[Size:], buf.Bytes)
	return codecs.NewBuffer(out, buf.ItemSize), nil
}

// Decode parses the header prefix, validates the scheme name and version
// against this stage's configuration, and returns the remaining payload.
// A mismatch on either is fatal: the pipeline cannot safely continue
// decoding against a packet it was not built to understand.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if len(buf.Bytes) < Size {
		return buf, codecs.ErrIncompatibleHeader
	}

	parsed := &Stage{
		SchemeName:      trimZero(buf.Bytes[:schemeNameSize]),
		VersionMajor:    binary.LittleEndian.Uint16(buf.Bytes[schemeNameSize:]),
		VersionMinor:    binary.LittleEndian.Uint16(buf.Bytes[schemeNameSize+2:]),
		Modulation:      buf.Bytes[schemeNameSize+4],
		SymbolAlignment: buf.Bytes[schemeNameSize+5],
		HasCipherKey:    buf.Bytes[schemeNameSize+6]&flagCipherKey != 0,
		CipherKey:       binary.LittleEndian.Uint32(buf.Bytes[schemeNameSize+8:]),
	}
	s.decoded = parsed

	if parsed.SchemeName != s.SchemeName {
		return buf, codecs.ErrIncompatibleHeader
	}
	if !versionCompatible(s.VersionMajor, s.VersionMinor, parsed.VersionMajor, parsed.VersionMinor) {
		return buf, codecs.ErrIncompatibleHeader
	}

	payload := buf.Bytes[Size:]
	out := make([]byte, len(payload))
	copy(out, payload)
	return codecs.NewBuffer(out, buf.ItemSize), nil
}

// versionCompatible implements lexicographic (major, minor) comparison: a
// decoder accepts any packet whose major version matches and whose minor
// version is not newer than its own.
func versionCompatible(wantMajor, wantMinor, gotMajor, gotMinor uint16) bool {
	if gotMajor != wantMajor {
		return false
	}
	return gotMinor <= wantMinor
}

func trimZero(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
