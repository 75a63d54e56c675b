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

// Package modulate implements the PAM modulator: it expands each payload
// byte into num_bits_per_pixel-wide pixel symbols (one output byte per
// pixel), with a Gray-coded lookup table used at the 2-bits-per-pixel
// setting so that adjacent pixel levels differ in only one bit.
package modulate

import "github.com/piql/boxcodec/internal/codecs"

const name = "Modulator"

// gray2 is the self-inverse Gray-code lookup table for 2 bits per pixel:
// natural binary 0,1,2,3 maps to symbol levels 0,1,3,2. Applying it twice
// returns the original value, so the same table serves both directions.
var gray2 = [4]byte{0, 1, 3, 2}

// Stage is the PAM modulator, supporting 1, 2, or 8 bits per pixel.
type Stage struct {
	bitsPerPixel int
	desc         codecs.Descriptor
}

// New constructs a modulator stage for the given bits-per-pixel setting,
// one of 1, 2, or 8.
func New(bitsPerPixel int) (*Stage, error) {
	switch bitsPerPixel {
	case 1, 2, 8:
	default:
		return nil, codecs.ErrInvalidProperty
	}
	s := &Stage{bitsPerPixel: bitsPerPixel}
	s.desc = codecs.Descriptor{
		Name:              name,
		EncodedSymbolSize: bitsPerPixel,
		DecodedBlockSize:  bitsPerPixel,
		EncodedBlockSize:  8,
		Reentrant:         true,
	}
	return s, nil
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; the modulator carries no state.
func (s *Stage) Reset() {}

func (s *Stage) pixelsPerByte() int { return 8 / s.bitsPerPixel }

// InitCapacity derives decoded data size: encodedCapacity pixel symbols
// must divide evenly into whole bytes of decoded payload.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	ppb := s.pixelsPerByte()
	if encodedCapacity%ppb != 0 {
		return codecs.ErrBufferMisaligned
	}
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity / ppb
	return nil
}

// Encode expands each payload byte into bitsPerPixel-wide pixel symbols.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	switch s.bitsPerPixel {
	case 8:
		out := make([]byte, len(buf.Bytes))
		copy(out, buf.Bytes)
		return codecs.NewBuffer(out, 1), nil
	case 1:
		out := make([]byte, len(buf.Bytes)*8)
		idx := 0
		for _, b := range buf.Bytes {
			for bit := 7; bit >= 0; bit-- {
				out[idx] = (b >> uint(bit)) & 0x01
				idx++
			}
		}
		return codecs.NewBuffer(out, 1), nil
	case 2:
		out := make([]byte, len(buf.Bytes)*4)
		idx := 0
		for _, b := range buf.Bytes {
			for tuple := 3; tuple >= 0; tuple-- {
				v := (b >> uint(tuple*2)) & 0x03
				out[idx] = gray2[v]
				idx++
			}
		}
		return codecs.NewBuffer(out, 1), nil
	}
	return buf, codecs.ErrInvalidProperty
}

// Decode packs pixel symbols back into bytes, inverting the Gray-code
// lookup at 2 bits per pixel.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	switch s.bitsPerPixel {
	case 8:
		out := make([]byte, len(buf.Bytes))
		copy(out, buf.Bytes)
		return codecs.NewBuffer(out, 1), nil
	case 1:
		full := len(buf.Bytes) / 8
		rem := len(buf.Bytes) % 8
		n := full
		if rem != 0 {
			n++
		}
		out := make([]byte, n)
		pos := 0
		for i := 0; i < full; i++ {
			var v byte
			for bit := 0; bit < 8; bit++ {
				v <<= 1
				v |= buf.Bytes[pos] & 0x01
				pos++
			}
			out[i] = v
		}
		if rem != 0 {
			var v byte
			for bit := 0; bit < rem; bit++ {
				v <<= 1
				v |= buf.Bytes[pos] & 0x01
				pos++
			}
			out[full] = v
		}
		return codecs.NewBuffer(out, 1), nil
	case 2:
		n := len(buf.Bytes) - (len(buf.Bytes) % 4)
		out := make([]byte, n/4)
		pos := 0
		for i := 0; i < n/4; i++ {
			var v byte
			for tuple := 0; tuple < 4; tuple++ {
				v <<= 2
				v |= gray2[buf.Bytes[pos]&0x03]
				pos++
			}
			out[i] = v
		}
		return codecs.NewBuffer(out, 1), nil
	}
	return buf, codecs.ErrInvalidProperty
}
