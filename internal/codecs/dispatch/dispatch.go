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

// Package dispatch implements the codec dispatcher: it holds an ordered
// chain of stages, propagates buffer capacities bottom-up from the
// physical frame size through every stage's decoded size, and drives
// Encode/Decode (whole pipeline or a single step at a time) across the
// chain in the right direction for each.
package dispatch

import "github.com/piql/boxcodec/internal/codecs"

// Version is a (major, minor) coding scheme version.
type Version struct {
	Major uint16
	Minor uint16
}

// Compare returns -1, 0, or 1 as a lexicographically precedes, equals, or
// follows b, comparing Major first and Minor as the tiebreaker.
func Compare(a, b Version) int {
	if a.Major != b.Major {
		if a.Major < b.Major {
			return -1
		}
		return 1
	}
	if a.Minor != b.Minor {
		if a.Minor < b.Minor {
			return -1
		}
		return 1
	}
	return 0
}

// Dispatcher chains stages in encode order: Encode applies stages[0]
// first through stages[len-1] last (closest to the physical frame);
// Decode applies them in the opposite order.
type Dispatcher struct {
	stages  []codecs.Stage
	version Version

	payloadCapacity int
}

// New constructs a dispatcher over the given stage chain, in encode
// order.
func New(version Version, stages ...codecs.Stage) *Dispatcher {
	return &Dispatcher{stages: stages, version: version}
}

// Version reports the dispatcher's coding scheme version.
func (d *Dispatcher) Version() Version { return d.version }

// GetCodingSteps reports the number of stages in the chain.
func (d *Dispatcher) GetCodingSteps() int { return len(d.stages) }

// InitCapacity propagates the physical frame capacity backward through
// the chain: the last stage (nearest the channel) is initialized with
// frameCapacity, and each earlier stage is initialized with the decoded
// data size the following stage computed, down to the first stage, whose
// resulting decoded data size is the usable payload capacity per frame.
func (d *Dispatcher) InitCapacity(frameCapacity int) error {
	capacity := frameCapacity
	for i := len(d.stages) - 1; i >= 0; i-- {
		if err := d.stages[i].InitCapacity(capacity); err != nil {
			return err
		}
		capacity = d.stages[i].Descriptor().DecodedDataSize
	}
	d.payloadCapacity = capacity
	return nil
}

// PayloadCapacity returns the usable payload bytes per frame, valid
// after InitCapacity.
func (d *Dispatcher) PayloadCapacity() int { return d.payloadCapacity }

// GetEncodedPacketSize returns the frame size produced by the last
// stage, valid after InitCapacity.
func (d *Dispatcher) GetEncodedPacketSize() int {
	if len(d.stages) == 0 {
		return 0
	}
	return d.stages[len(d.stages)-1].Descriptor().EncodedDataSize
}

// GetDataFrames reports how many frames are needed to carry fileSize
// bytes of payload, valid after InitCapacity.
func (d *Dispatcher) GetDataFrames(fileSize int64) uint32 {
	if d.payloadCapacity <= 0 {
		return 0
	}
	frames := fileSize / int64(d.payloadCapacity)
	if fileSize%int64(d.payloadCapacity) != 0 {
		frames++
	}
	return uint32(frames)
}

// Reset clears every stage's per-session state (the FTF interleaver's
// delay line and the header stage's last decoded header, most notably).
func (d *Dispatcher) Reset() {
	for _, st := range d.stages {
		st.Reset()
	}
}

// Encode runs data through every stage in chain order.
func (d *Dispatcher) Encode(data []byte) (codecs.Buffer, error) {
	buf := codecs.NewBuffer(data, 1)
	var err error
	for _, st := range d.stages {
		buf, err = st.Encode(buf)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// EncodeStep runs data through a single stage, identified by its index
// in the chain's encode order.
func (d *Dispatcher) EncodeStep(data []byte, step int) (codecs.Buffer, error) {
	if step < 0 || step >= len(d.stages) {
		return codecs.Buffer{}, codecs.ErrInvalidProperty
	}
	return d.stages[step].Encode(codecs.NewBuffer(data, 1))
}

// Decode runs data through every stage in reverse chain order,
// accumulating per-stage correction statistics into stats.
func (d *Dispatcher) Decode(data []byte, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	buf := codecs.NewBuffer(data, 1)
	var err error
	for i := len(d.stages) - 1; i >= 0; i-- {
		buf, err = d.stages[i].Decode(buf, erasures, stats)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// DecodeStep runs data through a single stage's Decode, identified by
// its index in the chain's encode order (so callers drive steps from
// len-1 down to 0 to mirror Decode).
func (d *Dispatcher) DecodeStep(data []byte, erasures []int, step int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if step < 0 || step >= len(d.stages) {
		return codecs.Buffer{}, codecs.ErrInvalidProperty
	}
	return d.stages[step].Decode(codecs.NewBuffer(data, 1), erasures, stats)
}
