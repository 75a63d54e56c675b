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

// Package codecs holds the shared types used by every pipeline stage: the
// resizable byte buffer exchanged between stages, the stage descriptor and
// interface, decode statistics, and the stage error taxonomy.
package codecs

// Buffer is the unit of data a stage consumes and produces. It replaces the
// original C "gvector": a byte slice plus a logical item width. A stage is
// free to replace the buffer wholesale, including changing its item width,
// by returning a new Buffer rather than mutating the caller's memory -- the
// Go expression of the gvector_swap ownership transfer.
type Buffer struct {
	// Bytes holds the raw contents, ItemSize-aligned.
	Bytes []byte
	// ItemSize is the width, in bytes, of one logical item (1 for
	// byte-oriented stages, 2 for 16-bit-word Reed-Solomon, etc).
	ItemSize int
}

// NewBuffer wraps data with the given item width.
func NewBuffer(data []byte, itemSize int) Buffer {
	if itemSize <= 0 {
		itemSize = 1
	}
	return Buffer{Bytes: data, ItemSize: itemSize}
}

// Len reports the logical item count.
func (b Buffer) Len() int {
	if b.ItemSize <= 0 {
		return len(b.Bytes)
	}
	return len(b.Bytes) / b.ItemSize
}

// Clone returns an independent copy of the buffer's contents.
func (b Buffer) Clone() Buffer {
	out := make([]byte, len(b.Bytes))
	copy(out, b.Bytes)
	return Buffer{Bytes: out, ItemSize: b.ItemSize}
}
