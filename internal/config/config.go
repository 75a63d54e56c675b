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

// Package config loads a coding-pipeline description from JSON: an ordered
// stage list plus a per-stage property table, the wiring the dispatcher's
// registry turns into a live Dispatcher. Since a pipeline has a variable
// number of stages of varying kinds, stages are kept as an ordered slice
// of name+properties pairs rather than one struct field per stage.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Properties is a single stage's property table, as handed to the
// registry's constructor for that stage name.
type Properties map[string]any

// Stage names one pipeline stage and its constructor properties. Field
// order in the JSON stages array is preserved by json.Decoder (it unmarshals
// into a slice), which is what lets Stages describe encode order directly.
type Stage struct {
	Name       string     `json:"name"`
	Properties Properties `json:"properties"`
}

// Pipeline is a complete coding-pipeline description: a coding scheme
// version plus the ordered stage list the dispatcher is built from.
type Pipeline struct {
	VersionMajor  uint16  `json:"versionMajor"`
	VersionMinor  uint16  `json:"versionMinor"`
	FrameCapacity int     `json:"frameCapacity"`
	Stages        []Stage `json:"stages"`
}

// Load reads and decodes a Pipeline from a JSON file (open-decode-close).
func Load(path string) (*Pipeline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	var p Pipeline
	if err := json.NewDecoder(file).Decode(&p); err != nil {
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

// Property fetches a named property from the table, reporting ok=false
// when absent so callers can fall back to a constructor default for a
// field a JSON config omits.
func (p Properties) Property(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Int reads an integer-valued property. JSON numbers decode to float64, so
// this is the common path for every stage constructor that wants an int.
func (p Properties) Int(name string, def int) int {
	v, ok := p[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// String reads a string-valued property.
func (p Properties) String(name, def string) string {
	v, ok := p[name]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// Bool reads a boolean-valued property.
func (p Properties) Bool(name string, def bool) bool {
	v, ok := p[name]
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// IntSlice reads a []int property (JSON arrays of numbers), used by stages
// like LDPC whose generator sets are naturally nested arrays.
func (p Properties) IntSlice(name string) []int {
	v, ok := p[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if n, ok := item.(float64); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// IntSliceSlice reads a [][]int property, used by LDPC's per-parity-bit
// generator sets.
func (p Properties) IntSliceSlice(name string) [][]int {
	v, ok := p[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([][]int, 0, len(raw))
	for _, item := range raw {
		inner, ok := item.([]any)
		if !ok {
			continue
		}
		row := make([]int, 0, len(inner))
		for _, v := range inner {
			if n, ok := v.(float64); ok {
				row = append(row, int(n))
			}
		}
		out = append(out, row)
	}
	return out
}
