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

package main

import (
	"crypto/sha1"
	"encoding/binary"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/crypto/pbkdf2"

	"github.com/piql/boxcodec/internal/codecs"
	"github.com/piql/boxcodec/internal/codecs/cipher"
	"github.com/piql/boxcodec/internal/codecs/dispatch"
	"github.com/piql/boxcodec/internal/config"
	"github.com/piql/boxcodec/internal/pipeline"
	"github.com/piql/boxcodec/std"
)

// SALT is the PBKDF2 salt used to expand a human passphrase into the
// whitening cipher's 32-bit key.
const SALT = "boxcodec"

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "boxctl"
	myApp.Usage = "run a file through the boxing coding pipeline, or back"
	myApp.Version = VERSION
	myApp.Commands = []cli.Command{
		{
			Name:  "encode",
			Usage: "encode a file into a stream of coded frames",
			Flags: commonFlags(),
			Action: func(c *cli.Context) error {
				return runEncode(c)
			},
		},
		{
			Name:  "decode",
			Usage: "decode a stream of coded frames back into a file",
			Flags: commonFlags(),
			Action: func(c *cli.Context) error {
				return runDecode(c)
			},
		},
	}
	if err := myApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "in", Usage: "input file path"},
		cli.StringFlag{Name: "out", Usage: "output file path"},
		cli.StringFlag{Name: "config", Usage: "pipeline JSON config path"},
		cli.StringFlag{Name: "passphrase", Usage: "expand to the whitening cipher key via PBKDF2", EnvVar: "BOXCTL_PASSPHRASE"},
		cli.BoolFlag{Name: "compress", Usage: "snappy-compress the payload before coding"},
		cli.StringFlag{Name: "statslog", Usage: "append a CSV row of decode statistics to this file"},
	}
}

func buildDispatcher(c *cli.Context) (*dispatch.Dispatcher, error) {
	configPath := c.String("config")
	if configPath == "" {
		return nil, errors.New("-config is required")
	}
	p, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading pipeline config")
	}

	if pass := c.String("passphrase"); pass != "" {
		applyPassphrase(p, pass)
	}

	d, err := pipeline.Build(p)
	if err != nil {
		return nil, errors.Wrap(err, "building pipeline")
	}
	return d, nil
}

// applyPassphrase overwrites every explicit-key Cipher stage's key property
// with a PBKDF2 expansion of pass.
func applyPassphrase(p *config.Pipeline, pass string) {
	derived := pbkdf2.Key([]byte(pass), []byte(SALT), 4096, 4, sha1.New)
	key := binary.BigEndian.Uint32(derived)
	for i, st := range p.Stages {
		if st.Name != pipeline.Cipher {
			continue
		}
		if cfg := config.Properties(st.Properties); cfg.Bool("autoKey", false) {
			continue
		}
		if p.Stages[i].Properties == nil {
			p.Stages[i].Properties = config.Properties{}
		}
		p.Stages[i].Properties[cipher.PropKey] = int(key)
	}
}

// ftfFlushFrames reports how many dummy frames must be pushed through
// Encode after the real payload to drain the FTF interleaver's delay line,
// or 0 if the pipeline carries no FTFInterleaving stage.
func ftfFlushFrames(p *config.Pipeline) int {
	for _, st := range p.Stages {
		if st.Name == pipeline.FTFInterleaving {
			return config.Properties(st.Properties).Int("distance", 1) - 1
		}
	}
	return 0
}

func runEncode(c *cli.Context) error {
	inPath, outPath := c.String("in"), c.String("out")
	if inPath == "" || outPath == "" {
		return errors.New("-in and -out are required")
	}

	configPath := c.String("config")
	p, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "loading pipeline config")
	}
	if pass := c.String("passphrase"); pass != "" {
		applyPassphrase(p, pass)
	}
	d, err := pipeline.Build(p)
	if err != nil {
		return errors.Wrap(err, "building pipeline")
	}

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return errors.Wrap(err, "reading input file")
	}
	if c.Bool("compress") {
		raw, err = compressBytes(raw)
		if err != nil {
			return errors.Wrap(err, "compressing payload")
		}
	}

	capacity := d.PayloadCapacity()
	if capacity <= 0 {
		return errors.New("pipeline payload capacity is zero; set frameCapacity in the config")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer out.Close()

	frames := d.GetDataFrames(int64(len(raw)))
	log.Printf("encoding %d bytes into %d frame(s) of %d payload bytes each", len(raw), frames, capacity)

	for off := 0; off < len(raw); off += capacity {
		end := off + capacity
		chunk := make([]byte, capacity)
		if end > len(raw) {
			end = len(raw)
		}
		copy(chunk, raw[off:end])

		enc, err := d.Encode(chunk)
		if err != nil {
			return errors.Wrap(err, "encoding frame")
		}
		if _, err := out.Write(enc.Bytes); err != nil {
			return errors.Wrap(err, "writing frame")
		}
	}

	// Flush the inter-frame interleaver's delay line so every real byte
	// eventually reaches the channel.
	flush := ftfFlushFrames(p)
	dummy := make([]byte, capacity)
	for i := 0; i < flush; i++ {
		enc, err := d.Encode(dummy)
		if err != nil {
			return errors.Wrap(err, "encoding flush frame")
		}
		if _, err := out.Write(enc.Bytes); err != nil {
			return errors.Wrap(err, "writing flush frame")
		}
	}

	log.Println("encode complete:", outPath)
	return nil
}

func runDecode(c *cli.Context) error {
	inPath, outPath := c.String("in"), c.String("out")
	if inPath == "" || outPath == "" {
		return errors.New("-in and -out are required")
	}

	d, err := buildDispatcher(c)
	if err != nil {
		return err
	}

	frameSize := d.GetEncodedPacketSize()
	if frameSize <= 0 {
		return errors.New("pipeline encoded frame size is zero; set frameCapacity in the config")
	}

	channel, err := os.ReadFile(inPath)
	if err != nil {
		return errors.Wrap(err, "reading coded input file")
	}
	if len(channel)%frameSize != 0 {
		return errors.Errorf("coded input length %d is not a multiple of frame size %d", len(channel), frameSize)
	}

	var payload []byte
	var totalStats codecs.DecodeStats
	for off := 0; off < len(channel); off += frameSize {
		frame := channel[off : off+frameSize]

		var stats codecs.DecodeStats
		dec, err := d.Decode(frame, nil, &stats)
		if err != nil {
			return errors.Wrap(err, "decoding frame")
		}
		totalStats.ResolvedErrors += stats.ResolvedErrors
		totalStats.UnresolvedErrors += stats.UnresolvedErrors
		totalStats.FECAccumulatedAmount += stats.FECAccumulatedAmount
		totalStats.FECAccumulatedWeight += stats.FECAccumulatedWeight

		if len(dec.Bytes) == 0 {
			// The inter-frame interleaver's preload window: nothing to
			// emit yet for this channel frame.
			continue
		}
		payload = append(payload, dec.Bytes...)
	}

	if c.Bool("compress") {
		payload, err = decompressBytes(payload)
		if err != nil {
			return errors.Wrap(err, "decompressing payload")
		}
	}

	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return errors.Wrap(err, "writing output file")
	}

	log.Printf("decode complete: %s (resolved=%d unresolved=%d quality=%.4f)",
		outPath, totalStats.ResolvedErrors, totalStats.UnresolvedErrors, totalStats.Quality())

	if statsPath := c.String("statslog"); statsPath != "" {
		if err := std.ReportDecodeStats(statsPath, totalStats); err != nil {
			log.Println("reporting decode stats:", err)
		}
	}
	return nil
}
