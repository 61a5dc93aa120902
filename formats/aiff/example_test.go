// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"io"
	"log"
	"os"

	"github.com/ik5/spat360/formats/aiff"
	"github.com/ik5/spat360/formats/wav"
)

// Example converts an AIFF asset to a 16-bit WAV.
func Example() {
	in, err := os.Open("loop.aiff")
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	src, err := aiff.Decoder{}.Decode(in)
	if err != nil {
		log.Fatal(err)
	}

	var samples []float32
	buf := make([]float32, 1024*src.Channels())
	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}

	out, err := os.Create("loop.wav")
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	if err := wav.Write(out, src.SampleRate(), src.Channels(), samples); err != nil {
		log.Fatal(err)
	}
}
