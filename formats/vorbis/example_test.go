// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/formats/vorbis"
)

// ExampleDecoder_Decode opens an Ogg Vorbis asset and seeks one second in.
func ExampleDecoder_Decode() {
	f, err := os.Open("ambience.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := vorbis.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	if s, ok := src.(audio.Seekable); ok {
		if err := s.SeekToFrame(int64(src.SampleRate())); err != nil {
			log.Fatal(err)
		}
	}

	buf := make([]float32, 1024*src.Channels())
	n, _ := src.ReadSamples(buf)
	fmt.Printf("%d channels, read %d frames\n", src.Channels(), n/src.Channels())
}
