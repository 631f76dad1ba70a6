// Package wavio loads PCM audio from WAV files for FT8/FT4 decoding.
package wavio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// File holds one WAV file's audio, downmixed to mono float32 samples at its
// native sample rate. Samples are scaled by the PCM's full-scale value
// into [-1, 1], the scale the waterfall's dB quantization expects.
type File struct {
	SampleRate int
	Samples    []float32
}

// Load reads an entire WAV file into memory. Multi-channel files are
// downmixed to mono by averaging channels, grounded on the decode pattern
// ausocean-av's flac package uses to drive go-audio/wav (audio.IntBuffer in,
// PCM samples out), adapted here for reading rather than writing.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wavio: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode %s: %w", path, err)
	}

	return &File{
		SampleRate: int(dec.SampleRate),
		Samples:    downmix(buf),
	}, nil
}

// downmix averages an IntBuffer's interleaved channels into mono float32,
// scaled to [-1, 1] by the source bit depth (16 bits when it is unknown).
func downmix(buf *audio.IntBuffer) []float32 {
	nc := buf.Format.NumChannels
	if nc <= 0 {
		nc = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	fullScale := float32(int64(1) << uint(bitDepth-1))
	n := len(buf.Data) / nc
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum int
		for c := 0; c < nc; c++ {
			sum += buf.Data[i*nc+c]
		}
		out[i] = float32(sum) / float32(nc) / fullScale
	}
	return out
}
