// Package wavio reads and writes the WAV containers the trimmer
// operates on. Decoding accepts any parseable WAV and reports its
// format descriptor; callers demand an exact match against Required
// before processing — mismatches are rejected, never converted.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned when a file's format descriptor
// does not exactly match Required.
var ErrUnsupportedFormat = errors.New("unsupported WAV format: expected mono 16-bit PCM at 16kHz")

// ErrNotWAV is returned when the input is not a parseable WAV container.
var ErrNotWAV = errors.New("not a valid WAV file")

// Format describes the sample encoding read from a WAV header.
type Format struct {
	Channels    int
	SampleRate  int
	BitDepth    int
	AudioFormat int // WAV audio format code; 1 is integer PCM
}

// Required is the only format the trimmer processes: mono 16-bit
// integer PCM at 16kHz.
var Required = Format{Channels: 1, SampleRate: 16000, BitDepth: 16, AudioFormat: 1}

// Validate returns ErrUnsupportedFormat unless f matches Required
// exactly.
func (f Format) Validate() error {
	if f != Required {
		return fmt.Errorf("%w, got channels=%d rate=%d bits=%d format=%d",
			ErrUnsupportedFormat, f.Channels, f.SampleRate, f.BitDepth, f.AudioFormat)
	}
	return nil
}

// Decode parses a WAV container and returns all samples along with
// the format descriptor from its header.
func Decode(r io.ReadSeeker) ([]int16, Format, error) {
	// ReadInfo instead of IsValidFile: the latter requires a non-zero
	// duration, which would reject the empty data chunk of a fully
	// trimmed file.
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, Format{}, fmt.Errorf("parse WAV container: %w: %v", ErrNotWAV, err)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, fmt.Errorf("read samples: %w", err)
	}

	f := Format{
		Channels:    int(d.NumChans),
		SampleRate:  int(d.SampleRate),
		BitDepth:    int(d.BitDepth),
		AudioFormat: int(d.WavAudioFormat),
	}

	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}
	return samples, f, nil
}

// DecodeFile opens and decodes a WAV file.
func DecodeFile(path string) ([]int16, Format, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, Format{}, fmt.Errorf("open input WAV file: %w", err)
	}
	defer in.Close()

	return Decode(in)
}

// Encode writes samples as a WAV container using the header field
// values of f, so a trimmed copy carries the same descriptor as its
// source and differs only in sample count and data. An empty sample
// slice produces a valid container with an empty data chunk.
func Encode(w io.WriteSeeker, samples []int16, f Format) error {
	e := wav.NewEncoder(w, f.SampleRate, f.BitDepth, f.Channels, f.AudioFormat)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           data,
		SourceBitDepth: f.BitDepth,
	}

	if err := e.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("finalize WAV writer: %w", err)
	}
	return nil
}
