// Package otosink is the host audio sink: it wires audio.Sink to the
// speaker via ebitengine/oto, the one CORE-adjacent concern with no
// precedent elsewhere in this codebase's ancestry. The CORE never imports
// this package; cmd/bk11run does, at the one place a host output is
// chosen.
package otosink

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// Sink writes mono 16-bit PCM samples to the default audio output device.
// It implements audio.Sink without importing it, keeping this package a
// leaf the CORE never needs to know about.
type Sink struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
}

// New opens the default audio output device at sampleRate and returns a
// Sink ready to accept buffers via Write. Close releases the player and
// the underlying pipe once the emission thread has stopped calling Write.
func New(sampleRate uint64) (*Sink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("otosink: opening audio context: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	return &Sink{ctx: ctx, player: player, pw: pw}, nil
}

// Write encodes samples as little-endian PCM and hands them to the
// player. It blocks until oto has drained enough of the pipe to accept
// the write, which is how the emission thread (audio.Synth's goroutine)
// paces itself to real playback speed.
func (s *Sink) Write(samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	_, err := s.pw.Write(buf)
	return err
}

// Close stops playback and releases the pipe. The caller must ensure no
// goroutine is still calling Write.
func (s *Sink) Close() error {
	s.pw.Close()
	return s.player.Close()
}
