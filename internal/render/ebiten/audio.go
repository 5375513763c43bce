package ebiten

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"chosenoffset.com/nightwood/internal/logger"
)

const sampleRate = 44100

// SoundBank plays short wav effects loaded from a directory. A sound that
// failed to load is silently skipped at play time.
type SoundBank struct {
	ctx *audio.Context

	mu     sync.Mutex
	sounds map[string][]byte
	volume float64
}

// NewSoundBank creates the audio context and loads <dir>/<name>.wav for each
// name. Missing or broken files are logged and skipped.
func NewSoundBank(dir string, names ...string) *SoundBank {
	b := &SoundBank{
		ctx:    audio.NewContext(sampleRate),
		sounds: make(map[string][]byte),
		volume: 0.8,
	}
	for _, name := range names {
		if err := b.Load(name, filepath.Join(dir, name+".wav")); err != nil {
			logger.Log.WithError(err).WithField("sound", name).Warn("sound unavailable")
		}
	}
	return b
}

// Load decodes the wav file at path under name.
func (b *SoundBank) Load(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read sound file: %w", err)
	}
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode wav: %w", err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("failed to read wav stream: %w", err)
	}

	b.mu.Lock()
	b.sounds[name] = pcm
	b.mu.Unlock()
	return nil
}

// SetVolume sets the volume for sounds played afterwards (0..1).
func (b *SoundBank) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = v
}

// Play starts name from the beginning. Overlapping plays are allowed.
func (b *SoundBank) Play(name string) {
	b.mu.Lock()
	pcm, ok := b.sounds[name]
	vol := b.volume
	b.mu.Unlock()
	if !ok {
		return
	}
	p := b.ctx.NewPlayerFromBytes(pcm)
	p.SetVolume(vol)
	p.Play()
}
