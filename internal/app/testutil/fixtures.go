package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"s2t/internal/app/audio"
)

// ToneSamples generates a 440Hz tone at half amplitude
func ToneSamples(sampleRate int, d time.Duration) []int16 {
	n := int(float64(sampleRate) * d.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int16(16383.0 * math.Sin(2*math.Pi*440*t))
	}
	return samples
}

// ToneWAV returns a mono 16 kHz WAV file of the given length
func ToneWAV(t testing.TB, d time.Duration) []byte {
	t.Helper()
	data, err := audio.EncodeWAV(ToneSamples(16000, d), 16000, 1)
	require.NoError(t, err)
	return data
}

// WriteFile writes data under dir and returns the full path
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// DirEntries lists the names in dir
func DirEntries(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
