package audio

import (
	"math"
	"time"
)

// Clip is a fully buffered block of PCM audio ready for recognition
type Clip struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Data holds interleaved samples at BitDepth resolution
	Data []int
}

// NewClip wraps 16-bit PCM samples in a Clip
func NewClip(samples []int16, sampleRate, channels int) *Clip {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	return &Clip{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   16,
		Data:       data,
	}
}

// Frames returns the number of sample frames (samples per channel)
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// Duration returns the playback length of the clip
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// IsEmpty reports whether the clip carries no samples
func (c *Clip) IsEmpty() bool {
	return c == nil || len(c.Data) == 0
}

// PCM16 returns the samples rescaled to signed 16-bit
func (c *Clip) PCM16() []int16 {
	out := make([]int16, len(c.Data))
	for i, v := range c.Data {
		switch {
		case c.BitDepth == 8:
			// 8-bit WAV is unsigned
			v = (v - 128) << 8
		case c.BitDepth > 16:
			v >>= uint(c.BitDepth - 16)
		case c.BitDepth < 16 && c.BitDepth > 0:
			v <<= uint(16 - c.BitDepth)
		}
		out[i] = clamp16(v)
	}
	return out
}

// WAV encodes the clip as a 16-bit PCM WAV file
func (c *Clip) WAV() ([]byte, error) {
	return EncodeWAV(c.PCM16(), c.SampleRate, c.Channels)
}

// Energy returns the RMS energy of the clip at 16-bit scale
func (c *Clip) Energy() float64 {
	return RMS(c.PCM16())
}

// RMS computes the root mean square of 16-bit samples
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func clamp16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
