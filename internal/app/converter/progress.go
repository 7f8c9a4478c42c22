package converter

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressSink receives progress percentages between 0 and 100
type ProgressSink interface {
	Progress(percent int)
}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(percent int)

// Progress calls f
func (f ProgressFunc) Progress(percent int) {
	f(percent)
}

// monotonicProgress forwards only increasing values and serializes sink calls
type monotonicProgress struct {
	mu   sync.Mutex
	sink ProgressSink
	last int
}

func newMonotonicProgress(sink ProgressSink) *monotonicProgress {
	return &monotonicProgress{sink: sink, last: -1}
}

func (p *monotonicProgress) report(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if percent <= p.last {
		return
	}
	p.last = percent
	if p.sink != nil {
		p.sink.Progress(percent)
	}
}

func (p *monotonicProgress) current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

type ProgressBar struct {
	bar     *mpb.Bar
	enabled bool
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithWaitGroup(&sync.WaitGroup{}),
	)

	return &ProgressManager{
		container: container,
		enabled:   true,
	}
}

// CreateBar adds a percentage bar that implements ProgressSink
func (pm *ProgressManager) CreateBar(description string) *ProgressBar {
	if !pm.enabled || pm.container == nil {
		return &ProgressBar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.AddBar(completeProgress,
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), " ✓ "),
		),
	)

	return &ProgressBar{
		bar:     bar,
		enabled: true,
	}
}

// Progress moves the bar to percent
func (pb *ProgressBar) Progress(percent int) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetCurrent(int64(percent))
	}
}

// Complete finishes the bar at its current position
func (pb *ProgressBar) Complete() {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetTotal(pb.bar.Current(), true)
	}
}

// Abort removes an unfinished bar
func (pb *ProgressBar) Abort() {
	if pb.enabled && pb.bar != nil && !pb.bar.Completed() {
		pb.bar.Abort(false)
	}
}

func (pm *ProgressManager) Wait() {
	if pm.enabled && pm.container != nil {
		pm.container.Wait()
	}
}

func (pm *ProgressManager) Shutdown() {
	if pm.enabled && pm.container != nil {
		pm.container.Shutdown()
	}
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr) || IsTTY(os.Stdout)
}
