// Package progressbar implements functionality of printing a progress
// bar to a terminal
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar implements a progress bar which is redrawn in a separate
// goroutine at a fixed interval once Display is called. Increment may
// be called from any goroutine.
type ProgressBar struct {
	out io.Writer

	// width determines the number of characters wide that the progress
	// bar should be
	width float64

	// maxProgress determines the number of times Increment() should
	// be called before the progress bar reaches 100%.
	maxProgress float64

	// currentProgress measures the current progess, equivalently it
	// measures the number of times Increment() was called
	currentProgress float64

	startTime   time.Time
	updateEvery time.Duration

	mu         sync.Mutex
	closeEvent chan struct{}
	displayed  bool
	closed     bool
	wg         sync.WaitGroup
}

// NewProgressBar returns a new progress bar that is width characters
// wide, reaches 100% capacity after max Increment() calls, and is
// drawn to out every updateEvery once displayed.
func NewProgressBar(out io.Writer, width, max int,
	updateEvery time.Duration) *ProgressBar {
	if max < 1 {
		max = 1
	}
	return &ProgressBar{
		out:         out,
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		updateEvery: updateEvery,
		closeEvent:  make(chan struct{}),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Progress returns the fraction of progress made, in [0, 1]
func (p *ProgressBar) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentProgress / p.maxProgress
}

// String returns the progress bar as it would be drawn
func (p *ProgressBar) String() string {
	p.mu.Lock()
	current := p.currentProgress
	p.mu.Unlock()

	var bar strings.Builder
	bar.WriteString("|")

	currentProg := current / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		bar.WriteString(" ")
	}
	fmt.Fprintf(&bar, "| [%.2f%% | elapsed: %v]",
		current/p.maxProgress*100,
		time.Since(p.startTime).Truncate(time.Millisecond))

	return bar.String()
}

func (p *ProgressBar) draw() {
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.String())
}

// Display starts drawing the progress bar. It should only be called
// once.
func (p *ProgressBar) Display() {
	p.mu.Lock()
	if p.displayed {
		p.mu.Unlock()
		panic("display: progress bar already displayed")
	}
	p.displayed = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		tick := time.NewTicker(p.updateEvery)
		defer tick.Stop()

		for {
			select {
			case <-tick.C:
				p.draw()
			case <-p.closeEvent:
				return
			}
		}
	}()
}

// Close stops drawing the progress bar, drawing it one final time.
func (p *ProgressBar) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("close: close on closed progress bar")
	}
	p.closed = true
	p.mu.Unlock()

	close(p.closeEvent)
	p.wg.Wait()
	p.draw()
	fmt.Fprintln(p.out) // Jump to next line after printed pbar
}
