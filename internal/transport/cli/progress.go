package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Progress draws a one-line spinner while a long call runs. Stage may be called
// from any goroutine to change the message.
type Progress struct {
	out      io.Writer
	interval time.Duration

	mu      sync.Mutex
	message string
	stop    chan struct{}
	done    chan struct{}
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out, interval: 120 * time.Millisecond}
}

func (p *Progress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		p.message = message
		return
	}

	p.message = message
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(p.stop, p.done)
}

func (p *Progress) Stage(message string) {
	p.mu.Lock()
	p.message = message
	p.mu.Unlock()
}

// Stop ends the spinner and clears its line. Calling it when nothing runs is a
// no-op.
func (p *Progress) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (p *Progress) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	width := 0
	frame := 0
	draw := func() {
		p.mu.Lock()
		line := fmt.Sprintf("%s %s...", spinnerFrames[frame%len(spinnerFrames)], p.message)
		p.mu.Unlock()
		if pad := width - len(line); pad > 0 {
			line += fmt.Sprintf("%*s", pad, "")
		}
		width = len(line)
		_, _ = fmt.Fprintf(p.out, "\r%s", line)
		frame++
	}

	draw()
	for {
		select {
		case <-stop:
			_, _ = fmt.Fprintf(p.out, "\r%*s\r", width, "")
			return
		case <-ticker.C:
			draw()
		}
	}
}
