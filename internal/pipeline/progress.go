package pipeline

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	progressWidth   = 30
	progressRefresh = 100 * time.Millisecond
)

// progressBar redraws a one-line file counter on a terminal while a job
// runs. A nil *progressBar is valid and draws nothing.
type progressBar struct {
	out   io.Writer
	total int
	start time.Time
	stop  chan struct{}
	exit  chan struct{}

	mu    sync.Mutex
	done  int
	stage string
}

func newProgressBar(out io.Writer, stage string, total int) *progressBar {
	if out == nil {
		return nil
	}
	pb := &progressBar{out: out, total: total, stage: stage, start: time.Now(),
		stop: make(chan struct{}), exit: make(chan struct{})}
	go func() {
		defer close(pb.exit)
		ticker := time.NewTicker(progressRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-pb.stop:
				return
			case <-ticker.C:
				pb.draw()
			}
		}
	}()
	return pb
}

// Stage names what is being processed, e.g. the current quadrant.
func (pb *progressBar) Stage(stage string) {
	if pb == nil {
		return
	}
	pb.mu.Lock()
	pb.stage = stage
	pb.mu.Unlock()
}

// Increment counts one more processed file.
func (pb *progressBar) Increment() {
	if pb == nil {
		return
	}
	pb.mu.Lock()
	pb.done++
	pb.mu.Unlock()
}

// Finish stops redrawing and leaves the final state on its own line.
func (pb *progressBar) Finish() {
	if pb == nil {
		return
	}
	close(pb.stop)
	<-pb.exit
	pb.draw()
	fmt.Fprintln(pb.out)
}

func (pb *progressBar) draw() {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	frac := 1.0
	if pb.total > 0 {
		frac = min(float64(pb.done)/float64(pb.total), 1)
	}
	filled := int(frac * progressWidth)
	fmt.Fprintf(pb.out, "\r%-12s [%s%s] %3.0f%%  %d/%d files  %s\033[K",
		pb.stage, strings.Repeat("█", filled), strings.Repeat("░", progressWidth-filled),
		frac*100, pb.done, pb.total, elapsed(time.Since(pb.start)))
}

// elapsed formats d as "45s" or "1m23s".
func elapsed(d time.Duration) string {
	s := int(d / time.Second)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", s/60, s%60)
}
