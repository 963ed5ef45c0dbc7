package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sitegrade/sitegrade/internal/scanner"
)

// progressPrinter renders a single live line while categories complete.
type progressPrinter struct {
	total    int
	mu       sync.Mutex
	done     int
	updates  chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(total int) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	return &progressPrinter{
		total:    total,
		updates:  make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	go p.loop()
}

// Update recounts finished categories from the snapshot rather than
// incrementing, so duplicate snapshots cannot skew the display.
func (p *progressPrinter) Update(snapshot scanner.ScanResult) {
	done := 0
	for _, cat := range snapshot.Categories {
		if cat != nil && cat.Score != nil {
			done++
		}
	}

	p.mu.Lock()
	if done > p.done {
		p.done = done
	}
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.finished)
	})
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 60))
}

func (p *progressPrinter) loop() {
	for {
		select {
		case <-p.updates:
			p.print()
		case <-p.finished:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	fmt.Fprintf(os.Stdout, "\rscanning... %d/%d categories", done, p.total)
}
