package discover

import (
	"fmt"
	"io"
	"os"
	"time"
)

// reporter samples the run counters on a fixed interval and prints a progress
// line whenever the processed count crosses a printEvery multiple. It is
// advisory only and never throttles the workers.
type reporter struct {
	job        *job
	total      int
	printEvery int
	interval   time.Duration
	out        io.Writer
	done       chan struct{}
	finished   chan struct{}
}

func newReporter(j *job, total, printEvery int, interval time.Duration, out io.Writer) *reporter {
	if printEvery <= 0 {
		printEvery = 500
	}
	if interval <= 0 {
		interval = time.Second
	}
	if out == nil {
		out = os.Stdout
	}
	return &reporter{
		job:        j,
		total:      total,
		printEvery: printEvery,
		interval:   interval,
		out:        out,
		done:       make(chan struct{}),
		finished:   make(chan struct{}),
	}
}

func (r *reporter) start() {
	go r.loop()
}

func (r *reporter) loop() {
	defer close(r.finished)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	lastPrinted := 0
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			processed, unique := r.job.snapshot()
			if processed > 0 && processed%r.printEvery == 0 && processed != lastPrinted {
				fmt.Fprintf(r.out, "Processed points: %d/%d | Unique panoids: %d\n",
					processed, r.total, unique)
				lastPrinted = processed
			}
			if processed >= r.total {
				return
			}
		}
	}
}

func (r *reporter) stop() {
	select {
	case <-r.finished:
	default:
		close(r.done)
		<-r.finished
	}
}
