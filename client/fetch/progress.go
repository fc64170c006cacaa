package fetch

import (
	"fmt"
	"log/slog"
	"time"
)

// progress tracks the assembled byte count, logging at most once per
// second when enabled and forwarding every update to fn.
type progress struct {
	logger    *slog.Logger
	enabled   bool
	fn        ProgressFunc
	assembled int64
	total     int64
	startTime time.Time
	lastLog   time.Time
}

func (p *progress) add(n int64) {
	p.assembled += n

	if p.fn != nil {
		p.fn(p.assembled, p.total)
	}

	if !p.enabled {
		return
	}

	if time.Since(p.lastLog) >= time.Second {
		p.lastLog = time.Now()
		p.log("fetching")
	}
}

func (p *progress) done() {
	if p.enabled {
		p.log("fetch complete")
	}
}

func (p *progress) log(msg string) {
	elapsed := time.Since(p.startTime)

	pct := 100.0
	if p.total > 0 {
		pct = float64(p.assembled) / float64(p.total) * 100
	}

	p.logger.Info(msg,
		"progress", fmt.Sprintf("%.1f%%", pct),
		"elapsed", elapsed.Round(time.Millisecond),
		"assembled", p.assembled,
		"total", p.total,
		"mbps", fmt.Sprintf("%.2f", float64(p.assembled)/elapsed.Seconds()/(1024*1024)),
	)
}
