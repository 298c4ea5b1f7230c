package prompts

import (
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Reloader re-reads the prompts file on a cron schedule.
type Reloader struct {
	Registry *Registry
	Logger   *log.Logger
	Interval time.Duration

	expr *cronexpr.Expression
	stop chan struct{}
	last time.Time
}

func NewReloader(reg *Registry, cronSpec string, logger *log.Logger) (*Reloader, error) {
	expr, err := cronexpr.Parse(cronSpec)
	if err != nil {
		return nil, fmt.Errorf("prompts.reload_cron: %w", err)
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[PROMPTS] ", log.LstdFlags)
	}
	return &Reloader{Registry: reg, Logger: logger, Interval: time.Minute, expr: expr, stop: make(chan struct{})}, nil
}

func (r *Reloader) Start() {
	r.last = time.Now()
	ticker := time.NewTicker(r.Interval)
	go func() {
		for {
			select {
			case <-r.stop:
				ticker.Stop()
				return
			case now := <-ticker.C:
				r.tick(now)
			}
		}
	}()
}

func (r *Reloader) Stop() {
	close(r.stop)
}

func (r *Reloader) tick(now time.Time) {
	if !r.isDue(now) {
		return
	}
	r.last = now
	if err := r.Registry.Reload(); err != nil {
		r.Logger.Printf("reload failed: %v", err)
	}
}

// isDue reports whether a scheduled run falls between the last run and now.
func (r *Reloader) isDue(now time.Time) bool {
	next := r.expr.Next(r.last)
	return !next.IsZero() && !next.After(now)
}
