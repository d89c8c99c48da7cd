// Package refresh re-runs a listing refresh on a fixed interval for as long as
// its owner's context lives.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the refresh period used when none is configured
const DefaultInterval = 30 * time.Second

// Func is one refresh. Errors are logged and do not stop the poller.
type Func func(ctx context.Context) error

// Poller runs a Func immediately and then every interval, skipping a tick
// while the previous run is still going.
type Poller struct {
	interval time.Duration
	fn       Func
	log      logrus.FieldLogger
}

// NewPoller creates a poller. Intervals below one second are rounded up by cron.
func NewPoller(interval time.Duration, fn Func, log logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		interval: interval,
		fn:       fn,
		log:      log.WithField("component", "refresh"),
	}
}

// Run blocks until ctx is cancelled. A run in progress at that point sees the
// cancelled context and Run waits for it to return.
func (p *Poller) Run(ctx context.Context) error {
	p.run(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(p.log))))
	c.Schedule(cron.Every(p.interval), cron.FuncJob(func() {
		p.run(ctx)
	}))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := p.fn(ctx); err != nil {
		p.log.WithError(err).Warn("refresh failed")
		return
	}
	p.log.WithField("elapsed", time.Since(start)).Debug("refreshed")
}
