package backend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval matches the console's status refresh cadence.
const DefaultPollInterval = 5 * time.Second

// StatusFetcher narrows the client contract needed by the poller.
type StatusFetcher interface {
	Status(ctx context.Context) (SystemStatus, error)
}

// Poller refreshes the system status on a fixed interval. A failed poll
// keeps the previous status.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.Mutex
	last      SystemStatus
	have      bool
	listeners []func(SystemStatus)
}

// NewPoller constructs a poller; interval <= 0 uses DefaultPollInterval.
func NewPoller(f StatusFetcher, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{fetcher: f, interval: interval, logger: logger.With().Str("component", "status").Logger()}
}

// AddListener registers fn for every successful poll.
func (p *Poller) AddListener(fn func(SystemStatus)) {
	if p == nil || fn == nil {
		return
	}
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Last returns the most recent successful status and whether one exists.
func (p *Poller) Last() (SystemStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.have
}

// Run polls immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.Poll(ctx)
	for {
		select {
		case <-ticker.C:
			p.Poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Poll performs a single status request.
func (p *Poller) Poll(ctx context.Context) {
	st, err := p.fetcher.Status(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn().Err(err).Msg("status poll failed")
		}
		return
	}
	p.mu.Lock()
	p.last, p.have = st, true
	ls := append([]func(SystemStatus){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range ls {
		fn(st)
	}
}
