package browser

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/util"
)

// Pool hands out pages from a launcher with an optional bound on how many
// are open at once. Every page is closed when its operation finishes.
type Pool struct {
	launcher Launcher
	slots    chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPool wraps launcher; size <= 0 means no bound
func NewPool(launcher Launcher, size int) *Pool {
	p := &Pool{launcher: launcher}
	if size > 0 {
		p.slots = make(chan struct{}, size)
	}
	return p
}

// WithPage acquires a page, runs fn on it and always closes the page and
// frees its slot afterwards, whatever fn returns.
func (p *Pool) WithPage(ctx context.Context, fn func(ctx context.Context, page Page) error) error {
	page, release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, page)
}

// Acquire opens a page and returns the release func that must be called exactly once
func (p *Pool) Acquire(ctx context.Context) (Page, func(), error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, nil, ErrClosed
	}

	if p.slots != nil {
		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			return nil, nil, errors.Wrap(ctx.Err(), "waiting for a browser page")
		}
	}
	freeSlot := func() {
		if p.slots != nil {
			<-p.slots
		}
	}

	page, err := p.launcher.NewPage(ctx)
	if err != nil {
		freeSlot()
		return nil, nil, errors.Wrap(err, "open page")
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := page.Close(); err != nil {
				util.Debug("page close failed", "error", err)
			}
			freeSlot()
		})
	}
	return page, release, nil
}

// Close shuts the underlying browser down
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.launcher.Close()
}
