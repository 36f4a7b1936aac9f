package util

import (
	"math/rand"
	"sync"
	"time"
)

// UserAgentSource hands out a user agent string per outbound request
type UserAgentSource interface {
	UserAgent() string
}

// UserAgentPool picks a random desktop user agent on every call
type UserAgentPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0",
}

// NewUserAgentPool returns a pool over uas, or over the built-in desktop list when uas is empty
func NewUserAgentPool(uas ...string) *UserAgentPool {
	if len(uas) == 0 {
		uas = desktopUserAgents
	}
	return &UserAgentPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}

// UserAgent returns a random entry of the pool
func (p *UserAgentPool) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}
