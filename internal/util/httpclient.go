// Package util provides the shared HTTP client, worker pool and logging helpers
package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// TransportOptions tunes the pooled transport used for catalog fetches.
// Every page comes from one origin, so the per-host limits matter most.
type TransportOptions struct {
	Timeout         time.Duration
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSTimeout      time.Duration
	IdleConnTimeout time.Duration
	MaxIdle         int
	MaxIdlePerHost  int
	MaxPerHost      int
}

// DefaultTransportOptions is what the shared client uses
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{
		Timeout:         30 * time.Second,
		DialTimeout:     10 * time.Second,
		KeepAlive:       30 * time.Second,
		TLSTimeout:      10 * time.Second,
		IdleConnTimeout: 90 * time.Second,
		MaxIdle:         64,
		MaxIdlePerHost:  32,
		MaxPerHost:      32,
	}
}

func (o TransportOptions) transport() *http.Transport {
	dialer := &net.Dialer{Timeout: o.DialTimeout, KeepAlive: o.KeepAlive}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          o.MaxIdle,
		MaxIdleConnsPerHost:   o.MaxIdlePerHost,
		MaxConnsPerHost:       o.MaxPerHost,
		IdleConnTimeout:       o.IdleConnTimeout,
		TLSHandshakeTimeout:   o.TLSTimeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// Client builds an http.Client over a fresh transport
func (o TransportOptions) Client() *http.Client {
	return &http.Client{Transport: o.transport(), Timeout: o.Timeout}
}

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once
)

// GetSharedClient returns the process-wide client built from DefaultTransportOptions
func GetSharedClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = DefaultTransportOptions().Client()
	})
	return sharedClient
}

// NewHTTPClient returns a client with its own transport and the given
// timeout. A non-positive timeout keeps the default.
func NewHTTPClient(timeout time.Duration) *http.Client {
	opts := DefaultTransportOptions()
	if timeout > 0 {
		opts.Timeout = timeout
	}
	return opts.Client()
}

// WorkerPool runs submitted tasks on their own goroutines, never more than
// its limit at once
type WorkerPool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewWorkerPool returns a pool running at most limit tasks; limit < 1 means 1
func NewWorkerPool(limit int) *WorkerPool {
	if limit < 1 {
		limit = 1
	}
	return &WorkerPool{slots: make(chan struct{}, limit)}
}

// Submit blocks until a slot is free, then starts task
func (wp *WorkerPool) Submit(task func()) {
	wp.slots <- struct{}{}
	wp.wg.Add(1)
	go func() {
		defer func() {
			<-wp.slots
			wp.wg.Done()
		}()
		task()
	}()
}

// Wait blocks until every submitted task has returned
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// ParallelExecute runs tasks with at most limit in flight and returns once
// all of them are done
func ParallelExecute(limit int, tasks ...func()) {
	if len(tasks) == 0 {
		return
	}
	if limit > len(tasks) {
		limit = len(tasks)
	}
	wp := NewWorkerPool(limit)
	for _, task := range tasks {
		wp.Submit(task)
	}
	wp.Wait()
}
