package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errRefused = errors.New("connection refused")

type fakeConn struct {
	msgs      chan []byte
	fail      chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{msgs: make(chan []byte, 16), fail: make(chan error, 1), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-c.msgs:
		return websocket.TextMessage, b, nil
	case err := <-c.fail:
		return 0, nil, err
	case <-c.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "closed locally"}
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out scripted results. When next is nil every dial fails.
type fakeDialer struct {
	mu    sync.Mutex
	dials int
	next  func(n int) (Conn, error)
	block chan struct{} // when set, Dial waits on it (or ctx)
	conns []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.dials++
	n := d.dials
	next := d.next
	block := d.block
	d.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if next == nil {
		return nil, errRefused
	}
	conn, err := next(n)
	if fc, ok := conn.(*fakeConn); ok {
		d.mu.Lock()
		d.conns = append(d.conns, fc)
		d.mu.Unlock()
	}
	return conn, err
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.conns) {
		return nil
	}
	return d.conns[i]
}

func (d *fakeDialer) openConns() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.conns {
		if !c.isClosed() {
			n++
		}
	}
	return n
}

type scheduled struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

// fakeScheduler records retries; tests fire them by hand.
type fakeScheduler struct {
	mu    sync.Mutex
	items []*scheduled
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := &scheduled{delay: d, fn: fn}
	s.items = append(s.items, it)
	return func() {
		s.mu.Lock()
		it.cancelled = true
		s.mu.Unlock()
	}
}

func (s *fakeScheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *fakeScheduler) delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.items))
	for i, it := range s.items {
		out[i] = it.delay
	}
	return out
}

func (s *fakeScheduler) cancelled(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[i].cancelled
}

func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	it := s.items[i]
	s.mu.Unlock()
	it.fn()
}
