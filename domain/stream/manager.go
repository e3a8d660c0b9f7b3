package stream

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/metrics"
)

// Config describes one logical channel.
type Config struct {
	Channel     string
	URL         string
	MaxAttempts int
	Policy      RetryPolicy
	Dialer      Dialer
	Scheduler   Scheduler
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

// Option customises a Manager at construction, before the first dial.
type Option func(*Manager)

// WithHandler registers h for messages whose type equals msgType.
func WithHandler(msgType string, h MessageHandler) Option {
	return func(m *Manager) { m.handlers[msgType] = append(m.handlers[msgType], h) }
}

// WithOpenHandler registers a callback for successful opens.
func WithOpenHandler(fn func()) Option {
	return func(m *Manager) { m.onOpen = append(m.onOpen, fn) }
}

// WithCloseHandler registers a callback for closures, including failed dials.
func WithCloseHandler(fn func(code int, reason string)) Option {
	return func(m *Manager) { m.onClosed = append(m.onClosed, fn) }
}

// WithErrorHandler registers a callback for transport errors.
func WithErrorHandler(fn func(error)) Option {
	return func(m *Manager) { m.onError = append(m.onError, fn) }
}

// WithStatusListener registers a listener for state transitions.
func WithStatusListener(l StatusListener) Option {
	return func(m *Manager) { m.listeners = append(m.listeners, l) }
}

// Manager owns a single transport handle for one channel and keeps it alive
// according to its RetryPolicy. All state is owned by the event loop goroutine;
// callbacks and listeners run on that goroutine, serially, and must not call
// back into the manager synchronously.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	events    chan any
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	status    atomic.Pointer[Status]

	// loop-owned
	state       State
	attempts    int
	gen         uint64
	retryToken  uint64
	conn        Conn
	cancelDial  context.CancelFunc
	cancelRetry func()
	code        int
	reason      string
	retryIn     time.Duration
	sessionID   string
	handlers    map[string][]MessageHandler
	onOpen      []func()
	onClosed    []func(int, string)
	onError     []func(error)
	listeners   []StatusListener
}

// New constructs a manager and immediately starts connecting.
func New(cfg Config, opts ...Option) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Policy == nil {
		cfg.Policy = FixedPolicy(2 * time.Second)
	}
	if cfg.Dialer == nil {
		cfg.Dialer = WebsocketDialer{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = AfterFunc
	}
	m := &Manager{
		cfg:      cfg,
		logger:   cfg.Logger.With().Str("component", "stream").Str("channel", cfg.Channel).Logger(),
		events:   make(chan any),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		handlers: make(map[string][]MessageHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.publish()
	go m.run()
	m.post(evtConnect{})
	return m
}

// events
type (
	evtConnect   struct{}
	evtReconnect struct{}
	evtDialed    struct {
		gen  uint64
		conn Conn
		err  error
	}
	evtMessage struct {
		gen  uint64
		data []byte
	}
	evtReadClosed struct {
		gen uint64
		err error
	}
	evtRetry struct{ token uint64 }
)

func (m *Manager) run() {
	defer close(m.done)
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("error", r).Str("stack", string(debug.Stack())).Msg("stream loop panic")
			// Unblock post so callers get ErrClosed instead of hanging.
			m.closeOnce.Do(func() { close(m.quit) })
			m.safeCall("teardown", m.teardown)
		}
	}()
	for {
		select {
		case ev := <-m.events:
			m.dispatchSafe(ev)
		case <-m.quit:
			m.teardown()
			return
		}
	}
}

// dispatchSafe runs one event. A panic leaves the channel Failed with no
// handle or pending retry, so a manual Reconnect can start over.
func (m *Manager) dispatchSafe(ev any) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("error", r).Str("stack", string(debug.Stack())).Msg("stream event panic")
			m.stopRetry()
			m.closeConn()
			m.gen++
			m.retryIn = 0
			m.transition(StateFailed)
		}
	}()
	m.dispatch(ev)
}

func (m *Manager) dispatch(ev any) {
	switch e := ev.(type) {
	case evtConnect:
		if m.state == StateIdle {
			m.connect()
		}
	case evtReconnect:
		m.handleReconnect()
	case evtDialed:
		m.handleDialed(e)
	case evtMessage:
		if e.gen == m.gen && m.conn != nil {
			m.handleMessage(e.data)
		}
	case evtReadClosed:
		if e.gen != m.gen || m.conn == nil {
			return
		}
		m.closeConn()
		code, reason, abnormal := closeDetails(e.err)
		if abnormal {
			m.emitError(e.err)
		}
		m.handleClosed(code, reason)
	case evtRetry:
		if e.token != m.retryToken || m.state != StateClosed {
			return
		}
		m.cancelRetry = nil
		m.connect()
	}
}

// post delivers ev to the loop. It reports false once the manager is closed.
func (m *Manager) post(ev any) bool {
	select {
	case m.events <- ev:
		return true
	case <-m.quit:
		return false
	}
}

func (m *Manager) connect() {
	m.closeConn()
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel
	m.retryIn = 0
	m.transition(StateConnecting)
	m.logger.Debug().Str("url", m.cfg.URL).Int("attempt", m.attempts).Msg("connecting")
	dialer := m.cfg.Dialer
	url := m.cfg.URL
	go func() {
		conn, err := dialer.Dial(ctx, url)
		if !m.post(evtDialed{gen: gen, conn: conn, err: err}) && conn != nil {
			_ = conn.Close()
		}
	}()
}

func (m *Manager) handleDialed(e evtDialed) {
	if e.gen != m.gen || m.state != StateConnecting {
		if e.conn != nil {
			_ = e.conn.Close()
		}
		return
	}
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if e.err != nil {
		m.logger.Warn().Err(e.err).Msg("dial failed")
		m.emitError(e.err)
		m.handleClosed(websocket.CloseAbnormalClosure, e.err.Error())
		return
	}
	m.conn = e.conn
	m.attempts = 0
	m.cfg.Policy.Reset()
	m.code, m.reason = 0, ""
	m.sessionID = uuid.NewString()
	m.transition(StateOpen)
	m.cfg.Metrics.ConnectionOpened(m.cfg.Channel)
	m.logger.Info().Str("session", m.sessionID).Msg("connection open")
	for _, fn := range m.onOpen {
		m.safeCall("open handler", fn)
	}
	go m.readPump(e.gen, e.conn)
}

func (m *Manager) readPump(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.post(evtReadClosed{gen: gen, err: err})
			return
		}
		if !m.post(evtMessage{gen: gen, data: data}) {
			return
		}
	}
}

func (m *Manager) handleMessage(data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		m.logger.Warn().Err(err).Int("bytes", len(data)).Msg("dropping malformed message")
		return
	}
	if env.Type == "" {
		m.logger.Warn().Int("bytes", len(data)).Msg("dropping message without type")
		return
	}
	hs := m.handlers[env.Type]
	if len(hs) == 0 {
		m.logger.Debug().Str("type", env.Type).Msg("ignoring unhandled message type")
		return
	}
	msg := Message{Type: env.Type, Raw: json.RawMessage(data)}
	for _, h := range hs {
		m.safeCall("message handler", func() { h(msg) })
	}
}

// handleClosed reports the closure and schedules a retry while budget remains.
func (m *Manager) handleClosed(code int, reason string) {
	m.code, m.reason = code, reason
	for _, fn := range m.onClosed {
		m.safeCall("close handler", func() { fn(code, reason) })
	}
	if m.attempts >= m.cfg.MaxAttempts {
		m.retryIn = 0
		m.transition(StateFailed)
		m.logger.Warn().Int("attempts", m.attempts).Msg("retry budget exhausted")
		return
	}
	m.attempts++
	delay := m.cfg.Policy.Next()
	m.retryToken++
	token := m.retryToken
	m.retryIn = delay
	m.cancelRetry = m.cfg.Scheduler(delay, func() { m.post(evtRetry{token: token}) })
	m.cfg.Metrics.ReconnectScheduled(m.cfg.Channel)
	m.transition(StateClosed)
	m.logger.Info().Int("code", code).Str("reason", reason).Int("attempt", m.attempts).Dur("delay", delay).Msg("reconnect scheduled")
}

func (m *Manager) handleReconnect() {
	switch m.state {
	case StateConnecting, StateOpen:
		m.logger.Debug().Str("state", m.state.String()).Msg("manual reconnect ignored")
		return
	case StateClosed:
		m.stopRetry()
	case StateIdle, StateFailed:
		m.attempts = 0
		m.cfg.Policy.Reset()
	default:
		return
	}
	m.logger.Info().Msg("manual reconnect")
	m.connect()
}

func (m *Manager) stopRetry() {
	m.retryToken++
	if m.cancelRetry != nil {
		m.cancelRetry()
		m.cancelRetry = nil
	}
}

func (m *Manager) closeConn() {
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) teardown() {
	m.stopRetry()
	m.closeConn()
	m.gen++
	m.retryIn = 0
	m.transition(StateStopped)
	m.logger.Debug().Msg("stream manager stopped")
}

func (m *Manager) transition(next State) {
	prev := m.Status()
	m.state = next
	cur := m.publish()
	if prev.State == next {
		return
	}
	for _, l := range m.listeners {
		m.safeCall("status listener", func() { l(prev, cur) })
	}
}

func (m *Manager) publish() Status {
	s := Status{
		Channel:     m.cfg.Channel,
		State:       m.state,
		Attempts:    m.attempts,
		MaxAttempts: m.cfg.MaxAttempts,
		Code:        m.code,
		Reason:      m.reason,
		RetryIn:     m.retryIn,
		SessionID:   m.sessionID,
	}
	m.status.Store(&s)
	return s
}

func (m *Manager) emitError(err error) {
	for _, fn := range m.onError {
		m.safeCall("error handler", func() { fn(err) })
	}
}

func (m *Manager) safeCall(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("error", r).Str("stack", string(debug.Stack())).Msg(what + " panic")
		}
	}()
	fn()
}

// Status returns the latest published snapshot. Safe from any goroutine.
func (m *Manager) Status() Status {
	if m == nil {
		return Status{}
	}
	if s := m.status.Load(); s != nil {
		return *s
	}
	return Status{}
}

// Channel returns the configured channel name.
func (m *Manager) Channel() string {
	if m == nil {
		return ""
	}
	return m.cfg.Channel
}

// Reconnect requests an immediate connection attempt. It is a no-op while a
// connection is being established or is open; a pending retry is replaced by
// an immediate attempt; a failed channel gets a fresh retry budget.
func (m *Manager) Reconnect() error {
	if m == nil {
		return nil
	}
	if !m.post(evtReconnect{}) {
		return ErrClosed
	}
	return nil
}

// Close cancels any pending retry, closes the transport handle and stops the
// event loop. It blocks until the loop has exited and is safe to call twice.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.closeOnce.Do(func() { close(m.quit) })
	<-m.done
}
