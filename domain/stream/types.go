package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Channel names used for logging and metrics labels.
const (
	ChannelVideo  = "video"
	ChannelAlerts = "alerts"
)

// DefaultMaxAttempts is the retry ceiling applied when Config.MaxAttempts is unset.
const DefaultMaxAttempts = 10

// ErrClosed is returned by operations on a manager that has been torn down.
var ErrClosed = errors.New("stream manager closed")

// State enumerates the lifecycle of one channel connection.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed // closed, a retry is scheduled
	StateFailed // retry budget exhausted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is an immutable snapshot of a manager's connection state.
type Status struct {
	Channel     string
	State       State
	Attempts    int
	MaxAttempts int
	Code        int    // last close code
	Reason      string // last close reason
	RetryIn     time.Duration
	SessionID   string // assigned on each successful open
}

// StatusListener is called on each state transition.
type StatusListener func(prev, next Status)

// Message is one inbound JSON object with its type discriminant.
// Raw holds the full object so handlers can decode their own fields.
type Message struct {
	Type string
	Raw  json.RawMessage
}

// Decode unmarshals the full message object into v.
func (m Message) Decode(v any) error { return json.Unmarshal(m.Raw, v) }

// MessageHandler receives messages of one registered type.
type MessageHandler func(Message)

// Conn is the transport handle owned by a manager.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens transport handles.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Scheduler runs fn after d and returns a function that cancels the pending call.
type Scheduler func(d time.Duration, fn func()) (cancel func())

// AfterFunc is the production Scheduler backed by time.AfterFunc.
func AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
