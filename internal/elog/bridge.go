package elog

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// osExit is a test seam for the default abort hook.
var osExit = os.Exit

// Bridge connects host code to one engine call context. It owns the guard
// frames pushed onto that context's exception stack and the single report that
// may be open at a time.
//
// A Bridge is not safe for concurrent use. Hosts running several workers give
// each worker its own Bridge over its own engine state.
type Bridge struct {
	native   Native
	log      logr.Logger
	observer Observer
	abort    func(error)
	encoder  *Encoder
	funcName string
	domain   string
	id       uuid.UUID

	frames    []*Frame
	nextScope uint64
	open      *Report
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. Guard exits are logged at V(1).
func WithLogger(logger logr.Logger) Option {
	return func(b *Bridge) { b.log = logger }
}

// WithObserver registers a hook called after every guard exit.
func WithObserver(o Observer) Option {
	return func(b *Bridge) { b.observer = o }
}

// WithAbort replaces the hook that receives stack corruption. The default logs
// the error and terminates the process.
func WithAbort(fn func(error)) Option {
	return func(b *Bridge) { b.abort = fn }
}

// WithEncoder sets the server encoding used for report fields.
func WithEncoder(enc *Encoder) Option {
	return func(b *Bridge) { b.encoder = enc }
}

// WithFuncName sets the function name passed to ErrStart.
func WithFuncName(name string) Option {
	return func(b *Bridge) { b.funcName = name }
}

// WithDomain sets the message domain passed to ErrStart.
func WithDomain(domain string) Option {
	return func(b *Bridge) { b.domain = domain }
}

// New returns a Bridge over native.
func New(native Native, opts ...Option) *Bridge {
	b := &Bridge{
		native:  native,
		log:     logr.Discard(),
		encoder: &Encoder{name: "UTF8"},
		id:      uuid.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithValues("bridge", b.id.String())
	if b.abort == nil {
		b.abort = b.defaultAbort
	}
	return b
}

// ID identifies the call context in logs.
func (b *Bridge) ID() uuid.UUID {
	return b.id
}

// Depth returns the number of guards currently entered.
func (b *Bridge) Depth() int {
	return len(b.frames)
}

func (b *Bridge) defaultAbort(err error) {
	logBridgeError(b.log, err, "aborting: exception stack corrupted")
	osExit(70)
}
