// Package engine provides the gnet-based network transport the server runs
// on. It owns connection lifecycle and RESP framing only — command dispatch,
// keyspace state, and client bookkeeping live in kvserver and are wired in
// through the three handler functions passed to New.
//
// # Architecture
//
// Engine implements an event-driven architecture using multiple event loops
// that run in parallel (in multi-core mode). Each connection has an
// associated buffer for command accumulation; commands are parsed with the
// RESP parser in pkg/resp.
//
// # Threading Model
//
//   - Single-core mode: all connections are handled by a single event loop.
//   - Multi-core mode: multiple event loops distribute connections using the
//     configured load balancing strategy.
//   - Each connection owns its own buffer and queued-command slice.
//   - The connection map is guarded by an RWMutex.
package engine

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/gnet/v2"
	"github.com/valyala/bytebufferpool"
	"github.com/vredis/vredis/pkg/resp"
)

// Action is the action to take after an event handler completes.
type Action int

const (
	// None leaves the connection open.
	None Action = iota

	// Close closes the connection after writing any pending output, used
	// after QUIT or a fatal protocol error.
	Close

	// Shutdown stops the whole engine.
	Shutdown
)

// Conn wraps a gnet.Conn, letting application code stash per-connection
// state (selected DB, client name, MULTI queue) via SetContext/Context.
type Conn struct {
	gnet.Conn
}

// SetContext stores application-specific per-connection state.
func (c *Conn) SetContext(ctx interface{}) {
	c.Conn.SetContext(ctx)
}

// Context returns the state previously stored with SetContext, or nil.
func (c *Conn) Context() interface{} {
	return c.Conn.Context()
}

// Options configures an Engine. Zero value is a reasonable single-core
// default.
type Options struct {
	// Multicore enables multiple event loops distributing connections
	// across them.
	Multicore bool

	// LockOSThread locks the OS thread for each event loop.
	LockOSThread bool

	// ReadBufferCap sets the read buffer capacity in bytes. Default: 64KB.
	ReadBufferCap int

	// LB selects the load-balancing strategy across event loops when
	// Multicore is enabled.
	LB gnet.LoadBalancing

	// NumEventLoop sets the number of event loops. 0 means runtime.NumCPU().
	NumEventLoop int

	// ReusePort enables SO_REUSEPORT.
	ReusePort bool

	// Ticker enables periodic OnTick callbacks.
	Ticker bool

	TCPKeepAlive    time.Duration
	TCPKeepCount    int
	TCPKeepInterval time.Duration
	TCPNoDelay      gnet.TCPSocketOpt

	SocketRecvBuffer int
	SocketSendBuffer int

	EdgeTriggeredIO bool
}

// Engine runs the event loop and RESP command-framing layer on top of gnet.
// It owns a buffer per open connection but no application state: the
// onOpened/onClosed/handler functions supplied to New carry that.
type Engine struct {
	onOpened func(c *Conn) (out []byte, action Action)
	onClosed func(c *Conn, err error) (action Action)
	handler  func(c *Conn, cmd resp.Command, out []byte) ([]byte, Action)

	bufMap   map[gnet.Conn]*connBuffer
	connSync sync.RWMutex

	mu      sync.Mutex
	addr    string
	running bool
	eng     gnet.Engine
}

// connBuffer accumulates incoming bytes until complete commands can be
// parsed, and holds the parsed commands still waiting to be dispatched.
type connBuffer struct {
	buf     bytes.Buffer
	command []resp.Command
}

// New builds an Engine. onOpened runs once a connection is accepted,
// onClosed once it's torn down, and handler once per parsed command — it
// returns the bytes to write back and the Action to take next.
func New(
	onOpened func(c *Conn) (out []byte, action Action),
	onClosed func(c *Conn, err error) (action Action),
	handler func(c *Conn, cmd resp.Command, out []byte) ([]byte, Action),
) *Engine {
	return &Engine{
		bufMap:   make(map[gnet.Conn]*connBuffer),
		onOpened: onOpened,
		onClosed: onClosed,
		handler:  handler,
	}
}

// OnBoot implements gnet.EventHandler.
func (e *Engine) OnBoot(eng gnet.Engine) (action gnet.Action) {
	e.mu.Lock()
	e.eng = eng
	e.mu.Unlock()
	return gnet.None
}

// OnShutdown implements gnet.EventHandler.
func (e *Engine) OnShutdown(eng gnet.Engine) {}

// OnOpen implements gnet.EventHandler: allocates the connection's buffer and
// invokes onOpened.
func (e *Engine) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	e.connSync.Lock()
	e.bufMap[c] = new(connBuffer)
	e.connSync.Unlock()
	if e.onOpened == nil {
		return nil, gnet.None
	}
	out, act := e.onOpened(&Conn{Conn: c})
	return out, gnet.Action(act)
}

// OnClose implements gnet.EventHandler: frees the connection's buffer and
// invokes onClosed.
func (e *Engine) OnClose(c gnet.Conn, err error) (action gnet.Action) {
	e.connSync.Lock()
	delete(e.bufMap, c)
	e.connSync.Unlock()
	if e.onClosed == nil {
		return gnet.None
	}
	return gnet.Action(e.onClosed(&Conn{Conn: c}, err))
}

// OnTraffic implements gnet.EventHandler. It reads everything gnet has
// buffered, feeds it to the RESP parser, and runs every complete command
// through handler, writing out whatever the handlers produced and honoring
// a Close action from any one of them.
func (e *Engine) OnTraffic(c gnet.Conn) (action gnet.Action) {
	e.connSync.RLock()
	cb, ok := e.bufMap[c]
	e.connSync.RUnlock()
	if !ok {
		_, _ = c.Write(resp.AppendError(nil, "ERR Client is closed"))
		return gnet.None
	}

	buf, _ := c.Next(-1)
	if len(buf) == 0 {
		return gnet.None
	}

	cb.buf.Write(buf)
	cmds, leftover, err := resp.ReadCommands(cb.buf.Bytes())
	if err != nil {
		// A malformed frame is a fatal protocol error per spec: reply and
		// close, rather than leaving the connection's framing desynced.
		_, _ = c.Write(resp.AppendError(nil, "ERR "+err.Error()))
		return gnet.Close
	}

	cb.command = append(cb.command, cmds...)
	cb.buf.Reset()
	if len(leftover) > 0 {
		cb.buf.Write(leftover)
	}

	conn := &Conn{Conn: c}
	outBuf := bytebufferpool.Get()
	out := outBuf.B[:0]
	for len(cb.command) > 0 {
		cmd := cb.command[0]
		cb.command = cb.command[1:]

		var status Action
		out, status = e.handler(conn, cmd, out)
		if status == Close {
			if len(out) > 0 {
				_, _ = c.Write(out)
			}
			outBuf.B = out
			bytebufferpool.Put(outBuf)
			return gnet.Close
		}
	}
	if len(out) > 0 {
		_, _ = c.Write(out)
	}
	outBuf.B = out
	bytebufferpool.Put(outBuf)
	return gnet.None
}

// OnTick implements gnet.EventHandler.
func (e *Engine) OnTick() (delay time.Duration, action gnet.Action) {
	return 0, gnet.None
}

// ListenAndServe starts eng listening on addr ("tcp://host:port") with the
// given options. Blocks until the engine is stopped via Close or fails.
func ListenAndServe(addr string, options Options, eng *Engine) error {
	var opts []gnet.Option
	if options.Multicore {
		opts = append(opts, gnet.WithMulticore(true))
	}
	if options.LockOSThread {
		opts = append(opts, gnet.WithLockOSThread(true))
	}
	if options.ReadBufferCap > 0 {
		opts = append(opts, gnet.WithReadBufferCap(options.ReadBufferCap))
	}
	if options.NumEventLoop > 0 {
		opts = append(opts, gnet.WithNumEventLoop(options.NumEventLoop))
	}
	if options.LB != gnet.RoundRobin {
		opts = append(opts, gnet.WithLoadBalancing(options.LB))
	}
	if options.ReusePort {
		opts = append(opts, gnet.WithReusePort(true))
	}
	if options.Ticker {
		opts = append(opts, gnet.WithTicker(true))
	}
	if options.TCPKeepAlive > 0 {
		opts = append(opts, gnet.WithTCPKeepAlive(options.TCPKeepAlive))
	}
	if options.TCPKeepCount > 0 {
		opts = append(opts, gnet.WithTCPKeepCount(options.TCPKeepCount))
	}
	if options.TCPKeepInterval > 0 {
		opts = append(opts, gnet.WithTCPKeepInterval(options.TCPKeepInterval))
	}
	opts = append(opts, gnet.WithTCPNoDelay(options.TCPNoDelay))
	if options.SocketRecvBuffer > 0 {
		opts = append(opts, gnet.WithSocketRecvBuffer(options.SocketRecvBuffer))
	}
	if options.SocketSendBuffer > 0 {
		opts = append(opts, gnet.WithSocketSendBuffer(options.SocketSendBuffer))
	}
	if options.EdgeTriggeredIO {
		opts = append(opts, gnet.WithEdgeTriggeredIO(true))
	}

	eng.mu.Lock()
	eng.addr = addr
	eng.running = true
	eng.mu.Unlock()

	err := gnet.Run(eng, addr, opts...)

	eng.mu.Lock()
	eng.running = false
	eng.mu.Unlock()

	return err
}

// Close stops the engine, closing every active connection. Safe to call
// once; returns an error if the engine isn't running.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return errors.New("engine not running")
	}
	e.running = false
	return e.eng.Stop(context.Background())
}
