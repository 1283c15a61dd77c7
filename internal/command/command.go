// Package command implements the per-command semantics of the server: every
// handler named in spec §4.5 (strings & bitmaps, lists, key lifecycle,
// transactions, connection commands). Handlers are plain functions over a
// narrow Context interface so this package never imports the concrete
// server/client types that satisfy it — kvserver depends on command, never
// the reverse.
package command

import (
	"time"

	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
)

// Context is everything a handler needs from the connection that issued the
// command. The concrete implementation lives in kvserver; this package only
// depends on the interface.
type Context interface {
	// DB returns the client's currently selected database.
	DB() *store.Database

	// SelectDB switches the client's selected database, creating it lazily
	// if this is the first reference.
	SelectDB(n int)

	// FlushAllDatabases clears every database created so far, for FLUSHALL.
	FlushAllDatabases()

	// Name returns the client's CLIENT SETNAME name, or "" if unset.
	Name() string

	// SetName validates and sets the client's name. Returns an error if name
	// contains whitespace.
	SetName(name []byte) error

	// RemoteAddr returns "host:port" for the connection.
	RemoteAddr() string

	// ConnectedAt returns when the connection was accepted.
	ConnectedAt() time.Time

	// InMulti reports whether the client is currently queuing commands.
	InMulti() bool

	// EnterMulti switches the client into MULTI mode, returning an error if
	// already in MULTI mode (nested MULTI is an error).
	EnterMulti() error

	// TakeQueued leaves MULTI mode and returns the commands queued since
	// EnterMulti, in insertion order. Returns an error if not in MULTI mode.
	TakeQueued() ([]QueuedCommand, error)

	// Dispatch executes name/args synchronously against this same client
	// context and returns its reply, used by EXEC to run each queued
	// command without re-queuing it.
	Dispatch(name string, args [][]byte) resp.Reply

	// Directory returns the server-wide client registry, for CLIENT LIST
	// and CLIENT KILL.
	Directory() Directory
}

// QueuedCommand is one command accumulated while a client is in MULTI mode.
type QueuedCommand struct {
	Name string
	Args [][]byte
}

// Directory is the server-wide registry of live connections, scoped down to
// what CLIENT LIST/KILL need.
type Directory interface {
	// Infos returns one ClientInfo per currently-connected client, in an
	// implementation-defined but stable order.
	Infos() []ClientInfo

	// Kill closes the connection registered under addr ("host:port"),
	// reporting false if no such client is connected.
	Kill(addr string) bool
}

// ClientInfo mirrors the fields CLIENT LIST reports for one connection, per
// spec §4.5.5's field list. Several of these (Flags, Sub, Psub, QBuf,
// QBufFree, OBL, OLL, OMem, Events) have no real observable value over this
// transport — there's no pub/sub, no raw query buffer exposed by gnet, no
// output-buffer accounting — so they carry the same stub values real Redis
// reports for a plain, idle, non-pubsub client rather than being omitted.
type ClientInfo struct {
	Addr     string
	FD       int
	Name     string
	AgeSec   int64
	IdleSec  int64
	Flags    string
	DB       int
	Sub      int
	Psub     int
	Multi    int
	QBuf     int
	QBufFree int
	OBL      int
	OLL      int
	OMem     int
	Events   string
	LastCmd  string
}

// Handler implements one command's semantics. It returns either a Reply or
// a non-nil error (typically *resp.CommandError); handlers report failures
// through that error rather than by panicking, and the dispatcher does not
// recover from a panic. QUIT is the one handler that returns both:
// a Reply to write (resp.OK) and resp.ErrQuit, telling the caller to close
// the connection after writing it.
type Handler func(ctx Context, args [][]byte) (resp.Reply, error)

// Arity validates the number of arguments following the command name (so
// argc-1 for a full argv). Built with Exact or AtLeast.
type Arity func(argc int) bool

// Exact requires precisely n arguments after the command name.
func Exact(n int) Arity {
	return func(argc int) bool { return argc == n }
}

// AtLeast requires at least n arguments after the command name.
func AtLeast(n int) Arity {
	return func(argc int) bool { return argc >= n }
}

// Registrar is implemented by the dispatch table that owns the command
// registry (kvserver.Server). Registering here, rather than via a
// decorator or package-level init side effect, keeps the table an explicit
// value built at startup, per the redesign away from decorator-style
// registration.
type Registrar interface {
	Register(name string, arity Arity, handler Handler)
}

// RegisterAll installs every command handler this package implements into
// reg. kvserver calls this once at server construction.
func RegisterAll(reg Registrar) {
	registerStringCommands(reg)
	registerListCommands(reg)
	registerKeyCommands(reg)
	registerTxCommands(reg)
	registerConnCommands(reg)
}
