package command

import (
	"strings"
	"time"

	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
)

// fakeContext is a minimal Context for exercising handlers directly, without
// a real connection or dispatch table.
type fakeContext struct {
	ks          *store.Keyspace
	dbIdx       int
	name        string
	remoteAddr  string
	connectedAt time.Time
	multi       bool
	queued      []QueuedCommand
	dir         *fakeDirectory
	registry    map[string]regEntry
}

type regEntry struct {
	arity   Arity
	handler Handler
}

func newFakeContext() *fakeContext {
	ctx := &fakeContext{
		ks:          store.NewKeyspace(),
		remoteAddr:  "127.0.0.1:1234",
		connectedAt: time.Now(),
		dir:         &fakeDirectory{},
		registry:    make(map[string]regEntry),
	}
	RegisterAll(ctx)
	return ctx
}

func (c *fakeContext) Register(name string, arity Arity, handler Handler) {
	c.registry[name] = regEntry{arity: arity, handler: handler}
}

func (c *fakeContext) DB() *store.Database { return c.ks.DB(c.dbIdx) }

func (c *fakeContext) SelectDB(n int) { c.dbIdx = n }

func (c *fakeContext) FlushAllDatabases() { c.ks.FlushAll() }

func (c *fakeContext) Name() string { return c.name }

func (c *fakeContext) SetName(name []byte) error {
	if strings.ContainsAny(string(name), " \t\r\n") {
		return resp.ErrGeneric("Client names cannot contain spaces, newlines or special characters.")
	}
	c.name = string(name)
	return nil
}

func (c *fakeContext) RemoteAddr() string { return c.remoteAddr }

func (c *fakeContext) ConnectedAt() time.Time { return c.connectedAt }

func (c *fakeContext) InMulti() bool { return c.multi }

func (c *fakeContext) EnterMulti() error {
	if c.multi {
		return resp.ErrGeneric("MULTI calls can not be nested")
	}
	c.multi = true
	c.queued = nil
	return nil
}

func (c *fakeContext) TakeQueued() ([]QueuedCommand, error) {
	if !c.multi {
		return nil, resp.ErrGeneric("EXEC without MULTI")
	}
	queued := c.queued
	c.multi = false
	c.queued = nil
	return queued, nil
}

func (c *fakeContext) Dispatch(name string, args [][]byte) resp.Reply {
	entry, ok := c.registry[strings.ToLower(name)]
	if !ok {
		return resp.ErrGeneric("unknown command '" + name + "'")
	}
	reply, err := entry.handler(c, args)
	if err != nil {
		return err
	}
	return reply
}

func (c *fakeContext) Directory() Directory { return c.dir }

type fakeDirectory struct {
	infos []ClientInfo
	killed string
}

func (d *fakeDirectory) Infos() []ClientInfo { return d.infos }

func (d *fakeDirectory) Kill(addr string) bool {
	for _, info := range d.infos {
		if info.Addr == addr {
			d.killed = addr
			return true
		}
	}
	return false
}

func b(s string) []byte { return []byte(s) }

func bs(vals ...string) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out
}
