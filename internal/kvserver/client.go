// Package kvserver wires the command table onto the gnet-based engine: it
// owns the keyspace, the live-connection directory, and the per-connection
// state machine described in spec §4.6.
package kvserver

import (
	"strings"
	"time"

	"github.com/vredis/vredis/internal/command"
	"github.com/vredis/vredis/internal/engine"
	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
)

// Client is the per-connection state the command package dispatches
// against: selected database, optional name, MULTI queue, and the
// connection's place in the server-wide directory. It implements
// command.Context.
type Client struct {
	server *Server
	conn   *engine.Conn

	remoteAddr  string
	connectedAt time.Time

	dbIdx int
	name  string

	multi  bool
	queued []command.QueuedCommand

	lastCmd  string
	lastSeen time.Time
}

func newClient(server *Server, conn *engine.Conn, remoteAddr string) *Client {
	now := time.Now()
	return &Client{
		server:      server,
		conn:        conn,
		remoteAddr:  remoteAddr,
		connectedAt: now,
		lastSeen:    now,
	}
}

// DB implements command.Context.
func (c *Client) DB() *store.Database {
	return c.server.keyspace.DB(c.dbIdx)
}

// SelectDB implements command.Context.
func (c *Client) SelectDB(n int) {
	c.dbIdx = n
}

// FlushAllDatabases implements command.Context.
func (c *Client) FlushAllDatabases() {
	c.server.keyspace.FlushAll()
}

// Name implements command.Context.
func (c *Client) Name() string {
	return c.name
}

// SetName implements command.Context.
func (c *Client) SetName(name []byte) error {
	if strings.ContainsAny(string(name), " \t\r\n") {
		return resp.ErrGeneric("Client names cannot contain spaces, newlines or special characters.")
	}
	c.name = string(name)
	return nil
}

// RemoteAddr implements command.Context.
func (c *Client) RemoteAddr() string {
	return c.remoteAddr
}

// ConnectedAt implements command.Context.
func (c *Client) ConnectedAt() time.Time {
	return c.connectedAt
}

// InMulti implements command.Context.
func (c *Client) InMulti() bool {
	return c.multi
}

// EnterMulti implements command.Context.
func (c *Client) EnterMulti() error {
	if c.multi {
		return resp.ErrGeneric("MULTI calls can not be nested")
	}
	c.multi = true
	c.queued = nil
	return nil
}

// TakeQueued implements command.Context.
func (c *Client) TakeQueued() ([]command.QueuedCommand, error) {
	if !c.multi {
		return nil, resp.ErrGeneric("EXEC without MULTI")
	}
	queued := c.queued
	c.multi = false
	c.queued = nil
	return queued, nil
}

// Dispatch implements command.Context: it runs name/args against this same
// client without going through the MULTI-queuing decision in the read loop,
// used by EXEC to run each queued command in order.
func (c *Client) Dispatch(name string, args [][]byte) resp.Reply {
	reply, err := c.server.invoke(c, name, args)
	if err != nil {
		return err
	}
	return reply
}

// Directory implements command.Context.
func (c *Client) Directory() command.Directory {
	return c.server
}

// enqueue appends a command to the MULTI queue; called by the read loop,
// not by any handler.
func (c *Client) enqueue(name string, args [][]byte) {
	c.queued = append(c.queued, command.QueuedCommand{Name: name, Args: args})
}

// info renders the client's current state as the CLIENT LIST row for this
// connection.
func (c *Client) info() command.ClientInfo {
	now := time.Now()
	multi := 0
	if c.multi {
		multi = 1
	}
	fd := 0
	if c.conn != nil {
		fd = c.conn.Fd()
	}
	return command.ClientInfo{
		Addr:     c.remoteAddr,
		FD:       fd,
		Name:     c.name,
		AgeSec:   int64(now.Sub(c.connectedAt).Seconds()),
		IdleSec:  int64(now.Sub(c.lastSeen).Seconds()),
		Flags:    "N",
		DB:       c.dbIdx,
		Sub:      0,
		Psub:     0,
		Multi:    multi,
		QBuf:     0,
		QBufFree: 0,
		OBL:      0,
		OLL:      0,
		OMem:     0,
		Events:   "r",
		LastCmd:  c.lastCmd,
	}
}
