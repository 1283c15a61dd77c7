package kvserver

import (
	"errors"
	"strings"
	"time"

	"github.com/vredis/vredis/internal/engine"
	"github.com/vredis/vredis/pkg/resp"
	"go.uber.org/zap"
)

// queuedReply is the status line written back for a command accepted into a
// MULTI batch instead of run immediately.
var queuedReply resp.Reply = resp.SimpleString("QUEUED")

// isMultiControlCommand reports whether name is one of the connection-
// control commands spec §4.5.4 exempts from queuing: EXEC and DISCARD end
// the batch, MULTI itself is dispatched immediately so nested MULTI can be
// rejected as an error rather than silently queued, and QUIT always
// executes immediately regardless of transaction state.
func isMultiControlCommand(name string) bool {
	switch name {
	case "exec", "discard", "multi", "quit":
		return true
	default:
		return false
	}
}

// onOpen allocates a Client for the new connection and stashes it on the
// engine.Conn via SetContext, per spec §4.6's initial state: NORMAL, no
// name, database 0.
func (s *Server) onOpen(c *engine.Conn) ([]byte, engine.Action) {
	addr := c.RemoteAddr().String()
	client := newClient(s, c, addr)
	c.SetContext(client)
	s.registerClient(client)
	s.logger.Debug("client connected", zap.String("addr", addr))
	return nil, engine.None
}

// onClose removes the connection's Client from the directory.
func (s *Server) onClose(c *engine.Conn, err error) engine.Action {
	if client, ok := c.Context().(*Client); ok {
		s.unregisterClient(client.remoteAddr)
		s.logger.Debug("client disconnected", zap.String("addr", client.remoteAddr), zap.Error(err))
	}
	return engine.None
}

// handle implements the per-command leg of spec §4.6's read loop: empty
// argv is a no-op, QUIT closes after writing its reply, MULTI-mode queues
// everything except EXEC/DISCARD/MULTI/QUIT (isMultiControlCommand), and
// everything else dispatches and
// updates idle-time bookkeeping.
func (s *Server) handle(c *engine.Conn, cmd resp.Command, out []byte) ([]byte, engine.Action) {
	client, ok := c.Context().(*Client)
	if !ok {
		// Defensive: onOpen always sets this before OnTraffic can fire.
		return resp.AppendError(out, "ERR internal error: no client state"), engine.Close
	}

	if len(cmd.Args) == 0 {
		return out, engine.None
	}

	name := strings.ToLower(string(cmd.Args[0]))
	args := cmd.Args[1:]

	if client.InMulti() && !isMultiControlCommand(name) {
		client.enqueue(name, args)
		client.lastCmd = name
		client.lastSeen = time.Now()
		return resp.AppendReply(out, queuedReply), engine.None
	}

	reply, err := s.invoke(client, name, args)
	client.lastCmd = name
	client.lastSeen = time.Now()

	if errors.Is(err, resp.ErrQuit) {
		// QUIT returns both a Reply to write (+OK) and the sentinel telling
		// us to close after flushing it — the one handler allowed to ask
		// for both.
		return resp.AppendReply(out, reply), engine.Close
	}
	if err != nil {
		return resp.AppendReply(out, err), engine.None
	}
	return resp.AppendReply(out, reply), engine.None
}
