package kvserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/vredis/vredis/internal/command"
	"github.com/vredis/vredis/internal/engine"
	"github.com/vredis/vredis/internal/store"
	"github.com/vredis/vredis/pkg/resp"
	"go.uber.org/zap"
)

// regEntry is one row of the command table built by command.RegisterAll.
type regEntry struct {
	arity   command.Arity
	handler command.Handler
}

// Server owns the keyspace, the command table, and the directory of live
// connections. It implements command.Registrar (to receive command.
// RegisterAll's registrations) and command.Directory (for CLIENT LIST/KILL).
type Server struct {
	keyspace *store.Keyspace
	logger   *zap.Logger

	registry map[string]regEntry

	clientsMu sync.RWMutex
	clients   map[string]*Client

	sweepPool     *ants.Pool
	sweepInterval time.Duration
	sweepStop     chan struct{}

	eng *engine.Engine
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger overrides the server's logger. Defaults to zap.NewNop() if
// never set.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithBackgroundSweep enables the advisory expiry sweep: every interval, a
// bounded ants worker pool walks every database and deletes expired keys.
// Lazy expiry-on-access remains authoritative regardless; this purely
// reclaims memory between accesses. Off by default.
func WithBackgroundSweep(interval time.Duration, poolSize int) Option {
	return func(s *Server) {
		s.sweepInterval = interval
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			// A pool-construction failure here means poolSize is invalid;
			// the server still runs correctly with lazy expiry alone.
			s.logger.Warn("background sweep disabled: ants pool", zap.Error(err))
			return
		}
		s.sweepPool = pool
	}
}

// New builds a Server with an empty keyspace (database 0 pre-created) and
// the full command table installed.
func New(opts ...Option) *Server {
	s := &Server{
		keyspace: store.NewKeyspace(),
		logger:   zap.NewNop(),
		registry: make(map[string]regEntry),
		clients:  make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(s)
	}
	command.RegisterAll(s)
	return s
}

// Register implements command.Registrar.
func (s *Server) Register(name string, arity command.Arity, handler command.Handler) {
	s.registry[strings.ToLower(name)] = regEntry{arity: arity, handler: handler}
}

// Infos implements command.Directory.
func (s *Server) Infos() []command.ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	infos := make([]command.ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		infos = append(infos, c.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Addr < infos[j].Addr })
	return infos
}

// Kill implements command.Directory.
func (s *Server) Kill(addr string) bool {
	s.clientsMu.RLock()
	c, ok := s.clients[addr]
	s.clientsMu.RUnlock()
	if !ok {
		return false
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	return true
}

// invoke runs name/args against client: arity-checks before calling the
// handler, per spec §4.4, and maps an unregistered command to
// CommandNotFound's wire form.
func (s *Server) invoke(client *Client, name string, args [][]byte) (resp.Reply, error) {
	lower := strings.ToLower(name)
	entry, ok := s.registry[lower]
	if !ok {
		return nil, resp.ErrGeneric(fmt.Sprintf("unknown command '%s'", name))
	}
	if !entry.arity(len(args)) {
		return nil, resp.ErrGeneric(fmt.Sprintf("wrong number of arguments for '%s' command", lower))
	}
	return entry.handler(client, args)
}

func (s *Server) registerClient(c *Client) {
	s.clientsMu.Lock()
	s.clients[c.remoteAddr] = c
	s.clientsMu.Unlock()
}

func (s *Server) unregisterClient(addr string) {
	s.clientsMu.Lock()
	delete(s.clients, addr)
	s.clientsMu.Unlock()
}

func (s *Server) clientByAddr(addr string) (*Client, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	c, ok := s.clients[addr]
	return c, ok
}
