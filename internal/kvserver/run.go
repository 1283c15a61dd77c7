package kvserver

import (
	"fmt"
	"time"

	"github.com/vredis/vredis/internal/engine"
	"go.uber.org/zap"
)

// EngineOptions re-exports engine.Options so callers don't need to import
// internal/engine directly just to configure Run.
type EngineOptions = engine.Options

// Run builds the network engine wired to this Server's command table and
// blocks serving RESP connections on host:port until the engine stops or
// fails. This is spec §6's single blocking entry point.
func (s *Server) Run(host, port string, opts EngineOptions) error {
	eng := engine.New(s.onOpen, s.onClose, s.handle)
	s.eng = eng

	if s.sweepPool != nil {
		s.startSweep()
		defer s.stopSweep()
	}

	addr := fmt.Sprintf("tcp://%s:%s", host, port)
	s.logger.Info("listening", zap.String("addr", addr))
	return engine.ListenAndServe(addr, opts, eng)
}

// Close stops a running server, closing every connection.
func (s *Server) Close() error {
	if s.eng == nil {
		return fmt.Errorf("server not running")
	}
	return s.eng.Close()
}

// startSweep launches the periodic lazy-expiry sweep as a recurring task
// submitted to the bounded ants pool, so a slow pass can't accumulate
// unbounded goroutines the way a naive `go func` loop would.
func (s *Server) startSweep() {
	s.sweepStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.sweepStop:
				return
			case now := <-ticker.C:
				err := s.sweepPool.Submit(func() {
					for _, db := range s.keyspace.All() {
						n := db.Sweep(now)
						if n > 0 {
							s.logger.Debug("swept expired keys", zap.Int("db", db.ID()), zap.Int("count", n))
						}
					}
				})
				if err != nil {
					s.logger.Warn("sweep submit failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *Server) stopSweep() {
	if s.sweepStop != nil {
		close(s.sweepStop)
	}
	if s.sweepPool != nil {
		s.sweepPool.Release()
	}
}
