package tcpserver

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"chromacast/internal/core/ports"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server owns the TCP accept loop. It only produces into the registry:
// accept, wrap the connection in a line sink, register, loop. Transient
// accept errors are logged and swallowed; only the initial bind is fatal.
type Server struct {
	address      string
	writeTimeout time.Duration
	registry     ports.Broadcaster
	logger       *zap.SugaredLogger

	limiter *ipLimiterStore

	listener net.Listener
	wg       sync.WaitGroup
}

type Config struct {
	Address      string
	WriteTimeout time.Duration

	// Rate limiting of inbound connects, per source IP. Disabled when
	// ConnectionsPerMinute is zero.
	ConnectionsPerMinute int
	Burst                int
}

func NewServer(cfg Config, registry ports.Broadcaster, logger *zap.SugaredLogger) *Server {
	s := &Server{
		address:      cfg.Address,
		writeTimeout: cfg.WriteTimeout,
		registry:     registry,
		logger:       logger,
	}
	if cfg.ConnectionsPerMinute > 0 {
		s.limiter = newIPLimiterStore(rate.Limit(float64(cfg.ConnectionsPerMinute)/60.0), cfg.Burst)
	}
	return s
}

// Start binds the listener and launches the accept loop. A bind failure
// is returned to the caller, which treats it as fatal.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.address, err)
	}
	s.listener = listener
	s.logger.Infow("listening for consumers", "address", s.address)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warnw("accept failed", "error", err)
			continue
		}

		if s.limiter != nil && !s.limiter.allow(remoteIP(conn)) {
			s.logger.Warnw("connection rate limited", "remote_addr", conn.RemoteAddr().String())
			conn.Close()
			continue
		}

		s.registry.Register(newConnSink(conn, s.writeTimeout))
	}
}

// Shutdown closes the listener and waits for the accept loop to exit.
// Registered sinks stay in the registry; draining them is the registry's
// job.
func (s *Server) Shutdown() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

// ipLimiterStore keeps one token bucket per source IP.
type ipLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPLimiterStore(r rate.Limit, burst int) *ipLimiterStore {
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (s *ipLimiterStore) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(s.rate, s.burst)
		s.limiters[ip] = limiter
	}
	return limiter.Allow()
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
