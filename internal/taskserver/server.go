// Package taskserver implements the single-threaded request loop described
// in the design: decode a request, mutate the database, encode a reply,
// with periodic stats printing and zombie reaping interleaved between
// messages. All accepted connections feed one serialized dispatch loop so
// the task database never needs its own lock.
package taskserver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/judnich/Kickoff/internal/config"
	"github.com/judnich/Kickoff/internal/events"
	"github.com/judnich/Kickoff/internal/intern"
	"github.com/judnich/Kickoff/internal/reqrep"
	"github.com/judnich/Kickoff/internal/taskdb"
	"github.com/judnich/Kickoff/internal/tracing"
)

const (
	statsInterval    = 10 * time.Second
	cleanupInterval  = 60 * time.Second
	heartbeatTimeout = 300 * time.Second
	maxStatusTasks   = 100
)

type requestEnvelope struct {
	frame []byte
	reply chan []byte
}

// Server owns the database, the listener, and the single dispatch loop.
type Server struct {
	ln      *reqrep.Listener
	db      *taskdb.DB
	log     zerolog.Logger
	intern  intern.Pool
	events  events.Publisher
	stats   stats
	reqCh   chan requestEnvelope
	closeCh chan struct{}
}

type stats struct {
	succeeded   uint64
	failed      uint64
	badRequests uint64
}

// New builds a server bound to cfg.Port, ready to Run.
func New(cfg *config.ServerConfig, pool intern.Pool, pub events.Publisher, log zerolog.Logger) (*Server, error) {
	ln, err := reqrep.Listen(fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("taskserver: failed to bind port %d: %w", cfg.Port, err)
	}
	return &Server{
		ln:      ln,
		db:      taskdb.New(log),
		log:     log,
		intern:  pool,
		events:  pub,
		reqCh:   make(chan requestEnvelope, 64),
		closeCh: make(chan struct{}),
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close stops accepting connections and halts the dispatch loop.
func (s *Server) Close() error {
	close(s.closeCh)
	return s.ln.Close()
}

// Run accepts connections until ctx is canceled or Close is called. It never
// returns an error for malformed client input, matching the "server never
// throws out of the loop" contract. An accept failure when shutdown has not
// been requested is logged and ends the accept loop: no new connections are
// accepted afterwards, while already-open connections keep being served.
func (s *Server) Run(ctx context.Context) error {
	go s.acceptLoop()
	return s.dispatchLoop(ctx)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
				s.log.Warn().Err(err).Msg("accept failed")
				return
			}
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn *reqrep.Conn) {
	defer conn.Close()
	for {
		frame, err := conn.RecvFrame()
		if err != nil {
			return
		}
		replyCh := make(chan []byte, 1)
		select {
		case s.reqCh <- requestEnvelope{frame: frame, reply: replyCh}:
		case <-s.closeCh:
			return
		}
		reply := <-replyCh
		if err := conn.SendFrame(reply); err != nil {
			return
		}
	}
}

func (s *Server) dispatchLoop(ctx context.Context) error {
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closeCh:
			return nil
		case env := <-s.reqCh:
			env.reply <- s.handleRequestSafely(ctx, env.frame)
		case <-statsTicker.C:
			s.printStats()
		case <-cleanupTicker.C:
			reaped := s.db.CleanupZombieTasks(heartbeatTimeout)
			if reaped > 0 {
				s.log.Info().Int("reaped", reaped).Msg("zombie sweep reaped tasks")
			}
		}
	}
}

func (s *Server) printStats() {
	dbStats := s.db.Stats()
	s.log.Info().
		Int32("pending", dbStats.NumPending).
		Int32("running", dbStats.NumRunning).
		Int32("canceling", dbStats.NumCanceling).
		Int32("finished", dbStats.NumFinished).
		Uint64("succeeded", s.stats.succeeded).
		Uint64("failed", s.stats.failed).
		Uint64("bad_requests", s.stats.badRequests).
		Msg("server stats")
}

// handleRequestSafely wraps generateReply with a panic recovery, mirroring
// the request-level recoverer middleware idiom: one bad handler must not
// take the whole server down.
func (s *Server) handleRequestSafely(ctx context.Context, frame []byte) (reply []byte) {
	tracer := tracing.Tracer()
	_, span := tracer.Start(ctx, "taskserver.generateReply")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("recovered from panic handling request")
			reply = s.badRequestReply()
			s.stats.badRequests++
		}
	}()
	return s.generateReply(frame)
}
