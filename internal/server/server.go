// Package server implements KvsServer, the TCP accept loop of spec.md §4.7:
// bind a listener, hand each accepted connection to a worker pool as a
// single job, and inside that job pipeline requests off the wire until the
// client disconnects.
//
// Grounded on vi88i-kvstash's svc.StartHTTPServer/apiHandler (src/svc/server.go)
// for the listen-log-dispatch shape and the per-request encode/decode loop,
// generalized from one-shot HTTP handlers to a long-lived pipelined TCP
// connection per original_source/src/server.rs, and on the teacher's
// cmd/main.go for the slog setup/shutdown logging idiom.
package server

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/jassi-singh/kvs/internal/engine"
	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/jassi-singh/kvs/internal/pool"
	"github.com/jassi-singh/kvs/internal/wire"
)

// KvsServer accepts connections on a TCP listener and dispatches each one
// to a worker pool, which runs the request/response loop against a shared
// engine handle.
type KvsServer struct {
	engine engine.Engine
	pool   pool.Pool
}

// New constructs a KvsServer backed by eng, dispatching connection jobs to
// p.
func New(eng engine.Engine, p pool.Pool) *KvsServer {
	return &KvsServer{engine: eng, pool: p}
}

// Run binds addr and accepts connections until ln.Accept returns an error
// (including the listener being closed); that error is returned. Each
// connection is handed to the pool as a single job and served
// independently; a failure while serving one connection never stops the
// accept loop.
func (s *KvsServer) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return kverrors.Io("server: listen", err)
	}
	defer ln.Close()

	return s.acceptLoop(ln)
}

// acceptLoop drives ln until Accept returns an error. Split out of
// Run so tests can bind an ephemeral port, read back its address, and then
// drive the same accept loop without a fixed, collision-prone port.
func (s *KvsServer) acceptLoop(ln net.Listener) error {
	slog.Info("server: listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return kverrors.Io("server: accept", err)
		}

		s.pool.Spawn(func() {
			s.serve(conn)
		})
	}
}

// serve runs the request/response loop for a single connection until the
// client closes it or a fatal connection error occurs. It never panics the
// caller: the pool's own panic isolation is still the backstop, but every
// expected failure is logged here and the connection is simply closed.
func (s *KvsServer) serve(conn net.Conn) {
	defer conn.Close()

	addr := conn.RemoteAddr().String()
	slog.Debug("server: connection accepted", "addr", addr)

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	dec := wire.NewDecoder(r)
	enc := wire.NewEncoder(w)

	for {
		var req wire.Request
		if err := dec.DecodeRequest(&req); err != nil {
			if errors.Is(err, io.EOF) {
				slog.Debug("server: connection closed", "addr", addr)
				return
			}
			slog.Warn("server: malformed request, closing connection", "addr", addr, "error", err)
			return
		}

		resp := s.dispatch(req)

		if err := enc.EncodeResponse(resp); err != nil {
			slog.Warn("server: failed to encode response, closing connection", "addr", addr, "error", err)
			return
		}
		if err := w.Flush(); err != nil {
			slog.Warn("server: failed to flush response, closing connection", "addr", addr, "error", err)
			return
		}
	}
}

// dispatch runs a single request against the engine and renders its
// outcome as a wire response. It never returns an error itself: failures
// are folded into Response.Err per spec.md §4.6/§7.
func (s *KvsServer) dispatch(req wire.Request) wire.Response {
	switch req.Op {
	case wire.OpGet:
		value, found, err := s.engine.Get(req.Key)
		if err != nil {
			slog.Error("server: get failed", "key", req.Key, "error", err)
			return wire.ErrResponse(req.Op, err.Error())
		}
		return wire.OkGet(value, found)

	case wire.OpSet:
		if err := s.engine.Set(req.Key, req.Value); err != nil {
			slog.Error("server: set failed", "key", req.Key, "error", err)
			return wire.ErrResponse(req.Op, err.Error())
		}
		return wire.OkSet()

	case wire.OpRemove:
		if err := s.engine.Remove(req.Key); err != nil {
			if !errors.Is(err, kverrors.ErrKeyNotFound) {
				slog.Error("server: remove failed", "key", req.Key, "error", err)
			}
			return wire.ErrResponse(req.Op, err.Error())
		}
		return wire.OkRemove()

	default:
		return wire.ErrResponse(req.Op, "unknown operation")
	}
}
