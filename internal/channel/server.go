package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/justyntemme/dragexport/internal/debug"
)

// request is one frame sent by the host.
type request struct {
	ID     int64          `json:"id"`
	Method string         `json:"method"`
	Args   map[string]any `json:"args"`
}

// reply is one frame sent back to the host.
type reply struct {
	ID             int64       `json:"id"`
	Result         any         `json:"result,omitempty"`
	Error          *replyError `json:"error,omitempty"`
	NotImplemented bool        `json:"notImplemented,omitempty"`
}

type replyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Server bridges a websocket at /ws/<channel> to a Handler.
type Server struct {
	channel  string
	handler  *Handler
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer returns a Server for the named channel.
func NewServer(channel string, h *Handler) *Server {
	if channel == "" {
		channel = DefaultName
	}
	s := &Server{
		channel: channel,
		handler: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Only loopback listeners are expected; the host app is local.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:   http.NewServeMux(),
		conns: make(map[*websocket.Conn]struct{}),
	}
	s.mux.HandleFunc("/ws/"+channel, s.serveWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

// Path returns the websocket path the server answers on.
func (s *Server) Path() string {
	return "/ws/" + s.channel
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled. Open websocket
// connections are closed on shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeConns)

	errc := make(chan error, 1)
	go func() {
		debug.Log(debug.CHANNEL, "listening on %s%s", addr, s.Path())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Warn(debug.CHANNEL, "upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	s.track(conn)
	defer s.untrack(conn)
	debug.Log(debug.CHANNEL, "connected %s", r.RemoteAddr)

	var writeMu sync.Mutex
	var calls sync.WaitGroup
	defer calls.Wait()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			debug.Log(debug.CHANNEL, "disconnected %s: %v", r.RemoteAddr, err)
			return
		}
		var req request
		if err := json.Unmarshal(data, &req); err != nil {
			debug.Warn(debug.CHANNEL, "bad frame from %s: %v", r.RemoteAddr, err)
			writeFrame(conn, &writeMu, reply{Error: &replyError{Code: CodeInvalidArgs, Message: "malformed request"}})
			continue
		}

		// A drag blocks for as long as the user holds the mouse, so each
		// call runs on its own goroutine and replies when it is done.
		calls.Add(1)
		go func() {
			defer calls.Done()
			res := &frameResult{id: req.ID, write: func(rep reply) { writeFrame(conn, &writeMu, rep) }}
			s.handler.HandleMethodCall(MethodCall{Method: req.Method, Arguments: req.Args}, res)
		}()
	}
}

func writeFrame(conn *websocket.Conn, mu *sync.Mutex, rep reply) {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(rep); err != nil {
		debug.Warn(debug.CHANNEL, "write reply %d: %v", rep.ID, err)
	}
}

// frameResult turns a Result into a reply frame.
type frameResult struct {
	id    int64
	write func(reply)
}

func (f *frameResult) Success(value any) {
	f.write(reply{ID: f.id, Result: value})
}

func (f *frameResult) Error(code, message string, details any) {
	f.write(reply{ID: f.id, Error: &replyError{Code: code, Message: message, Details: details}})
}

func (f *frameResult) NotImplemented() {
	f.write(reply{ID: f.id, NotImplemented: true})
}
