// Package ui serves the dashboard page, the latest cycle payloads, and live
// SSE and WebSocket streams of every payload the scheduler publishes.
package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mirodash/internal/render"
	"mirodash/internal/state"
)

type Server struct {
	addr     string
	assetDir string
	log      *slog.Logger

	// callbacks into the scheduler and store
	Latest     func(cycle string) (any, bool)
	Toggles    func() render.Toggles
	SetToggles func(t render.Toggles) error
	History    func(channel string, limit int) ([]state.Sample, error)

	b        *broker
	upgrader websocket.Upgrader
}

func New(addr, assetDir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		addr:     addr,
		assetDir: assetDir,
		log:      log.With("component", "ui"),
		b:        newBroker(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// the page is served from the same process; other origins are local tools
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Publish pushes a cycle payload to every SSE and WebSocket subscriber.
func (s *Server) Publish(event string, payload any) {
	if s == nil || s.b == nil {
		return
	}
	s.b.publish(event, payload)
}

func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})

	if s.assetDir != "" {
		mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.assetDir))))
	}

	for _, cycle := range []string{"fast", "medium", "slow"} {
		cycle := cycle
		mux.HandleFunc("/api/"+cycle, func(w http.ResponseWriter, r *http.Request) {
			if s.Latest == nil {
				http.Error(w, "Latest not configured", http.StatusInternalServerError)
				return
			}
			v, ok := s.Latest(cycle)
			if !ok {
				http.Error(w, cycle+" cycle has not run yet", http.StatusNotFound)
				return
			}
			writeJSON(w, v)
		})
	}

	mux.HandleFunc("/api/toggles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if s.Toggles == nil {
				http.Error(w, "Toggles not configured", http.StatusInternalServerError)
				return
			}
			writeJSON(w, s.Toggles())
		case http.MethodPost:
			if s.SetToggles == nil {
				http.Error(w, "SetToggles not configured", http.StatusInternalServerError)
				return
			}
			var body render.Toggles
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
			if err := s.SetToggles(body); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, body)
		default:
			http.Error(w, "GET or POST only", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if q := r.URL.Query().Get("limit"); q != "" {
			if v, err := strconv.Atoi(q); err == nil && v >= 1 && v <= 1000 {
				limit = v
			}
		}
		if s.History == nil {
			http.Error(w, "History not configured", http.StatusInternalServerError)
			return
		}
		samples, err := s.History(strings.TrimSpace(r.URL.Query().Get("channel")), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if samples == nil {
			samples = []state.Sample{}
		}
		writeJSON(w, samples)
	})

	// SSE stream
	mux.HandleFunc("/api/stream", func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "stream unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch, cancel := s.b.subscribe()
		defer cancel()

		// initial keepalive
		fmt.Fprint(w, "event: ping\ndata: {}\n\n")
		flusher.Flush()

		keep := time.NewTicker(15 * time.Second)
		defer keep.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ctx.Done():
				return
			case m := <-ch:
				_, _ = w.Write(m.sse())
				flusher.Flush()
			case <-keep.C:
				fmt.Fprint(w, "event: ping\ndata: {}\n\n")
				flusher.Flush()
			}
		}
	})

	mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response
			s.log.Debug("websocket upgrade failed", "error", err)
			return
		}
		s.serveWS(ctx, conn)
	})

	return mux
}

func (s *Server) serveWS(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	ch, cancel := s.b.subscribe()
	defer cancel()

	// The page never sends anything; reading only notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keep := time.NewTicker(15 * time.Second)
	defer keep.Stop()

	for {
		var out []byte
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
			return
		case <-gone:
			return
		case m := <-ch:
			out = m.envelope()
		case <-keep.C:
			out = message{event: "ping", data: []byte("{}")}.envelope()
		}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			s.log.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.log.Info("dashboard listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ui server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type message struct {
	event string
	data  json.RawMessage
}

func (m message) sse() []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", m.event, m.data))
}

func (m message) envelope() []byte {
	b, _ := json.Marshal(struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}{m.event, m.data})
	return b
}

type broker struct {
	mu   sync.Mutex
	subs map[chan message]struct{}
}

func newBroker() *broker {
	return &broker{subs: map[chan message]struct{}{}}
}

func (b *broker) subscribe() (chan message, func()) {
	ch := make(chan message, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

func (b *broker) publish(event string, payload any) {
	bb, err := json.Marshal(payload)
	if err != nil {
		return
	}
	m := message{event: event, data: bb}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- m:
		default:
			// drop if slow consumer
		}
	}
}
