package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"InkBoard/internal/export"
)

const writeTimeout = 5 * time.Second

// Frame is one snapshot of the page as sent to viewers.
type Frame struct {
	Seq   uint64 `json:"seq"`
	Page  string `json:"page,omitempty"`
	Image string `json:"image"`
}

// Peer is a connected viewer. Only the newest undelivered frame is kept
// for it; a slow viewer skips frames instead of falling behind.
type Peer struct {
	ID   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

func (p *Peer) offer(msg []byte) {
	select {
	case p.send <- msg:
		return
	default:
	}
	select {
	case <-p.send:
	default:
	}
	select {
	case p.send <- msg:
	default:
	}
}

// Mirror serves the latest page snapshot to read-only websocket viewers.
// It is a board sink: every snapshot the board delivers is forwarded to
// all viewers, and a viewer that joins late gets the latest one first.
type Mirror struct {
	page     string
	upgrader websocket.Upgrader

	peers  map[uuid.UUID]*Peer
	latest []byte
	seq    uint64
	mu     sync.RWMutex
}

// NewMirror returns a mirror for the page with the given id.
func NewMirror(page string) *Mirror {
	return &Mirror{
		page:  page,
		peers: make(map[uuid.UUID]*Peer),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// OnChange forwards a snapshot to every viewer.
func (m *Mirror) OnChange(dataURI string) error {
	m.mu.Lock()
	m.seq++
	msg, err := json.Marshal(Frame{Seq: m.seq, Page: m.page, Image: dataURI})
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("encode frame: %w", err)
	}
	m.latest = msg
	for _, p := range m.peers {
		p.offer(msg)
	}
	seq, n := m.seq, len(m.peers)
	m.mu.Unlock()

	log.Printf("[MIRROR] Frame %d sent to %d viewers", seq, n)
	return nil
}

// Peers returns the number of connected viewers.
func (m *Mirror) Peers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peers)
}

// Latest returns the most recent frame, if any.
func (m *Mirror) Latest() (Frame, bool) {
	m.mu.RLock()
	msg := m.latest
	m.mu.RUnlock()
	if msg == nil {
		return Frame{}, false
	}
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, false
	}
	return f, true
}

// Handler serves viewers on /ws and the latest snapshot as a PNG on
// /latest.png.
func (m *Mirror) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.serveWS)
	mux.HandleFunc("/latest.png", m.servePNG)
	return mux
}

func (m *Mirror) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[MIRROR] Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	p := &Peer{ID: uuid.New(), conn: conn, send: make(chan []byte, 1)}

	m.mu.Lock()
	m.peers[p.ID] = p
	if m.latest != nil {
		p.offer(m.latest)
	}
	m.mu.Unlock()
	log.Printf("[MIRROR] Viewer %s connected from %s", p.ID, r.RemoteAddr)

	go m.writeLoop(p)
	// Viewers never send anything useful; reading only notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	m.remove(p)
	log.Printf("[MIRROR] Viewer %s disconnected", p.ID)
}

func (m *Mirror) writeLoop(p *Peer) {
	defer p.conn.Close()
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("[MIRROR] Write to %s failed: %v", p.ID, err)
			m.remove(p)
			return
		}
	}
	p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (m *Mirror) remove(p *Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.peers[p.ID]; !ok {
		return
	}
	delete(m.peers, p.ID)
	close(p.send)
}

func (m *Mirror) servePNG(w http.ResponseWriter, r *http.Request) {
	f, ok := m.Latest()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusNotFound)
		return
	}
	img, err := export.DecodeDataURI(f.Image)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := export.EncodePNG(w, img); err != nil {
		log.Printf("[MIRROR] Serving png failed: %v", err)
	}
}

// Close disconnects every viewer.
func (m *Mirror) Close() {
	m.mu.Lock()
	peers := make([]*Peer, 0, len(m.peers))
	for _, p := range m.peers {
		peers = append(peers, p)
	}
	m.mu.Unlock()
	for _, p := range peers {
		m.remove(p)
	}
}

// ListenAndServe serves the mirror on addr until ctx is done.
func (m *Mirror) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mirror listen %s: %w", addr, err)
	}
	return m.Serve(ctx, ln)
}

// Serve serves the mirror on ln until ctx is done.
func (m *Mirror) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		m.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Printf("[MIRROR] Listening on %s", ln.Addr())
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Watch connects to a mirror at url and calls fn for every frame until
// the connection ends or ctx is done.
func Watch(ctx context.Context, url string, fn func(Frame)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			log.Printf("[MIRROR] Skipping bad frame: %v", err)
			continue
		}
		fn(f)
	}
}
