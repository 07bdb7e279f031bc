// Package websocket serves a live sample feed over WebSocket.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/adclink/pkg/bridge/payload"
	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/framework"
	"github.com/robotalks/adclink/pkg/reader"
)

// DefaultBufferSize is the number of samples queued per client.
const DefaultBufferSize = 16

// Sender accepts commands received from clients.
type Sender interface {
	SendCommand(frame.Command) error
}

// Feed is an http.Handler upgrading to WebSocket. Every client receives the
// encoded samples; messages from clients are commands. A slow client drops
// samples instead of blocking the drain.
type Feed struct {
	Codec      payload.Codec
	Sender     Sender
	BufferSize int

	lock    sync.Mutex
	clients map[*client]struct{}
	dropped uint64
}

type client struct {
	out chan []byte
}

// NewFeed creates a Feed. sender may be nil to ignore commands.
func NewFeed(sender Sender, codec payload.Codec) *Feed {
	if codec == nil {
		codec = payload.JSON
	}
	return &Feed{Codec: codec, Sender: sender, BufferSize: DefaultBufferSize}
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.clients)
}

// Dropped returns the number of samples dropped for slow clients.
func (f *Feed) Dropped() uint64 {
	return atomic.LoadUint64(&f.dropped)
}

// HandleEvent implements reader.Handler.
func (f *Feed) HandleEvent(_ context.Context, ev reader.Event) {
	if ev.Kind != reader.EventSample {
		return
	}
	data, err := f.Codec.EncodeSample(ev.Sample)
	if err != nil {
		glog.Errorf("encode sample: %v", err)
		return
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	for c := range f.clients {
		select {
		case c.out <- data:
		default:
			atomic.AddUint64(&f.dropped, 1)
		}
	}
}

// ServeHTTP implements http.Handler.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(f.serve).ServeHTTP(w, r)
}

func (f *Feed) serve(ws *websocket.Conn) {
	size := f.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	c := &client{out: make(chan []byte, size)}
	f.lock.Lock()
	if f.clients == nil {
		f.clients = make(map[*client]struct{})
	}
	f.clients[c] = struct{}{}
	f.lock.Unlock()
	glog.V(2).Infof("websocket client %s connected", ws.Request().RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for data := range c.out {
			if err := f.send(ws, data); err != nil {
				glog.V(2).Infof("websocket send: %v", err)
				ws.Close()
				for range c.out {
				}
				return
			}
		}
	}()

	f.receive(ws)

	f.lock.Lock()
	delete(f.clients, c)
	close(c.out)
	f.lock.Unlock()
	<-done
	glog.V(2).Infof("websocket client %s disconnected", ws.Request().RemoteAddr)
}

func (f *Feed) send(ws *websocket.Conn, data []byte) error {
	if f.Codec == payload.JSON {
		return websocket.Message.Send(ws, string(data))
	}
	return websocket.Message.Send(ws, data)
}

func (f *Feed) receive(ws *websocket.Conn) {
	for {
		var data []byte
		if err := websocket.Message.Receive(ws, &data); err != nil {
			return
		}
		cmd, err := f.Codec.DecodeCommand(data)
		if err != nil {
			glog.Warningf("websocket: bad command: %v", err)
			continue
		}
		if f.Sender == nil {
			continue
		}
		if err := f.Sender.SendCommand(cmd); err != nil {
			glog.Errorf("websocket: %s: %v", cmd, err)
		}
	}
}

// Server serves the Feed at /samples.
type Server struct {
	Addr string
	Feed *Feed
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/samples", s.Feed)
	return mux
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	glog.Infof("websocket feed on %s/samples", s.Addr)
	err := framework.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
