// Package ws streams live feed state to console clients over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"propdesk-service/internal/livequery"
	"propdesk-service/internal/usecase"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownFeed is returned by Serve before the upgrade when no handler
// builds the requested feed.
var ErrUnknownFeed = errors.New("unknown_feed")

// Frame types.
const (
	TypeState    = "state"
	TypeLoadMore = "loadMore"
	TypeFilter   = "filter"
)

const writeTimeout = 10 * time.Second

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type filterPayload struct {
	Key string `json:"key"`
}

// Streamer serves one feed per connection. Each connection gets its own
// loop, so feeds of different clients never share state.
type Streamer struct {
	source         livequery.Source
	router         usecase.FeedRouter
	metrics        *metrics.Metrics
	logger         logger.Logger
	originPatterns []string
}

// NewStreamer creates a streamer. originPatterns follows
// websocket.AcceptOptions; "*" accepts any origin.
func NewStreamer(source livequery.Source, router usecase.FeedRouter, metrics *metrics.Metrics, logger logger.Logger, originPatterns []string) *Streamer {
	return &Streamer{
		source:         source,
		router:         router,
		metrics:        metrics,
		logger:         logger,
		originPatterns: originPatterns,
	}
}

// Serve upgrades the request and streams feedName for propertyID until the
// client goes away or the request context ends.
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, propertyID, feedName string) error {
	handler := s.router.GetHandler(feedName)
	if handler == nil {
		return ErrUnknownFeed
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		s.logger.Warn("Websocket accept failed", "error", err)
		return nil
	}

	log := s.logger.With("feed", feedName, "propertyID", propertyID, "remote", r.RemoteAddr)
	s.metrics.FeedConnections.WithLabelValues(feedName).Inc()
	defer s.metrics.FeedConnections.WithLabelValues(feedName).Dec()
	log.Info("Feed connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The loop outlives ctx so the feed can be closed on it after the
	// connection goroutines are gone.
	loop := livequery.NewLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	binder := livequery.NewBinder(ctx, s.source, loop, log, s.metrics)
	feed := handler.NewFeed(binder)
	loop.Post(func() { feed.SetProperty(propertyID) })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx, conn, loop, feed, log) })
	g.Go(func() error { return s.writeLoop(gctx, conn, loop, feed) })
	err = g.Wait()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if cerr := loop.Call(closeCtx, feed.Close); cerr != nil {
		log.Warn("Feed close did not complete", "error", cerr)
	}

	status := websocket.CloseStatus(err)
	switch {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		log.Info("Feed disconnected")
		_ = conn.Close(websocket.StatusNormalClosure, "")
	case errors.Is(err, context.Canceled):
		log.Info("Feed closed by server")
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	default:
		log.Debug("Feed ended", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "")
	}
	return nil
}

func (s *Streamer) readLoop(ctx context.Context, conn *websocket.Conn, loop *livequery.Loop, feed usecase.Feed, log logger.Logger) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("Ignoring malformed frame", "error", err)
			continue
		}

		switch msg.Type {
		case TypeLoadMore:
			if m, ok := feed.(usecase.LoadMorer); ok {
				loop.Post(m.LoadMore)
			}
		case TypeFilter:
			f, ok := feed.(usecase.Filterer)
			if !ok {
				continue
			}
			var p filterPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				log.Debug("Ignoring malformed filter", "error", err)
				continue
			}
			loop.Post(func() { f.SetFilter(p.Key) })
		default:
			log.Debug("Ignoring unknown frame", "type", msg.Type)
		}
	}
}

// writeLoop sends the latest state after every change. Changes that land
// while a frame is being written collapse into the next frame.
func (s *Streamer) writeLoop(ctx context.Context, conn *websocket.Conn, loop *livequery.Loop, feed usecase.Feed) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-feed.Updates():
		}

		var state interface{}
		if err := loop.Call(ctx, func() { state = feed.Snapshot() }); err != nil {
			return err
		}
		payload, err := json.Marshal(state)
		if err != nil {
			return err
		}
		frame, err := json.Marshal(Message{Type: TypeState, Payload: payload})
		if err != nil {
			return err
		}

		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			return err
		}
	}
}
