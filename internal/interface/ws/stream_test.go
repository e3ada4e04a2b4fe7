package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/infrastructure/router"
	"propdesk-service/internal/livequery/livequerytest"
	"propdesk-service/internal/usecase"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestServer(t *testing.T) (*httptest.Server, *livequerytest.Source) {
	t.Helper()
	src := livequerytest.NewSource()
	r := router.NewFeedRouter(logger.NewNop())
	for _, h := range usecase.DefaultFeedHandlers(logger.NewNop()) {
		r.Register(h)
	}
	streamer := NewStreamer(src, r, metrics.NewNopMetrics(), logger.NewNop(), []string{"*"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		feed := strings.TrimPrefix(req.URL.Path, "/")
		if err := streamer.Serve(w, req, "p1", feed); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, src
}

func dial(t *testing.T, srv *httptest.Server, feed string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/"+feed, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// readUntil reads state frames until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(usecase.VisitsState) bool) usecase.VisitsState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)

		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		require.Equal(t, TypeState, msg.Type)

		var st usecase.VisitsState
		require.NoError(t, json.Unmarshal(msg.Payload, &st))
		if match(st) {
			return st
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 10*time.Millisecond)
}

func TestVisitsStream(t *testing.T) {
	srv, src := newTestServer(t)
	conn := dial(t, srv, usecase.FeedVisits)

	st := readUntil(t, conn, func(s usecase.VisitsState) bool { return s.Loading })
	assert.Equal(t, "p1", st.PropertyID)

	waitFor(t, func() bool { return len(src.Live(record.Visits)) == 1 })
	sub := src.Live(record.Visits)[0]
	assert.Equal(t, usecase.InitialVisitLimit, sub.Query.Limit)

	sub.Emit(livequerytest.Doc(t, "v1", bson.M{"fullName": "Ada", "createdAt": time.Now()}))
	st = readUntil(t, conn, func(s usecase.VisitsState) bool { return !s.Loading })
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "Ada", st.Rows[0].FullName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"loadMore"}`)))
	st = readUntil(t, conn, func(s usecase.VisitsState) bool { return s.Limit == 40 })
	assert.True(t, sub.Canceled())
	waitFor(t, func() bool {
		live := src.Live(record.Visits)
		return len(live) == 1 && live[0].Query.Limit == 40
	})

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"filter","payload":{"key":"30d"}}`)))
	readUntil(t, conn, func(s usecase.VisitsState) bool { return s.Window == "30d" })
}

func TestStreamReleasesSubscriptionsOnClose(t *testing.T) {
	srv, src := newTestServer(t)
	conn := dial(t, srv, usecase.FeedBookings)

	waitFor(t, func() bool { return len(src.Live(record.Amenities)) == 1 })
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	waitFor(t, func() bool { return len(src.Live(record.Amenities)) == 0 })
}

func TestUnknownFeedIsRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/payments", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
