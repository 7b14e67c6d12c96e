package ui

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"mirodash/internal/render"
	"mirodash/internal/state"
)

func newTestServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(s.Handler(ctx))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts
}

func TestLatest_NotFoundBeforeFirstTick(t *testing.T) {
	latest := map[string]any{}
	s := New("", "", nil)
	s.Latest = func(c string) (any, bool) { v, ok := latest[c]; return v, ok }
	ts := newTestServer(t, s)

	resp, err := http.Get(ts.URL + "/api/slow")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	latest["slow"] = render.SlowPayload{Hour: 7, Clock: "assets/clock_7.png"}
	resp, err = http.Get(ts.URL + "/api/slow")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got render.SlowPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, 7, got.Hour)
	require.Equal(t, "assets/clock_7.png", got.Clock)
}

func TestToggles_GetAndPost(t *testing.T) {
	var cur render.Toggles
	s := New("", "", nil)
	s.Toggles = func() render.Toggles { return cur }
	s.SetToggles = func(tg render.Toggles) error { cur = tg; return nil }
	ts := newTestServer(t, s)

	resp, err := http.Post(ts.URL+"/api/toggles", "application/json", strings.NewReader(`{"overlay_large":true}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, render.Toggles{OverlayLarge: true}, cur)

	resp, err = http.Get(ts.URL + "/api/toggles")
	require.NoError(t, err)
	defer resp.Body.Close()
	var got render.Toggles
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.True(t, got.OverlayLarge)
	require.False(t, got.Overlay)

	resp, err = http.Post(ts.URL+"/api/toggles", "application/json", strings.NewReader(`{nope`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistory_LimitBounds(t *testing.T) {
	var gotChannel string
	var gotLimit int
	s := New("", "", nil)
	s.History = func(c string, n int) ([]state.Sample, error) {
		gotChannel, gotLimit = c, n
		return nil, nil
	}
	ts := newTestServer(t, s)

	for _, tc := range []struct {
		query string
		limit int
	}{
		{"", 100},
		{"?limit=5", 5},
		{"?limit=0", 100},
		{"?limit=5000", 100},
		{"?limit=abc", 100},
	} {
		resp, err := http.Get(ts.URL + "/api/history" + tc.query)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, tc.query)
		require.Equal(t, tc.limit, gotLimit, tc.query)
	}

	resp, err := http.Get(ts.URL + "/api/history?channel=motivation.ball")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "motivation.ball", gotChannel)
	var got []state.Sample
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAssets_ServedFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clock_3.png"), []byte("png"), 0o644))
	ts := newTestServer(t, New("", dir, nil))

	resp, err := http.Get(ts.URL + "/assets/clock_3.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, New("", "", nil))

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp2, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestStream_DeliversPublishedPayloads(t *testing.T) {
	s := New("", "", nil)
	ts := newTestServer(t, s)

	resp, err := http.Get(ts.URL + "/api/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: ping\n", line)
	_, _ = rd.ReadString('\n')
	_, _ = rd.ReadString('\n')

	// subscribed before the initial ping was written
	s.Publish("slow", render.SlowPayload{Hour: 4, Clock: "clock_4.png"})

	line, err = rd.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: slow\n", line)
	line, err = rd.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, `data: {"hour":4,"clock":"clock_4.png"}`+"\n", line)
}

func TestWebSocket_MirrorsStream(t *testing.T) {
	s := New("", "", nil)
	ts := newTestServer(t, s)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the subscription is registered after the handshake, so keep publishing
	done := make(chan struct{})
	defer close(done)
	go func() {
		tk := time.NewTicker(10 * time.Millisecond)
		defer tk.Stop()
		for {
			select {
			case <-done:
				return
			case <-tk.C:
				s.Publish("medium", render.MediumPayload{WideAudio: "test_priw.png"})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Event string               `json:"event"`
		Data  render.MediumPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &env))
	require.Equal(t, "medium", env.Event)
	require.Equal(t, "test_priw.png", env.Data.WideAudio)
}

func TestPublish_DropsForSlowSubscriber(t *testing.T) {
	b := newBroker()
	ch, cancel := b.subscribe()
	defer cancel()

	for i := 0; i < 100; i++ {
		b.publish("fast", map[string]int{"i": i})
	}
	require.Len(t, ch, cap(ch))
}
