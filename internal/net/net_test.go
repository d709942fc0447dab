package net

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/realtime"
	"CanvasBoard/internal/state"
)

func startHub(t *testing.T) (*Hub, *Dialer) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, &Dialer{Addr: strings.TrimPrefix(srv.URL, "http://")}
}

func join(t *testing.T, d *Dialer, roomID, key string) realtime.Channel {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ch, err := d.Join(ctx, roomID, key)
	require.NoError(t, err)
	t.Cleanup(func() { ch.Leave() })
	return ch
}

type recorder struct {
	mu   sync.Mutex
	msgs []json.RawMessage
}

func (r *recorder) handle(raw json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, raw)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestHubRelaysToOthersOnly(t *testing.T) {
	hub, d := startHub(t)
	a := join(t, d, "board", "k")
	b := join(t, d, "board", "k")
	require.Eventually(t, func() bool { return hub.Rooms()["board"] == 2 }, 2*time.Second, 10*time.Millisecond)

	var ra, rb recorder
	a.On(realtime.EventCursor, ra.handle)
	b.On(realtime.EventCursor, rb.handle)

	require.NoError(t, a.Send(realtime.EventCursor, realtime.CursorMessage{ID: "a", X: 4, Y: 2}))
	require.Eventually(t, func() bool { return rb.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	var got realtime.CursorMessage
	require.NoError(t, json.Unmarshal(rb.msgs[0], &got))
	assert.Equal(t, 4.0, got.X)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, ra.count())
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub, d := startHub(t)
	a := join(t, d, "one", "")
	b := join(t, d, "two", "")
	require.Eventually(t, func() bool { return len(hub.Rooms()) == 2 }, 2*time.Second, 10*time.Millisecond)

	var rb recorder
	b.On(realtime.EventElements, rb.handle)
	require.NoError(t, a.Send(realtime.EventElements, realtime.ElementsMessage{SenderID: "a"}))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rb.count())
}

func TestHubPresence(t *testing.T) {
	hub, d := startHub(t)
	a := join(t, d, "board", "")
	b := join(t, d, "board", "")

	require.NoError(t, a.Track(realtime.Meta{Key: "a", Name: "Ada"}))
	require.NoError(t, b.Track(realtime.Meta{Key: "b", Name: "Bo"}))

	require.Eventually(t, func() bool { return len(a.Presence()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []realtime.Meta{{Key: "a", Name: "Ada"}, {Key: "b", Name: "Bo"}}, hub.Members("board"))

	require.NoError(t, b.Leave())
	require.Eventually(t, func() bool { return len(a.Presence()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "a", a.Presence()[0].Key)
}

func TestEveryPresenceHandlerIsCalled(t *testing.T) {
	_, d := startHub(t)
	ws := join(t, d, "board", "")
	bus := NewLocalBus()
	local, err := bus.Join(context.Background(), "board", "")
	require.NoError(t, err)

	for name, ch := range map[string]realtime.Channel{"websocket": ws, "local": local} {
		var mu sync.Mutex
		calls := [2]int{}
		for i := range calls {
			ch.OnPresence(func([]realtime.Meta) {
				mu.Lock()
				calls[i]++
				mu.Unlock()
			})
		}
		require.NoError(t, ch.Track(realtime.Meta{Key: name, Name: name}))
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return calls[0] > 0 && calls[1] > 0
		}, 2*time.Second, 10*time.Millisecond, name)
	}
}

func TestHubRejectsWrongKey(t *testing.T) {
	hub, d := startHub(t)
	join(t, d, "board", "secret")
	require.Eventually(t, func() bool { return hub.Rooms()["board"] == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := d.Join(context.Background(), "board", "guess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = d.Join(context.Background(), "", "")
	require.Error(t, err)
}

func TestHubFirstKeyWinsBeforeUpgrade(t *testing.T) {
	hub := NewHub()
	require.True(t, hub.admit("board", "first"))
	assert.False(t, hub.admit("board", "second"), "a racing first joiner must not pick its own key")
	assert.True(t, hub.admit("board", "first"))

	hub.release("board")
	hub.release("board")
	_, open := hub.Rooms()["board"]
	assert.False(t, open, "a room nobody reached is forgotten")
	assert.True(t, hub.admit("board", "second"))
}

func TestHubConcurrentFirstJoinersShareOneKey(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := map[string]int{}
	for i := 0; i < 16; i++ {
		key := "a"
		if i%2 == 1 {
			key = "b"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if hub.admit("board", key) {
				mu.Lock()
				admitted[key]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, admitted, 1)
}

func TestLocalBusSyncsWithoutEcho(t *testing.T) {
	bus := NewLocalBus()
	ea, eb := engine.New(), engine.New()
	sa := realtime.NewSyncer(ea, realtime.NewIdentity("a", ""), realtime.Options{})
	sb := realtime.NewSyncer(eb, realtime.NewIdentity("b", ""), realtime.Options{})

	ca, err := bus.Join(context.Background(), "board", "")
	require.NoError(t, err)
	cb, err := bus.Join(context.Background(), "board", "")
	require.NoError(t, err)
	require.NoError(t, sa.Attach(ca))
	require.NoError(t, sb.Attach(cb))

	ea.SetTool(engine.ToolRectangle)
	ea.PointerDown(engine.PointerEvent{Screen: state.Point{X: 10, Y: 10}})
	ea.PointerMove(engine.PointerEvent{Screen: state.Point{X: 80, Y: 50}})
	ea.PointerUp(engine.PointerEvent{Screen: state.Point{X: 80, Y: 50}})
	require.True(t, sa.Detect())

	require.Equal(t, 1, eb.Store().Len())
	got, want := eb.Store().Elements()[0], ea.Store().Elements()[0]
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, state.Rect{X: want.X, Y: want.Y, Width: want.Width, Height: want.Height},
		state.Rect{X: got.X, Y: got.Y, Width: got.Width, Height: got.Height})
	assert.False(t, sb.Detect())
	assert.False(t, sa.Detect())

	require.Len(t, sa.Peers(), 1)
	assert.Equal(t, "b", sa.Peers()[0].Name)

	require.NoError(t, sb.Detach())
	assert.Empty(t, sa.Peers())
}

func TestShareLinkRoundTrip(t *testing.T) {
	link := ShareLink("canvasboard", Invite{Addr: "192.168.1.4:8888", Room: "design", Key: "s3"})
	assert.Equal(t, "canvasboard://192.168.1.4:8888/design?key=s3", link)

	inv, err := ParseShareLink("canvasboard", link)
	require.NoError(t, err)
	assert.Equal(t, Invite{Addr: "192.168.1.4:8888", Room: "design", Key: "s3"}, inv)

	for _, bad := range []string{
		"http://192.168.1.4:8888/design",
		"canvasboard://192.168.1.4/design",
		"canvasboard://192.168.1.4:8888/",
	} {
		_, err := ParseShareLink("canvasboard", bad)
		assert.Error(t, err, bad)
	}
}
