package editor

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/humastar"
	"github.com/joeblew999/drawmap/internal/service"
	"github.com/joeblew999/drawmap/internal/templates"
	"github.com/joeblew999/drawmap/web"
)

func newTestHandler(t *testing.T) (*MapHandler, *service.SessionService) {
	t.Helper()
	renderer, err := templates.New(web.FS, web.TemplatePatterns...)
	if err != nil {
		t.Fatal(err)
	}
	sessions := service.NewSessionService(service.MatchLegacy, nil)
	return NewMapHandler(sessions, config.Default(), renderer), sessions
}

func TestWatchEndsWhenUnmountEventIsLost(t *testing.T) {
	h, sessions := newTestHandler(t)
	ctx := context.Background()
	id := sessions.Mount(ctx).ID

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/editor/maps/"+id+"/events", nil)
	sse := humastar.SSE{ServerSentEventGenerator: datastar.NewSSE(rec, req)}

	// The stream never sees the unmount on its events channel.
	events := make(chan service.Event)
	tick := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.watch(ctx, sse, id, events, tick)
	}()

	if err := sessions.Unmount(ctx, id); err != nil {
		t.Fatal(err)
	}
	select {
	case tick <- time.Now():
	case <-time.After(5 * time.Second):
		t.Fatal("stream not waiting on tick")
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream still open on an unmounted session")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "No markers yet") {
		t.Fatalf("missing initial sync: %s", body)
	}
	if !strings.Contains(body, "map session ended") {
		t.Fatalf("missing end-of-session error: %s", body)
	}
}

func TestWatchTickKeepsLiveSession(t *testing.T) {
	h, sessions := newTestHandler(t)
	id := sessions.Mount(context.Background()).ID

	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/editor/maps/"+id+"/events", nil)
	sse := humastar.SSE{ServerSentEventGenerator: datastar.NewSSE(rec, req)}

	tick := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.watch(ctx, sse, id, make(chan service.Event), tick)
	}()

	tick <- time.Now()
	select {
	case <-done:
		t.Fatal("stream ended on a mounted session")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	<-done

	if strings.Contains(rec.Body.String(), "map session ended") {
		t.Fatalf("unexpected end-of-session error: %s", rec.Body.String())
	}
}
