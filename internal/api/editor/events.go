package editor

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/joeblew999/drawmap/internal/api"
	"github.com/joeblew999/drawmap/internal/humastar"
	"github.com/joeblew999/drawmap/internal/service"
)

// sessionCheckInterval is how often an open stream confirms its session is
// still mounted, in case the bus dropped the unmount event.
const sessionCheckInterval = 15 * time.Second

// Events streams a session's state to its page via SSE. It sends the current
// state on connect and again after every change, and ends when the client
// disconnects or the session is unmounted. While connected, the session is
// kept from idle reaping.
func (h *MapHandler) Events(ctx context.Context, input *api.MapIDInput) (*huma.StreamResponse, error) {
	if _, err := h.sessions.Get(input.ID); err != nil {
		return nil, api.Error(err)
	}

	return h.Stream(func(sse humastar.SSE) {
		release, err := h.sessions.Attach(input.ID)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		defer release()

		bus := h.sessions.Bus()
		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		ticker := time.NewTicker(sessionCheckInterval)
		defer ticker.Stop()

		h.watch(ctx, sse, input.ID, ch, ticker.C)
	}), nil
}

// watch syncs the page until ctx ends or the session goes away.
func (h *MapHandler) watch(ctx context.Context, sse humastar.SSE, id string, events <-chan service.Event, tick <-chan time.Time) {
	state, err := h.sessions.Get(id)
	if err != nil {
		sse.Error(err.Error())
		return
	}
	h.sync(sse, state)
	log.Debug().Str("session", id).Msg("Editor stream connected")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session", id).Msg("Editor stream closed")
			return
		case ev := <-events:
			if ev.Session != id {
				continue
			}
			if ev.Action == service.ActionUnmounted {
				sse.Error("map session ended")
				return
			}
			state, err := h.sessions.Get(id)
			if err != nil {
				h.ended(sse, err)
				return
			}
			h.sync(sse, state)
		case <-tick:
			if _, err := h.sessions.Get(id); err != nil {
				h.ended(sse, err)
				return
			}
		}
	}
}

func (h *MapHandler) ended(sse humastar.SSE, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		sse.Error("map session ended")
		return
	}
	sse.Error(err.Error())
}
