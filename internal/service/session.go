package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSessionNotFound is returned for an unknown or unmounted session ID.
	ErrSessionNotFound = errors.New("map session not found")
	// ErrMalformedEvent is returned when a marker event carries no position.
	ErrMalformedEvent = errors.New("malformed draw event")
)

// JournalEntry describes one applied mutation.
type JournalEntry struct {
	Session   string
	Action    string
	LayerType string
	Positions []LatLng
	At        time.Time
}

// Journal records applied mutations. It is write-only: session state is never
// rebuilt from it.
type Journal interface {
	Record(ctx context.Context, e JournalEntry) error
}

type mapSession struct {
	markers        []MarkerPosition
	overlayVisible bool
	mountedAt      time.Time

	// streams counts attached live streams; lastActive is the last mutation,
	// attach or detach. Both drive idle reaping.
	streams    int
	lastActive time.Time
}

// SessionService owns the view state of every mounted map.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*mapSession
	match    DeleteMatch
	bus      *EventBus
	journal  Journal
	now      func() time.Time
}

// NewSessionService creates a session registry using the given delete predicate.
func NewSessionService(match DeleteMatch, bus *EventBus) *SessionService {
	if bus == nil {
		bus = NewEventBus()
	}
	return &SessionService{
		sessions: make(map[string]*mapSession),
		match:    match,
		bus:      bus,
		now:      time.Now,
	}
}

// SetJournal sets the journal that receives applied mutations.
func (s *SessionService) SetJournal(j Journal) {
	s.journal = j
}

// Bus returns the event bus session changes are published on.
func (s *SessionService) Bus() *EventBus {
	return s.bus
}

// Match returns the configured delete predicate.
func (s *SessionService) Match() DeleteMatch {
	return s.match
}

// Mount creates a fresh session: no markers, overlay visible.
func (s *SessionService) Mount(ctx context.Context) MapState {
	id := uuid.NewString()
	now := s.now().UTC()
	sess := &mapSession{
		markers:        []MarkerPosition{},
		overlayVisible: true,
		mountedAt:      now,
		lastActive:     now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	state := sess.snapshot(id)
	s.mu.Unlock()

	s.applied(ctx, id, ActionMounted, "", nil)
	return state
}

// Unmount discards a session and everything it holds.
func (s *SessionService) Unmount(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("unmount %q: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.applied(ctx, id, ActionUnmounted, "", nil)
	return nil
}

// Get returns a snapshot of a session.
func (s *SessionService) Get(id string) (MapState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return MapState{}, fmt.Errorf("get %q: %w", id, ErrSessionNotFound)
	}
	return sess.snapshot(id), nil
}

// List returns snapshots of all mounted sessions, oldest first.
func (s *SessionService) List() []MapState {
	s.mu.RLock()
	result := make([]MapState, 0, len(s.sessions))
	for id, sess := range s.sessions {
		result = append(result, sess.snapshot(id))
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].MountedAt.Equal(result[j].MountedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].MountedAt.Before(result[j].MountedAt)
	})
	return result
}

// OnCreated handles a draw-control created event. Only markers are tracked;
// other layer kinds leave the state unchanged.
func (s *SessionService) OnCreated(ctx context.Context, id string, ev CreatedEvent) (MapState, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return MapState{}, fmt.Errorf("created on %q: %w", id, ErrSessionNotFound)
	}
	if ev.LayerType == KindMarker && ev.Layer == nil {
		s.mu.Unlock()
		return MapState{}, fmt.Errorf("created %s without position: %w", ev.LayerType, ErrMalformedEvent)
	}
	sess.lastActive = s.now()
	if ev.LayerType != KindMarker {
		state := sess.snapshot(id)
		s.mu.Unlock()
		log.Debug().Str("session", id).Str("layerType", ev.LayerType).Msg("Ignoring non-marker layer")
		return state, nil
	}
	sess.markers = AppendMarker(sess.markers, *ev.Layer)
	state := sess.snapshot(id)
	s.mu.Unlock()

	s.applied(ctx, id, ActionCreated, ev.LayerType, []LatLng{*ev.Layer})
	return state, nil
}

// OnDeleted handles a draw-control deleted event, removing markers once per
// deleted layer with the configured predicate.
func (s *SessionService) OnDeleted(ctx context.Context, id string, ev DeletedEvent) (MapState, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return MapState{}, fmt.Errorf("deleted on %q: %w", id, ErrSessionNotFound)
	}
	sess.markers = RemoveMarkers(sess.markers, ev.Layers, s.match)
	sess.lastActive = s.now()
	state := sess.snapshot(id)
	s.mu.Unlock()

	s.applied(ctx, id, ActionDeleted, "", ev.Layers)
	return state, nil
}

// ToggleOverlay flips overlay visibility.
func (s *SessionService) ToggleOverlay(ctx context.Context, id string) (MapState, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return MapState{}, fmt.Errorf("toggle on %q: %w", id, ErrSessionNotFound)
	}
	sess.overlayVisible = !sess.overlayVisible
	sess.lastActive = s.now()
	state := sess.snapshot(id)
	s.mu.Unlock()

	s.applied(ctx, id, ActionToggled, "", nil)
	return state, nil
}

// Attach registers a live stream on a session. A session with an attached
// stream is never reaped. The returned release must be called when the
// stream ends; the idle clock restarts from that moment.
func (s *SessionService) Attach(id string) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("attach %q: %w", id, ErrSessionNotFound)
	}
	sess.streams++
	sess.lastActive = s.now()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.sessions[id]; ok && cur == sess {
				sess.streams--
				sess.lastActive = s.now()
			}
		})
	}, nil
}

// Reap unmounts every session with no attached stream that has been idle for
// at least idle, and returns their IDs.
func (s *SessionService) Reap(ctx context.Context, idle time.Duration) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var reaped []string
	for id, sess := range s.sessions {
		if sess.streams == 0 && !sess.lastActive.After(cutoff) {
			delete(s.sessions, id)
			reaped = append(reaped, id)
		}
	}
	s.mu.Unlock()

	sort.Strings(reaped)
	for _, id := range reaped {
		log.Debug().Str("session", id).Dur("idle", idle).Msg("Reaped idle map session")
		s.applied(ctx, id, ActionUnmounted, "", nil)
	}
	return reaped
}

// RunReaper calls Reap every interval until ctx is done.
func (s *SessionService) RunReaper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap(ctx, idle)
		}
	}
}

// applied publishes the change and journals it. Journal errors are logged only.
func (s *SessionService) applied(ctx context.Context, id, action, layerType string, positions []LatLng) {
	s.bus.Publish(Event{Session: id, Action: action})

	if s.journal == nil {
		return
	}
	err := s.journal.Record(ctx, JournalEntry{
		Session:   id,
		Action:    action,
		LayerType: layerType,
		Positions: positions,
		At:        s.now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("session", id).Str("action", action).Msg("Journal write failed")
	}
}

// snapshot shares the marker slice: it is replaced, never written, on change.
func (m *mapSession) snapshot(id string) MapState {
	return MapState{
		ID:             id,
		Markers:        m.markers,
		OverlayVisible: m.overlayVisible,
		MountedAt:      m.mountedAt,
	}
}
