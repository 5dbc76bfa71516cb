package service

import (
	"sync/atomic"
	"time"
)

// Тихий стрим дольше этого — признак залипшего соединения,
// даже если сокет формально открыт.
const defaultTickStaleAfter = 2 * time.Minute

// State — готовность сервиса: подключение к фиду и свежесть тиков.
type State struct {
	ready      atomic.Bool
	startedAt  time.Time
	staleAfter time.Duration

	wsConnected  atomic.Bool
	lastTickUnix atomic.Int64 // unix seconds
}

func NewState() *State {
	s := &State{
		startedAt:  time.Now(),
		staleAfter: defaultTickStaleAfter,
	}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// TickStale — тики были и давно кончились. До первого тика false:
// прогрев после старта не считаем деградацией.
func (s *State) TickStale(now time.Time) bool {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return false
	}
	return now.Sub(time.Unix(u, 0)) > s.staleAfter
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
