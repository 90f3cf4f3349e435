// Package scheduler drives the half-tick turn clock: for every playing
// room it arms a 500 ms timer that submits an advance-turn request to the
// router. It never mutates room state itself — it is only a producer of
// router requests, so all game mutation stays on the router's serial
// executor.
package scheduler

import (
	"sync"
	"time"
)

// HalfTick is the fixed interval between advance-turn firings: two
// half-ticks make one turn.
const HalfTick = 500 * time.Millisecond

// Scheduler arms one timer per playing room. fire is called from the
// timer goroutine and must only enqueue work (the router's Submit).
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	interval time.Duration
	fire     func(roomID string)
}

// New creates a scheduler that calls fire(roomID) each time a room's timer
// elapses. The room's timer does not repeat on its own: the router re-arms
// after processing each tick, so a slow tick never stacks firings.
func New(fire func(roomID string)) *Scheduler {
	return NewWithInterval(fire, HalfTick)
}

// NewWithInterval is New with a custom interval, for tests.
func NewWithInterval(fire func(roomID string), interval time.Duration) *Scheduler {
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		interval: interval,
		fire:     fire,
	}
}

// Arm schedules the room's next firing one interval from now, replacing
// any pending timer for that room.
func (s *Scheduler) Arm(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
	}
	s.timers[roomID] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		delete(s.timers, roomID)
		s.mu.Unlock()
		s.fire(roomID)
	})
}

// Stop cancels the room's pending firing, if any. Called when a game ends
// or its room is deleted.
func (s *Scheduler) Stop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
		delete(s.timers, roomID)
	}
}

// StopAll cancels every pending firing; used during shutdown.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
