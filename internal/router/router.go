// Package router is the central serial arbiter: the single logical
// serialization point for every mutation of rooms, the session registry,
// kick records, and disconnect records. Sessions and the turn scheduler
// only produce typed requests; one goroutine consumes them in arrival
// order, so all effects of a request are atomic and visible before the
// next request begins.
package router

import (
	"context"
	"math/rand"
	"time"

	"github.com/generals-server/core/internal/logging"
	"github.com/generals-server/core/internal/roomstate"
	"github.com/generals-server/core/internal/session"
	"github.com/generals-server/core/internal/telemetrybus"
)

const (
	// expireInterval is how often disconnect records older than the grace
	// window are swept.
	expireInterval = 10 * time.Second

	// sweepInterval is how often orphaned members and long-empty rooms are
	// cleaned up.
	sweepInterval = 60 * time.Second

	requestBufferSize = 1024
)

// TurnScheduler arms and cancels per-room half-tick timers. Implemented by
// internal/scheduler; wired after construction because the scheduler's
// fire callback needs the router.
type TurnScheduler interface {
	Arm(roomID string)
	Stop(roomID string)
}

// Options carries the router's tunables; zero durations fall back to the
// fixed windows the game defines.
type Options struct {
	GraceWindow  time.Duration // disconnect reconnection window (default 30s)
	KickLockout  time.Duration // per-room rejoin bar after a kick (default 5m)
	EmptyRoomTTL time.Duration // empty non-global room lifetime (default 1h)

	Logger *logging.Logger
	Bus    *telemetrybus.Bus

	// Now and Seed are injection points for tests; production leaves them
	// nil for wall-clock behavior.
	Now  func() time.Time
	Seed func() int64
}

// sessionEntry is the registry's record of one attached (or
// grace-disconnected) user: sink, display name, and room memberships.
// A nil sink means the user is disconnected but still within grace.
type sessionEntry struct {
	Name       string
	Sink       session.Outbound
	AttachedAt time.Time
	Rooms      map[string]bool
}

type Router struct {
	reqCh chan interface{}
	done  chan struct{}

	rooms       map[string]*roomstate.Room
	sessions    map[string]*sessionEntry
	disconnects map[string]time.Time

	sched  TurnScheduler
	logger *logging.Logger
	bus    *telemetrybus.Bus

	graceWindow  time.Duration
	kickLockout  time.Duration
	emptyRoomTTL time.Duration

	now  func() time.Time
	seed func() int64
	rng  *rand.Rand
}

// New constructs the router with the permanent global room already
// registered. Call SetScheduler before Run if turn timers are needed.
func New(opts Options) *Router {
	if opts.GraceWindow == 0 {
		opts.GraceWindow = 30 * time.Second
	}
	if opts.KickLockout == 0 {
		opts.KickLockout = 5 * time.Minute
	}
	if opts.EmptyRoomTTL == 0 {
		opts.EmptyRoomTTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().Unix() }
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("info")
	}

	r := &Router{
		reqCh:        make(chan interface{}, requestBufferSize),
		done:         make(chan struct{}),
		rooms:        make(map[string]*roomstate.Room),
		sessions:     make(map[string]*sessionEntry),
		disconnects:  make(map[string]time.Time),
		logger:       opts.Logger,
		bus:          opts.Bus,
		graceWindow:  opts.GraceWindow,
		kickLockout:  opts.KickLockout,
		emptyRoomTTL: opts.EmptyRoomTTL,
		now:          opts.Now,
		seed:         opts.Seed,
		rng:          rand.New(rand.NewSource(opts.Seed())),
	}
	r.rooms[roomstate.GlobalRoomID] = roomstate.NewGlobalRoom()
	return r
}

// SetScheduler wires the turn scheduler. Mirrors the construction-order
// break used for the scheduler's own fire callback, which needs the
// router first.
func (r *Router) SetScheduler(s TurnScheduler) {
	r.sched = s
}

// request envelopes processed by the serial loop.

type attachReq struct {
	UserID string
	Name   string
	Sink   session.Outbound
	Reply  chan error
}

type detachReq struct{ UserID string }

// frameReq carries one decoded inbound frame from a session.
type frameReq struct {
	UserID string
	Msg    interface{}
}

// advanceReq is the scheduler's half-tick firing for one room.
type advanceReq struct{ RoomID string }

type expireReq struct{}

type sweepReq struct{}

type createRoomReq struct {
	Params CreateRoomParams
	Reply  chan createRoomResult
}

type listRoomsReq struct {
	Start, End int
	Reply      chan listRoomsResult
}

// Run consumes requests until ctx is cancelled or Stop is called. The two
// periodic sweeps (disconnect expiry every 10s, orphan/empty-room cleanup
// every 60s) are produced here as ordinary requests so they serialize with
// everything else.
func (r *Router) Run(ctx context.Context) {
	expireTicker := time.NewTicker(expireInterval)
	sweepTicker := time.NewTicker(sweepInterval)
	defer expireTicker.Stop()
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-expireTicker.C:
			r.dispatch(expireReq{})
		case <-sweepTicker.C:
			r.dispatch(sweepReq{})
		case req := <-r.reqCh:
			r.dispatch(req)
		}
	}
}

// Stop terminates Run and cancels all pending turn timers.
func (r *Router) Stop() {
	close(r.done)
	if r.sched != nil {
		for id, room := range r.rooms {
			if room.Status == roomstate.StatusPlaying {
				r.sched.Stop(id)
			}
		}
	}
}

func (r *Router) submit(req interface{}) {
	select {
	case r.reqCh <- req:
	case <-r.done:
	}
}

// Attach registers a user's sink, reusing identity if the user is inside
// the disconnect grace window. Synchronous: the caller (the websocket
// handler) needs the verdict before starting pumps. Returns an error when
// the user id is already online.
func (r *Router) Attach(userID, name string, sink session.Outbound) error {
	reply := make(chan error, 1)
	r.submit(attachReq{UserID: userID, Name: name, Sink: sink, Reply: reply})
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return stateErr("server shutting down")
	}
}

// Submit implements session.Handler: one decoded frame from one session.
func (r *Router) Submit(userID string, req interface{}) {
	r.submit(frameReq{UserID: userID, Msg: req})
}

// Detach implements session.Handler: the connection dropped. Membership is
// preserved for the grace window.
func (r *Router) Detach(userID string) {
	r.submit(detachReq{UserID: userID})
}

// AdvanceTurn is the scheduler's fire callback.
func (r *Router) AdvanceTurn(roomID string) {
	r.submit(advanceReq{RoomID: roomID})
}

// dispatch runs one request to completion on the serial executor.
func (r *Router) dispatch(req interface{}) {
	switch q := req.(type) {
	case attachReq:
		q.Reply <- r.handleAttach(q.UserID, q.Name, q.Sink)
	case detachReq:
		r.handleDetach(q.UserID)
	case frameReq:
		r.handleFrame(q.UserID, q.Msg)
	case advanceReq:
		r.handleAdvanceTurn(q.RoomID)
	case expireReq:
		r.handleExpireDisconnected()
	case sweepReq:
		r.handleSweep()
	case createRoomReq:
		q.Reply <- r.handleCreateRoom(q.Params)
	case listRoomsReq:
		q.Reply <- r.handleListRooms(q.Start, q.End)
	default:
		r.logger.Warn(context.Background(), "router: dropping unknown request %T", req)
	}
}
