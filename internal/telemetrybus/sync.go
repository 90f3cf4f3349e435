// Package telemetrybus publishes a best-effort stream of room lifecycle and
// game-win events to Redis Pub/Sub for external dashboards. It never feeds
// back into game state: the router's in-memory state remains the sole
// authority, and in-progress games are never persisted.
package telemetrybus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/generals-server/core/internal/redisbus"
)

const channel = "game_events"

// Bus publishes room/game lifecycle events. A nil *Bus (no Redis configured)
// is safe to call; publishing becomes a no-op.
type Bus struct {
	cache *redisbus.Cache
}

// New creates a Bus backed by the given cache. cache may be nil.
func New(cache *redisbus.Cache) *Bus {
	return &Bus{cache: cache}
}

type event struct {
	Type      string      `json:"type"`
	RoomID    string      `json:"room_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

func (b *Bus) publish(ctx context.Context, e event) {
	if b == nil || b.cache == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	// Best-effort: a dashboard consumer missing this event resyncs on the
	// next one. Errors are never surfaced to the game core.
	_ = b.cache.Publish(ctx, channel, string(data))
}

// PublishRoomCreated announces a new room to external dashboards.
func (b *Bus) PublishRoomCreated(ctx context.Context, roomID string) {
	b.publish(ctx, event{Type: "room_created", RoomID: roomID, Timestamp: time.Now()})
}

// PublishRoomDeleted announces a room's removal (empty-room sweep).
func (b *Bus) PublishRoomDeleted(ctx context.Context, roomID string) {
	b.publish(ctx, event{Type: "room_deleted", RoomID: roomID, Timestamp: time.Now()})
}

// PublishGameStarted announces a game starting in a room.
func (b *Bus) PublishGameStarted(ctx context.Context, roomID string, playerCount int) {
	b.publish(ctx, event{Type: "game_started", RoomID: roomID, Timestamp: time.Now(), Data: map[string]int{"player_count": playerCount}})
}

// PublishGameWin announces a room's victory condition being met.
func (b *Bus) PublishGameWin(ctx context.Context, roomID, winner string) {
	b.publish(ctx, event{Type: "game_win", RoomID: roomID, Timestamp: time.Now(), Data: map[string]string{"winner": winner}})
}

// PublishUserStatus announces a user's online/offline transition.
func (b *Bus) PublishUserStatus(ctx context.Context, userID, status string) {
	b.publish(ctx, event{Type: "status_change", UserID: userID, Timestamp: time.Now(), Data: map[string]string{"status": status}})
}
