package session

import (
	"testing"

	"github.com/generals-server/core/internal/logging"
)

func TestEnqueueDropsWhenFull(t *testing.T) {
	s := New(nil, "u1", "alice", nil, logging.NewLogger("error"))

	for i := 0; i < sendBufferSize; i++ {
		if !s.Enqueue(i) {
			t.Fatalf("enqueue %d rejected before the buffer filled", i)
		}
	}
	if s.Enqueue("overflow") {
		t.Error("enqueue on a full sink must drop, not block")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(nil, "u1", "alice", nil, logging.NewLogger("error"))
	s.Close()
	s.Close() // second close from a racing teardown must not panic

	if s.Enqueue("late") {
		t.Error("enqueue after close reported success")
	}
}
