package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/generals-server/core/internal/config"
	"github.com/generals-server/core/internal/logging"
	"github.com/generals-server/core/internal/router"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	core := router.New(router.Options{Logger: logging.NewLogger("error")})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go core.Run(ctx)

	cfg := config.Load()
	return NewRouter(core, nil, nil, nil, cfg, logging.NewLogger("error"))
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateRoomSuccess(t *testing.T) {
	h := newTestServer(t)
	w := postJSON(t, h, "/createRoom",
		`{"room_id":"123456","name":"my room","max_players":8,"room_color":"#3498db","host_name":"alice","host_id":"u1","is_public":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreateRoomResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RoomID != "123456" || resp.Status != "waiting" || resp.MaxPlayers != 8 {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateRoomGeneratesID(t *testing.T) {
	h := newTestServer(t)
	w := postJSON(t, h, "/createRoom",
		`{"name":"my room","max_players":8,"room_color":"#3498db","host_name":"alice","host_id":"u1","is_public":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreateRoomResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.RoomID) < 6 || len(resp.RoomID) > 7 {
		t.Errorf("generated room_id = %q, want 6-7 decimal digits", resp.RoomID)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"room id too long", `{"room_id":"12345678901","name":"ok","max_players":8,"room_color":"#3498db","host_name":"a","host_id":"u1"}`},
		{"name with ek", `{"name":"my ek room","max_players":8,"room_color":"#3498db","host_name":"a","host_id":"u1"}`},
		{"name too long", `{"name":"` + strings.Repeat("n", 51) + `","max_players":8,"room_color":"#3498db","host_name":"a","host_id":"u1"}`},
		{"max players too high", `{"name":"ok","max_players":17,"room_color":"#3498db","host_name":"a","host_id":"u1"}`},
		{"max players too low", `{"name":"ok","max_players":1,"room_color":"#3498db","host_name":"a","host_id":"u1"}`},
		{"bad color", `{"name":"ok","max_players":8,"room_color":"red","host_name":"a","host_id":"u1"}`},
		{"password too long", `{"name":"ok","max_players":8,"room_color":"#3498db","host_name":"a","host_id":"u1","password":"` + strings.Repeat("p", 21) + `"}`},
		{"missing host", `{"name":"ok","max_players":8,"room_color":"#3498db"}`},
		{"bad json", `{`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := postJSON(t, h, "/createRoom", tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateRoomConflict(t *testing.T) {
	h := newTestServer(t)
	body := `{"room_id":"777777","name":"my room","max_players":8,"room_color":"#3498db","host_name":"alice","host_id":"u1","is_public":true}`
	if w := postJSON(t, h, "/createRoom", body); w.Code != http.StatusOK {
		t.Fatalf("first create status = %d", w.Code)
	}
	if w := postJSON(t, h, "/createRoom", body); w.Code != http.StatusConflict {
		t.Errorf("second create status = %d, want 409", w.Code)
	}
}

func TestGetRooms(t *testing.T) {
	h := newTestServer(t)
	for _, id := range []string{"111111", "222222"} {
		body := `{"room_id":"` + id + `","name":"room","max_players":8,"room_color":"#3498db","host_name":"alice","host_id":"u1","is_public":true}`
		if w := postJSON(t, h, "/createRoom", body); w.Code != http.StatusOK {
			t.Fatal(w.Body.String())
		}
	}
	// A private room never shows up.
	private := `{"room_id":"333333","name":"room","max_players":8,"room_color":"#3498db","host_name":"alice","host_id":"u1","is_public":false}`
	if w := postJSON(t, h, "/createRoom", private); w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/getRooms", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp GetRoomsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalCount != 2 || len(resp.Rooms) != 2 {
		t.Errorf("response = %+v, want the two public rooms", resp)
	}
	if resp.Start != 0 || resp.End != 10 || resp.HasMore {
		t.Errorf("window = %d..%d hasMore=%v", resp.Start, resp.End, resp.HasMore)
	}
}

func TestGetRoomsWindowValidation(t *testing.T) {
	h := newTestServer(t)
	for _, path := range []string{
		"/getRooms?start=5&end=3",
		"/getRooms?start=0&end=101",
		"/getRooms?start=abc",
		"/getRooms?start=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestWebSocketMissingIdentity(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		path string
		want string
	}{
		{"/ws", "Missing user_id"},
		{"/ws?user_id=u1", "Missing username"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), tc.want) {
			t.Errorf("%s: body = %s, want %q", tc.path, w.Body.String(), tc.want)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing user id", `{"username":"alice"}`, http.StatusBadRequest},
		{"missing username", `{"user_id":"u1"}`, http.StatusBadRequest},
		{"username with ek", `{"user_id":"u1","username":"ekko"}`, http.StatusBadRequest},
		// No store is configured in this fixture.
		{"no store", `{"user_id":"u1","username":"alice"}`, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := postJSON(t, h, "/register", tc.body); w.Code != tc.want {
				t.Errorf("status = %d, want %d; body = %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
