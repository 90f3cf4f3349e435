package roomstate

import (
	"strings"
	"testing"
)

func TestValidateDisplayName(t *testing.T) {
	valid := []string{"alice", "小明", "player_1", "Bob42"}
	for _, name := range valid {
		if err := ValidateDisplayName(name); err != nil {
			t.Errorf("ValidateDisplayName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"a<b", "a>b", "a&b", `a"b`, "a'b", "ekko", "Ekko", "snEK", "derek"}
	for _, name := range invalid {
		if err := ValidateDisplayName(name); err == nil {
			t.Errorf("ValidateDisplayName(%q) = nil, want error", name)
		}
	}
}

func TestValidateRoomID(t *testing.T) {
	if err := ValidateRoomID(strings.Repeat("a", 10)); err != nil {
		t.Errorf("10-char id rejected: %v", err)
	}
	if err := ValidateRoomID(strings.Repeat("a", 11)); err == nil {
		t.Error("11-char id accepted")
	}
	if err := ValidateRoomID(""); err == nil {
		t.Error("empty id accepted")
	}
	if err := ValidateRoomID("room-1"); err == nil {
		t.Error("hyphenated id accepted")
	}
	if err := ValidateRoomID("房间一"); err != nil {
		t.Errorf("unicode letter id rejected: %v", err)
	}
}

func TestValidateRoomName(t *testing.T) {
	if err := ValidateRoomName(strings.Repeat("n", 50)); err != nil {
		t.Errorf("50-char name rejected: %v", err)
	}
	if err := ValidateRoomName(strings.Repeat("n", 51)); err == nil {
		t.Error("51-char name accepted")
	}
	if err := ValidateRoomName("my ek room"); err == nil {
		t.Error("name containing ek accepted")
	}
}

func TestValidateRoomPassword(t *testing.T) {
	if err := ValidateRoomPassword(strings.Repeat("p", 20)); err != nil {
		t.Errorf("20-char password rejected: %v", err)
	}
	if err := ValidateRoomPassword(strings.Repeat("p", 21)); err == nil {
		t.Error("21-char password accepted")
	}
	if err := ValidateRoomPassword(""); err != nil {
		t.Errorf("empty password rejected: %v", err)
	}
}

func TestValidateRoomColor(t *testing.T) {
	valid := []string{"#ff0000", "#00FF00", "#123abc"}
	for _, c := range valid {
		if err := ValidateRoomColor(c); err != nil {
			t.Errorf("ValidateRoomColor(%q) = %v, want nil", c, err)
		}
	}
	invalid := []string{"", "ff0000", "#ff00", "#ff00000", "#gggggg"}
	for _, c := range invalid {
		if err := ValidateRoomColor(c); err == nil {
			t.Errorf("ValidateRoomColor(%q) = nil, want error", c)
		}
	}
}

func TestValidateMaxPlayers(t *testing.T) {
	for _, n := range []int{2, 16} {
		if err := ValidateMaxPlayers(n); err != nil {
			t.Errorf("ValidateMaxPlayers(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{0, 1, 17} {
		if err := ValidateMaxPlayers(n); err == nil {
			t.Errorf("ValidateMaxPlayers(%d) = nil, want error", n)
		}
	}
}
