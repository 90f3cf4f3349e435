package roomstate

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var bannedNameChars = []rune{'<', '>', '&', '"', '\''}

// ValidateDisplayName is the pluggable name-hygiene predicate: reject
// HTML-significant characters and the case-insensitive substring "ek".
// Kept as one blocklist so a policy change stays local.
func ValidateDisplayName(name string) error {
	for _, c := range bannedNameChars {
		if strings.ContainsRune(name, c) {
			return errors.New("name contains a disallowed character")
		}
	}
	if strings.Contains(strings.ToLower(name), "ek") {
		return errors.New("name contains a disallowed substring")
	}
	return nil
}

// ValidateRoomID enforces the room-id boundary: 1-10 Unicode letters or
// digits (not limited to ASCII, so room ids can use non-Latin scripts).
func ValidateRoomID(id string) error {
	if utf8.RuneCountInString(id) == 0 || utf8.RuneCountInString(id) > 10 {
		return errors.New("room_id must be 1-10 characters")
	}
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errors.New("room_id must be alphanumeric")
		}
	}
	return nil
}

// ValidateRoomName enforces 1-50 chars, must not contain "ek".
func ValidateRoomName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > 50 {
		return errors.New("name must be 1-50 characters")
	}
	if strings.Contains(strings.ToLower(name), "ek") {
		return errors.New("name contains a disallowed substring")
	}
	return nil
}

// ValidateRoomPassword enforces the 20-character boundary.
func ValidateRoomPassword(password string) error {
	if utf8.RuneCountInString(password) > 20 {
		return errors.New("password must be at most 20 characters")
	}
	return nil
}

// ValidateRoomColor enforces the "#" + 6 hex digits format.
func ValidateRoomColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return errors.New("room_color must be # followed by 6 hex digits")
	}
	for _, c := range color[1:] {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return errors.New("room_color must be # followed by 6 hex digits")
		}
	}
	return nil
}

// ValidateMaxPlayers enforces the [2,16] range.
func ValidateMaxPlayers(n int) error {
	if n < 2 || n > 16 {
		return errors.New("max_players must be between 2 and 16")
	}
	return nil
}
