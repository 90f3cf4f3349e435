package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/generals-server/core/internal/gamemap"
)

// kindString renders a gamemap.VisibleTile's kind as its fixed wire
// string.
func kindString(t gamemap.VisibleTile) string {
	switch t.Kind {
	case gamemap.Wilderness:
		return "w"
	case gamemap.Territory:
		return "t"
	case gamemap.Mountain:
		return "m"
	case gamemap.GeneralTile:
		return "g"
	case gamemap.Void:
		return "v"
	case gamemap.City:
		switch t.CityKind {
		case gamemap.LargeCity:
			return "c_largecity"
		case gamemap.SmallCity:
			return "c_smallcity"
		default:
			return "c_settlement"
		}
	default:
		return "unknown"
	}
}

func kindFromString(s string) (gamemap.Kind, gamemap.CityKind) {
	switch s {
	case "w":
		return gamemap.Wilderness, gamemap.NoCity
	case "t":
		return gamemap.Territory, gamemap.NoCity
	case "m":
		return gamemap.Mountain, gamemap.NoCity
	case "g":
		return gamemap.GeneralTile, gamemap.NoCity
	case "v":
		return gamemap.Void, gamemap.NoCity
	case "c_largecity":
		return gamemap.City, gamemap.LargeCity
	case "c_smallcity":
		return gamemap.City, gamemap.SmallCity
	case "c_settlement":
		return gamemap.City, gamemap.Settlement
	default:
		return gamemap.UnknownKind, gamemap.NoCity
	}
}

// WireTile is the JSON-array encoding of one visible_tiles entry:
// [x, y, kind, count, owner?, has_vision].
type WireTile gamemap.VisibleTile

func (t WireTile) MarshalJSON() ([]byte, error) {
	var owner interface{}
	if t.Owner != "" {
		owner = t.Owner
	}
	return json.Marshal([]interface{}{t.X, t.Y, kindString(gamemap.VisibleTile(t)), t.Count, owner, t.HasVision})
}

func (t *WireTile) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 6 {
		return fmt.Errorf("wire tile must have 6 fields, got %d", len(raw))
	}

	var x, y, count int
	var kind string
	var owner *string
	var hasVision bool

	if err := json.Unmarshal(raw[0], &x); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &y); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &kind); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[3], &count); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[4], &owner); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[5], &hasVision); err != nil {
		return err
	}

	k, ck := kindFromString(kind)
	o := ""
	if owner != nil {
		o = *owner
	}
	*t = WireTile{X: x, Y: y, Kind: k, Count: count, Owner: o, CityKind: ck, HasVision: hasVision}
	return nil
}

// WireTiles converts a slice of visibility-projection tiles to their wire form.
func WireTiles(tiles []gamemap.VisibleTile) []WireTile {
	out := make([]WireTile, len(tiles))
	for i, t := range tiles {
		out[i] = WireTile(t)
	}
	return out
}
