// Package interaction models the input telemetry a browser records while a visitor solves
// a challenge, and scores it for human-like timing. The event log comes from an untrusted
// client clock, so the analysis is a liveness heuristic to be combined with the proof of
// work, not a security boundary on its own.
package interaction

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Kind discriminates the event union on the wire.
type Kind string

const (
	KindMouseMovement Kind = "mousemovement"
	KindMouseClick    Kind = "mouseclick"
	KindMouseEnter    Kind = "mouseenter"
	KindKeyPress      Kind = "keypress"
)

// Direction tells whether a click or key event is the press or the release.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Crossing tells whether the pointer entered or left the widget.
type Crossing string

const (
	CrossingIn  Crossing = "in"
	CrossingOut Crossing = "out"
)

// Event is one input event. Which fields are meaningful depends on Kind: movement carries
// X/Y, clicks carry UpDown, enter/leave carries InOut, key presses carry UpDown and Key.
type Event struct {
	Kind   Kind      `json:"kind" mapstructure:"kind"`
	X      int       `json:"x,omitempty" mapstructure:"x"`
	Y      int       `json:"y,omitempty" mapstructure:"y"`
	UpDown Direction `json:"up_down,omitempty" mapstructure:"up_down"`
	InOut  Crossing  `json:"in_out,omitempty" mapstructure:"in_out"`
	Key    string    `json:"key,omitempty" mapstructure:"key"`
}

// Interaction is one timestamped event. TS is in client clock time units (milliseconds in
// practice) and is never trusted beyond relative timing.
type Interaction struct {
	TS    int64 `json:"ts"`
	Event Event `json:"event"`
}

// MarshalJSON renders only the fields that belong to the event's kind.
func (e Event) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"kind": e.Kind}
	switch e.Kind {
	case KindMouseMovement:
		out["x"] = e.X
		out["y"] = e.Y
	case KindMouseClick:
		out["up_down"] = e.UpDown
	case KindMouseEnter:
		out["in_out"] = e.InOut
	case KindKeyPress:
		out["up_down"] = e.UpDown
		out["key"] = e.Key
	default:
		return nil, errors.Errorf("unknown event kind: %q", e.Kind)
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes a kind-tagged event object and validates the fields required by
// its kind.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Event
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "unable to build event decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(err, "malformed interaction event")
	}

	if err := decoded.validate(); err != nil {
		return err
	}

	*e = decoded
	return nil
}

func (e Event) validate() error {
	switch e.Kind {
	case KindMouseMovement:
		return nil
	case KindMouseClick:
		return validateDirection(e.UpDown)
	case KindMouseEnter:
		if e.InOut != CrossingIn && e.InOut != CrossingOut {
			return errors.Errorf("invalid in_out value: %q", e.InOut)
		}
		return nil
	case KindKeyPress:
		if e.Key == "" {
			return errors.New("keypress event requires a key")
		}
		return validateDirection(e.UpDown)
	default:
		return errors.Errorf("unknown event kind: %q", e.Kind)
	}
}

func validateDirection(d Direction) error {
	if d != DirectionUp && d != DirectionDown {
		return errors.Errorf("invalid up_down value: %q", d)
	}
	return nil
}
