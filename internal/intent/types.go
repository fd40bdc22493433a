package intent

import "github.com/voxhaus/voxhaus-core/internal/registry"

// Action is a spoken-level action name, the verb half of a voice command.
// Actions are backend-agnostic; the table maps them onto backend primitives
// per device domain.
type Action string

// Supported spoken actions.
const (
	ActionTurnOn         Action = "turn_on"
	ActionTurnOff        Action = "turn_off"
	ActionToggle         Action = "toggle"
	ActionOpen           Action = "open"
	ActionClose          Action = "close"
	ActionStop           Action = "stop"
	ActionPlay           Action = "play"
	ActionPause          Action = "pause"
	ActionNext           Action = "next"
	ActionPrevious       Action = "previous"
	ActionVolumeUp       Action = "volume_up"
	ActionVolumeDown     Action = "volume_down"
	ActionSetVolume      Action = "set_volume"
	ActionMute           Action = "mute"
	ActionUnmute         Action = "unmute"
	ActionSetBrightness  Action = "set_brightness"
	ActionSetTemperature Action = "set_temperature"
)

// AllActions returns every spoken action the table knows about.
func AllActions() []Action {
	return []Action{
		ActionTurnOn, ActionTurnOff, ActionToggle,
		ActionOpen, ActionClose, ActionStop,
		ActionPlay, ActionPause, ActionNext, ActionPrevious,
		ActionVolumeUp, ActionVolumeDown, ActionSetVolume,
		ActionMute, ActionUnmute,
		ActionSetBrightness, ActionSetTemperature,
	}
}

// ValueSpec describes the numeric argument an action accepts: the parameter
// key it maps to and the inclusive range it must fall within. Values outside
// the range are rejected, never clamped — a command that asked for the
// impossible should fail loudly rather than do something else. Min and Max
// both zero means unbounded (temperature with no deployment bounds set).
type ValueSpec struct {
	Key string
	Min float64
	Max float64
}

// ActionSpec is one resolved table entry: the backend primitive to invoke
// for an action on a given domain, plus any fixed parameters and the spec
// for the optional numeric value.
type ActionSpec struct {
	Action    Action
	Domain    registry.Domain
	Primitive string

	// FixedParams are sent with every invocation of this entry
	// (e.g. is_muted for mute/unmute).
	FixedParams map[string]any

	// Value is non-nil when the action carries a numeric argument.
	Value *ValueSpec
}

// RequiresValue reports whether the action must be given a numeric value.
func (s ActionSpec) RequiresValue() bool {
	return s.Value != nil
}
