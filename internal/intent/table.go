package intent

import (
	"fmt"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/registry"
)

// domainAny marks a table row that applies to every domain unless a more
// specific row overrides it.
const domainAny registry.Domain = "*"

// row is one raw mapping before config-derived bounds are applied.
type row struct {
	action    Action
	domain    registry.Domain
	primitive string
	fixed     map[string]any
	value     *ValueSpec
}

// Table maps (action, domain) pairs onto backend primitives. Lookups are
// total: every pair either yields a complete ActionSpec or an
// ErrUnsupportedAction — the table never guesses.
//
// The table is built once at startup and read-only afterwards, so it is safe
// for concurrent use without locking.
type Table struct {
	// entries[action][domain]; domainAny holds the universal default.
	entries map[Action]map[registry.Domain]ActionSpec
}

// NewTable builds the intent table. Temperature bounds come from config so
// installations with unusual climate gear can widen them without a rebuild.
func NewTable(cfg config.IntentConfig) *Table {
	rows := []row{
		// Universal power actions. Covers speak open/close instead.
		{action: ActionTurnOn, domain: domainAny, primitive: "turn_on"},
		{action: ActionTurnOn, domain: registry.DomainCover, primitive: "open_cover"},
		{action: ActionTurnOff, domain: domainAny, primitive: "turn_off"},
		{action: ActionTurnOff, domain: registry.DomainCover, primitive: "close_cover"},
		{action: ActionToggle, domain: domainAny, primitive: "toggle"},

		// Cover movement.
		{action: ActionOpen, domain: registry.DomainCover, primitive: "open_cover"},
		{action: ActionClose, domain: registry.DomainCover, primitive: "close_cover"},
		{action: ActionStop, domain: registry.DomainCover, primitive: "stop_cover"},

		// Media transport.
		{action: ActionPlay, domain: registry.DomainMediaPlayer, primitive: "media_play"},
		{action: ActionPause, domain: registry.DomainMediaPlayer, primitive: "media_pause"},
		{action: ActionStop, domain: registry.DomainMediaPlayer, primitive: "media_stop"},
		{action: ActionNext, domain: registry.DomainMediaPlayer, primitive: "media_next_track"},
		{action: ActionPrevious, domain: registry.DomainMediaPlayer, primitive: "media_previous_track"},

		// Volume.
		{action: ActionVolumeUp, domain: registry.DomainMediaPlayer, primitive: "volume_up"},
		{action: ActionVolumeDown, domain: registry.DomainMediaPlayer, primitive: "volume_down"},
		{action: ActionSetVolume, domain: registry.DomainMediaPlayer, primitive: "volume_set",
			value: &ValueSpec{Key: "volume_level", Min: 0, Max: 100}},
		{action: ActionMute, domain: registry.DomainMediaPlayer, primitive: "volume_mute",
			fixed: map[string]any{"is_muted": true}},
		{action: ActionUnmute, domain: registry.DomainMediaPlayer, primitive: "volume_mute",
			fixed: map[string]any{"is_muted": false}},

		// Level setters.
		{action: ActionSetBrightness, domain: registry.DomainLight, primitive: "set_brightness",
			value: &ValueSpec{Key: "brightness", Min: 0, Max: 100}},
		{action: ActionSetTemperature, domain: registry.DomainClimate, primitive: "set_temperature",
			value: &ValueSpec{Key: "temperature", Min: cfg.TemperatureMin, Max: cfg.TemperatureMax}},
	}

	entries := make(map[Action]map[registry.Domain]ActionSpec, len(rows))
	for _, r := range rows {
		byDomain, ok := entries[r.action]
		if !ok {
			byDomain = make(map[registry.Domain]ActionSpec)
			entries[r.action] = byDomain
		}
		byDomain[r.domain] = ActionSpec{
			Action:      r.action,
			Domain:      r.domain,
			Primitive:   r.primitive,
			FixedParams: r.fixed,
			Value:       r.value,
		}
	}

	return &Table{entries: entries}
}

// Lookup resolves an action for a device domain. A domain-specific row wins
// over a universal one; if neither exists the pair is unsupported.
//
// Returns:
//   - ActionSpec: the complete mapping for the pair
//   - error: ErrUnsupportedAction (wrapped with the pair) when no row matches
func (t *Table) Lookup(action Action, domain registry.Domain) (ActionSpec, error) {
	byDomain, ok := t.entries[action]
	if !ok {
		return ActionSpec{}, fmt.Errorf("%w: %q on %q", ErrUnsupportedAction, action, domain)
	}

	if spec, ok := byDomain[domain]; ok {
		return spec, nil
	}
	if spec, ok := byDomain[domainAny]; ok {
		spec.Domain = domain
		return spec, nil
	}
	return ActionSpec{}, fmt.Errorf("%w: %q on %q", ErrUnsupportedAction, action, domain)
}

// Supports reports whether the action maps onto anything for the domain.
func (t *Table) Supports(action Action, domain registry.Domain) bool {
	_, err := t.Lookup(action, domain)
	return err == nil
}

// BuildParams validates the optional numeric value against the spec and
// assembles the final invocation parameters: fixed params plus the value
// under its parameter key.
//
// In-range values pass through unchanged. Out-of-range values are rejected
// with ErrInvalidValue, as is a missing value for an action that requires
// one or a surplus value for an action that takes none.
func (t *Table) BuildParams(spec ActionSpec, value *float64) (map[string]any, error) {
	params := make(map[string]any, len(spec.FixedParams)+1)
	for k, v := range spec.FixedParams {
		params[k] = v
	}

	switch {
	case spec.Value == nil && value != nil:
		return nil, fmt.Errorf("%w: %q takes no value", ErrInvalidValue, spec.Action)
	case spec.Value != nil && value == nil:
		return nil, fmt.Errorf("%w: %q requires a value", ErrInvalidValue, spec.Action)
	case spec.Value != nil:
		// Zero bounds (Min == Max == 0) disable the range check; used for
		// temperature, whose unit and sane range are deployment-specific.
		bounded := spec.Value.Min != 0 || spec.Value.Max != 0
		if bounded && (*value < spec.Value.Min || *value > spec.Value.Max) {
			return nil, fmt.Errorf("%w: %q value %v outside [%v, %v]",
				ErrInvalidValue, spec.Action, *value, spec.Value.Min, spec.Value.Max)
		}
		params[spec.Value.Key] = *value
	}

	return params, nil
}
