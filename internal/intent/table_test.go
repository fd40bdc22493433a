package intent

import (
	"errors"
	"testing"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/registry"
)

func testTable() *Table {
	return NewTable(config.IntentConfig{
		TemperatureMin: 5,
		TemperatureMax: 35,
	})
}

func floatPtr(v float64) *float64 { return &v }

func TestTable_Lookup(t *testing.T) {
	table := testTable()

	tests := []struct {
		name          string
		action        Action
		domain        registry.Domain
		wantPrimitive string
		wantErr       bool
	}{
		{"universal turn_on", ActionTurnOn, registry.DomainLight, "turn_on", false},
		{"universal turn_on on switch", ActionTurnOn, registry.DomainSwitch, "turn_on", false},
		{"cover overrides turn_on", ActionTurnOn, registry.DomainCover, "open_cover", false},
		{"cover overrides turn_off", ActionTurnOff, registry.DomainCover, "close_cover", false},
		{"toggle on scene", ActionToggle, registry.DomainScene, "toggle", false},
		{"open on cover", ActionOpen, registry.DomainCover, "open_cover", false},
		{"open on light unsupported", ActionOpen, registry.DomainLight, "", true},
		{"stop on cover", ActionStop, registry.DomainCover, "stop_cover", false},
		{"stop on media player", ActionStop, registry.DomainMediaPlayer, "media_stop", false},
		{"pause on media player", ActionPause, registry.DomainMediaPlayer, "media_pause", false},
		{"pause on light unsupported", ActionPause, registry.DomainLight, "", true},
		{"next track", ActionNext, registry.DomainMediaPlayer, "media_next_track", false},
		{"set_brightness on light", ActionSetBrightness, registry.DomainLight, "set_brightness", false},
		{"set_brightness on climate unsupported", ActionSetBrightness, registry.DomainClimate, "", true},
		{"set_temperature on climate", ActionSetTemperature, registry.DomainClimate, "set_temperature", false},
		{"unknown action", Action("defenestrate"), registry.DomainLight, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := table.Lookup(tt.action, tt.domain)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedAction) {
					t.Fatalf("Lookup() error = %v, want ErrUnsupportedAction", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if spec.Primitive != tt.wantPrimitive {
				t.Errorf("Primitive = %q, want %q", spec.Primitive, tt.wantPrimitive)
			}
			if spec.Domain != tt.domain {
				t.Errorf("Domain = %q, want %q", spec.Domain, tt.domain)
			}
		})
	}
}

func TestTable_Lookup_FixedParams(t *testing.T) {
	table := testTable()

	mute, err := table.Lookup(ActionMute, registry.DomainMediaPlayer)
	if err != nil {
		t.Fatalf("Lookup(mute) error = %v", err)
	}
	if mute.Primitive != "volume_mute" {
		t.Errorf("Primitive = %q, want %q", mute.Primitive, "volume_mute")
	}
	if got := mute.FixedParams["is_muted"]; got != true {
		t.Errorf("FixedParams[is_muted] = %v, want true", got)
	}

	unmute, _ := table.Lookup(ActionUnmute, registry.DomainMediaPlayer)
	if got := unmute.FixedParams["is_muted"]; got != false {
		t.Errorf("FixedParams[is_muted] = %v, want false", got)
	}
}

func TestTable_BuildParams(t *testing.T) {
	table := testTable()

	t.Run("in-range value passed through unchanged", func(t *testing.T) {
		spec, _ := table.Lookup(ActionSetVolume, registry.DomainMediaPlayer)
		params, err := table.BuildParams(spec, floatPtr(50))
		if err != nil {
			t.Fatalf("BuildParams() error = %v", err)
		}
		if got := params["volume_level"]; got != 50.0 {
			t.Errorf("volume_level = %v, want 50", got)
		}
	})

	t.Run("out-of-range value rejected not clamped", func(t *testing.T) {
		spec, _ := table.Lookup(ActionSetVolume, registry.DomainMediaPlayer)
		_, err := table.BuildParams(spec, floatPtr(150))
		if !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("BuildParams(150) error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("boundary values accepted", func(t *testing.T) {
		spec, _ := table.Lookup(ActionSetBrightness, registry.DomainLight)
		for _, v := range []float64{0, 100} {
			if _, err := table.BuildParams(spec, floatPtr(v)); err != nil {
				t.Errorf("BuildParams(%v) error = %v", v, err)
			}
		}
	})

	t.Run("temperature bounds from config", func(t *testing.T) {
		spec, _ := table.Lookup(ActionSetTemperature, registry.DomainClimate)
		if _, err := table.BuildParams(spec, floatPtr(21.5)); err != nil {
			t.Errorf("BuildParams(21.5) error = %v", err)
		}
		if _, err := table.BuildParams(spec, floatPtr(40)); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("BuildParams(40) error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("zero temperature bounds pass any value through", func(t *testing.T) {
		open := NewTable(config.IntentConfig{})
		spec, _ := open.Lookup(ActionSetTemperature, registry.DomainClimate)
		params, err := open.BuildParams(spec, floatPtr(72))
		if err != nil {
			t.Fatalf("BuildParams(72) error = %v", err)
		}
		if got := params["temperature"]; got != 72.0 {
			t.Errorf("temperature = %v, want 72", got)
		}
	})

	t.Run("missing required value", func(t *testing.T) {
		spec, _ := table.Lookup(ActionSetBrightness, registry.DomainLight)
		if _, err := table.BuildParams(spec, nil); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("BuildParams(nil) error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("surplus value rejected", func(t *testing.T) {
		spec, _ := table.Lookup(ActionTurnOn, registry.DomainLight)
		if _, err := table.BuildParams(spec, floatPtr(1)); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("BuildParams(turn_on, 1) error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("fixed params included", func(t *testing.T) {
		spec, _ := table.Lookup(ActionMute, registry.DomainMediaPlayer)
		params, err := table.BuildParams(spec, nil)
		if err != nil {
			t.Fatalf("BuildParams() error = %v", err)
		}
		if got := params["is_muted"]; got != true {
			t.Errorf("is_muted = %v, want true", got)
		}
	})
}
