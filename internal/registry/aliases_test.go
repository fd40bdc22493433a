package registry

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Office Lamp", "office lamp"},
		{"underscores", "office_lamp", "office lamp"},
		{"hyphens", "ceiling-light", "ceiling light"},
		{"dots", "light.office_lamp", "light office lamp"},
		{"apostrophe dropped", "mum's lamp", "mums lamp"},
		{"collapse whitespace", "  office   lamp  ", "office lamp"},
		{"mixed punctuation", "Kid's Room (North)", "kids room north"},
		{"digits kept", "lamp 2", "lamp 2"},
		{"empty", "", ""},
		{"only punctuation", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens(Normalize("Office  Lamp-2"))
	want := []string{"office", "lamp", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}

	if got := Tokens(""); len(got) != 0 {
		t.Errorf("Tokens(empty) = %v, want empty", got)
	}
}

func TestBuildAliases(t *testing.T) {
	t.Run("includes normalized base", func(t *testing.T) {
		aliases := BuildAliases("Office Lamp")
		if !contains(aliases, "office lamp") {
			t.Errorf("aliases %v missing base form", aliases)
		}
	})

	t.Run("singular and plural variants", func(t *testing.T) {
		aliases := BuildAliases("office lights")
		if !contains(aliases, "office light") {
			t.Errorf("aliases %v missing singular variant", aliases)
		}
		aliases = BuildAliases("office light")
		if !contains(aliases, "office lights") {
			t.Errorf("aliases %v missing plural variant", aliases)
		}
	})

	t.Run("sorted and deduplicated", func(t *testing.T) {
		aliases := BuildAliases("lamp lamp")
		seen := map[string]bool{}
		for i, a := range aliases {
			if seen[a] {
				t.Errorf("duplicate alias %q", a)
			}
			seen[a] = true
			if i > 0 && aliases[i-1] > a {
				t.Errorf("aliases not sorted: %v", aliases)
			}
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if aliases := BuildAliases("   "); len(aliases) != 0 {
			t.Errorf("BuildAliases(blank) = %v, want empty", aliases)
		}
	})
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
