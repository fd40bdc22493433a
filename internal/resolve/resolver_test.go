package resolve

import (
	"testing"
	"time"

	"github.com/voxhaus/voxhaus-core/internal/registry"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

func testSnapshot(t *testing.T, devices ...transport.Device) *registry.Snapshot {
	t.Helper()
	return registry.BuildSnapshot(devices, 1, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
}

func TestResolver_Resolve(t *testing.T) {
	resolver := New(0.80, 0.50)
	snap := testSnapshot(t,
		transport.Device{ID: "light.office_lamp", Name: "Office Lamp"},
		transport.Device{ID: "light.kitchen", Name: "Kitchen Light"},
		transport.Device{ID: "switch.kettle", Name: "Kettle"},
	)

	t.Run("exact name resolves", func(t *testing.T) {
		result := resolver.Resolve(snap, "office lamp")
		if !result.Resolved {
			t.Fatal("expected resolution")
		}
		if result.Best.Record.ID != "light.office_lamp" {
			t.Errorf("resolved %q, want light.office_lamp", result.Best.Record.ID)
		}
		if result.Best.Score != 1 {
			t.Errorf("Score = %v, want 1 for exact match", result.Best.Score)
		}
	})

	t.Run("case and punctuation ignored", func(t *testing.T) {
		result := resolver.Resolve(snap, "  Office-Lamp ")
		if !result.Resolved || result.Best.Record.ID != "light.office_lamp" {
			t.Errorf("Resolve(Office-Lamp) = %+v, want office lamp match", result)
		}
	})

	t.Run("plural variant resolves", func(t *testing.T) {
		result := resolver.Resolve(snap, "office lamps")
		if !result.Resolved || result.Best.Record.ID != "light.office_lamp" {
			t.Errorf("Resolve(office lamps) = %+v, want office lamp match", result)
		}
	})

	t.Run("near miss suggests instead of acting", func(t *testing.T) {
		result := resolver.Resolve(snap, "offic lamp")
		if result.Resolved {
			t.Fatal("near miss must not resolve automatically")
		}
		if result.Suggestion != "Office Lamp" {
			t.Errorf("Suggestion = %q, want %q", result.Suggestion, "Office Lamp")
		}
	})

	t.Run("nonsense yields nothing", func(t *testing.T) {
		result := resolver.Resolve(snap, "xyz")
		if result.Resolved || result.Suggestion != "" || result.Best != nil {
			t.Errorf("Resolve(xyz) = %+v, want empty result", result)
		}
	})

	t.Run("empty target yields nothing", func(t *testing.T) {
		result := resolver.Resolve(snap, "   ")
		if result.Resolved || result.Best != nil {
			t.Errorf("Resolve(blank) = %+v, want empty result", result)
		}
	})

	t.Run("empty snapshot yields nothing", func(t *testing.T) {
		result := resolver.Resolve(testSnapshot(t), "office lamp")
		if result.Resolved || result.Best != nil {
			t.Errorf("Resolve on empty snapshot = %+v, want empty result", result)
		}
	})
}

func TestResolver_Resolve_Deterministic(t *testing.T) {
	resolver := New(0.80, 0.50)
	snap := testSnapshot(t,
		transport.Device{ID: "light.lamp_b", Name: "Desk Lamp"},
		transport.Device{ID: "light.lamp_a", Name: "Desk Lamp"},
	)

	// Identical names and LastSeen: ID order breaks the tie the same way
	// every run.
	for i := 0; i < 10; i++ {
		result := resolver.Resolve(snap, "desk lamp")
		if !result.Resolved {
			t.Fatal("expected resolution")
		}
		if result.Best.Record.ID != "light.lamp_a" {
			t.Fatalf("run %d resolved %q, want light.lamp_a", i, result.Best.Record.ID)
		}
	}
}

func TestResolver_Resolve_RankedCandidates(t *testing.T) {
	resolver := New(0.99, 0.30)
	snap := testSnapshot(t,
		transport.Device{ID: "light.office_lamp", Name: "Office Lamp"},
		transport.Device{ID: "light.office_ceiling", Name: "Office Ceiling"},
	)

	result := resolver.Resolve(snap, "office lam")
	if len(result.Candidates) < 2 {
		t.Fatalf("Candidates = %d, want at least 2", len(result.Candidates))
	}
	for i := 1; i < len(result.Candidates); i++ {
		if result.Candidates[i-1].Score < result.Candidates[i].Score {
			t.Fatal("candidates not ordered best first")
		}
	}
	if result.Candidates[0].Record.ID != "light.office_lamp" {
		t.Errorf("best candidate %q, want light.office_lamp", result.Candidates[0].Record.ID)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"lamp", "", 4},
		{"lamp", "lamp", 0},
		{"offic", "office", 1},
		{"kitchen", "kitten", 2},
		{"abc", "xyz", 3},
	}

	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAdvisory(t *testing.T) {
	t.Run("with suggestion", func(t *testing.T) {
		got := Advisory("offic lamp", Result{Suggestion: "Office Lamp"})
		want := `No device called "offic lamp". Did you mean "Office Lamp"?`
		if got != want {
			t.Errorf("Advisory() = %q, want %q", got, want)
		}
	})

	t.Run("without suggestion", func(t *testing.T) {
		got := Advisory("xyz", Result{})
		want := `No device called "xyz".`
		if got != want {
			t.Errorf("Advisory() = %q, want %q", got, want)
		}
	})

	t.Run("resolved yields empty", func(t *testing.T) {
		if got := Advisory("office lamp", Result{Resolved: true}); got != "" {
			t.Errorf("Advisory(resolved) = %q, want empty", got)
		}
	})
}
