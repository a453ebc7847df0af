package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	t.Run("space aliases", func(t *testing.T) {
		for _, raw := range []string{"space", " ", "Space"} {
			keys, help := parseBindingKeys(raw, "x")
			if len(keys) != 2 || keys[0] != " " || keys[1] != "space" {
				t.Fatalf("unexpected parsed space keys %#v for %q", keys, raw)
			}
			if help != "space" {
				t.Fatalf("unexpected space help text %q", help)
			}
		}
	})

	t.Run("uppercase rune includes shift alias", func(t *testing.T) {
		keys, help := parseBindingKeys("Y", "y")
		if len(keys) != 2 || keys[0] != "Y" || keys[1] != "shift+y" {
			t.Fatalf("unexpected uppercase parsed keys %#v", keys)
		}
		if help != "Y" {
			t.Fatalf("unexpected uppercase help text %q", help)
		}
	})

	t.Run("multi rune lowercases key matcher", func(t *testing.T) {
		keys, help := parseBindingKeys("Ctrl+T", "t")
		if len(keys) != 1 || keys[0] != "ctrl+t" {
			t.Fatalf("unexpected multi-rune parsed keys %#v", keys)
		}
		if help != "Ctrl+T" {
			t.Fatalf("unexpected multi-rune help text %q", help)
		}
	})

	t.Run("blank uses fallback", func(t *testing.T) {
		keys, help := parseBindingKeys("", "y")
		if len(keys) != 1 || keys[0] != "y" || help != "y" {
			t.Fatalf("unexpected fallback parse %#v %q", keys, help)
		}
	})
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "old"))
	configureBinding(&b, "c", "y", "copy text")
	keys := b.Keys()
	if len(keys) != 1 || keys[0] != "c" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "c" || b.Help().Desc != "copy text" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{Grab: "g", ToggleTheme: "T", Copy: ""})

	assertKeys := func(name string, binding key.Binding, expected ...string) {
		t.Helper()
		got := binding.Keys()
		if len(got) != len(expected) {
			t.Fatalf("%s key count mismatch got=%#v expected=%#v", name, got, expected)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s key mismatch got=%#v expected=%#v", name, got, expected)
			}
		}
	}

	assertKeys("grab", k.grab, "g")
	assertKeys("toggle theme", k.toggleTheme, "T", "shift+t")
	assertKeys("copy", k.copyTask, "y")
}

func TestKeyMapHelpGroups(t *testing.T) {
	k := newKeyMap()
	if len(k.ShortHelp()) == 0 {
		t.Fatal("expected short help bindings")
	}
	groups := k.FullHelp()
	if len(groups) != 4 {
		t.Fatalf("expected 4 help groups, got %d", len(groups))
	}
	if got := k.dragHelp(); len(got) != 6 {
		t.Fatalf("expected 6 drag bindings, got %d", len(got))
	}
}
