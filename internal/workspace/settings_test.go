package workspace

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/ahriknow/ahridocs/internal/testutil"
)

func TestLoadSettings_CreatesDefaults(t *testing.T) {
	memFs := afero.NewMemMapFs()
	root := testutil.Path("/", "docs")

	s, err := LoadSettings(memFs, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != (Settings{}) {
		t.Errorf("expected empty defaults, got %+v", s)
	}

	data, err := afero.ReadFile(memFs, SettingsPath(root))
	if err != nil {
		t.Fatalf("expected settings file written: %v", err)
	}
	if want := "{\n  \"token\": \"\",\n  \"project\": \"\"\n}"; string(data) != want {
		t.Errorf("settings file = %q, want %q", data, want)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	memFs := afero.NewMemMapFs()
	root := testutil.Path("/", "docs")
	want := Settings{Token: "secret", Project: "handbook"}

	if err := SaveSettings(memFs, root, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := LoadSettings(memFs, root)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	memFs := afero.NewMemMapFs()
	root := testutil.Path("/", "docs")
	afero.WriteFile(memFs, SettingsPath(root), []byte("{"), 0644)

	if _, err := LoadSettings(memFs, root); err == nil {
		t.Error("expected parse error")
	}
}
