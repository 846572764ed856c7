package shotmask

import (
	"path/filepath"
	"testing"

	"github.com/dshepstone/playblast-tool/internal/settings"
)

func TestLoadConfigDefaultsFromEmptyStore(t *testing.T) {
	store := settings.Load(filepath.Join(t.TempDir(), "settings.json"))

	got := LoadConfig(store)
	want := DefaultConfig()
	if got != want {
		t.Errorf("LoadConfig on empty store = %+v, want defaults %+v", got, want)
	}
}

func TestLoadConfigRejectsOutOfRangeStoredValues(t *testing.T) {
	store := settings.Load(filepath.Join(t.TempDir(), "settings.json"))
	store.SetFloat("mask.label_scale", 99.0)
	store.SetFloat("mask.border_scale", 0.01)
	store.SetFloat("mask.border_aspect_ratio", 50.0)
	store.SetInt("mask.counter_padding", 9)

	got := LoadConfig(store)
	def := DefaultConfig()
	if got.LabelScale != def.LabelScale {
		t.Errorf("label scale = %f, want default %f", got.LabelScale, def.LabelScale)
	}
	if got.BorderScale != def.BorderScale {
		t.Errorf("border scale = %f, want default %f", got.BorderScale, def.BorderScale)
	}
	if got.BorderAspectRatio != def.BorderAspectRatio {
		t.Errorf("border aspect ratio = %f, want default %f", got.BorderAspectRatio, def.BorderAspectRatio)
	}
	if got.CounterPadding != def.CounterPadding {
		t.Errorf("counter padding = %d, want default %d", got.CounterPadding, def.CounterPadding)
	}
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		key     string
		value   float64
		wantErr bool
	}{
		{"mask.label_scale", 0.75, false},
		{"mask.label_scale", 99, true},
		{"mask.border_scale", 2.0, false},
		{"mask.border_scale", 0.01, true},
		{"mask.border_aspect_ratio", 2.39, false},
		{"mask.border_aspect_ratio", 50, true},
		{"mask.counter_padding", 4, false},
		{"mask.counter_padding", 9, true},
		{"mask.font", 1e9, false}, // unconstrained keys always pass
	}

	for _, tc := range tests {
		err := CheckRange(tc.key, tc.value)
		if tc.wantErr && err == nil {
			t.Errorf("CheckRange(%q, %v): expected error", tc.key, tc.value)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("CheckRange(%q, %v): %v", tc.key, tc.value, err)
		}
	}
}

func TestConfigStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := settings.Load(path)

	cfg := DefaultConfig()
	cfg.CameraName = "shotCam"
	cfg.Labels[TopCenter] = "Dailies|{date}"
	cfg.FontName = "bold"
	cfg.LabelColor = Color{1, 0.8, 0, 0.9}
	cfg.LabelScale = 0.75
	cfg.TopBorder = false
	cfg.BorderColor = Color{0, 0, 0, 0.8}
	cfg.BorderScale = 2.0
	cfg.AspectRatioBorders = true
	cfg.BorderAspectRatio = 2.39
	cfg.CounterPadding = 5
	cfg.LogoPath = "/assets/logo.png"

	cfg.Store(store)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := LoadConfig(settings.Load(path))
	if got != cfg {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, cfg)
	}
}
