package camera

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"persp", "persp"},
		{"rig:shotCam", "shotCam"},
		{"|group1|shotCam", "shotCam"},
		{"rig:|group1|shotCam", "shotCam"},
	}

	for _, tc := range tests {
		c := &Camera{Name: tc.name}
		if got := c.ShortName(); got != tc.want {
			t.Errorf("ShortName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMatches(t *testing.T) {
	c := &Camera{Name: "rig:shotCam"}

	tests := []struct {
		filter string
		want   bool
	}{
		{"", true},
		{"shotCam", true},
		{"shotCamShape", true},
		{"persp", false},
	}

	for _, tc := range tests {
		if got := c.Matches(tc.filter); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestParseFilmFit(t *testing.T) {
	tests := []struct {
		in      string
		want    FilmFit
		wantErr bool
	}{
		{"horizontal", FitHorizontal, false},
		{"vertical", FitVertical, false},
		{"fill", FitFill, false},
		{"overscan", FitOverscan, false},
		{"Fill", FitFill, false},
		{"letterbox", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseFilmFit(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFilmFit(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFilmFit(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFilmFit(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		scene Scene
		want  string
	}{
		{Scene{Name: "shot010.ma"}, "shot010"},
		{Scene{Path: "/projects/demo/shot020.json"}, "shot020"},
		{Scene{}, "untitled"},
	}

	for _, tc := range tests {
		if got := tc.scene.BaseName(); got != tc.want {
			t.Errorf("BaseName() = %q, want %q", got, tc.want)
		}
	}
}

func TestLoadScene(t *testing.T) {
	data := `{
		"name": "shot010.ma",
		"project": "demo",
		"fps": 24,
		"start_frame": 1001,
		"end_frame": 1048,
		"device_aspect_ratio": 1.78,
		"active_camera": "shotCam",
		"cameras": [
			{"name": "rig:shotCam", "focal_length": 35, "film_fit": "fill"},
			{"name": "persp", "focal_length": 50, "aspect_ratio": 1.5, "overscan": 1.3, "film_fit": "horizontal"}
		]
	}`
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	scene, err := LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	if scene.BaseName() != "shot010" {
		t.Errorf("BaseName() = %q, want shot010", scene.BaseName())
	}

	active := scene.Active()
	if active == nil || active.Name != "rig:shotCam" {
		t.Fatalf("Active() = %+v, want rig:shotCam", active)
	}
	// Omitted attributes pick up defaults.
	if active.Overscan != 1.0 {
		t.Errorf("default overscan = %f, want 1.0", active.Overscan)
	}
	if active.AspectRatio != 1.78 {
		t.Errorf("default aspect ratio = %f, want device aspect 1.78", active.AspectRatio)
	}
	if active.FilmFit != FitFill {
		t.Errorf("film fit = %v, want fill", active.FilmFit)
	}

	persp, ok := scene.Camera("persp")
	if !ok {
		t.Fatal("persp not found")
	}
	if persp.Overscan != 1.3 || persp.AspectRatio != 1.5 {
		t.Errorf("persp attributes not loaded: %+v", persp)
	}
}

func TestLoadSceneRejectsUnknownFilmFit(t *testing.T) {
	data := `{"cameras": [{"name": "persp", "film_fit": "sideways"}]}`
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadScene(path); err == nil {
		t.Error("expected error for unknown film fit")
	}
}
