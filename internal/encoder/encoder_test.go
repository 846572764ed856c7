package encoder

import (
	"reflect"
	"testing"
)

func TestSupported(t *testing.T) {
	if got := Supported(); !reflect.DeepEqual(got, []string{"h264", "prores"}) {
		t.Errorf("Supported() = %v", got)
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("divx"); err == nil {
		t.Error("expected error for unknown encoder")
	}
}

func TestH264KwArgs(t *testing.T) {
	enc, err := Get("h264")
	if err != nil {
		t.Fatal(err)
	}

	kwargs, err := enc.VideoKwArgs("high", "fast")
	if err != nil {
		t.Fatalf("VideoKwArgs: %v", err)
	}

	if kwargs["c:v"] != "libx264" {
		t.Errorf("c:v = %v", kwargs["c:v"])
	}
	if kwargs["crf:v"] != 23 {
		t.Errorf("crf:v = %v, want 23", kwargs["crf:v"])
	}
	if kwargs["preset:v"] != "fast" {
		t.Errorf("preset:v = %v", kwargs["preset:v"])
	}
	if kwargs["profile:v"] != "high" {
		t.Errorf("profile:v = %v", kwargs["profile:v"])
	}
	if kwargs["pix_fmt"] != "yuv420p" {
		t.Errorf("pix_fmt = %v", kwargs["pix_fmt"])
	}
}

func TestH264RejectsUnknownQualityAndPreset(t *testing.T) {
	enc, _ := Get("h264")

	if _, err := enc.VideoKwArgs("potato", "fast"); err == nil {
		t.Error("expected error for unknown quality")
	}
	if _, err := enc.VideoKwArgs("high", "warp9"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestProResProfiles(t *testing.T) {
	enc, err := Get("prores")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		quality string
		profile int
	}{
		{"very_high", 3},
		{"high", 2},
		{"medium", 1},
		{"low", 0},
	}
	for _, tc := range tests {
		kwargs, err := enc.VideoKwArgs(tc.quality, "")
		if err != nil {
			t.Fatalf("%s: %v", tc.quality, err)
		}
		if kwargs["profile:v"] != tc.profile {
			t.Errorf("%s: profile = %v, want %d", tc.quality, kwargs["profile:v"], tc.profile)
		}
	}
}
