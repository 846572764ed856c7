package playblast

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFrame(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestDirectorySource(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeTestFrame(t, dir, fmt.Sprintf("frame.%04d.png", i+1), 64, 36)
	}
	// Non-image files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := NewDirectorySource(dir, 1001)
	if err != nil {
		t.Fatalf("NewDirectorySource: %v", err)
	}
	defer source.Close()

	if w, h := source.Size(); w != 64 || h != 36 {
		t.Errorf("Size() = %dx%d, want 64x36", w, h)
	}
	if source.FirstFrame() != 1001 || source.LastFrame() != 1003 {
		t.Errorf("frame range = [%d, %d], want [1001, 1003]", source.FirstFrame(), source.LastFrame())
	}

	img, err := source.Grab(1002)
	if err != nil {
		t.Fatalf("Grab(1002): %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("grabbed width = %d, want 64", img.Bounds().Dx())
	}

	if _, err := source.Grab(1004); err == nil {
		t.Error("Grab outside range should fail")
	}
	if _, err := source.Grab(1000); err == nil {
		t.Error("Grab before range should fail")
	}
}

func TestDirectorySourceEmptyDir(t *testing.T) {
	if _, err := NewDirectorySource(t.TempDir(), 1); err == nil {
		t.Error("expected error for directory without frames")
	}
}
