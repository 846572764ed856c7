package playblast

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/dshepstone/playblast-tool/internal/camera"
	"github.com/dshepstone/playblast-tool/internal/ffmpeg"
	"github.com/dshepstone/playblast-tool/internal/shotmask"
)

// fakeSource serves solid white frames and can be told to fail at a given
// frame number.
type fakeSource struct {
	width     int
	height    int
	ornaments bool
	failAt    int
	grabbed   []int
}

func newFakeSource() *fakeSource {
	return &fakeSource{width: 128, height: 72, ornaments: true}
}

func (s *fakeSource) Size() (int, int) {
	return s.width, s.height
}

func (s *fakeSource) Ornaments() bool {
	return s.ornaments
}

func (s *fakeSource) SetOrnaments(show bool) {
	s.ornaments = show
}

func (s *fakeSource) Grab(frame int) (image.Image, error) {
	if s.failAt != 0 && frame == s.failAt {
		return nil, errors.Errorf("grab failed at frame %d", frame)
	}
	s.grabbed = append(s.grabbed, frame)

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

func (s *fakeSource) Close() error {
	return nil
}

func testScene() *camera.Scene {
	return &camera.Scene{
		Name:              "shot010.ma",
		FPS:               24,
		StartFrame:        1001,
		EndFrame:          1004,
		DeviceAspectRatio: 16.0 / 9.0,
		ActiveCamera:      "shotCam",
		Cameras: []*camera.Camera{{
			Name:        "shotCam",
			FocalLength: 35,
			AspectRatio: 16.0 / 9.0,
			Overscan:    1.3,
			FilmFit:     camera.FitHorizontal,
		}},
	}
}

func TestRunWritesImageSequence(t *testing.T) {
	scene := testScene()
	source := newFakeSource()
	outDir := t.TempDir()

	exec := NewExecutor(scene, source, ffmpeg.NewProcessor())
	result, err := exec.Run(Options{
		OutputDir: outDir,
		Format:    FormatImage,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Frames != 4 {
		t.Errorf("frames = %d, want 4", result.Frames)
	}
	for frame := 1001; frame <= 1004; frame++ {
		path := filepath.Join(outDir, fmt.Sprintf("shot010_shotCam.%04d.png", frame))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing frame file %s", path)
		}
	}
}

func TestRunForcesAndRestoresCaptureState(t *testing.T) {
	scene := testScene()
	source := newFakeSource()

	var duringOrnaments bool
	var duringOverscan float64
	probe := &probeSource{fakeSource: source, onGrab: func() {
		duringOrnaments = source.Ornaments()
		duringOverscan = scene.Cameras[0].Overscan
	}}

	exec := NewExecutor(scene, probe, ffmpeg.NewProcessor())
	_, err := exec.Run(Options{
		OutputDir: t.TempDir(),
		Format:    FormatImage,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if duringOrnaments {
		t.Error("ornaments not hidden during capture")
	}
	if duringOverscan != 1.0 {
		t.Errorf("overscan during capture = %f, want forced 1.0", duringOverscan)
	}
	if !source.Ornaments() {
		t.Error("ornament state not restored after capture")
	}
	if scene.Cameras[0].Overscan != 1.3 {
		t.Errorf("camera overscan not restored: %f", scene.Cameras[0].Overscan)
	}
}

type probeSource struct {
	*fakeSource
	onGrab func()
}

func (s *probeSource) Grab(frame int) (image.Image, error) {
	s.onGrab()
	return s.fakeSource.Grab(frame)
}

func TestRunRestoresStateOnCaptureFailure(t *testing.T) {
	scene := testScene()
	source := newFakeSource()
	source.failAt = 1002

	exec := NewExecutor(scene, source, ffmpeg.NewProcessor())
	_, err := exec.Run(Options{
		OutputDir: t.TempDir(),
		Format:    FormatImage,
	})
	if err == nil {
		t.Fatal("expected capture error")
	}

	if !source.Ornaments() {
		t.Error("ornament state not restored after failure")
	}
	if scene.Cameras[0].Overscan != 1.3 {
		t.Errorf("camera overscan not restored after failure: %f", scene.Cameras[0].Overscan)
	}
	if scene.ActiveCamera != "shotCam" {
		t.Errorf("active camera not restored: %s", scene.ActiveCamera)
	}
}

func TestRunKeepsCameraOverscanWhenRequested(t *testing.T) {
	scene := testScene()
	source := newFakeSource()

	var duringOverscan float64
	probe := &probeSource{fakeSource: source, onGrab: func() {
		duringOverscan = scene.Cameras[0].Overscan
	}}

	exec := NewExecutor(scene, probe, ffmpeg.NewProcessor())
	_, err := exec.Run(Options{
		OutputDir:         t.TempDir(),
		Format:            FormatImage,
		UseCameraOverscan: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if duringOverscan != 1.3 {
		t.Errorf("overscan during capture = %f, want camera's 1.3", duringOverscan)
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"inverted frame range", Options{StartFrame: 10, EndFrame: 5, Format: FormatImage}},
		{"unknown camera", Options{CameraName: "nope", Format: FormatImage}},
		{"unknown encoder", Options{Format: "h265"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.OutputDir = t.TempDir()
			exec := NewExecutor(testScene(), newFakeSource(), ffmpeg.NewProcessor())
			if _, err := exec.Run(tc.opts); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRunBurnsMaskIntoFrames(t *testing.T) {
	scene := testScene()
	source := newFakeSource()
	outDir := t.TempDir()

	mask := shotmask.DefaultConfig()
	mask.Labels = [6]string{}

	exec := NewExecutor(scene, source, ffmpeg.NewProcessor())
	_, err := exec.Run(Options{
		OutputDir: outDir,
		Format:    FormatImage,
		BurnMask:  true,
		Mask:      mask,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(filepath.Join(outDir, "shot010_shotCam.1001.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	// Top-left pixel sits inside the top border band: black, not the
	// source's white.
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("top border pixel = %v, want black", color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b)})
	}

	// A pixel in the image center is untouched source white.
	bounds := img.Bounds()
	r, g, b, _ = img.At(bounds.Dx()/2, bounds.Dy()/2).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("center pixel = (%d,%d,%d), want white", r, g, b)
	}
}
