// Package camera models the scene description a playblast runs against:
// the scene file metadata, its cameras, and the film-fit policy each camera
// uses to map its resolution gate onto the viewport.
package camera

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FilmFit is the policy used to frame a camera's output region when the
// camera and device aspect ratios differ.
type FilmFit int

const (
	FitHorizontal FilmFit = iota
	FitVertical
	FitFill
	FitOverscan
)

var filmFitNames = map[FilmFit]string{
	FitHorizontal: "horizontal",
	FitVertical:   "vertical",
	FitFill:       "fill",
	FitOverscan:   "overscan",
}

func (f FilmFit) String() string {
	if name, ok := filmFitNames[f]; ok {
		return name
	}
	return fmt.Sprintf("filmfit(%d)", int(f))
}

// ParseFilmFit maps a film-fit name to its enum value.
func ParseFilmFit(name string) (FilmFit, error) {
	for fit, n := range filmFitNames {
		if n == strings.ToLower(name) {
			return fit, nil
		}
	}
	return 0, errors.Errorf("unknown film fit: %q", name)
}

// Camera holds the attributes the mask engine and the executor read.
type Camera struct {
	Name        string  `json:"name"`
	Shape       string  `json:"shape,omitempty"`
	FocalLength float64 `json:"focal_length"`
	AspectRatio float64 `json:"aspect_ratio"`
	Overscan    float64 `json:"overscan"`
	FilmFit     FilmFit `json:"-"`

	FilmFitName string `json:"film_fit"`
}

// ShortName strips namespace and path qualifiers: the substring after the
// last ':' and the last '|'.
func (c *Camera) ShortName() string {
	name := c.Name
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "|"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ShapeName returns the camera's shape node name, deriving the conventional
// "<name>Shape" when none is set.
func (c *Camera) ShapeName() string {
	if c.Shape != "" {
		return c.Shape
	}
	return c.ShortName() + "Shape"
}

// Matches reports whether filter selects this camera. An empty filter is a
// wildcard; otherwise the filter must equal the camera's short transform
// name or its shape name.
func (c *Camera) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	return filter == c.ShortName() || filter == c.ShapeName()
}

// Scene describes the document a playblast captures from.
type Scene struct {
	Path              string    `json:"-"`
	Name              string    `json:"name,omitempty"`
	Project           string    `json:"project,omitempty"`
	FPS               float64   `json:"fps"`
	StartFrame        int       `json:"start_frame"`
	EndFrame          int       `json:"end_frame"`
	DeviceAspectRatio float64   `json:"device_aspect_ratio"`
	ActiveCamera      string    `json:"active_camera"`
	Cameras           []*Camera `json:"cameras"`
}

// LoadScene reads a scene description from a JSON sidecar file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene file")
	}

	s := &Scene{
		FPS:               24,
		DeviceAspectRatio: 16.0 / 9.0,
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "failed to parse scene file")
	}
	s.Path = path

	for _, c := range s.Cameras {
		if c.Overscan == 0 {
			c.Overscan = 1.0
		}
		if c.AspectRatio == 0 {
			c.AspectRatio = s.DeviceAspectRatio
		}
		if c.FilmFitName != "" {
			fit, err := ParseFilmFit(c.FilmFitName)
			if err != nil {
				return nil, err
			}
			c.FilmFit = fit
		}
	}

	return s, nil
}

// BaseName returns the scene file's base name without extension, or
// "untitled" for an unsaved scene.
func (s *Scene) BaseName() string {
	name := s.Name
	if name == "" && s.Path != "" {
		name = filepath.Base(s.Path)
	}
	if name == "" {
		return "untitled"
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Camera looks a camera up by transform or shape name.
func (s *Scene) Camera(name string) (*Camera, bool) {
	for _, c := range s.Cameras {
		if c.Name == name || c.ShortName() == name || c.ShapeName() == name {
			return c, true
		}
	}
	return nil, false
}

// Active returns the scene's active camera, or nil when none is set.
func (s *Scene) Active() *Camera {
	if c, ok := s.Camera(s.ActiveCamera); ok {
		return c
	}
	if len(s.Cameras) > 0 {
		return s.Cameras[0]
	}
	return nil
}
