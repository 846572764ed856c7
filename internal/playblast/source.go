package playblast

import (
	"image"
	"os"
	"path/filepath"
	"sort"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"

	"github.com/dshepstone/playblast-tool/internal/ffmpeg"
)

// FrameSource is the viewport stand-in the executor captures from. It owns
// the display state the executor snapshots before a capture and restores
// after (ornament visibility), and serves frames by scene frame number.
type FrameSource interface {
	// Size returns the source's native pixel dimensions.
	Size() (width, height int)

	// Ornaments reports whether viewport ornaments are shown.
	Ornaments() bool

	// SetOrnaments toggles viewport ornaments.
	SetOrnaments(show bool)

	// Grab returns the image for a scene frame number.
	Grab(frame int) (image.Image, error)

	// Close releases any resources held by the source.
	Close() error
}

var sequenceExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// DirectorySource serves frames from an image sequence on disk. Files are
// ordered by name; the first file maps to firstFrame.
type DirectorySource struct {
	files      []string
	firstFrame int
	width      int
	height     int
	ornaments  bool
}

// NewDirectorySource scans dir for an image sequence.
func NewDirectorySource(dir string, firstFrame int) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read frame directory")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if sequenceExtensions[filepath.Ext(entry.Name())] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no image sequence found in %s", dir)
	}
	sort.Strings(files)

	width, height, err := imageSize(files[0])
	if err != nil {
		return nil, err
	}

	return &DirectorySource{
		files:      files,
		firstFrame: firstFrame,
		width:      width,
		height:     height,
		ornaments:  true,
	}, nil
}

// FirstFrame returns the scene frame number of the first file.
func (s *DirectorySource) FirstFrame() int {
	return s.firstFrame
}

// LastFrame returns the scene frame number of the last file.
func (s *DirectorySource) LastFrame() int {
	return s.firstFrame + len(s.files) - 1
}

func (s *DirectorySource) Size() (int, int) {
	return s.width, s.height
}

func (s *DirectorySource) Ornaments() bool {
	return s.ornaments
}

func (s *DirectorySource) SetOrnaments(show bool) {
	s.ornaments = show
}

func (s *DirectorySource) Grab(frame int) (image.Image, error) {
	index := frame - s.firstFrame
	if index < 0 || index >= len(s.files) {
		return nil, errors.Errorf("frame %d outside source range [%d, %d]",
			frame, s.FirstFrame(), s.LastFrame())
	}

	f, err := os.Open(s.files[index])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, errors.Wrapf(err, "failed to decode frame %d", frame)
}

func (s *DirectorySource) Close() error {
	return nil
}

// MovieSource serves frames extracted from a movie file. Extraction happens
// once at construction into a temp directory that Close removes.
type MovieSource struct {
	*DirectorySource
	tempDir string
}

// NewMovieSource extracts inputPath into a temp frame sequence.
func NewMovieSource(inputPath string, proc *ffmpeg.Processor, firstFrame int) (*MovieSource, error) {
	tempDir, err := os.MkdirTemp("", "playblast_src_")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}

	pattern := filepath.Join(tempDir, "frame.%06d.png")
	if err := proc.ExtractFrames(inputPath, pattern); err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}

	dirSource, err := NewDirectorySource(tempDir, firstFrame)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}

	return &MovieSource{
		DirectorySource: dirSource,
		tempDir:         tempDir,
	}, nil
}

func (s *MovieSource) Close() error {
	return errors.WithStack(os.RemoveAll(s.tempDir))
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to read image size of %s", path)
	}
	return cfg.Width, cfg.Height, nil
}
