// Package tags resolves the {tag} template syntax used by shot-mask labels
// and playblast output paths.
//
// Recognized tags: {counter} {scene} {camera} {focal_length} {username}
// {date} {timestamp} {project} {temp}, plus the image directives {logo} and
// {image=<path>}. A site-specific lookup hook, when set, runs before the
// built-in substitutions so custom tags win.
package tags

import (
	"fmt"
	"math"
	"os"
	"os/user"
	"strings"
	"time"
)

// Label is a resolved slot: either plain text or an image reference.
// ImagePath being non-empty marks image mode; Text is then empty.
type Label struct {
	Text      string
	ImagePath string
}

// Context carries the values tag substitution pulls from.
type Context struct {
	SceneName string
	Project   string

	// CameraName feeds {camera}; FocalLength feeds {focal_length} and is
	// left blank when zero.
	CameraName  string
	FocalLength float64

	Frame   int
	Padding int

	// LogoPath backs the {logo} directive.
	LogoPath string

	// Username defaults to the OS login name when empty.
	Username string

	// Now defaults to time.Now when zero.
	Now time.Time

	// Lookup, when non-nil, is applied to the template before built-in
	// substitution so site-specific tags resolve first.
	Lookup func(string) string

	// FileExists overrides the {image=} existence check. Tests use it;
	// the default stats the path.
	FileExists func(string) bool
}

const imageNotFound = "Image not found"

func (c *Context) username() string {
	if c.Username != "" {
		return c.Username
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func (c *Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

func (c *Context) fileExists(path string) bool {
	if c.FileExists != nil {
		return c.FileExists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

// Resolve substitutes every recognized tag in template and classifies the
// result as text or image mode. Tag substitution runs before the image
// directives are checked, and an {image=} path is taken verbatim with no
// further substitution.
func Resolve(template string, ctx Context) Label {
	text := template
	if ctx.Lookup != nil {
		text = ctx.Lookup(text)
	}

	padding := ctx.Padding
	if padding < 1 {
		padding = 1
	}
	counter := fmt.Sprintf("%0*d", padding, ctx.Frame)

	scene := ctx.SceneName
	if scene == "" {
		scene = "untitled"
	}

	focal := ""
	if ctx.FocalLength != 0 {
		focal = fmt.Sprintf("%d", int(math.Round(ctx.FocalLength)))
	}

	now := ctx.now()
	replacer := strings.NewReplacer(
		"{counter}", counter,
		"{scene}", scene,
		"{camera}", ctx.CameraName,
		"{focal_length}", focal,
		"{username}", ctx.username(),
		"{date}", now.Format("2006/01/02"),
		"{timestamp}", now.Format("2006-01-02 15:04"),
		"{project}", ctx.Project,
		"{temp}", os.TempDir(),
	)
	text = replacer.Replace(text)

	stripped := strings.TrimSpace(text)
	if strings.HasPrefix(stripped, "{logo}") {
		return Label{ImagePath: ctx.LogoPath}
	}
	if strings.HasPrefix(stripped, "{image=") && strings.HasSuffix(stripped, "}") {
		path := stripped[len("{image=") : len(stripped)-1]
		if ctx.fileExists(path) {
			return Label{ImagePath: path}
		}
		return Label{Text: imageNotFound}
	}

	return Label{Text: text}
}

// SplitLines honors the '|' two-line layout directive. Only the first '|'
// splits; anything after a second one stays in the bottom line.
func SplitLines(text string) (top, bottom string, split bool) {
	i := strings.Index(text, "|")
	if i < 0 {
		return text, "", false
	}
	return text[:i], text[i+1:], true
}
