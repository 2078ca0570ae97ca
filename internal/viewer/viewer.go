// Package viewer holds the state of the image lightbox: which images of a
// document are being browsed, the current position, and the zoom and
// rotation applied to the current image.
//
// Every operation absorbs invalid input as a no-op. A Viewer is not safe for
// concurrent use; it is driven by one stream of input events.
package viewer

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"strings"
)

const (
	MinZoom    = 0.1
	MaxZoom    = 5.0
	ZoomStep   = 1.2
	RotateStep = 90
)

// Viewer is the lightbox state machine. The zero value is closed.
type Viewer struct {
	open     bool
	images   []string
	index    int
	zoom     float64
	rotation int
}

// New returns a closed viewer.
func New() *Viewer {
	return &Viewer{zoom: 1}
}

// Open shows images starting at start. start is stored as given; an out of
// range value shows nothing until GoTo, Next or Previous moves to a valid
// image. The images slice is copied.
func (v *Viewer) Open(images []string, start int) {
	v.open = true
	v.images = append([]string(nil), images...)
	v.index = start
	v.Reset()
}

// Close hides the viewer and forgets its images.
func (v *Viewer) Close() {
	v.open = false
	v.images = nil
	v.index = 0
	v.Reset()
}

// GoTo moves to image i when 0 <= i < len(images).
func (v *Viewer) GoTo(i int) {
	if !v.open || i < 0 || i >= len(v.images) {
		return
	}
	v.setIndex(i)
}

// Previous moves one image back. It does not wrap.
func (v *Viewer) Previous() {
	if v.HasPrevious() {
		v.setIndex(v.index - 1)
	}
}

// Next moves one image forward. It does not wrap.
func (v *Viewer) Next() {
	if v.HasNext() {
		v.setIndex(v.index + 1)
	}
}

func (v *Viewer) setIndex(i int) {
	if i == v.index {
		return
	}
	v.index = i
	v.Reset()
}

// ZoomIn multiplies the zoom by ZoomStep, up to MaxZoom.
func (v *Viewer) ZoomIn() {
	if v.open {
		v.zoom = math.Min(v.zoom*ZoomStep, MaxZoom)
	}
}

// ZoomOut divides the zoom by ZoomStep, down to MinZoom.
func (v *Viewer) ZoomOut() {
	if v.open {
		v.zoom = math.Max(v.zoom/ZoomStep, MinZoom)
	}
}

// Rotate turns the image a quarter clockwise.
func (v *Viewer) Rotate() {
	if v.open {
		v.rotation = (v.rotation + RotateStep) % 360
	}
}

// Reset restores zoom 1 and rotation 0.
func (v *Viewer) Reset() {
	v.zoom = 1
	v.rotation = 0
}

// IsOpen reports whether the viewer is showing.
func (v *Viewer) IsOpen() bool { return v.open }

// Images returns the images being browsed.
func (v *Viewer) Images() []string { return v.images }

// Index returns the current position, which may be out of range after Open
// with a bad start index.
func (v *Viewer) Index() int { return v.index }

// Zoom returns the zoom factor of the current image.
func (v *Viewer) Zoom() float64 {
	if v.zoom == 0 {
		return 1
	}
	return v.zoom
}

// Rotation returns the clockwise rotation in degrees: 0, 90, 180 or 270.
func (v *Viewer) Rotation() int { return v.rotation }

// Current returns the image on display. ok is false when the viewer is
// closed or the index is out of range.
func (v *Viewer) Current() (src string, ok bool) {
	if !v.open || v.index < 0 || v.index >= len(v.images) {
		return "", false
	}
	return v.images[v.index], true
}

func (v *Viewer) HasPrevious() bool {
	return v.open && v.index > 0 && v.index-1 < len(v.images)
}

func (v *Viewer) HasNext() bool {
	return v.open && v.index < len(v.images)-1 && v.index+1 >= 0
}

func (v *Viewer) CanZoomIn() bool  { return v.open && v.Zoom() < MaxZoom }
func (v *Viewer) CanZoomOut() bool { return v.open && v.Zoom() > MinZoom }

// Position describes the current place in the gallery, e.g. "2 de 5".
func (v *Viewer) Position() string {
	if _, ok := v.Current(); !ok {
		return ""
	}
	return fmt.Sprintf("%d de %d", v.index+1, len(v.images))
}

// ZoomPercent returns the zoom rounded to a whole percentage.
func (v *Viewer) ZoomPercent() int {
	return int(math.Round(v.Zoom() * 100))
}

// DownloadName is the file name offered when saving the current image:
// image-<position>.<ext>, with the extension taken from the image path and
// "jpg" when it has none.
func (v *Viewer) DownloadName() string {
	src, ok := v.Current()
	if !ok {
		return ""
	}
	p := src
	if u, err := url.Parse(src); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp", "avif", "svg", "bmp":
	default:
		ext = "jpg"
	}
	return fmt.Sprintf("image-%d.%s", v.index+1, ext)
}
