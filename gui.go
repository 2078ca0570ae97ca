//go:build gui

package main

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/rlsouza/teses/internal/article"
	"github.com/rlsouza/teses/internal/content"
	"github.com/rlsouza/teses/internal/viewer"
)

// typedKey names a fyne key event the way the viewer key map spells it.
type typedKey string

func (k typedKey) String() string { return string(k) }

var fyneKeys = map[fyne.KeyName]typedKey{
	fyne.KeyEscape: "esc",
	fyne.KeyLeft:   "left",
	fyne.KeyRight:  "right",
}

// browse opens the article in a desktop window. Selecting an image opens
// the lightbox at it; the returned index is the last image shown.
func browse(e *env, a *article.Article, start int) (int, error) {
	images := a.Images()
	if start < 0 || start >= len(images) {
		start = 0
	}
	last := start

	root := e.cfg.Viewer.MediaRoot
	if root == "" {
		root = filepath.Dir(e.path)
	}

	fa := app.New()
	w := fa.NewWindow(a.Title)
	v := viewer.New()

	body := widget.NewLabel(content.Text(a.Body))
	body.Wrapping = fyne.TextWrapWord

	header := widget.NewLabel(a.Title)
	header.TextStyle.Bold = true
	meta := widget.NewLabel(strings.TrimPrefix(a.Category+" | "+article.ViewsLabel(a.Views), " | "))

	imageBox := container.NewCenter()
	status := widget.NewLabel("")
	status.Alignment = fyne.TextAlignCenter
	controls := widget.NewLabel("←/→: navegar  +/-: zoom  R: girar  0: restaurar  Esc: fechar  Q: sair")
	controls.Alignment = fyne.TextAlignCenter
	lightbox := container.NewBorder(status, controls, nil, nil, imageBox)
	lightbox.Hide()

	var readingContent *fyne.Container
	updateDisplay := func() {
		if !v.IsOpen() {
			lightbox.Hide()
			readingContent.Show()
			return
		}
		src, ok := v.Current()
		if !ok {
			return
		}
		last = v.Index()

		img := loadImage(src, root, v.Rotation())
		img.FillMode = canvas.ImageFillContain
		size := fyne.NewSize(float32(480*v.Zoom()), float32(320*v.Zoom()))
		if v.Rotation()%180 != 0 {
			size = fyne.NewSize(size.Height, size.Width)
		}
		img.SetMinSize(size)
		imageBox.Objects = []fyne.CanvasObject{img}
		imageBox.Refresh()

		status.SetText(fmt.Sprintf("%s | Zoom: %d%% | Rotação: %d° | %s",
			v.Position(), v.ZoomPercent(), v.Rotation(), v.DownloadName()))
		readingContent.Hide()
		lightbox.Show()
	}

	gallery := widget.NewList(
		func() int { return len(images) },
		func() fyne.CanvasObject { return widget.NewLabel("Imagem") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(fmt.Sprintf("%d. %s", id+1, images[id]))
		},
	)
	gallery.OnSelected = func(id widget.ListItemID) {
		v.Open(images, id)
		gallery.UnselectAll()
		updateDisplay()
	}

	var side fyne.CanvasObject
	if len(images) > 0 {
		side = container.NewBorder(widget.NewLabel(fmt.Sprintf("Imagens (%d)", len(images))), nil, nil, nil, gallery)
	}
	readingContent = container.NewBorder(
		container.NewVBox(header, meta),
		nil, nil, side,
		container.NewVScroll(body),
	)

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch {
		case ev.Name == fyne.KeyQ && !v.IsOpen():
			fa.Quit()
		case ev.Name == fyne.KeyI && !v.IsOpen() && len(images) > 0:
			v.Open(images, last)
			updateDisplay()
		default:
			if k, ok := fyneKeys[ev.Name]; ok && v.Dispatch(viewer.DefaultKeyMap, k) {
				updateDisplay()
			}
		}
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		if v.Dispatch(viewer.DefaultKeyMap, typedKey(string(r))) {
			updateDisplay()
		}
	})

	w.Resize(fyne.NewSize(900, 700))
	w.SetContent(container.NewStack(readingContent, lightbox))
	e.logger.Debug("starting desktop reader", "images", len(images), "media_root", root)
	w.ShowAndRun()
	return last, nil
}

// loadImage resolves src against the media root and rotates local files.
// Remote images are loaded by fyne and shown unrotated.
func loadImage(src, root string, rotation int) *canvas.Image {
	if u, err := url.Parse(src); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if uri, err := storage.ParseURI(src); err == nil {
			return canvas.NewImageFromURI(uri)
		}
	}

	path := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(src, "/")))
	f, err := os.Open(path)
	if err != nil {
		return canvas.NewImageFromFile(path)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return canvas.NewImageFromFile(path)
	}
	return canvas.NewImageFromImage(rotate(img, rotation))
}

// rotate turns img clockwise by a multiple of 90 degrees.
func rotate(img image.Image, degrees int) image.Image {
	turns := (degrees / viewer.RotateStep) % 4
	if turns == 0 {
		return img
	}
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if turns%2 == 1 {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(x, y)
			switch turns {
			case 1:
				dst.SetRGBA(h-1-y, x, c)
			case 2:
				dst.SetRGBA(w-1-x, h-1-y, c)
			case 3:
				dst.SetRGBA(y, w-1-x, c)
			}
		}
	}
	return dst
}
