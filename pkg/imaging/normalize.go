package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"
)

// Normalized is an Asset guaranteed to fit within the dimension bound.
// When the source already fits, it aliases the source and Cleanup is a
// no-op; otherwise it owns a temporary file that Cleanup removes.
type Normalized struct {
	Asset

	// Temp reports whether the asset is a pipeline-owned temporary file.
	Temp bool

	once sync.Once
}

// Cleanup removes the temporary derivative, if any. Safe to call more
// than once and on aliases.
func (n *Normalized) Cleanup() {
	n.once.Do(func() {
		if n.Temp {
			os.Remove(n.Path)
		}
	})
}

// Normalize returns asset unchanged when both dimensions are within
// maxDim. Otherwise it writes a scaled temporary copy with
// max(width, height) == maxDim, preserving aspect ratio. A scaling or
// encoding failure is fatal: the oversized original is never passed on.
func Normalize(asset *Asset, maxDim int) (*Normalized, error) {
	if asset.Width <= maxDim && asset.Height <= maxDim {
		return &Normalized{Asset: *asset}, nil
	}

	f, err := os.Open(asset.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", asset.Path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", asset.Path, err)
	}

	w, h := scaledBounds(asset.Width, asset.Height, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	// JPEG sources re-encode as JPEG; everything else becomes PNG since
	// the standard encoders cover only those two.
	mediaType, ext := "image/png", ".png"
	if asset.MediaType == "image/jpeg" {
		mediaType, ext = "image/jpeg", ".jpg"
	}

	tmp, err := os.CreateTemp("", "pixtract-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp image: %w", err)
	}

	if mediaType == "image/jpeg" {
		err = jpeg.Encode(tmp, dst, &jpeg.Options{Quality: 85})
	} else {
		err = png.Encode(tmp, dst)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("encode scaled image: %w", err)
	}

	info, err := os.Stat(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("stat scaled image: %w", err)
	}

	return &Normalized{
		Asset: Asset{
			Path:      tmp.Name(),
			MediaType: mediaType,
			Width:     w,
			Height:    h,
			Size:      info.Size(),
		},
		Temp: true,
	}, nil
}

// scaledBounds shrinks (w, h) so the larger side equals maxDim, keeping
// aspect ratio. Each side stays at least 1.
func scaledBounds(w, h, maxDim int) (int, int) {
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}
