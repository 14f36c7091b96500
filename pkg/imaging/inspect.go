package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoder registrations for the allow-listed formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Inspection failures are distinguished so the caller can print the right
// corrective message.
var (
	ErrNotExist    = errors.New("image does not exist")
	ErrNotRegular  = errors.New("not a regular file")
	ErrUnsupported = errors.New("unsupported image format")
	ErrUnreadable  = errors.New("unreadable or corrupt image")
)

// formatMIME maps file extensions to MIME types for supported raster formats.
var formatMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// decoderFormat maps extensions to the image package format name the
// binary must have a decoder registered for.
var decoderFormat = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

// Asset describes an inspected image file. Immutable once returned.
type Asset struct {
	Path      string
	MediaType string
	Width     int
	Height    int
	Size      int64
}

// Extensions returns the allow-listed extensions in a stable order.
func Extensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// DecoderFor reports the decoder format name an extension requires.
func DecoderFor(ext string) (string, bool) {
	name, ok := decoderFormat[strings.ToLower(ext)]
	return name, ok
}

// Inspect verifies that path names a decodable image in an allow-listed
// format and returns its pixel dimensions.
func Inspect(path string) (*Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mediaType, ok := formatMIME[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, ext, strings.Join(Extensions(), ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	return &Asset{
		Path:      path,
		MediaType: mediaType,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Size:      info.Size(),
	}, nil
}

// ReadBase64 returns the asset's bytes base64-encoded for inline transport.
func (a *Asset) ReadBase64() (string, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", a.Path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
