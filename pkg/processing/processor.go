package processing

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/fspy-importer/pkg/types"
)

// Processor handles the reference photo embedded in a project
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ScaleDimensions fits size into a maxSize box keeping its aspect ratio.
// The longer side becomes maxSize (height wins ties) and the other side is
// truncated. Degenerate sizes give a zero Size.
func ScaleDimensions(size types.Size, maxSize int) types.Size {
	if size.Width <= 0 || size.Height <= 0 || maxSize <= 0 {
		return types.Size{}
	}

	aspectRatio := float64(size.Width) / float64(size.Height)
	if size.Width > size.Height {
		return types.Size{Width: maxSize, Height: int(float64(maxSize) / aspectRatio)}
	}
	return types.Size{Width: int(float64(maxSize) * aspectRatio), Height: maxSize}
}

// DecodeImage decodes image bytes with WebP support and reports the format name
func (p *Processor) DecodeImage(data []byte) (image.Image, string, error) {
	// Try standard image.Decode first
	if img, format, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, format, nil
	}

	// Try WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}

	return nil, "", fmt.Errorf("image: unknown or unsupported format")
}

// PrepareWallpaper shrinks img to fit within size. Images that already fit
// are returned unchanged.
func (p *Processor) PrepareWallpaper(img image.Image, size types.Size) image.Image {
	if size.Width <= 0 || size.Height <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= size.Width && b.Dy() <= size.Height {
		return img
	}
	return imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)
}

// Encode writes img to w in the given format (jpg, png or webp)
func (p *Processor) Encode(w io.Writer, img image.Image, format string, quality int, lossless bool) error {
	switch NormalizeFormat(format) {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: lossless, Quality: float32(quality)})
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "jpg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// SaveImage saves an image to a file with the specified format and quality.
// The format wins over the extension of path.
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	if !IsSupportedFormat(format) {
		return fmt.Errorf("unsupported output format: %s", format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := p.Encode(f, img, format, quality, lossless); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", NormalizeFormat(format), err)
	}
	return f.Close()
}

// WriteRaw writes image bytes to path exactly as they were stored
func (p *Processor) WriteRaw(data []byte, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image data: %w", err)
	}
	return nil
}

// NormalizeFormat maps format names and extensions onto jpg, png or webp.
// Unknown names are returned lower-cased.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	switch f {
	case "jpeg", "jpg":
		return "jpg"
	default:
		return f
	}
}

// IsSupportedFormat reports whether format can be written by SaveImage
func IsSupportedFormat(format string) bool {
	switch NormalizeFormat(format) {
	case "jpg", "png", "webp":
		return true
	}
	return false
}
