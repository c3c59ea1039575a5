package analyzer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// ImageAnalyzer inspects the reference photo stored in a project
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
	// Tolerance is the number of pixels the photo may differ from the
	// calibrated image size on either axis.
	Tolerance int
}

// DimensionMismatchError reports a photo whose pixel size differs from the
// image size stored with the calibration.
type DimensionMismatchError struct {
	Width, Height         int
	WantWidth, WantHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("reference photo is %dx%d but the calibration expects %dx%d",
		e.Width, e.Height, e.WantWidth, e.WantHeight)
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpeg", "png", "gif", "webp"},
			Tolerance:        1,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// LoadImageFromBytes decodes a photo and rejects formats that are not supported
func (a *ImageAnalyzer) LoadImageFromBytes(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if !a.isFormatSupported(format) {
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}

	return img, format, nil
}

// DetectFormat returns the registered format name of the image data without
// decoding the pixels
func (a *ImageAnalyzer) DetectFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read image header: %w", err)
	}
	return format, nil
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateAgainst checks that img has the pixel size the calibration was
// solved for.
func (a *ImageAnalyzer) ValidateAgainst(img image.Image, width, height int32) error {
	bounds := img.Bounds()
	if abs(bounds.Dx()-int(width)) > a.config.Tolerance || abs(bounds.Dy()-int(height)) > a.config.Tolerance {
		return &DimensionMismatchError{
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			WantWidth:  int(width),
			WantHeight: int(height),
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
