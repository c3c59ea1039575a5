// Package fspy imports fSpy camera calibration projects.
//
// A project file carries a solved camera and the photo it was solved
// against. Importing a project decodes the file, rebuilds the camera pose
// and focal length, optionally exports the photo as a wallpaper and records
// the project in a catalog.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		fspy "github.com/menta2k/fspy-importer"
//	)
//
//	func main() {
//		importer := fspy.NewImporter(fspy.DefaultImporterConfig())
//
//		result, err := importer.Import(context.Background(), "room.fspy")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("Camera at %+v, focal length %.1fmm\n", result.Pose.Location, result.FocalLength)
//	}
//
// The package builds on four components:
//
// 1. Project (pkg/project): decodes the binary container and JSON state
// 2. Geometry (pkg/geometry): derives the camera pose and focal length
// 3. Processing (pkg/processing): decodes, resizes and saves the photo
// 4. Catalog (pkg/catalog): remembers imported projects in SQLite
package fspy

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/menta2k/fspy-importer/internal/utils"
	"github.com/menta2k/fspy-importer/pkg/analyzer"
	"github.com/menta2k/fspy-importer/pkg/catalog"
	"github.com/menta2k/fspy-importer/pkg/geometry"
	"github.com/menta2k/fspy-importer/pkg/processing"
	"github.com/menta2k/fspy-importer/pkg/project"
	"github.com/menta2k/fspy-importer/pkg/types"
)

// Version of the importer library
const Version = "1.0.0"

// ImporterConfig controls what an import produces
type ImporterConfig struct {
	// Sensor is the physical sensor the focal length is expressed for
	Sensor types.SensorSize
	// MaxViewSize is the length of the longer side of the camera view
	MaxViewSize int
	// OutputDir receives the exported wallpaper. Empty disables the export.
	OutputDir string
	Format    string
	Quality   int
	Lossless  bool
	// Raw writes the photo bytes as stored instead of re-encoding them
	Raw bool
}

// DefaultImporterConfig returns a full frame sensor, a 1280 pixel view and
// no wallpaper export
func DefaultImporterConfig() ImporterConfig {
	return ImporterConfig{
		Sensor:      types.FullFrame,
		MaxViewSize: 1280,
		Format:      "png",
		Quality:     90,
	}
}

// Option configures an Importer
type Option func(*Importer)

// WithLogger sets the logger used for import progress
func WithLogger(logger *log.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithCatalog records every successful import in store
func WithCatalog(store *catalog.Store) Option {
	return func(i *Importer) {
		i.catalog = store
	}
}

// Importer runs the full import of project files
type Importer struct {
	config    ImporterConfig
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	catalog   *catalog.Store
	logger    *log.Logger
	now       func() time.Time
}

// NewImporter creates an Importer
func NewImporter(cfg ImporterConfig, opts ...Option) *Importer {
	if cfg.MaxViewSize <= 0 {
		cfg.MaxViewSize = 1280
	}
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	if cfg.Quality <= 0 {
		cfg.Quality = 90
	}

	i := &Importer{
		config:    cfg,
		analyzer:  analyzer.New(),
		processor: processing.NewProcessor(),
		logger:    log.New(io.Discard),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result is the outcome of importing one project
type Result struct {
	Project     *project.Project    `json:"-"`
	Pose        geometry.CameraPose `json:"pose"`
	FocalLength float64             `json:"focalLength"`
	ViewSize    types.Size          `json:"viewSize"`
	// Photo describes the decoded reference photo. It is zero when the
	// photo could not be decoded.
	Photo       analyzer.ImageInfo `json:"photo"`
	PhotoFormat string             `json:"photoFormat,omitempty"`
	// WallpaperPath is empty when no wallpaper was exported
	WallpaperPath string `json:"wallpaperPath,omitempty"`
	// Warnings are problems with the photo that do not invalidate the camera
	Warnings []string `json:"warnings,omitempty"`
}

// Open decodes the project file at path
func Open(path string) (*project.Project, error) {
	return project.Open(path)
}

// Decode decodes a project from r. fileName is recorded on the project.
func Decode(r io.ReadSeeker, fileName string) (*project.Project, error) {
	return project.Decode(r, fileName)
}

// Import decodes the project at path and derives its camera
func (i *Importer) Import(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := project.Open(path)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("decoded project", "file", p.FileName, "version", p.Version, "image_bytes", len(p.ImageBytes))

	return i.ImportProject(ctx, path, p)
}

// ImportProject derives the camera of an already decoded project. path
// names the wallpaper exported for it.
func (i *Importer) ImportProject(ctx context.Context, path string, p *project.Project) (*Result, error) {
	params := p.CameraParameters

	pose, err := geometry.PoseOf(params)
	if err != nil {
		return nil, fmt.Errorf("failed to derive camera pose for %s: %w", p.FileName, err)
	}

	result := &Result{
		Project:     p,
		Pose:        pose,
		FocalLength: geometry.FocalLengthForSensor(params.RelativeFocalLength, i.config.Sensor),
		ViewSize: processing.ScaleDimensions(types.Size{
			Width:  int(params.ImageWidth),
			Height: int(params.ImageHeight),
		}, i.config.MaxViewSize),
	}

	img, format, err := i.processor.DecodeImage(p.ImageBytes)
	if err != nil {
		result.warn(i.logger, fmt.Sprintf("reference photo could not be decoded: %v", err))
	} else {
		result.Photo = i.analyzer.GetImageInfo(img)
		result.PhotoFormat = format
		i.logger.Debug("decoded reference photo", "format", format, "width", result.Photo.Width, "height", result.Photo.Height)
		var mismatch *analyzer.DimensionMismatchError
		if err := i.analyzer.ValidateAgainst(img, params.ImageWidth, params.ImageHeight); errors.As(err, &mismatch) {
			result.warn(i.logger, mismatch.Error())
		}
	}

	if i.config.OutputDir != "" {
		wallpaper, err := i.exportWallpaper(path, p, img, format)
		if err != nil {
			return nil, err
		}
		result.WallpaperPath = wallpaper
	}

	if i.catalog != nil {
		if _, err := i.catalog.SaveProject(ctx, p, i.now()); err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", p.FileName, err)
		}
		i.logger.Debug("recorded project", "file", p.FileName)
	}

	i.logger.Info("imported project", "file", p.FileName, "focal_length", result.FocalLength, "view", fmt.Sprintf("%dx%d", result.ViewSize.Width, result.ViewSize.Height))
	return result, nil
}

// ExportWallpaper writes the reference photo of p to the configured output
// directory and returns the written path
func (i *Importer) ExportWallpaper(path string, p *project.Project) (string, error) {
	if i.config.OutputDir == "" {
		return "", fmt.Errorf("no output directory configured")
	}
	img, format, err := i.processor.DecodeImage(p.ImageBytes)
	if err != nil {
		i.logger.Warn("reference photo could not be decoded, writing it as stored", "file", p.FileName, "err", err)
	}
	return i.exportWallpaper(path, p, img, format)
}

// exportWallpaper writes the reference photo next to the other wallpapers,
// resized to the camera view. Undecodable photos are written as stored.
func (i *Importer) exportWallpaper(path string, p *project.Project, img image.Image, format string) (string, error) {
	if err := utils.EnsureDir(i.config.OutputDir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if i.config.Raw || img == nil {
		ext := "png"
		if format != "" {
			ext = processing.NormalizeFormat(format)
		}
		out := utils.WallpaperFilename(path, i.config.OutputDir, ext)
		if err := i.processor.WriteRaw(p.ImageBytes, out); err != nil {
			return "", err
		}
		i.logger.Debug("wrote reference photo as stored", "path", out)
		return out, nil
	}

	out := utils.WallpaperFilename(path, i.config.OutputDir, processing.NormalizeFormat(i.config.Format))
	size := processing.ScaleDimensions(types.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}, i.config.MaxViewSize)
	wallpaper := i.processor.PrepareWallpaper(img, size)
	if err := i.processor.SaveImage(wallpaper, out, i.config.Format, i.config.Quality, i.config.Lossless); err != nil {
		return "", fmt.Errorf("failed to export wallpaper: %w", err)
	}
	i.logger.Debug("exported wallpaper", "path", out, "size", wallpaper.Bounds().Size())
	return out, nil
}

func (r *Result) warn(logger *log.Logger, msg string) {
	r.Warnings = append(r.Warnings, msg)
	logger.Warn(msg)
}
