// Package project decodes fSpy project files.
//
// An fSpy project is a little-endian binary container made of a fixed
// 16-byte header, a UTF-8 JSON document holding the calibration state and
// the raw bytes of the reference photo:
//
//	offset  size             field
//	0       4                magic (2037412710)
//	4       4                version (1)
//	8       4                state string size
//	12      4                image buffer size
//	16      state size       JSON state
//	16+n    image size       image bytes
//
// Only the calibration fields needed to rebuild the camera are extracted
// from the JSON state; everything else is ignored.
package project

import (
	"github.com/menta2k/fspy-importer/pkg/types"
)

const (
	// Magic identifies an fSpy project file
	Magic uint32 = 2037412710
	// SupportedVersion is the only project file version this package reads
	SupportedVersion int32 = 1
	// HeaderSize is the size in bytes of the fixed header
	HeaderSize = 16
	// FileExtension is the extension fSpy uses for project files
	FileExtension = ".fspy"
)

// Project is a decoded fSpy project. It is not modified after Decode returns.
type Project struct {
	Version               int32
	CameraParameters      CameraParameters
	ReferenceDistanceUnit string
	ImageBytes            []byte
	// FileName is the base name of the path the project was read from.
	FileName string
}

// ImageAspectRatio returns the calibrated image width divided by its height
func (p *Project) ImageAspectRatio() float64 {
	if p.CameraParameters.ImageHeight == 0 {
		return 1
	}
	return float64(p.CameraParameters.ImageWidth) / float64(p.CameraParameters.ImageHeight)
}

// CameraParameters is the solved camera stored in the project state
type CameraParameters struct {
	PrincipalPoint types.Point2 `json:"principalPoint"`
	// HorizontalFieldOfView is passed through in the units fSpy stored it in.
	HorizontalFieldOfView float32   `json:"horizontalFieldOfView"`
	CameraTransform       Transform `json:"cameraTransform"`
	ImageWidth            int32     `json:"imageWidth"`
	ImageHeight           int32     `json:"imageHeight"`
	RelativeFocalLength   float64   `json:"relativeFocalLength"`
}

// Transform is the camera transform as stored: four rows of four values
type Transform struct {
	Rows types.Matrix4 `json:"rows"`
}
