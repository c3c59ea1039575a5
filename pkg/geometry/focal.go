package geometry

import (
	"github.com/menta2k/fspy-importer/pkg/project"
	"github.com/menta2k/fspy-importer/pkg/types"
)

// SensorAspectRatio returns width/height of the sensor, or 1 when the
// height is zero.
func SensorAspectRatio(sensor types.SensorSize) float64 {
	if sensor.Height == 0 {
		return 1
	}
	return sensor.Width / sensor.Height
}

// FocalLengthForSensor converts a relative focal length into millimetres
// for the given sensor. The relative length is measured against half the
// longer sensor side; square sensors use the height.
func FocalLengthForSensor(relativeFocalLength float64, sensor types.SensorSize) float64 {
	if SensorAspectRatio(sensor) > 1 {
		return 0.5 * sensor.Width * relativeFocalLength
	}
	return 0.5 * sensor.Height * relativeFocalLength
}

// AbsoluteFocalLength returns the focal length in millimetres of the camera
// described by params on a sensorWidth x sensorHeight sensor.
func AbsoluteFocalLength(params project.CameraParameters, sensorWidth, sensorHeight float64) float64 {
	return FocalLengthForSensor(params.RelativeFocalLength, types.SensorSize{Width: sensorWidth, Height: sensorHeight})
}
