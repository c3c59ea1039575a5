package geometry

import (
	"github.com/menta2k/fspy-importer/pkg/project"
	"github.com/menta2k/fspy-importer/pkg/types"
)

// CameraPose is the camera orientation basis and location in world space.
// The basis vectors carry whatever scale the transform implies.
type CameraPose struct {
	Right    types.Vec3   `json:"right"`
	Up       types.Vec3   `json:"up"`
	Forward  types.Vec3   `json:"forward"`
	Location types.Point3 `json:"location"`
}

// DerivePose computes the camera pose from a camera transform stored in
// fSpy's row-major layout.
//
// The stored matrix is transposed first; the location is the translation
// row of the transposed matrix and the basis is read from the columns of
// its inverse. fSpy cameras look down their local -Z axis, so Forward is
// the negated third column.
func DerivePose(m types.Matrix4) (CameraPose, error) {
	w := Transpose4x4(m)
	winv, err := Invert4x4(w)
	if err != nil {
		return CameraPose{}, err
	}

	return CameraPose{
		Right:    column(winv, 0),
		Up:       column(winv, 1),
		Forward:  column(winv, 2).Neg(),
		Location: types.Point3{X: w[3][0], Y: w[3][1], Z: w[3][2]},
	}, nil
}

// PoseOf derives the pose of the camera described by params
func PoseOf(params project.CameraParameters) (CameraPose, error) {
	return DerivePose(params.CameraTransform.Rows)
}

func column(m types.Matrix4, j int) types.Vec3 {
	return types.Vec3{X: m[0][j], Y: m[1][j], Z: m[2][j]}
}
