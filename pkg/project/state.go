package project

import (
	"math"

	"github.com/tidwall/gjson"

	"github.com/menta2k/fspy-importer/pkg/types"
)

// ParseState extracts the camera parameters and the reference distance unit
// from the JSON state of a project. Unknown fields are ignored.
func ParseState(state []byte) (CameraParameters, string, error) {
	if !gjson.ValidBytes(state) {
		return CameraParameters{}, "", &FormatError{Reason: "project state is not valid JSON"}
	}
	root := gjson.ParseBytes(state)
	if !root.IsObject() {
		return CameraParameters{}, "", &FormatError{Reason: "project state is not a JSON object"}
	}

	// fSpy writes null camera parameters when the calibration did not solve.
	cp, err := object(root, "", "cameraParameters")
	if err != nil {
		return CameraParameters{}, "", err
	}
	params, err := parseCameraParameters(cp)
	if err != nil {
		return CameraParameters{}, "", err
	}

	settings, err := object(root, "", "calibrationSettingsBase")
	if err != nil {
		return CameraParameters{}, "", err
	}
	unit, err := str(settings, "calibrationSettingsBase", "referenceDistanceUnit")
	if err != nil {
		return CameraParameters{}, "", err
	}

	return params, unit, nil
}

func parseCameraParameters(cp gjson.Result) (CameraParameters, error) {
	const path = "cameraParameters"
	var params CameraParameters

	pp, err := object(cp, path, "principalPoint")
	if err != nil {
		return params, err
	}
	x, err := number(pp, path+".principalPoint", "x")
	if err != nil {
		return params, err
	}
	y, err := number(pp, path+".principalPoint", "y")
	if err != nil {
		return params, err
	}
	params.PrincipalPoint.X = float32(x)
	params.PrincipalPoint.Y = float32(y)

	fov, err := number(cp, path, "horizontalFieldOfView")
	if err != nil {
		return params, err
	}
	params.HorizontalFieldOfView = float32(fov)

	ct, err := object(cp, path, "cameraTransform")
	if err != nil {
		return params, err
	}
	rows := ct.Get("rows")
	if !present(rows) {
		return params, &MissingFieldError{Field: path + ".cameraTransform.rows"}
	}
	if params.CameraTransform.Rows, err = matrixRows(rows); err != nil {
		return params, err
	}

	if params.ImageWidth, err = dimension(cp, path, "imageWidth"); err != nil {
		return params, err
	}
	if params.ImageHeight, err = dimension(cp, path, "imageHeight"); err != nil {
		return params, err
	}

	if params.RelativeFocalLength, err = number(cp, path, "relativeFocalLength"); err != nil {
		return params, err
	}
	return params, nil
}

func matrixRows(rows gjson.Result) (m types.Matrix4, err error) {
	malformed := &FormatError{Reason: "malformed camera transform"}
	if !rows.IsArray() {
		return m, malformed
	}
	rr := rows.Array()
	if len(rr) != 4 {
		return m, malformed
	}
	for i, row := range rr {
		if !row.IsArray() {
			return m, malformed
		}
		values := row.Array()
		if len(values) != 4 {
			return m, malformed
		}
		for j, v := range values {
			if v.Type != gjson.Number {
				return m, malformed
			}
			m[i][j] = float32(v.Num)
		}
	}
	return m, nil
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func object(parent gjson.Result, path, name string) (gjson.Result, error) {
	r := parent.Get(name)
	if !present(r) {
		return r, &MissingFieldError{Field: join(path, name)}
	}
	if !r.IsObject() {
		return r, formatErrorf("%s is not an object", join(path, name))
	}
	return r, nil
}

func number(parent gjson.Result, path, name string) (float64, error) {
	r := parent.Get(name)
	if !present(r) {
		return 0, &MissingFieldError{Field: join(path, name)}
	}
	if r.Type != gjson.Number {
		return 0, formatErrorf("%s is not a number", join(path, name))
	}
	return r.Num, nil
}

func dimension(parent gjson.Result, path, name string) (int32, error) {
	n, err := number(parent, path, name)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, formatErrorf("%s is not a valid integer", join(path, name))
	}
	if n <= 0 {
		return 0, formatErrorf("%s must be positive", join(path, name))
	}
	return int32(n), nil
}

func str(parent gjson.Result, path, name string) (string, error) {
	r := parent.Get(name)
	if !present(r) {
		return "", &MissingFieldError{Field: join(path, name)}
	}
	if r.Type != gjson.String {
		return "", formatErrorf("%s is not a string", join(path, name))
	}
	return r.Str, nil
}
